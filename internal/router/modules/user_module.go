package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/user-api/internal/interface/http"
	"github.com/oksasatya/user-api/internal/interface/middleware"
)

// UserModule wires the user handlers into routes:
// GET /users, GET /users/find, GET /users/:id, POST /users, PUT /users,
// PATCH /users/:id, DELETE /users/:id.
// Mutating routes are rate limited per IP.
type UserModule struct {
	Handler        *handlers.UserHandler
	Redis          *redis.Client
	MutationLimit  int
	Window         time.Duration
	AllowPrivateIP bool
}

func NewUserModule(h *handlers.UserHandler, rdb *redis.Client, limit int, window time.Duration, allowPrivate bool) *UserModule {
	return &UserModule{Handler: h, Redis: rdb, MutationLimit: limit, Window: window, AllowPrivateIP: allowPrivate}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	var allow middleware.AllowFunc
	if m.AllowPrivateIP {
		allow = middleware.AllowPrivateIP()
	}
	limiter := middleware.RateLimit(m.Redis, m.MutationLimit, m.Window, middleware.KeyByIPAndRoute(), allow)

	users := rg.Group("/users")
	{
		users.GET("", m.Handler.FindAll)
		users.GET("/find", m.Handler.Find)
		users.GET("/:id", m.Handler.GetByID)

		users.POST("", limiter, m.Handler.Create)
		users.PUT("", limiter, m.Handler.Update)
		users.PATCH("/:id", limiter, m.Handler.Patch)
		users.DELETE("/:id", limiter, m.Handler.Delete)
	}
}
