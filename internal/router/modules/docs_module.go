package modules

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/user-api/api"
)

// DocsModule serves the OpenAPI description of the user API.
type DocsModule struct{}

func NewDocsModule() *DocsModule { return &DocsModule{} }

func (m *DocsModule) Register(rg *gin.RouterGroup) {
	rg.GET("/docs/openapi.yaml", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/yaml", api.OpenAPI)
	})
}
