package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/oksasatya/user-api/internal/application"
	"github.com/oksasatya/user-api/internal/domain/entity"
	"github.com/oksasatya/user-api/internal/interface/middleware"
	"github.com/oksasatya/user-api/pkg/response"
	"github.com/oksasatya/user-api/pkg/validation"
)

const jsonPatchContentType = "application/json-patch+json"

type UserHandler struct {
	Svc          *userapp.Service
	Logger       *logrus.Logger
	DeniedStatus int
}

func NewUserHandler(svc *userapp.Service, logger *logrus.Logger, deniedStatus int) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger, DeniedStatus: deniedStatus}
}

func (h *UserHandler) FindAll(c *gin.Context) {
	users, err := h.Svc.FindAll(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toDTOs(users), "users", gin.H{"count": len(users)})
}

func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	u, err := h.Svc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toDTO(*u), "user", nil)
}

func (h *UserHandler) Find(c *gin.Context) {
	var q findUsersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid query", validation.ToDetails(err))
		return
	}
	users, err := h.Svc.FindByCriteria(c.Request.Context(), q.criteria())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toDTOs(users), "users", gin.H{"count": len(users)})
}

func (h *UserHandler) Create(c *gin.Context) {
	var req userDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.Create(c.Request.Context(), req.toEntity(), middleware.ClientAddress(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Location", c.Request.URL.Path+"/"+u.ID.String())
	response.Success(c, http.StatusCreated, toDTO(*u), "user created", nil)
}

func (h *UserHandler) Update(c *gin.Context) {
	var req userDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.Update(c.Request.Context(), req.toEntity())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toDTO(*u), "user updated", nil)
}

// Patch applies an RFC 6902 document to the stored user. The id cannot be patched.
func (h *UserHandler) Patch(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if c.ContentType() != jsonPatchContentType {
		response.Error[any](c, http.StatusUnsupportedMediaType, "content type must be "+jsonPatchContentType, nil)
		return
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", nil)
		return
	}
	patch, err := jsonpatch.DecodePatch(body)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid json patch", err.Error())
		return
	}

	ctx := c.Request.Context()
	current, err := h.Svc.GetByID(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	patched, err := applyPatch(patch, *current)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "json patch could not be applied", err.Error())
		return
	}
	patched.ID = current.ID

	u, err := h.Svc.Update(ctx, patched)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toDTO(*u), "user patched", nil)
}

func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.Svc.DeleteByID(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func applyPatch(patch jsonpatch.Patch, u entity.User) (entity.User, error) {
	doc, err := json.Marshal(toDTO(u))
	if err != nil {
		return entity.User{}, err
	}
	out, err := patch.Apply(doc)
	if err != nil {
		return entity.User{}, err
	}
	var patched userDTO
	if err := json.Unmarshal(out, &patched); err != nil {
		return entity.User{}, err
	}
	return patched.toEntity(), nil
}

func (h *UserHandler) pathID(c *gin.Context) (entity.UserID, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid user id", map[string]string{"id": raw})
		return 0, false
	}
	return entity.UserID(id), true
}

func (h *UserHandler) fail(c *gin.Context, err error) {
	status := StatusFor(err, h.DeniedStatus)
	if status >= http.StatusInternalServerError && h.Logger != nil {
		h.Logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.Request.URL.Path,
		}).Error("request failed")
	}
	response.Error[any](c, status, clientMessage(err, status), gin.H{"code": errorCode(err)})
}
