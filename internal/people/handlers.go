package people

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/caseflow-io/caseflow/internal/httpauth"
	"github.com/caseflow-io/caseflow/pkg/apperr"
	"github.com/caseflow-io/caseflow/pkg/schema"
)

// Handler exposes the people service over HTTP.
type Handler struct {
	Service *Service
}

// Routes mounts the people routes under /api/people. Every route requires a
// valid bearer token.
func (h *Handler) Routes(r gin.IRouter, jwtSecret string) {
	g := r.Group("/api/people", httpauth.Authenticate(jwtSecret))
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

func (h *Handler) Create(c *gin.Context) {
	var in CreatePersonInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, schema.Fail("Validation failed", err.Error()))
		return
	}

	person, err := h.Service.Create(c.Request.Context(), in, eventMeta(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, schema.OK(person))
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	person, err := h.Service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, schema.OK(person))
}

func (h *Handler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	result, err := h.Service.List(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, schema.OK(result))
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var in UpdatePersonInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, schema.Fail("Validation failed", err.Error()))
		return
	}

	person, err := h.Service.Update(c.Request.Context(), id, in, eventMeta(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, schema.OK(person))
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	deleted, err := h.Service.Delete(c.Request.Context(), id, eventMeta(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, schema.OKMessage(gin.H{"id": deleted}, "Person deleted"))
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, schema.Fail("Validation failed", "Invalid ID"))
		return 0, false
	}
	return id, true
}

func eventMeta(c *gin.Context) schema.EventMetadata {
	meta := schema.EventMetadata{CorrelationID: httpauth.GetRequestID(c)}
	if claims := httpauth.CurrentUser(c); claims != nil {
		meta.UserID = claims.UserID
	}
	return meta
}

func respondError(c *gin.Context, err error) {
	c.JSON(apperr.Status(err), schema.Fail(apperr.Public(err), ""))
}
