package cases

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/caseflow-io/caseflow/internal/httpauth"
	"github.com/caseflow-io/caseflow/pkg/apperr"
	"github.com/caseflow-io/caseflow/pkg/schema"
)

// Handler exposes the case service over HTTP. Search-index writes are
// best-effort: a failure is logged and never fails the request, since
// Postgres already holds the row.
type Handler struct {
	Store  Store
	Search SearchIndex
	Log    zerolog.Logger
}

// Routes mounts the case routes under /api/cases. The search route is
// registered before the id route so "search" is not parsed as an id.
func (h *Handler) Routes(r gin.IRouter, jwtSecret string) {
	g := r.Group("/api/cases", httpauth.Authenticate(jwtSecret))
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/search", h.SearchCases)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

func (h *Handler) Create(c *gin.Context) {
	var in CreateCaseInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, schema.Fail("Validation failed", err.Error()))
		return
	}

	var createdBy int64
	if claims := httpauth.CurrentUser(c); claims != nil {
		createdBy = claims.UserID
	}

	caseNumber := NewCaseNumber()
	record, err := h.Store.Insert(c.Request.Context(), in, caseNumber, createdBy)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.Search.IndexCase(c.Request.Context(), record); err != nil {
		h.Log.Error().Err(err).Int64("caseId", record.ID).Msg("Failed to index case")
	}

	h.Log.Info().Int64("caseId", record.ID).Str("caseNumber", caseNumber).Msg("Case created")
	c.JSON(http.StatusCreated, schema.OK(record))
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	record, err := h.Store.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, schema.OK(record))
}

func (h *Handler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	var (
		records []schema.Case
		total   int
	)
	g, gctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		records, err = h.Store.List(gctx, limit, (page-1)*limit)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = h.Store.Count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, schema.OK(schema.Page[schema.Case]{
		Data:       records,
		Pagination: schema.NewPagination(page, limit, total),
	}))
}

func (h *Handler) SearchCases(c *gin.Context) {
	filters := SearchFilters{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
	}
	if raw := c.Query("assigned_to"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, schema.Fail("Validation failed", "Invalid assigned_to"))
			return
		}
		filters.AssignedTo = &id
	}

	// The index is a secondary read model. When it is unreachable the
	// search degrades to an empty result set instead of failing.
	query := c.Query("q")
	results, err := h.Search.Search(c.Request.Context(), query, filters)
	if err != nil {
		h.Log.Error().Err(err).Str("query", query).Msg("Search failed, returning empty result set")
		results = []schema.Case{}
	}

	h.Log.Info().Str("query", query).Int("resultCount", len(results)).Msg("Search performed")
	c.JSON(http.StatusOK, schema.OK(results))
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var in UpdateCaseInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, schema.Fail("Validation failed", err.Error()))
		return
	}

	changes := in.Changes()
	record, err := h.Store.Update(c.Request.Context(), id, changes)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.Search.UpdateCase(c.Request.Context(), id, changes); err != nil {
		h.Log.Error().Err(err).Int64("caseId", id).Msg("Failed to update case in index")
	}

	h.Log.Info().Int64("caseId", id).Msg("Case updated")
	c.JSON(http.StatusOK, schema.OK(record))
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	deleted, err := h.Store.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.Search.DeleteCase(c.Request.Context(), id); err != nil {
		h.Log.Error().Err(err).Int64("caseId", id).Msg("Failed to delete case from index")
	}

	h.Log.Info().Int64("caseId", id).Msg("Case deleted")
	c.JSON(http.StatusOK, schema.OKMessage(gin.H{"id": deleted}, "Case deleted"))
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, schema.Fail("Validation failed", "Invalid ID"))
		return 0, false
	}
	return id, true
}

func respondError(c *gin.Context, err error) {
	c.JSON(apperr.Status(err), schema.Fail(apperr.Public(err), ""))
}
