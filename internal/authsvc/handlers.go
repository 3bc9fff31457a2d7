package authsvc

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/caseflow-io/caseflow/internal/httpauth"
	"github.com/caseflow-io/caseflow/pkg/apperr"
	"github.com/caseflow-io/caseflow/pkg/schema"
)

// RegisterInput is the request body for account registration.
type RegisterInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name"`
}

// LoginInput is the request body for login.
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Handler exposes the auth service over HTTP.
type Handler struct {
	Store    Store
	Secret   string
	TokenTTL time.Duration
	Log      zerolog.Logger
}

// Routes mounts the auth routes under /api/auth.
func (h *Handler) Routes(r gin.IRouter) {
	g := r.Group("/api/auth")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.GET("/profile", httpauth.Authenticate(h.Secret), h.Profile)
}

func (h *Handler) Register(c *gin.Context) {
	var in RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, schema.Fail("Validation failed", err.Error()))
		return
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	user, err := h.Store.Create(c.Request.Context(), in.Email, hash, in.FullName, "user")
	if err != nil {
		respondError(c, err)
		return
	}

	h.Log.Info().Int64("userId", user.ID).Str("email", user.Email).Msg("User registered")
	c.JSON(http.StatusCreated, schema.OKMessage(user, "User registered successfully"))
}

func (h *Handler) Login(c *gin.Context) {
	var in LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, schema.Fail("Validation failed", err.Error()))
		return
	}

	// Unknown email and wrong password are indistinguishable to the caller.
	// A store infrastructure error is not a credential failure.
	account, err := h.Store.GetByEmail(c.Request.Context(), in.Email)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		respondError(c, err)
		return
	}
	if err != nil || !CheckPassword(in.Password, account.PasswordHash) {
		c.JSON(http.StatusUnauthorized, schema.Fail("Invalid credentials", ""))
		return
	}

	token, err := httpauth.Sign(h.Secret, account.ID, account.Email, account.Role, h.TokenTTL)
	if err != nil {
		respondError(c, err)
		return
	}

	h.Log.Info().Int64("userId", account.ID).Str("email", account.Email).Msg("User logged in")
	c.JSON(http.StatusOK, schema.OK(gin.H{
		"token": token,
		"user":  account.User,
	}))
}

func (h *Handler) Profile(c *gin.Context) {
	claims := httpauth.CurrentUser(c)

	user, err := h.Store.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		// A token for a deleted account is no longer a valid credential.
		c.JSON(http.StatusUnauthorized, schema.Fail("User not found", ""))
		return
	}
	c.JSON(http.StatusOK, schema.OK(user))
}

func respondError(c *gin.Context, err error) {
	c.JSON(apperr.Status(err), schema.Fail(apperr.Public(err), ""))
}
