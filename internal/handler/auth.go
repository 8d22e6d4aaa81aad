package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/stadium-tickets/internal/config"
	"github.com/iliyamo/stadium-tickets/internal/middleware"
	"github.com/iliyamo/stadium-tickets/internal/model"
	"github.com/iliyamo/stadium-tickets/internal/repository"
	"github.com/iliyamo/stadium-tickets/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg    config.AuthConfig
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
	Log    *slog.Logger
}

func NewAuthHandler(cfg config.AuthConfig, u *repository.UserRepo, t *repository.TokenRepo, log *slog.Logger) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, Log: log}
}

// ----- DTOs -----

type registerReq struct {
	Email     string `json:"email"      validate:"required,email"`
	Password  string `json:"password"   validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name"  validate:"max=100"`
}

type loginReq struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type authResp struct {
	User    *model.User `json:"user"`
	Access  tokenPart   `json:"access"`
	Refresh tokenPart   `json:"refresh"`
}

// Register creates a user with the "user" role.  Admins are provisioned
// out of band.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if msg, ok := bindValid(c, &req); !ok {
		return badRequest(c, msg)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	u := &model.User{
		Email:     req.Email,
		Role:      model.RoleUser,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
	}
	if err := h.Users.Create(ctx, u, req.Password, h.Cfg.BcryptCost); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return fail(c, h.Log, "handler.AuthHandler.Register", err)
	}
	h.Log.Info("user registered", slog.Uint64("user_id", u.ID))
	return c.JSON(http.StatusCreated, u)
}

// Login verifies the password and returns an access/refresh pair.  The
// access token is also set as an HttpOnly session cookie.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if msg, ok := bindValid(c, &req); !ok {
		return badRequest(c, msg)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return fail(c, h.Log, "handler.AuthHandler.Login", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	resp, err := h.issue(c, u)
	if err != nil {
		return fail(c, h.Log, "handler.AuthHandler.Login", err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Session returns the user behind the current access token.
func (h *AuthHandler) Session(c echo.Context) error {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id.UserID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return unauthorized(c)
	}
	if err != nil {
		return fail(c, h.Log, "handler.AuthHandler.Session", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":         u.ID,
		"email":      u.Email,
		"role":       u.Role,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
	})
}

// Refresh rotates a refresh token and issues a new access token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return badRequest(c, "refresh_token required")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	next, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return fail(c, h.Log, "handler.AuthHandler.Refresh", err)
	}
	oldHash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))
	userID, err := h.Tokens.Rotate(ctx, oldHash, utils.HashRefreshRaw(next.Raw), next.Exp)
	if err != nil {
		if errors.Is(err, repository.ErrTokenInvalid) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
		}
		return fail(c, h.Log, "handler.AuthHandler.Refresh", err)
	}
	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return fail(c, h.Log, "handler.AuthHandler.Refresh", err)
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return fail(c, h.Log, "handler.AuthHandler.Refresh", err)
	}
	h.setSessionCookie(c, access.Token, access.Exp)
	return c.JSON(http.StatusOK, authResp{
		User:    u,
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: next.Raw, Expires: next.Exp},
	})
}

// Logout revokes the refresh token in the body, or every refresh token of
// the caller when none is given, and clears the session cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var req refreshReq
	_ = c.Bind(&req)

	ctx, cancel := requestCtx(c)
	defer cancel()

	var err error
	if raw := strings.TrimSpace(req.RefreshToken); raw != "" {
		err = h.Tokens.RevokeByHash(ctx, utils.HashRefreshRaw(raw))
	} else {
		err = h.Tokens.RevokeAllForUser(ctx, id.UserID)
	}
	if err != nil {
		return fail(c, h.Log, "handler.AuthHandler.Logout", err)
	}
	h.setSessionCookie(c, "", time.Unix(0, 0))
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) issue(c echo.Context, u *model.User) (authResp, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return authResp{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return authResp{}, err
	}
	if err := h.Tokens.StoreRefresh(c.Request().Context(), u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return authResp{}, err
	}
	h.setSessionCookie(c, access.Token, access.Exp)
	return authResp{
		User:    u,
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	}, nil
}

func (h *AuthHandler) setSessionCookie(c echo.Context, value string, exp time.Time) {
	ck := &http.Cookie{
		Name:     h.Cfg.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   h.Cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		ck.MaxAge = -1
	}
	c.SetCookie(ck)
}
