package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/spacelink/internal/model"
	"github.com/iliyamo/spacelink/internal/repository"
	"github.com/iliyamo/spacelink/internal/utils"
)

// UserStore is the part of the user repository the auth endpoints use.
type UserStore interface {
	Create(ctx context.Context, email, password, role string, cost int) (string, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id string) (model.User, error)
	UpdateProfile(ctx context.Context, id, name, phone, address string) error
}

// TokenStore persists refresh token hashes.
type TokenStore interface {
	StoreRefresh(ctx context.Context, userID, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (string, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID string) error
}

// AuthSettings carries the token and hashing parameters from config.
type AuthSettings struct {
	JWTSecret      string
	AccessTTLMin   int
	RefreshTTLDays int
	BcryptCost     int
}

// AuthHandler bundles dependencies for auth and profile endpoints.
type AuthHandler struct {
	cfg    AuthSettings
	users  UserStore
	tokens TokenStore
	log    *zap.Logger
}

func NewAuthHandler(cfg AuthSettings, u UserStore, t TokenStore, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{cfg: cfg, users: u, tokens: t, log: log}
}

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}
type loginReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}
type profileReq struct {
	Name    string `json:"name" validate:"required,max=120"`
	Phone   string `json:"phone" validate:"required,max=32"`
	Address string `json:"address" validate:"required,max=255"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}
type profileResp struct {
	ID              string `json:"id"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	Name            string `json:"name"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
	ProfileComplete bool   `json:"profileComplete"`
}

func toProfile(u model.User) profileResp {
	return profileResp{
		ID:              u.ID,
		Email:           u.Email,
		Role:            u.Role,
		Name:            u.Name,
		Phone:           u.Phone,
		Address:         u.Address,
		ProfileComplete: u.ProfileComplete(),
	}
}

// issue creates and stores a fresh access/refresh pair for u.
func (h *AuthHandler) issue(ctx context.Context, u userPart) (authResp, error) {
	access, err := utils.NewAccessToken(h.cfg.JWTSecret, u.ID, u.Role, h.cfg.AccessTTLMin)
	if err != nil {
		return authResp{}, err
	}
	refresh, err := utils.NewRefreshToken(h.cfg.RefreshTTLDays)
	if err != nil {
		return authResp{}, err
	}
	if err := h.tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return authResp{}, err
	}
	return authResp{
		User:    u,
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	}, nil
}

// Register creates a USER account and returns tokens immediately.  Admin
// accounts are only ever created by the startup bootstrap.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if msg, ok := bindAndValidate(c, &req); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := requestContext(c)
	defer cancel()

	uid, err := h.users.Create(ctx, email, req.Password, model.RoleUser, h.cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		h.log.Error("create user failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	resp, err := h.issue(ctx, userPart{ID: uid, Email: email, Role: model.RoleUser})
	if err != nil {
		h.log.Error("issue tokens failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	return c.JSON(http.StatusCreated, resp)
}

// Login verifies credentials and returns a new pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if msg, ok := bindAndValidate(c, &req); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.VerifyPassword("", req.Password)
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		h.log.Error("load user failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	resp, err := h.issue(ctx, userPart{ID: u.ID, Email: u.Email, Role: u.Role})
	if err != nil {
		h.log.Error("issue tokens failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	return c.JSON(http.StatusOK, resp)
}

// Refresh validates by hash, revokes the old token and issues a new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := requestContext(c)
	defer cancel()

	userID, err := h.tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	if err := h.tokens.RevokeByHash(ctx, hash); err != nil {
		h.log.Warn("revoke refresh failed", zap.String("user_id", userID), zap.Error(err))
	}
	u, err := h.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	resp, err := h.issue(ctx, userPart{ID: u.ID, Email: u.Email, Role: u.Role})
	if err != nil {
		h.log.Error("issue tokens failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	return c.JSON(http.StatusOK, resp)
}

// Logout revokes either the refresh token in the body, or every refresh
// token of the bearer when no body token is given.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	refreshToken := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := requestContext(c)
	defer cancel()

	if refreshToken != "" {
		hash := utils.HashRefreshRaw(refreshToken)
		if _, err := h.tokens.ValidateRefresh(ctx, hash); err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
		}
		if err := h.tokens.RevokeByHash(ctx, hash); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
		}
		return c.NoContent(http.StatusNoContent)
	}

	auth := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "provide Authorization header or refresh_token"})
	}
	claims, err := utils.ParseAccessToken(h.cfg.JWTSecret, strings.TrimPrefix(auth, "Bearer "))
	if err != nil {
		return unauthorized(c)
	}
	if err := h.tokens.RevokeAllForUser(ctx, claims.UserID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated user's account and profile.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	u, err := h.users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusOK, toProfile(u))
}

// UpdateProfile handles PUT /v1/me/profile.  All three fields are required
// so a successful update always leaves the profile complete.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req profileReq
	if msg, ok := bindAndValidate(c, &req); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Phone) == "" || strings.TrimSpace(req.Address) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, phone and address must not be blank"})
	}

	ctx, cancel := requestContext(c)
	defer cancel()
	if err := h.users.UpdateProfile(ctx, uid, req.Name, req.Phone, req.Address); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		h.log.Error("update profile failed", zap.String("user_id", uid), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update profile failed"})
	}
	return h.Me(c)
}
