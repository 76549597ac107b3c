package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/DJaayy/slot-booking/internal/model"
	"github.com/DJaayy/slot-booking/internal/repository"
	"github.com/DJaayy/slot-booking/internal/utils"
)

// AuthHandler implements registration and login. Sessions are plain
// HS256 access tokens; the booking tool runs on an internal network
// and auth only exists to attribute bookings and gate template
// management behind the ADMIN role.
type AuthHandler struct {
	Store        repository.Store
	JWTSecret    string
	AccessTTLMin int
	BcryptCost   int
	Log          *zap.Logger
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(store repository.Store, secret string, ttlMin, bcryptCost int, log *zap.Logger) *AuthHandler {
	if store == nil {
		panic("nil store passed to NewAuthHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{Store: store, JWTSecret: secret, AccessTTLMin: ttlMin, BcryptCost: bcryptCost, Log: log}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register handles POST /api/auth/register. New accounts always get
// the MEMBER role; admins are promoted out of band.
func (h *AuthHandler) Register(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username and password are required"})
	}
	hash, err := utils.HashPassword(req.Password, h.BcryptCost)
	if err != nil {
		h.Log.Error("failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	u := model.User{
		Username:     req.Username,
		PasswordHash: hash,
		Role:         model.RoleMember,
	}
	if err := h.Store.CreateUser(c.Request().Context(), &u); err != nil {
		return writeStoreError(c, err)
	}
	return c.JSON(http.StatusCreated, u)
}

// Login handles POST /api/auth/login and answers with a signed
// access token. Unknown users and wrong passwords are
// indistinguishable in the response.
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	u, err := h.Store.GetUserByUsername(c.Request().Context(), req.Username)
	if err != nil || !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	tok, err := utils.NewAccessToken(h.JWTSecret, u.ID, u.Role, h.AccessTTLMin)
	if err != nil {
		h.Log.Error("failed to sign access token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access_token": tok.Token,
		"expires_at":   tok.Exp.Format(time.RFC3339),
		"user":         u,
	})
}

// Me handles GET /api/me behind JWTAuth and echoes the identity
// claims of the presented token.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"user_id": c.Get("user_id"),
		"role":    c.Get("role"),
	})
}
