package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/beadworks/storeadmin/internal/auth"
	"github.com/beadworks/storeadmin/internal/config"
	"github.com/beadworks/storeadmin/internal/domain/user"
	"github.com/beadworks/storeadmin/internal/http/middlewares"
	authsvc "github.com/beadworks/storeadmin/internal/service/auth"
	"github.com/gin-gonic/gin"
)

// AuthService is what the handler needs from the auth core.
type AuthService interface {
	Signup(ctx context.Context, req user.SignupRequest) (user.User, error)
	Login(ctx context.Context, req user.LoginRequest) (user.User, authsvc.TokenPair, error)
	CurrentUser(ctx context.Context, id int64) (user.User, error)
	ValidateRefreshToken(ctx context.Context, raw string) (user.User, error)
	RefreshTokens(ctx context.Context, raw string) (user.User, authsvc.TokenPair, error)
	Logout(ctx context.Context, userID int64) error
}

// TokenDecoder reads claims out of a token without verifying the
// signature, used only to identify whose session to clear at logout.
type TokenDecoder interface {
	DecodeUnverified(raw string) (*auth.Claims, error)
}

type AuthHandler struct {
	svc     AuthService
	decoder TokenDecoder
	cfg     config.Config
}

func NewAuthHandler(svc AuthService, decoder TokenDecoder, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		svc:     svc,
		decoder: decoder,
		cfg:     cfg,
	}
}

func (h *AuthHandler) Signup(ctx *gin.Context) {
	var req user.SignupRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	created, err := h.svc.Signup(cctx, req)

	if err != nil {
		if errors.Is(err, authsvc.ErrEmailTaken) {
			RespondConflict(ctx, "email_taken", "Email is already in use.")
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	ctx.JSON(http.StatusCreated, created.Profile())
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	u, pair, err := h.svc.Login(cctx, req)

	if err != nil {
		if errors.Is(err, authsvc.ErrInvalidCredentials) || errors.Is(err, authsvc.ErrLoginNotAllowed) {
			RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
			return
		}

		RespondInternal(ctx, "Could not log in")
		return
	}

	h.setAuthCookies(ctx, pair)

	ctx.JSON(http.StatusOK, gin.H{
		"message":     "Logged in successfully",
		"user":        u.Profile(),
		"accessToken": pair.AccessToken,
	})
}

func (h *AuthHandler) CurrentUser(ctx *gin.Context) {
	id, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	u, err := h.svc.CurrentUser(cctx, id)

	if err != nil {
		if errors.Is(err, authsvc.ErrUserNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not load user")
		return
	}

	ctx.JSON(http.StatusOK, u.Profile())
}

func (h *AuthHandler) Refresh(ctx *gin.Context) {
	raw, ok := h.refreshTokenFrom(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "no_refresh", "Missing refresh token")
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	u, pair, err := h.svc.RefreshTokens(cctx, raw)

	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrRefreshExpired):
			h.clearAuthCookies(ctx)
			RespondUnAuthorized(ctx, "expired_refresh", "Refresh token expired")
		case errors.Is(err, authsvc.ErrInvalidRefreshToken):
			h.clearAuthCookies(ctx)
			RespondUnAuthorized(ctx, "invalid_refresh", "Invalid refresh token")
		default:
			RespondInternal(ctx, "Could not refresh session")
		}
		return
	}

	h.setAuthCookies(ctx, pair)

	ctx.JSON(http.StatusOK, gin.H{
		"user":        u.Profile(),
		"accessToken": pair.AccessToken,
	})
}

// ValidateRefreshToken reports whether the presented refresh token still
// matches the stored session. It never rotates.
func (h *AuthHandler) ValidateRefreshToken(ctx *gin.Context) {
	raw, ok := h.refreshTokenFrom(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "no_refresh", "Missing refresh token")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	u, err := h.svc.ValidateRefreshToken(cctx, raw)

	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrRefreshExpired):
			RespondUnAuthorized(ctx, "expired_refresh", "Refresh token expired")
		case errors.Is(err, authsvc.ErrInvalidRefreshToken):
			RespondUnAuthorized(ctx, "invalid_refresh", "Invalid refresh token")
		default:
			RespondInternal(ctx, "Could not validate refresh token")
		}
		return
	}

	ctx.JSON(http.StatusOK, u.Profile())
}

// Logout identifies the session from the access cookie without verifying
// the signature, so an expired access token can still end its session.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	raw, err := ctx.Cookie(middlewares.AccessCookieName)

	if err != nil || raw == "" {
		RespondBadRequest(ctx, "Missing access token", nil)
		return
	}

	claims, err := h.decoder.DecodeUnverified(raw)
	if err != nil {
		RespondBadRequest(ctx, "Malformed access token", nil)
		return
	}

	id, err := claims.UserID()
	if err != nil {
		RespondBadRequest(ctx, "Malformed access token", nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	if err := h.svc.Logout(cctx, id); err != nil && !errors.Is(err, authsvc.ErrUserNotFound) {
		RespondInternal(ctx, "Could not log out")
		return
	}

	h.clearAuthCookies(ctx)
	ctx.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// ClearTokens drops the cookies without touching stored state. Useful when
// the client is stuck with cookies for a deleted account.
func (h *AuthHandler) ClearTokens(ctx *gin.Context) {
	h.clearAuthCookies(ctx)
	ctx.JSON(http.StatusOK, gin.H{"message": "Tokens cleared"})
}

// Helper functions

func (h *AuthHandler) refreshTokenFrom(ctx *gin.Context) (string, bool) {
	return middlewares.CookieTokenSource{Name: middlewares.RefreshCookieName}.Token(ctx)
}

func (h *AuthHandler) setAuthCookies(ctx *gin.Context, pair authsvc.TokenPair) {
	secure := h.cfg.Env == "prod"

	ctx.SetSameSite(http.SameSiteStrictMode)

	ctx.SetCookie(
		middlewares.AccessCookieName,
		pair.AccessToken,
		int(time.Until(pair.AccessExpiresAt).Seconds()),
		"/",
		"",
		secure,
		true, // HttpOnly.
	)

	ctx.SetCookie(
		middlewares.RefreshCookieName,
		pair.RefreshToken,
		int(time.Until(pair.RefreshExpiresAt).Seconds()),
		"/",
		"",
		secure,
		true,
	)
}

func (h *AuthHandler) clearAuthCookies(ctx *gin.Context) {
	secure := h.cfg.Env == "prod"
	ctx.SetSameSite(http.SameSiteStrictMode)

	for _, name := range []string{middlewares.AccessCookieName, middlewares.RefreshCookieName} {
		ctx.SetCookie(name, "", -1, "/", "", secure, true)
	}
}
