package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/dayflow/dayflow-backend/internal/hr/jwt"
	"github.com/dayflow/dayflow-backend/internal/hr/repository"
	"github.com/dayflow/dayflow-backend/internal/hr/service"
	"github.com/dayflow/dayflow-backend/pkg/errors"
	"github.com/dayflow/dayflow-backend/pkg/httputil"
	"github.com/dayflow/dayflow-backend/pkg/logger"
)

type contextKey string

const sessionKey contextKey = "session"

// SessionFrom returns the signed-in user stored by Authenticate
func SessionFrom(ctx context.Context) (repository.Session, bool) {
	s, ok := ctx.Value(sessionKey).(repository.Session)
	return s, ok
}

// AuthHandler handles sign-in and bearer token checks
type AuthHandler struct {
	service    *service.AuthService
	jwtManager *jwt.Manager
	logger     *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(svc *service.AuthService, jwtManager *jwt.Manager, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		service:    svc,
		jwtManager: jwtManager,
		logger:     log,
	}
}

// SignIn exchanges credentials for a session token
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req service.SignInRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	resp, err := h.service.SignIn(r.Context(), req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, resp)
}

// Me returns the signed-in user
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	session, ok := SessionFrom(r.Context())
	if !ok {
		httputil.Error(w, errors.Unauthorized("not signed in"))
		return
	}
	httputil.JSON(w, http.StatusOK, session)
}

// Authenticate validates the bearer token and stores the session in the
// request context
func (h *AuthHandler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			httputil.Error(w, errors.Unauthorized("missing authorization header"))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			httputil.Error(w, errors.Unauthorized("invalid authorization header format"))
			return
		}

		claims, err := h.jwtManager.Validate(parts[1])
		if err != nil {
			h.logger.Debug().Err(err).Msg("token validation failed")
			httputil.Error(w, err)
			return
		}

		session := claims.Session()
		ctx := httputil.WithUserContext(r.Context(), session.ID, session.Email, string(session.Role))
		ctx = context.WithValue(ctx, sessionKey, session)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects sessions without the admin role
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isAdmin(r) {
			httputil.Error(w, errors.Forbidden("admin access required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// selfOrAdmin reports whether the caller may act on employeeID
func selfOrAdmin(r *http.Request, employeeID string) bool {
	return isAdmin(r) || httputil.GetUserID(r.Context()) == employeeID
}

func isAdmin(r *http.Request) bool {
	return httputil.GetUserRole(r.Context()) == string(repository.RoleAdmin)
}
