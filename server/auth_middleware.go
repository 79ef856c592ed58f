package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"Tunelist/core/auth"
	"Tunelist/logger"
	"Tunelist/model"
)

type contextKey string

const identityKey contextKey = "identity"

// AuthMiddleware resolves the bearer token to an identity and stores it in the request
// context. It performs no business logic.
func (h *APIHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "access token required"})
			return
		}

		identity, err := h.identity.VerifyToken(r.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidToken) {
				logger.Debug("[Auth] token 校验失败", logger.ErrorField(err))
				writeJSON(w, http.StatusForbidden, errorBody{Error: "invalid token"})
				return
			}
			logger.Error("[Auth] 身份服务不可用", logger.ErrorField(err))
			writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
			return
		}
		if identity == nil {
			writeJSON(w, http.StatusForbidden, errorBody{Error: "invalid token"})
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	}
}

// bearerToken splits the Authorization header on whitespace and takes the second segment.
func bearerToken(r *http.Request) string {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// WithIdentity returns a copy of ctx carrying the caller's identity.
func WithIdentity(ctx context.Context, identity *model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext returns the identity stored by AuthMiddleware.
func IdentityFromContext(ctx context.Context) (*model.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*model.Identity)
	return identity, ok && identity != nil
}

// GetUserIDFromContext extracts the user ID from the request context
func GetUserIDFromContext(ctx context.Context) (string, error) {
	identity, ok := IdentityFromContext(ctx)
	if !ok {
		return "", fmt.Errorf("user ID not found in context")
	}
	return identity.ID, nil
}
