package middleware

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ShabiDHM/advocatus-sub001/pkg/auth"
	pkgerrors "github.com/ShabiDHM/advocatus-sub001/pkg/errors"
)

// Authenticate validates the bearer token of every request and stores the
// caller in the request context. A nil validator lets every request through.
func Authenticate(validator *auth.JWTValidator, errs *pkgerrors.ErrorHandler, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if validator == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				errs.Handle(w, r, pkgerrors.NewUnauthorizedError("missing authorization header"))
				return
			}

			claims, err := validator.ValidateToken(header)
			if err != nil {
				logger.Debug("Rejected token",
					zap.String("path", r.URL.Path),
					zap.Error(err))
				errs.Handle(w, r, pkgerrors.NewUnauthorizedError(authMessage(err)))
				return
			}

			ctx := auth.SetUserInContext(r.Context(), &auth.UserContext{
				UserID: claims.UserID,
				Email:  claims.Email,
				Roles:  claims.Roles,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "token has expired"
	case errors.Is(err, auth.ErrMissingToken):
		return "missing authentication token"
	default:
		return "invalid token"
	}
}
