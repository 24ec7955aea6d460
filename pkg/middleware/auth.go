package middleware

import (
	"errors"
	"net/http"
	"strings"

	"finance-tracker/internal/usecase"
	"finance-tracker/pkg/metrics"
	"finance-tracker/pkg/utils"

	"go.uber.org/zap"
)

// Authenticate runs the access guard on the bearer token and stores the
// principal's user id, user name and session id in the request context.
func Authenticate(guard usecase.AccessGuard, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := guard.Authenticate(r.Context(), utils.BearerToken(r))
			if err != nil {
				kind := usecase.KindOf(err)
				metrics.AuthEvents.WithLabelValues("authenticate", strings.ToLower(string(kind))).Inc()

				var uerr *usecase.Error
				if kind == usecase.KindInternal || !errors.As(err, &uerr) {
					logger.Error("Failed to authenticate request", zap.Error(err), zap.String("path", r.URL.Path))
					utils.ResponseInternalError(w, "Internal server error")
					return
				}

				logger.Debug("Request rejected", zap.String("kind", string(kind)), zap.String("path", r.URL.Path))
				utils.ResponseError(w, kind.Status(), string(kind), uerr.Message, nil)
				return
			}

			ctx := utils.SetUserContext(r.Context(), principal.User.ID, principal.User.UserName)
			ctx = utils.SetSessionContext(ctx, principal.SessionID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
