package middleware

import (
	"net/http"
	"strconv"

	"string-analyzer/pkg/auth"
	pkgerrors "string-analyzer/pkg/errors"

	"go.uber.org/zap"
)

// RateLimit rejects clients that exceed their request budget with 429
func RateLimit(limiter auth.RateLimiter, perMinute int, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := getClientIP(r)

			allowed, err := limiter.Allow(r.Context(), "ip:"+clientIP)
			if err != nil {
				// Fail open on limiter errors.
				logger.Error("Rate limiter error", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				w.Header().Set("Retry-After", "60")
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(perMinute))
				errorHandler.Handle(w, r, pkgerrors.NewRateLimitError(perMinute, "minute"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
