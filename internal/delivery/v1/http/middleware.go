package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/DRSN-tech/cashier-backend/internal/usecase"
	"github.com/DRSN-tech/cashier-backend/pkg/e"
	"github.com/DRSN-tech/cashier-backend/pkg/logger"
	"github.com/go-chi/chi/v5/middleware"
)

type claimsCtxKey struct{}

// ClaimsFromContext возвращает данные токена, положенные AuthMiddleware.
func ClaimsFromContext(ctx context.Context) *usecase.AuthClaims {
	claims, _ := ctx.Value(claimsCtxKey{}).(*usecase.AuthClaims)
	return claims
}

// AuthMiddleware пропускает только запросы с действующим Bearer-токеном.
func AuthMiddleware(authUC usecase.AuthUC, logger logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				WriteError(w, e.ErrUnauthorized)
				return
			}

			claims, err := authUC.Verify(r.Context(), token)
			if err != nil {
				logger.Debugf("token rejected: %v", err)
				WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsCtxKey{}, claims)))
		})
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}

// AccessLog пишет одну строку на запрос через logger.Logger.
func AccessLog(logger logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Infof("%s %s status=%d bytes=%d duration=%v request_id=%s",
				r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(), time.Since(start), middleware.GetReqID(r.Context()))
		})
	}
}
