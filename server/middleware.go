package server

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"Tunelist/logger"
	"Tunelist/storage"

	"github.com/gorilla/handlers"
	"go.uber.org/zap"
)

// maxRequestBodySize leaves room for multipart overhead around the largest cover.
const maxRequestBodySize = storage.MaxCoverSize + 1<<20

// recoveryMiddleware is the terminal error handler: a panicking handler becomes a 500.
func recoveryMiddleware(devMode bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.Error("处理请求时发生 panic",
					logger.String("method", r.Method),
					logger.String("path", r.URL.Path),
					logger.Any("panic", rec),
					zap.Stack("stack"))

				body := errorBody{Error: "something went wrong", Message: "internal server error"}
				if devMode {
					body.Message = fmt.Sprint(rec)
				}
				writeJSON(w, http.StatusInternalServerError, body)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// securityHeaders sets a helmet-style set of response headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		h.Set("Cross-Origin-Opener-Policy", "same-origin")
		h.Set("Cross-Origin-Resource-Policy", "same-site")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Strict-Transport-Security", "max-age=15552000; includeSubDomains")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-DNS-Prefetch-Control", "off")
		h.Set("X-Frame-Options", "SAMEORIGIN")
		h.Set("X-XSS-Protection", "0")
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware allows the configured frontend origin with credentials.
func corsMiddleware(frontendURL string) func(http.Handler) http.Handler {
	return handlers.CORS(
		handlers.AllowedOrigins([]string{frontendURL}),
		handlers.AllowCredentials(),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		handlers.ExposedHeaders([]string{"Content-Length"}),
		handlers.MaxAge(600),
	)
}

// requestLogger writes one structured line per request through zap.
func requestLogger(next http.Handler) http.Handler {
	return handlers.CustomLoggingHandler(io.Discard, next, func(_ io.Writer, p handlers.LogFormatterParams) {
		fields := []zap.Field{
			logger.String("method", p.Request.Method),
			logger.String("path", p.URL.Path),
			logger.Int("status", p.StatusCode),
			logger.Int("size", p.Size),
			logger.Duration("latency", time.Since(p.TimeStamp)),
			logger.String("remote", p.Request.RemoteAddr),
			logger.String("userAgent", p.Request.UserAgent()),
		}
		switch {
		case p.StatusCode >= http.StatusInternalServerError:
			logger.Error("HTTP请求", fields...)
		case p.StatusCode >= http.StatusBadRequest:
			logger.Warn("HTTP请求", fields...)
		default:
			logger.Info("HTTP请求", fields...)
		}
	})
}

// bodyLimit caps every request body; reads past the limit fail with *http.MaxBytesError.
func bodyLimit(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
