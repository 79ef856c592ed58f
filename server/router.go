package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter mounts every route and wraps the router in the middleware chain. From the
// outside in: recovery, security headers, CORS, request logging, body limit.
func NewRouter(h *APIHandler) http.Handler {
	router := mux.NewRouter()

	// 歌曲
	trackWrite := func(next http.HandlerFunc) http.HandlerFunc { return next }
	if h.cfg.TrackWritesRequireAuth {
		trackWrite = h.AuthMiddleware
	}
	router.HandleFunc("/api/tracks", h.GetTracksHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/tracks", trackWrite(h.CreateTrackHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/tracks/{id}", h.GetTrackHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/tracks/{id}", trackWrite(h.DeleteTrackHandler)).Methods(http.MethodDelete)

	// 歌单，均按所有者隔离
	router.HandleFunc("/api/playlists", h.AuthMiddleware(h.GetPlaylistsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/playlists", h.AuthMiddleware(h.CreatePlaylistHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/playlists/{id}", h.AuthMiddleware(h.DeletePlaylistHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/playlists/{id}/tracks", h.AuthMiddleware(h.AddTrackToPlaylistHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/playlists/{id}/tracks/{trackId}", h.AuthMiddleware(h.RemoveTrackFromPlaylistHandler)).Methods(http.MethodDelete)

	// 用户认证
	router.HandleFunc("/api/auth/register", h.RegisterHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/login", h.LoginHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/logout", h.LogoutHandler).Methods(http.MethodPost)

	// 封面，仅在配置了对象存储时挂载
	if h.covers != nil {
		router.HandleFunc("/api/covers", h.AuthMiddleware(h.UploadCoverHandler)).Methods(http.MethodPost)
		router.HandleFunc("/covers/{key}", h.GetCoverHandler).Methods(http.MethodGet)
	}

	router.HandleFunc("/api/health", h.HealthHandler).Methods(http.MethodGet)

	notFound := http.HandlerFunc(NotFoundHandler)
	router.NotFoundHandler = notFound
	router.MethodNotAllowedHandler = notFound

	var handler http.Handler = router
	handler = bodyLimit(maxRequestBodySize)(handler)
	handler = requestLogger(handler)
	handler = corsMiddleware(h.cfg.FrontendURL)(handler)
	handler = securityHeaders(handler)
	handler = recoveryMiddleware(h.cfg.IsDevelopment())(handler)
	return handler
}
