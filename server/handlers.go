package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"Tunelist/config"
	"Tunelist/model"
	"Tunelist/repository"
	"Tunelist/storage"
)

// IdentityService is the identity half of the backing data service.
type IdentityService interface {
	VerifyToken(ctx context.Context, token string) (*model.Identity, error)
	Register(ctx context.Context, email, password string) (*model.User, *model.Session, error)
	Login(ctx context.Context, email, password string) (*model.User, *model.Session, error)
	Logout(ctx context.Context, token string) error
}

// CoverStore holds uploaded cover art.
type CoverStore interface {
	PutCover(ctx context.Context, r io.Reader, size int64, contentType string) (string, error)
	GetCover(ctx context.Context, key string) (*storage.Object, error)
}

// APIHandler 处理所有API请求
type APIHandler struct {
	cfg       *config.Config
	tracks    repository.TrackRepository
	playlists repository.PlaylistRepository
	identity  IdentityService
	covers    CoverStore // nil when object storage is not configured
	now       func() time.Time
}

// NewAPIHandler 创建新的API处理器
func NewAPIHandler(
	cfg *config.Config,
	tracks repository.TrackRepository,
	playlists repository.PlaylistRepository,
	identity IdentityService,
	covers CoverStore,
) *APIHandler {
	return &APIHandler{
		cfg:       cfg,
		tracks:    tracks,
		playlists: playlists,
		identity:  identity,
		covers:    covers,
		now:       time.Now,
	}
}

// healthResponse is the liveness payload.
type healthResponse struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	Environment string `json:"environment"`
}

// HealthHandler reports liveness without touching any backing service.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:      "OK",
		Timestamp:   h.now().UTC().Format(time.RFC3339),
		Environment: h.cfg.Environment,
	})
}

// NotFoundHandler answers every unmatched method and path pair.
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorBody{Error: "route not found"})
}
