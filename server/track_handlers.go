package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"Tunelist/logger"
	"Tunelist/model"

	"github.com/gorilla/mux"
)

// DefaultTrackLimit is the page size used when the request has no limit.
const DefaultTrackLimit = 50

type createTrackRequest struct {
	Title      string      `json:"title"`
	Artist     string      `json:"artist"`
	Duration   json.Number `json:"duration"`
	AlbumCover string      `json:"album_cover"`
}

// GetTracksHandler lists tracks. Query: search, limit (default 50), offset (default 0).
func (h *APIHandler) GetTracksHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", DefaultTrackLimit)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	if limit == 0 {
		writeFailure(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	tracks, err := h.tracks.List(r.Context(), model.TrackFilter{
		Search: r.URL.Query().Get("search"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.writeStoreError(w, r, "failed to fetch tracks", err)
		return
	}
	if tracks == nil {
		tracks = []model.Track{}
	}
	writeSuccess(w, http.StatusOK, tracks, "")
}

// GetTrackHandler returns one track by id.
func (h *APIHandler) GetTrackHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	track, err := h.tracks.GetByID(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, r, "failed to fetch track", err)
		return
	}
	if track == nil {
		writeFailure(w, http.StatusNotFound, "track not found")
		return
	}
	writeSuccess(w, http.StatusOK, track, "")
}

// CreateTrackHandler adds a track to the catalog.
func (h *APIHandler) CreateTrackHandler(w http.ResponseWriter, r *http.Request) {
	var req createTrackRequest
	if err := bindRequest(r, &req); err != nil {
		writeBindError(w, err)
		return
	}

	title := strings.TrimSpace(req.Title)
	artist := strings.TrimSpace(req.Artist)
	durationRaw := strings.TrimSpace(req.Duration.String())
	// a zero duration counts as missing
	if title == "" || artist == "" || durationRaw == "" || durationRaw == "0" {
		writeFailure(w, http.StatusBadRequest, "title, artist and duration are required")
		return
	}
	duration, err := parsePositiveInt(req.Duration)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "duration must be a positive integer")
		return
	}
	albumCover := strings.TrimSpace(req.AlbumCover)
	if albumCover != "" && !isValidCoverURL(albumCover) {
		writeFailure(w, http.StatusBadRequest, "album_cover must be a valid URL")
		return
	}

	track := &model.Track{
		Title:      title,
		Artist:     artist,
		Duration:   duration,
		AlbumCover: albumCover,
	}
	if err := h.tracks.Create(r.Context(), track); err != nil {
		h.writeStoreError(w, r, "failed to create track", err)
		return
	}

	logger.Info("[Track] 创建歌曲", logger.String("trackId", track.ID), logger.String("title", track.Title))
	writeSuccess(w, http.StatusCreated, track, "track created")
}

// DeleteTrackHandler removes a track unconditionally. A missing track is still a success.
func (h *APIHandler) DeleteTrackHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.tracks.Delete(r.Context(), id); err != nil {
		h.writeStoreError(w, r, "failed to delete track", err)
		return
	}

	logger.Info("[Track] 删除歌曲", logger.String("trackId", id))
	writeSuccess(w, http.StatusOK, nil, "track deleted")
}

// isValidCoverURL accepts absolute http(s) URLs and the root-relative paths the cover
// upload endpoint hands out.
func isValidCoverURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme == "" {
		return u.Host == "" && strings.HasPrefix(u.Path, "/")
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
