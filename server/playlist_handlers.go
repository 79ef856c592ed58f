package server

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"Tunelist/logger"
	"Tunelist/model"
	"Tunelist/repository"

	"github.com/gorilla/mux"
)

// maxPlaylistNameLength matches the playlists.name column.
const maxPlaylistNameLength = 255

type createPlaylistRequest struct {
	Name string `json:"name"`
}

type addTrackRequest struct {
	TrackID string `json:"track_id"`
}

// callerID returns the authenticated user, answering 401 itself when there is none.
func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "access token required"})
		return "", false
	}
	return userID, true
}

// GetPlaylistsHandler returns the caller's playlists, newest first with tracks expanded.
func (h *APIHandler) GetPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	playlists, err := h.playlists.ListByUser(r.Context(), userID)
	if err != nil {
		h.writeStoreError(w, r, "failed to fetch playlists", err)
		return
	}
	if playlists == nil {
		playlists = []model.Playlist{}
	}
	writeSuccess(w, http.StatusOK, playlists, "")
}

// CreatePlaylistHandler 创建歌单
func (h *APIHandler) CreatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req createPlaylistRequest
	if err := bindRequest(r, &req); err != nil {
		writeBindError(w, err)
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeFailure(w, http.StatusBadRequest, "playlist name is required")
		return
	}
	if utf8.RuneCountInString(name) > maxPlaylistNameLength {
		writeFailure(w, http.StatusBadRequest, "playlist name is too long")
		return
	}

	playlist := &model.Playlist{Name: name, UserID: userID}
	if err := h.playlists.Create(r.Context(), playlist); err != nil {
		h.writeStoreError(w, r, "failed to create playlist", err)
		return
	}

	if playlist.PlaylistTracks == nil {
		playlist.PlaylistTracks = []model.PlaylistTrack{}
	}

	logger.Info("[Playlist] 创建歌单", logger.String("playlistId", playlist.ID), logger.String("userId", userID))
	writeSuccess(w, http.StatusCreated, playlist, "playlist created")
}

// AddTrackToPlaylistHandler 添加歌曲到歌单
func (h *APIHandler) AddTrackToPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	playlistID := mux.Vars(r)["id"]

	var req addTrackRequest
	if err := bindRequest(r, &req); err != nil {
		writeBindError(w, err)
		return
	}
	trackID := strings.TrimSpace(req.TrackID)
	if trackID == "" {
		writeFailure(w, http.StatusBadRequest, "track_id is required")
		return
	}

	// missing and not-owned are both 404
	playlist, err := h.playlists.GetOwned(r.Context(), playlistID, userID)
	if err != nil {
		h.writeStoreError(w, r, "failed to fetch playlist", err)
		return
	}
	if playlist == nil {
		writeFailure(w, http.StatusNotFound, "playlist not found")
		return
	}

	track, err := h.tracks.GetByID(r.Context(), trackID)
	if err != nil {
		h.writeStoreError(w, r, "failed to fetch track", err)
		return
	}
	if track == nil {
		writeFailure(w, http.StatusNotFound, "track not found")
		return
	}

	entry := &model.PlaylistTrack{PlaylistID: playlist.ID, TrackID: track.ID}
	if err := h.playlists.AddTrack(r.Context(), entry); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			writeFailure(w, http.StatusConflict, "track already in playlist")
			return
		}
		h.writeStoreError(w, r, "failed to add track to playlist", err)
		return
	}

	logger.Info("[Playlist] 添加歌曲",
		logger.String("playlistId", playlist.ID),
		logger.String("trackId", track.ID))
	writeSuccess(w, http.StatusCreated, entry, "track added to playlist")
}

// RemoveTrackFromPlaylistHandler removes a track from an owned playlist. Removing an
// absent track still succeeds.
func (h *APIHandler) RemoveTrackFromPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)
	playlistID, trackID := vars["id"], vars["trackId"]

	playlist, err := h.playlists.GetOwned(r.Context(), playlistID, userID)
	if err != nil {
		h.writeStoreError(w, r, "failed to fetch playlist", err)
		return
	}
	if playlist == nil {
		writeFailure(w, http.StatusNotFound, "playlist not found")
		return
	}

	if err := h.playlists.RemoveTrack(r.Context(), playlist.ID, trackID); err != nil {
		h.writeStoreError(w, r, "failed to remove track from playlist", err)
		return
	}
	writeSuccess(w, http.StatusOK, nil, "track removed from playlist")
}

// DeletePlaylistHandler deletes an owned playlist. The delete itself is scoped by owner,
// so there is no separate ownership check; zero rows affected means missing or not owned.
func (h *APIHandler) DeletePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	playlistID := mux.Vars(r)["id"]

	deleted, err := h.playlists.DeleteOwned(r.Context(), playlistID, userID)
	if err != nil {
		h.writeStoreError(w, r, "failed to delete playlist", err)
		return
	}
	if deleted == 0 {
		writeFailure(w, http.StatusNotFound, "playlist not found")
		return
	}

	logger.Info("[Playlist] 删除歌单", logger.String("playlistId", playlistID), logger.String("userId", userID))
	writeSuccess(w, http.StatusOK, nil, "playlist deleted")
}
