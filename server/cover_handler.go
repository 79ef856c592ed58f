package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"Tunelist/logger"
	"Tunelist/storage"

	"github.com/gorilla/mux"
)

type coverResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// UploadCoverHandler stores an image from the multipart field "cover" and returns the
// URL to use as a track's album_cover.
func (h *APIHandler) UploadCoverHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		writeBindError(w, wrapBodyError(err))
		return
	}

	file, header, err := r.FormFile("cover")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "cover file is required")
		return
	}
	defer file.Close()

	if header.Size > storage.MaxCoverSize {
		writeFailure(w, http.StatusRequestEntityTooLarge, "cover must be at most 5 MiB")
		return
	}

	// 根据文件内容判断类型，不信任客户端的 Content-Type
	sniff := make([]byte, 512)
	n, err := io.ReadFull(file, sniff)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		writeFailure(w, http.StatusBadRequest, "failed to read cover file")
		return
	}
	contentType := http.DetectContentType(sniff[:n])
	if _, ok := storage.CoverExtension(contentType); !ok {
		writeFailure(w, http.StatusUnsupportedMediaType, "unsupported image type")
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		writeFailure(w, http.StatusBadRequest, "failed to read cover file")
		return
	}

	key, err := h.covers.PutCover(r.Context(), file, header.Size, contentType)
	if err != nil {
		h.writeStoreError(w, r, "failed to upload cover", err)
		return
	}

	logger.Info("[Cover] 上传封面", logger.String("key", key), logger.Int64("size", header.Size))
	writeSuccess(w, http.StatusCreated, coverResponse{Key: key, URL: "/covers/" + key}, "cover uploaded")
}

// GetCoverHandler streams a stored cover back to the client.
func (h *APIHandler) GetCoverHandler(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	if !storage.IsValidCoverKey(key) {
		writeFailure(w, http.StatusNotFound, "cover not found")
		return
	}

	object, err := h.covers.GetCover(r.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			writeFailure(w, http.StatusNotFound, "cover not found")
			return
		}
		h.writeStoreError(w, r, "failed to fetch cover", err)
		return
	}
	defer object.Close()

	w.Header().Set("Content-Type", object.ContentType)
	if object.Size >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(object.Size, 10))
	}
	w.Header().Set("Cache-Control", "public, max-age=31536000") // 缓存一年
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, object); err != nil {
		logger.Warn("[Cover] 传输封面失败", logger.String("key", key), logger.ErrorField(err))
	}
}
