package server

import (
	"encoding/json"
	"net/http"

	"Tunelist/logger"
)

// apiResponse is the envelope every resource handler answers with.
type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// errorBody is used by the guard, the 404 fallback and panic recovery, which answer
// without the success envelope.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Warn("写入响应失败", logger.ErrorField(err))
	}
}

func writeSuccess(w http.ResponseWriter, status int, data interface{}, message string) {
	writeJSON(w, status, apiResponse{Success: true, Data: data, Message: message})
}

func writeFailure(w http.ResponseWriter, status int, errMsg string) {
	writeJSON(w, status, apiResponse{Success: false, Error: errMsg})
}

// writeStoreError answers 500 for a failed store call. The underlying error text is only
// exposed in development mode.
func (h *APIHandler) writeStoreError(w http.ResponseWriter, r *http.Request, errMsg string, err error) {
	logger.Error(errMsg,
		logger.String("method", r.Method),
		logger.String("path", r.URL.Path),
		logger.ErrorField(err))

	resp := apiResponse{Success: false, Error: errMsg}
	if h.cfg.IsDevelopment() {
		resp.Message = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, resp)
}
