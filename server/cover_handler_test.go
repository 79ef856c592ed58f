package server

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func coverRequest(t *testing.T, field string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, "cover.png")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	part.Write(content)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/covers", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer alice-token")
	return req
}

func TestUploadCover(t *testing.T) {
	t.Run("Upload Then Fetch", func(t *testing.T) {
		env := newTestEnv(t)
		content := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 600)...)

		rec := serve(env, coverRequest(t, "cover", content))
		expectStatus(t, rec, http.StatusCreated)
		data := dataOf(t, rec)
		key, _ := data["key"].(string)
		if !strings.HasSuffix(key, ".png") || data["url"] != "/covers/"+key {
			t.Fatalf("unexpected upload response %v", data)
		}

		rec = env.do(http.MethodGet, "/covers/"+key, "", "")
		expectStatus(t, rec, http.StatusOK)
		if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
			t.Errorf("expected image/png, got %q", ct)
		}
		if !bytes.Equal(rec.Body.Bytes(), content) {
			t.Error("served bytes differ from the upload")
		}

		// the uploaded URL is accepted as a track cover
		rec = env.do(http.MethodPost, "/api/tracks", jsonf(`{"title":"Let It Be","artist":"The Beatles","duration":243,"album_cover":%q}`, "/covers/"+key), "alice-token")
		expectStatus(t, rec, http.StatusCreated)
	})

	t.Run("Rejections", func(t *testing.T) {
		env := newTestEnv(t)

		rec := serve(env, coverRequest(t, "image", pngHeader))
		expectError(t, rec, http.StatusBadRequest, "cover file is required")

		rec = serve(env, coverRequest(t, "cover", []byte("just some text")))
		expectError(t, rec, http.StatusUnsupportedMediaType, "unsupported image type")

		req := coverRequest(t, "cover", pngHeader)
		req.Header.Del("Authorization")
		rec = serve(env, req)
		expectError(t, rec, http.StatusUnauthorized, "access token required")

		if len(env.covers.objects) != 0 {
			t.Errorf("nothing should be stored, got %d objects", len(env.covers.objects))
		}
	})

	t.Run("Store Failure", func(t *testing.T) {
		env := newTestEnv(t)
		env.covers.err = errors.New("bucket missing")

		rec := serve(env, coverRequest(t, "cover", pngHeader))
		expectError(t, rec, http.StatusInternalServerError, "failed to upload cover")
	})
}

func TestGetCover(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/covers/not-a-key.png", "", "")
	expectError(t, rec, http.StatusNotFound, "cover not found")

	rec = env.do(http.MethodGet, "/covers/0b8f3d52-6d2c-4f0e-9d0a-2f1f0c1b2a3c.png", "", "")
	expectError(t, rec, http.StatusNotFound, "cover not found")
}

func TestCoverRoutesDisabled(t *testing.T) {
	env := newTestEnv(t)
	h := NewAPIHandler(env.cfg, env.tracks, env.playlists, env.identity, nil)
	handler := NewRouter(h)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, coverRequest(t, "cover", pngHeader))
	expectError(t, rec, http.StatusNotFound, "route not found")
}
