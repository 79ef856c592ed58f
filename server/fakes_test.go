package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"Tunelist/config"
	"Tunelist/core/auth"
	"Tunelist/model"
	"Tunelist/repository"
	"Tunelist/storage"

	"github.com/google/uuid"
)

type fakeTrackRepository struct {
	tracks     []*model.Track
	lastFilter model.TrackFilter
	err        error
}

func (f *fakeTrackRepository) List(ctx context.Context, filter model.TrackFilter) ([]model.Track, error) {
	f.lastFilter = filter
	if f.err != nil {
		return nil, f.err
	}
	result := []model.Track{}
	search := strings.ToLower(filter.Search)
	for _, t := range f.tracks {
		if search != "" && !strings.Contains(strings.ToLower(t.Title), search) && !strings.Contains(strings.ToLower(t.Artist), search) {
			continue
		}
		result = append(result, *t)
	}
	if filter.Offset >= len(result) {
		return []model.Track{}, nil
	}
	end := filter.Offset + filter.Limit
	if end > len(result) {
		end = len(result)
	}
	return result[filter.Offset:end], nil
}

func (f *fakeTrackRepository) GetByID(ctx context.Context, id string) (*model.Track, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, t := range f.tracks {
		if t.ID == id {
			copied := *t
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeTrackRepository) Create(ctx context.Context, track *model.Track) error {
	if f.err != nil {
		return f.err
	}
	track.ID = uuid.NewString()
	track.CreatedAt = time.Now().UTC()
	copied := *track
	f.tracks = append(f.tracks, &copied)
	return nil
}

func (f *fakeTrackRepository) Delete(ctx context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	kept := f.tracks[:0]
	for _, t := range f.tracks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	f.tracks = kept
	return nil
}

type fakePlaylistRepository struct {
	playlists map[string]*model.Playlist
	entries   []model.PlaylistTrack
	tracks    *fakeTrackRepository
	clock     time.Time
	err       error
}

func newFakePlaylistRepository(tracks *fakeTrackRepository) *fakePlaylistRepository {
	return &fakePlaylistRepository{
		playlists: make(map[string]*model.Playlist),
		tracks:    tracks,
		clock:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick hands out strictly increasing timestamps so ordering is deterministic.
func (f *fakePlaylistRepository) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fakePlaylistRepository) ListByUser(ctx context.Context, userID string) ([]model.Playlist, error) {
	if f.err != nil {
		return nil, f.err
	}
	result := []model.Playlist{}
	for _, p := range f.playlists {
		if p.UserID != userID {
			continue
		}
		copied := *p
		copied.PlaylistTracks = []model.PlaylistTrack{}
		for _, e := range f.entries {
			if e.PlaylistID == p.ID {
				track, _ := f.tracks.GetByID(ctx, e.TrackID)
				e.Track = track
				copied.PlaylistTracks = append(copied.PlaylistTracks, e)
			}
		}
		result = append(result, copied)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (f *fakePlaylistRepository) Create(ctx context.Context, playlist *model.Playlist) error {
	if f.err != nil {
		return f.err
	}
	playlist.ID = uuid.NewString()
	playlist.CreatedAt = f.tick()
	playlist.UpdatedAt = playlist.CreatedAt
	copied := *playlist
	f.playlists[playlist.ID] = &copied
	return nil
}

func (f *fakePlaylistRepository) GetOwned(ctx context.Context, id, userID string) (*model.Playlist, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.playlists[id]
	if !ok || p.UserID != userID {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (f *fakePlaylistRepository) AddTrack(ctx context.Context, entry *model.PlaylistTrack) error {
	if f.err != nil {
		return f.err
	}
	for _, e := range f.entries {
		if e.PlaylistID == entry.PlaylistID && e.TrackID == entry.TrackID {
			return repository.ErrDuplicate
		}
	}
	entry.ID = uuid.NewString()
	entry.AddedAt = f.tick()
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakePlaylistRepository) RemoveTrack(ctx context.Context, playlistID, trackID string) error {
	if f.err != nil {
		return f.err
	}
	kept := f.entries[:0]
	for _, e := range f.entries {
		if e.PlaylistID != playlistID || e.TrackID != trackID {
			kept = append(kept, e)
		}
	}
	f.entries = kept
	return nil
}

func (f *fakePlaylistRepository) DeleteOwned(ctx context.Context, id, userID string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	p, ok := f.playlists[id]
	if !ok || p.UserID != userID {
		return 0, nil
	}
	delete(f.playlists, id)
	return 1, nil
}

func (f *fakePlaylistRepository) countEntries(playlistID string) int {
	n := 0
	for _, e := range f.entries {
		if e.PlaylistID == playlistID {
			n++
		}
	}
	return n
}

type fakeIdentityService struct {
	tokens    map[string]*model.Identity
	passwords map[string]string
	revoked   []string
	verifyErr error
	logoutErr error
}

func newFakeIdentityService() *fakeIdentityService {
	return &fakeIdentityService{
		tokens: map[string]*model.Identity{
			"alice-token": {ID: "alice", Email: "alice@example.com"},
			"bob-token":   {ID: "bob", Email: "bob@example.com"},
		},
		passwords: make(map[string]string),
	}
}

func (f *fakeIdentityService) VerifyToken(ctx context.Context, token string) (*model.Identity, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	identity, ok := f.tokens[token]
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	return identity, nil
}

func (f *fakeIdentityService) session(user *model.User) *model.Session {
	token := "token-" + user.ID
	f.tokens[token] = &model.Identity{ID: user.ID, Email: user.Email}
	return &model.Session{AccessToken: token, TokenType: auth.TokenType, ExpiresAt: time.Now().Add(time.Hour).UTC()}
}

func (f *fakeIdentityService) Register(ctx context.Context, email, password string) (*model.User, *model.Session, error) {
	email = repository.NormalizeEmail(email)
	if len(password) < auth.MinPasswordLength {
		return nil, nil, auth.ErrWeakPassword
	}
	if len(password) > auth.MaxPasswordLength {
		return nil, nil, auth.ErrPasswordTooLong
	}
	if _, ok := f.passwords[email]; ok {
		return nil, nil, repository.ErrDuplicateUser
	}
	f.passwords[email] = password
	user := &model.User{ID: "user-" + email, Email: email, CreatedAt: time.Now().UTC()}
	return user, f.session(user), nil
}

func (f *fakeIdentityService) Login(ctx context.Context, email, password string) (*model.User, *model.Session, error) {
	email = repository.NormalizeEmail(email)
	if stored, ok := f.passwords[email]; !ok || stored != password {
		return nil, nil, auth.ErrInvalidCredentials
	}
	user := &model.User{ID: "user-" + email, Email: email}
	return user, f.session(user), nil
}

func (f *fakeIdentityService) Logout(ctx context.Context, token string) error {
	if f.logoutErr != nil {
		return f.logoutErr
	}
	if token != "" {
		delete(f.tokens, token)
		f.revoked = append(f.revoked, token)
	}
	return nil
}

type fakeCoverStore struct {
	objects map[string]*fakeObject
	err     error
}

type fakeObject struct {
	data        []byte
	contentType string
}

func (f *fakeCoverStore) PutCover(ctx context.Context, r io.Reader, size int64, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	ext, ok := storage.CoverExtension(contentType)
	if !ok {
		return "", storage.ErrUnsupportedImage
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	key := uuid.NewString() + ext
	f.objects[key] = &fakeObject{data: data, contentType: contentType}
	return key, nil
}

func (f *fakeCoverStore) GetCover(ctx context.Context, key string) (*storage.Object, error) {
	if f.err != nil {
		return nil, f.err
	}
	obj, ok := f.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return &storage.Object{
		ReadCloser:  io.NopCloser(bytes.NewReader(obj.data)),
		ContentType: obj.contentType,
		Size:        int64(len(obj.data)),
	}, nil
}

// testEnv bundles the router with the fakes behind it.
type testEnv struct {
	cfg       *config.Config
	tracks    *fakeTrackRepository
	playlists *fakePlaylistRepository
	identity  *fakeIdentityService
	covers    *fakeCoverStore
	handler   http.Handler
}

func newTestEnv(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	t.Helper()
	cfg := &config.Config{
		Port:                   "3001",
		Environment:            config.EnvDevelopment,
		FrontendURL:            "http://localhost:3000",
		TrackWritesRequireAuth: true,
	}
	for _, m := range mutate {
		m(cfg)
	}

	env := &testEnv{
		cfg:      cfg,
		tracks:   &fakeTrackRepository{},
		identity: newFakeIdentityService(),
		covers:   &fakeCoverStore{objects: make(map[string]*fakeObject)},
	}
	env.playlists = newFakePlaylistRepository(env.tracks)

	h := NewAPIHandler(cfg, env.tracks, env.playlists, env.identity, env.covers)
	h.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }
	env.handler = NewRouter(h)
	return env
}

func newRequest(method, path, body string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func serve(e *testEnv, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) do(method, path, body, token string) *httptest.ResponseRecorder {
	req := newRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return serve(e, req)
}

// seedTrack stores a track directly and returns its id.
func (e *testEnv) seedTrack(title, artist string, duration int) string {
	track := &model.Track{Title: title, Artist: artist, Duration: duration}
	_ = e.tracks.Create(context.Background(), track)
	return track.ID
}

// seedPlaylist stores a playlist directly and returns its id.
func (e *testEnv) seedPlaylist(name, userID string) string {
	playlist := &model.Playlist{Name: name, UserID: userID}
	_ = e.playlists.Create(context.Background(), playlist)
	return playlist.ID
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v (%q)", err, rec.Body.String())
	}
	return body
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, want string) {
	t.Helper()
	expectStatus(t, rec, status)
	body := decodeBody(t, rec)
	if body["error"] != want {
		t.Errorf("expected error %q, got %v", want, body["error"])
	}
	if success, ok := body["success"]; ok && success != false {
		t.Errorf("expected success false, got %v", success)
	}
}

func dataOf(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	body := decodeBody(t, rec)
	if body["success"] != true {
		t.Fatalf("expected success true, got %v", body)
	}
	data, ok := body["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected object data, got %T", body["data"])
	}
	return data
}

func jsonf(format string, args ...interface{}) string {
	return fmt.Sprintf(format, args...)
}
