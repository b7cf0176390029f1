package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/securenotes/internal/server/auth"
	"github.com/iudanet/securenotes/internal/server/middleware"
	"github.com/iudanet/securenotes/internal/server/ratelimit"
	"github.com/iudanet/securenotes/internal/server/storage/sqlite"
	"github.com/iudanet/securenotes/internal/server/token"
	"github.com/iudanet/securenotes/pkg/api"
)

// testStack поднимает полный стек на SQLite in-memory
type testStack struct {
	server       *httptest.Server
	storage      *sqlite.Storage
	loginLimiter *ratelimit.Limiter
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	codec, err := token.NewCodec(
		[]byte("test-secret-key-at-least-32-bytes-long"),
		15*time.Minute,
		7*24*time.Hour,
	)
	require.NoError(t, err)

	sessions := auth.NewService(logger, store, store, codec)

	loginLimiter := ratelimit.New(5, time.Minute)
	t.Cleanup(loginLimiter.Stop)
	apiLimiter := ratelimit.New(1000, time.Minute)
	t.Cleanup(apiLimiter.Stop)

	router := NewRouter(Deps{
		Logger:       logger,
		Sessions:     sessions,
		Notes:        store,
		Codec:        codec,
		Health:       store,
		LoginLimiter: loginLimiter,
		APILimiter:   apiLimiter,
		Version:      "test",
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testStack{server: srv, storage: store, loginLimiter: loginLimiter}
}

func (s *testStack) request(t *testing.T, method, path, accessToken string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, s.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := s.server.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (s *testStack) register(t *testing.T, username, email, password string) api.UserResponse {
	t.Helper()
	resp := s.request(t, http.MethodPost, "/auth/register", "", api.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeBody[api.UserResponse](t, resp)
}

func (s *testStack) login(t *testing.T, email, password string) api.AuthResponse {
	t.Helper()
	resp := s.request(t, http.MethodPost, "/auth/login", "", api.LoginRequest{
		Email:    email,
		Password: password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decodeBody[api.AuthResponse](t, resp)
}

func TestServer_SessionLifecycle(t *testing.T) {
	s := newTestStack(t)

	user := s.register(t, "alice", "alice@example.com", "p@ssW0rd1")
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, []string{"ROLE_USER"}, user.Roles)

	pair := s.login(t, "alice@example.com", "p@ssW0rd1")
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.Equal(t, (15 * time.Minute).Milliseconds(), pair.ExpiresIn)

	// Refresh выдает новую пару с другим refresh token'ом
	resp := s.request(t, http.MethodPost, "/auth/refresh", "", api.RefreshTokenRequest{
		RefreshToken: pair.RefreshToken,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	newPair := decodeBody[api.AuthResponse](t, resp)
	assert.NotEqual(t, pair.RefreshToken, newPair.RefreshToken)

	// Старый refresh token одноразовый
	resp = s.request(t, http.MethodPost, "/auth/refresh", "", api.RefreshTokenRequest{
		RefreshToken: pair.RefreshToken,
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Logout отзывает новый токен
	resp = s.request(t, http.MethodPost, "/auth/logout", "", api.RefreshTokenRequest{
		RefreshToken: newPair.RefreshToken,
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = s.request(t, http.MethodPost, "/auth/refresh", "", api.RefreshTokenRequest{
		RefreshToken: newPair.RefreshToken,
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServer_DuplicateRegistration(t *testing.T) {
	s := newTestStack(t)

	s.register(t, "alice", "alice@example.com", "p@ssW0rd1")

	resp := s.request(t, http.MethodPost, "/auth/register", "", api.RegisterRequest{
		Username: "alice2",
		Email:    "alice@example.com",
		Password: "p@ssW0rd1",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody[api.ErrorResponse](t, resp)
	assert.Equal(t, "Email is already registered", body.Message)
}

func TestServer_NotesCRUDAndEnumeration(t *testing.T) {
	s := newTestStack(t)

	s.register(t, "alice", "alice@example.com", "p@ssW0rd1")
	s.register(t, "bob", "bob@example.com", "p@ssW0rd1")
	alice := s.login(t, "alice@example.com", "p@ssW0rd1")
	bob := s.login(t, "bob@example.com", "p@ssW0rd1")

	// Alice создает заметку
	resp := s.request(t, http.MethodPost, "/api/notes", alice.AccessToken, api.NoteRequest{
		Title:   "Secret plan",
		Content: "world domination",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	note := decodeBody[api.NoteResponse](t, resp)

	// Alice видит ее
	resp = s.request(t, http.MethodGet, "/api/notes/"+note.ID, alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Ответы Бобу на чужую и несуществующую заметку неотличимы
	foreignResp := s.request(t, http.MethodGet, "/api/notes/"+note.ID, bob.AccessToken, nil)
	absentResp := s.request(t, http.MethodGet, "/api/notes/no-such-id", bob.AccessToken, nil)

	require.Equal(t, http.StatusNotFound, foreignResp.StatusCode)
	require.Equal(t, http.StatusNotFound, absentResp.StatusCode)

	foreign := decodeBody[api.ErrorResponse](t, foreignResp)
	absent := decodeBody[api.ErrorResponse](t, absentResp)
	assert.Equal(t, foreign.Message, absent.Message)
	assert.Equal(t, foreign.Error, absent.Error)

	// Обновление и удаление чужой заметки тоже 404
	resp = s.request(t, http.MethodPut, "/api/notes/"+note.ID, bob.AccessToken, api.NoteRequest{
		Title: "Hijacked", Content: "x",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = s.request(t, http.MethodDelete, "/api/notes/"+note.ID, bob.AccessToken, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Владелец удаляет
	resp = s.request(t, http.MethodDelete, "/api/notes/"+note.ID, alice.AccessToken, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestServer_NotesRequireAuth(t *testing.T) {
	s := newTestStack(t)

	resp := s.request(t, http.MethodGet, "/api/notes", "", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServer_AdminAccess(t *testing.T) {
	s := newTestStack(t)

	s.register(t, "alice", "alice@example.com", "p@ssW0rd1")
	admin := s.register(t, "admin", "admin@example.com", "p@ssW0rd1")

	// Выдаем админскую роль напрямую в БД
	_, err := s.storage.DB().Exec(
		"INSERT INTO user_roles (user_id, role) VALUES (?, 'ROLE_ADMIN')", admin.ID)
	require.NoError(t, err)

	alicePair := s.login(t, "alice@example.com", "p@ssW0rd1")
	adminPair := s.login(t, "admin@example.com", "p@ssW0rd1")

	// Обычному пользователю — 403
	resp := s.request(t, http.MethodGet, "/api/admin/dashboard", alicePair.AccessToken, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Админу — 200 с его email
	resp = s.request(t, http.MethodGet, "/api/admin/dashboard", adminPair.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var dashboard struct {
		AdminEmail string `json:"adminEmail"`
		Status     string `json:"status"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&dashboard))
	resp.Body.Close()
	assert.Equal(t, "admin@example.com", dashboard.AdminEmail)
}

func TestServer_LoginRateLimit(t *testing.T) {
	s := newTestStack(t)

	s.register(t, "alice", "alice@example.com", "p@ssW0rd1")

	// Все запросы httptest идут с 127.0.0.1 — один bucket
	s.loginLimiter.Clear()

	// Лимит 5: первые пять попыток проходят до проверки пароля
	for i := 0; i < 5; i++ {
		resp := s.request(t, http.MethodPost, "/auth/login", "", api.LoginRequest{
			Email:    "alice@example.com",
			Password: "wrong-password",
		})
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "attempt %d", i+1)
	}

	// Шестая отклоняется лимитером с 400 и не доходит до пароля
	resp := s.request(t, http.MethodPost, "/auth/login", "", api.LoginRequest{
		Email:    "alice@example.com",
		Password: "p@ssW0rd1",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody[api.ErrorResponse](t, resp)
	assert.Equal(t, "Too many login attempts. Please try again later.", body.Message)
}

func TestServer_Health(t *testing.T) {
	s := newTestStack(t)

	resp := s.request(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	resp.Body.Close()
	assert.Equal(t, "ok", health.Status)
}

func TestServer_RecoveryFromPanic(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /boom", func(w http.ResponseWriter, r *http.Request) {
		panic(fmt.Errorf("boom"))
	})

	srv := httptest.NewServer(middleware.RecoveryMiddleware(logger)(mux))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/boom")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	body := decodeBodyFromReader[api.ErrorResponse](t, resp.Body)
	assert.Equal(t, http.StatusInternalServerError, body.Status)
	assert.Equal(t, "An unexpected error occurred", body.Message)
}

func decodeBodyFromReader[T any](t *testing.T, r io.Reader) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(r).Decode(&out))
	return out
}
