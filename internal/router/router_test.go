package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pingme/pingme/internal/handler"
	"github.com/pingme/pingme/internal/model"
	"github.com/pingme/pingme/internal/repository"
	"github.com/pingme/pingme/internal/service"
	"github.com/pingme/pingme/internal/session"
)

// memStore is an in-memory credential, vehicle, and token store backing
// the full HTTP surface in tests.
type memStore struct {
	mu       sync.Mutex
	users    map[string]*model.User
	vehicles map[string]*model.Vehicle
	tokens   map[string]*model.ResetToken
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[string]*model.User),
		vehicles: make(map[string]*model.Vehicle),
		tokens:   make(map[string]*model.ResetToken),
	}
}

func (m *memStore) CreateUser(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repository.ErrEmailExists
		}
	}
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *memStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *memStore) UpdateUserPassword(ctx context.Context, userID, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (m *memStore) CreateVehicle(ctx context.Context, vehicle *model.Vehicle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *vehicle
	m.vehicles[vehicle.ID] = &clone
	return nil
}

func (m *memStore) GetVehicleByID(ctx context.Context, id string) (*model.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vehicles[id]
	if !ok {
		return nil, repository.ErrVehicleNotFound
	}
	clone := *v
	return &clone, nil
}

func (m *memStore) ListVehiclesByOwner(ctx context.Context, ownerID string) ([]*model.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Vehicle
	for _, v := range m.vehicles {
		if v.OwnerID == ownerID {
			clone := *v
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *memStore) CreateResetToken(ctx context.Context, token *model.ResetToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *token
	m.tokens[token.TokenHash] = &clone
	return nil
}

func (m *memStore) GetResetToken(ctx context.Context, tokenHash string) (*model.ResetToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[tokenHash]
	if !ok {
		return nil, repository.ErrTokenNotFound
	}
	clone := *t
	return &clone, nil
}

func (m *memStore) MarkResetTokenUsed(ctx context.Context, tokenHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[tokenHash]
	if !ok || t.UsedAt != nil {
		return repository.ErrTokenNotFound
	}
	now := time.Now().UTC()
	t.UsedAt = &now
	return nil
}

// memDocs stores uploads in memory.
type memDocs struct {
	mu    sync.Mutex
	n     int
	paths map[string]string
}

func (d *memDocs) Save(src io.Reader, originalName string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	data, err := io.ReadAll(src)
	if err != nil {
		return "", err
	}
	d.n++
	path := filepath.Join("uploads", "test-doc-"+originalName)
	if d.paths == nil {
		d.paths = make(map[string]string)
	}
	d.paths[path] = string(data)
	return path, nil
}

func (d *memDocs) Remove(path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.paths, path)
	return nil
}

// captureMailer records reset links.
type captureMailer struct {
	mu    sync.Mutex
	links []string
}

func (c *captureMailer) SendPasswordReset(ctx context.Context, to, resetLink string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.links = append(c.links, resetLink)
	return nil
}

type fixture struct {
	router   http.Handler
	store    *memStore
	sessions *session.MemoryStore
	mailer   *captureMailer
}

func newFixture(t *testing.T, successRate float64) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := newMemStore()
	sessions := session.NewMemory(time.Hour)
	codec := session.NewCodec("test-secret")
	docs := &memDocs{}
	mailer := &captureMailer{}

	stickerPath := filepath.Join(t.TempDir(), "sticker.png")
	require.NoError(t, os.WriteFile(stickerPath, []byte("png bytes"), 0o644))

	authService := service.NewAuthService(store, sessions)
	vehicleService := service.NewVehicleService(store, docs)
	notificationService := service.NewNotificationService(store, store, mailer, "https://pingme.example.com", time.Hour, logger)
	paymentService := service.NewPaymentService(0, successRate)

	r := New(Deps{
		Logger:       logger,
		SessionStore: sessions,
		SessionCodec: codec,
		Base:         handler.New(),
		Health:       handler.NewHealthHandler(nil, sessions),
		Auth:         handler.NewAuthHandler(authService, codec, logger, time.Hour, false),
		Password:     handler.NewPasswordHandler(notificationService, logger),
		Vehicle:      handler.NewVehicleHandler(vehicleService, logger, 10<<20),
		Payment:      handler.NewPaymentHandler(paymentService, logger),
		Sticker:      handler.NewStickerHandler(stickerPath, logger),
	})

	return &fixture{
		router:   r,
		store:    store,
		sessions: sessions,
		mailer:   mailer,
	}
}

func (f *fixture) doJSON(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) signup(t *testing.T, username, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	return f.doJSON(t, http.MethodPost, "/signup", map[string]string{
		"username": username, "email": email, "password": password,
	})
}

// login returns the session cookie on success.
func (f *fixture) login(t *testing.T, email, password string) (*httptest.ResponseRecorder, *http.Cookie) {
	t.Helper()
	rec := f.doJSON(t, http.MethodPost, "/login", map[string]string{
		"email": email, "password": password,
	})

	for _, c := range rec.Result().Cookies() {
		if c.Name == "pingme_session" && c.MaxAge >= 0 {
			return rec, c
		}
	}
	return rec, nil
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestSignupLoginScenario(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 1.0)

	// signup("a", "a@x.com", "pw") -> 201
	rec := f.signup(t, "a", "a@x.com", "pw")
	assert.Equal(t, http.StatusCreated, rec.Code)

	// same email again -> conflict
	rec = f.signup(t, "a", "a@x.com", "pw")
	assert.Equal(t, http.StatusConflict, rec.Code)

	// login with the right password -> 200 with session cookie
	rec, cookie := f.login(t, "a@x.com", "pw")
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, cookie, "login should set a session cookie")

	// login with the wrong password -> 401, no session cookie
	rec, badCookie := f.login(t, "a@x.com", "wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, badCookie)
}

func TestCheckSessionLifecycle(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 1.0)

	// Before login
	rec := f.doJSON(t, http.MethodGet, "/check-session", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["loggedIn"])

	f.signup(t, "a", "a@x.com", "pw")
	_, cookie := f.login(t, "a@x.com", "pw")
	require.NotNil(t, cookie)

	// After login
	rec = f.doJSON(t, http.MethodGet, "/check-session", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["loggedIn"])
	user, ok := body["user"].(map[string]any)
	require.True(t, ok, "logged-in check-session should embed the user")
	assert.Equal(t, "a@x.com", user["email"])
	_, leaked := user["password_hash"]
	assert.False(t, leaked, "password hash must never serialize")

	// After logout
	rec = f.doJSON(t, http.MethodGet, "/logout", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.doJSON(t, http.MethodGet, "/check-session", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["loggedIn"])
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 1.0)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/vehicle-details"},
		{http.MethodGet, "/vehicles"},
		{http.MethodPost, "/process-payment"},
		{http.MethodGet, "/download-sticker"},
	}

	for _, p := range paths {
		rec := f.doJSON(t, p.method, p.path, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s should be guarded", p.method, p.path)
	}
}

func TestVehicleSubmission(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 1.0)
	f.signup(t, "a", "a@x.com", "pw")
	_, cookie := f.login(t, "a@x.com", "pw")
	require.NotNil(t, cookie)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("vehicleNumber", "KA-01-AB-1234"))
	require.NoError(t, mw.WriteField("vehicleType", "car"))
	require.NoError(t, mw.WriteField("brandModel", "Swift"))
	require.NoError(t, mw.WriteField("registrationYear", "2021"))
	part, err := mw.CreateFormFile("documents", "rc.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("rc scan"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/vehicle-details", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Round-trip through the list endpoint with the correct owner
	rec2 := f.doJSON(t, http.MethodGet, "/vehicles", nil, cookie)
	require.Equal(t, http.StatusOK, rec2.Code)
	body := decodeBody(t, rec2)
	vehicles, ok := body["vehicles"].([]any)
	require.True(t, ok)
	require.Len(t, vehicles, 1)

	v := vehicles[0].(map[string]any)
	assert.Equal(t, "KA-01-AB-1234", v["vehicle_number"])
	assert.Equal(t, "car", v["vehicle_type"])
	assert.Equal(t, "Swift", v["brand_model"])
	assert.Equal(t, float64(2021), v["registration_year"])

	var userID string
	for id := range f.store.users {
		userID = id
	}
	assert.Equal(t, userID, v["owner_id"], "ownership should match the submitting session's user")
}

func TestVehicleSubmission_MissingFields(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 1.0)
	f.signup(t, "a", "a@x.com", "pw")
	_, cookie := f.login(t, "a@x.com", "pw")
	require.NotNil(t, cookie)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("vehicleNumber", "KA-01-AB-1234"))
	// vehicleType, brandModel, registrationYear omitted
	part, err := mw.CreateFormFile("documents", "rc.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("rc scan"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/vehicle-details", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, f.store.vehicles)
}

func TestPasswordResetFlow(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 1.0)
	f.signup(t, "a", "a@x.com", "old-pw")

	rec := f.doJSON(t, http.MethodPost, "/forgot-password", map[string]string{"email": "a@x.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, f.mailer.links, 1)

	link := f.mailer.links[0]
	idx := strings.Index(link, "token=")
	require.Greater(t, idx, 0)
	token := link[idx+len("token="):]

	rec = f.doJSON(t, http.MethodPost, "/reset-password", map[string]string{
		"token": token, "newPassword": "new-pw",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Old password rejected, new accepted
	rec, _ = f.login(t, "a@x.com", "old-pw")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec, cookie := f.login(t, "a@x.com", "new-pw")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, cookie)

	// Token is single-use
	rec = f.doJSON(t, http.MethodPost, "/reset-password", map[string]string{
		"token": token, "newPassword": "third-pw",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestForgotPassword_UnknownEmailStillOK(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 1.0)

	rec := f.doJSON(t, http.MethodPost, "/forgot-password", map[string]string{"email": "nobody@x.com"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, f.mailer.links)
}

func TestProcessPayment(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 1.0)
	f.signup(t, "a", "a@x.com", "pw")
	_, cookie := f.login(t, "a@x.com", "pw")
	require.NotNil(t, cookie)

	rec := f.doJSON(t, http.MethodPost, "/process-payment", nil, cookie)
	assert.Equal(t, http.StatusOK, rec.Code)

	declined := newFixture(t, 0.0)
	declined.signup(t, "b", "b@x.com", "pw")
	_, cookie2 := declined.login(t, "b@x.com", "pw")
	require.NotNil(t, cookie2)

	rec = declined.doJSON(t, http.MethodPost, "/process-payment", nil, cookie2)
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
}

func TestDownloadSticker(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 1.0)
	f.signup(t, "a", "a@x.com", "pw")
	_, cookie := f.login(t, "a@x.com", "pw")
	require.NotNil(t, cookie)

	req := httptest.NewRequest(http.MethodGet, "/download-sticker", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png bytes", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
}

func TestHomeAndHealth(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 1.0)

	rec := f.doJSON(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "PingMe Backend is Live", decodeBody(t, rec)["message"])

	rec = f.doJSON(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.doJSON(t, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
