package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"typeroo-api/internal/auth"
	"typeroo-api/internal/domain"
	"typeroo-api/internal/repository/sqlite"
	"typeroo-api/internal/service"
	"typeroo-api/internal/storage"
	"typeroo-api/internal/testutil"
)

const (
	password   = "pass-word1"
	publicBase = "http://localhost:8080/uploads"
)

type fixture struct {
	t      *testing.T
	router *gin.Engine
	tokens *auth.TokenManager
	users  *sqlite.UserRepository
	user   *domain.User
	token  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.DB(t)
	users := sqlite.NewUserRepository(db)
	limits := service.Limits{DefaultPageSize: 10, MaxPageSize: 100, MaxSearchResults: 50}
	logger, _ := test.NewNullLogger()
	local := storage.NewLocalService(t.TempDir(), publicBase)
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	handler := NewHandler(Deps{
		Users:       service.NewUserService(users, service.NewBcryptHasher(bcrypt.MinCost), limits),
		CustomTexts: service.NewCustomTextService(sqlite.NewCustomTextRepository(db)),
		TestResults: service.NewTestResultService(sqlite.NewTestResultRepository(db), users, limits),
		Avatars:     service.NewAvatarService(users, local, 1<<20, logger),
		Tokens:      tokens,
		Logger:      logger,
		UploadsDir:  local.Dir(),

		MaxUploadBytes: 1 << 20,
	})
	router := gin.New()
	handler.RegisterRoutes(router)

	f := &fixture{t: t, router: router, tokens: tokens, users: users}
	f.user = testutil.CreateUser(t, db, password)
	f.token = f.tokenFor(f.user)
	return f
}

func (f *fixture) tokenFor(u *domain.User) string {
	f.t.Helper()
	token, err := f.tokens.Generate(u.ID, u.Username, u.Roles)
	require.NoError(f.t, err)
	return token
}

func (f *fixture) do(method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	f.t.Helper()
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) sendJSON(method, path, token string, payload any) *httptest.ResponseRecorder {
	f.t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(f.t, err)
		body = bytes.NewReader(raw)
	}
	return f.do(method, path, token, body, "application/json")
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func messageOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	msg, _ := decode(t, rec)["message"].(string)
	return msg
}

func TestHealthAndCORS(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/health", "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":"ok"}`, rec.Body.String())

	rec = f.do(http.MethodOptions, "/api/users/profile", "", nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestAuthentication(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/users/profile", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodGet, "/api/users/profile", "not-a-jwt", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other := auth.NewTokenManager("other-secret", time.Hour)
	forged, err := other.Generate(f.user.ID, f.user.Username, f.user.Roles)
	require.NoError(t, err)
	rec = f.do(http.MethodGet, "/api/users/profile", forged, nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	guest, err := f.tokens.Generate(f.user.ID, f.user.Username, []string{"ROLE_GUEST"})
	require.NoError(t, err)
	rec = f.do(http.MethodPost, "/api/tests/save", guest, strings.NewReader(`{"wpm":1,"duration":10}`), "application/json")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(http.MethodGet, "/api/users/profile", f.token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, f.user.Email, body["email"])
	assert.Equal(t, f.user.Username, body["username"])
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "passwordHash")
}

func TestPublicProfileAndSearch(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/users/"+f.user.Username, "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, f.user.ID, body["id"])
	assert.NotContains(t, body, "email")

	rec = f.do(http.MethodGet, "/api/users/nobody-at-all", "", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodGet, "/api/users/search?query=", "", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Query cannot be empty", messageOf(t, rec))

	rec = f.do(http.MethodGet, "/api/users/search?query="+strings.ToUpper(f.user.Username), "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var found []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &found))
	require.Len(t, found, 1)
	assert.Equal(t, f.user.Username, found[0]["username"])
	assert.NotContains(t, found[0], "email")
}

func TestCustomTexts(t *testing.T) {
	f := newFixture(t)
	other := testutil.NewUser(t, password)
	require.NoError(t, f.users.Create(context.Background(), other))
	intruder := f.tokenFor(other)

	rec := f.sendJSON(http.MethodPost, "/api/custom-texts", f.token, map[string]any{"content": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.sendJSON(http.MethodPost, "/api/custom-texts", f.token, map[string]any{"content": "pack my box", "isPublic": true})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Custom text added successfully", messageOf(t, rec))

	rec = f.do(http.MethodGet, "/api/custom-texts", f.token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var texts []customTextResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &texts))
	require.Len(t, texts, 1)
	assert.Equal(t, "pack my box", texts[0].Content)
	assert.True(t, texts[0].IsPublic)

	rec = f.do(http.MethodDelete, "/api/custom-texts/"+texts[0].ID, intruder, nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Error: Cannot delete text", messageOf(t, rec))

	rec = f.do(http.MethodDelete, "/api/custom-texts/"+texts[0].ID, f.token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Deleted successfully", messageOf(t, rec))

	rec = f.do(http.MethodGet, "/api/custom-texts", f.token, nil, "")
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestTestResults(t *testing.T) {
	f := newFixture(t)

	for _, r := range []saveResultRequest{
		{WPM: 80, RawWPM: 85, Accuracy: 97, Duration: 30, CorrectChars: 200, IncorrectChars: 5},
		{WPM: 95, RawWPM: 99, Accuracy: 98, Duration: 30, CorrectChars: 240, IncorrectChars: 4},
		{WPM: 70, RawWPM: 72, Accuracy: 95, Duration: 60, CorrectChars: 350, IncorrectChars: 12},
	} {
		rec := f.sendJSON(http.MethodPost, "/api/tests/save", f.token, r)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "Test result saved successfully", messageOf(t, rec))
	}

	rec := f.sendJSON(http.MethodPost, "/api/tests/save", f.token, saveResultRequest{WPM: 50, Duration: 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodGet, "/api/tests/stats?username="+f.user.Username, "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"maxWpm10":0,"maxWpm30":95,"maxWpm60":70}`, rec.Body.String())

	rec = f.do(http.MethodGet, "/api/tests/history?size=2", f.token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page pageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Len(t, page.Content, 2)
	assert.EqualValues(t, 3, page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)
	assert.True(t, page.First)
	assert.False(t, page.Last)
	assert.Equal(t, f.user.Username, page.Content[0].Username)

	rec = f.do(http.MethodGet, "/api/tests/user-history?username="+f.user.Username+"&page=1&size=2", "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Len(t, page.Content, 1)
	assert.True(t, page.Last)

	for _, path := range []string{
		"/api/tests/user-history",
		"/api/tests/stats",
		"/api/tests/user-history?username=" + f.user.Username + "&page=abc",
	} {
		assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, path, "", nil, "").Code, path)
	}
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/tests/stats?username=ghost", "", nil, "").Code)

	rec = f.do(http.MethodGet, "/api/users/profile", f.token, nil, "")
	assert.EqualValues(t, 3, decode(t, rec)["totalTests"])
}

func TestSettingsAndProfile(t *testing.T) {
	f := newFixture(t)

	rec := f.sendJSON(http.MethodPost, "/api/users/settings", f.token, map[string]any{
		"username": "brand_new", "currentPassword": "wrong",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Error: Invalid current password", messageOf(t, rec))

	rec = f.sendJSON(http.MethodPost, "/api/users/settings", f.token, map[string]any{"themePreference": "dark"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Settings updated successfully", messageOf(t, rec))

	rec = f.sendJSON(http.MethodPost, "/api/users/profile", f.token, map[string]any{"bio": "hello", "displayName": "Typist"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Profile updated successfully", messageOf(t, rec))

	rec = f.do(http.MethodPost, "/api/users/profile", f.token, strings.NewReader("{"), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode(t, f.do(http.MethodGet, "/api/users/profile", f.token, nil, ""))
	assert.Equal(t, "dark", body["themePreference"])
	assert.Equal(t, "hello", body["bio"])
	assert.Equal(t, "Typist", body["displayName"])
	assert.Equal(t, f.user.Username, body["username"])
}

func avatarForm(t *testing.T, filename string, data []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadAvatar(t *testing.T) {
	f := newFixture(t)

	body, contentType := avatarForm(t, "me.png", []byte("fake-png"))
	rec := f.do(http.MethodPost, "/api/users/upload-avatar", f.token, body, contentType)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	url := messageOf(t, rec)
	require.True(t, strings.HasPrefix(url, publicBase+"/"+f.user.ID+"_"), url)
	assert.True(t, strings.HasSuffix(url, "_me.png"), url)

	served := f.do(http.MethodGet, strings.TrimPrefix(url, "http://localhost:8080"), "", nil, "")
	require.Equal(t, http.StatusOK, served.Code)
	assert.Equal(t, "fake-png", served.Body.String())

	profile := decode(t, f.do(http.MethodGet, "/api/users/profile", f.token, nil, ""))
	assert.Equal(t, url, profile["avatarUrl"])

	rec = f.do(http.MethodPost, "/api/users/upload-avatar", f.token, strings.NewReader(""), "multipart/form-data; boundary=x")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteAccount(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodDelete, "/api/users/me", f.token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Account deleted successfully", messageOf(t, rec))

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/users/profile", f.token, nil, "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/users/"+f.user.Username, "", nil, "").Code)
}

func TestUploadAvatar_RejectsPathSegments(t *testing.T) {
	f := newFixture(t)

	for _, name := range []string{"../evil.png", "a/../../evil.png", `..\evil.png`} {
		body, contentType := avatarForm(t, name, []byte("x"))
		rec := f.do(http.MethodPost, "/api/users/upload-avatar", f.token, body, contentType)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
		assert.Equal(t, "Filename contains invalid path sequence", messageOf(t, rec), name)
	}

	got, err := f.users.GetByID(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, got.AvatarURL)
}

func TestUploadAvatar_RejectsOversizedBody(t *testing.T) {
	f := newFixture(t)

	body, contentType := avatarForm(t, "big.png", bytes.Repeat([]byte("x"), 3<<20))
	rec := f.do(http.MethodPost, "/api/users/upload-avatar", f.token, body, contentType)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	got, err := f.users.GetByID(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, got.AvatarURL)
}
