package http_test

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

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	myHTTP "github.com/linkfolio/backend/internal/adapters/transport/http"
	authJWT "github.com/linkfolio/backend/internal/app/auth/jwt"
	authsvc "github.com/linkfolio/backend/internal/app/auth/service"
	linksvc "github.com/linkfolio/backend/internal/app/links"
	usersvc "github.com/linkfolio/backend/internal/app/users"
	customErrors "github.com/linkfolio/backend/internal/domain/errors"
	"github.com/linkfolio/backend/internal/domain/model"
	"github.com/linkfolio/backend/internal/domain/storage"
	"github.com/linkfolio/backend/internal/infra/config"
)

/* ──────────────────────────────── stubs ──────────────────────────────── */

type memUserRepo struct{ users map[string]model.User }

func (u *memUserRepo) CreateUser(_ context.Context, m model.User) (uuid.UUID, error) {
	for _, v := range u.users {
		if v.Email == m.Email {
			return uuid.Nil, customErrors.ErrAlreadyExists
		}
	}
	u.users[m.ID.String()] = m
	return m.ID, nil
}
func (u *memUserRepo) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	for _, v := range u.users {
		if v.Email == email {
			return v, nil
		}
	}
	return model.User{}, customErrors.ErrNotFound
}
func (u *memUserRepo) GetUserByID(_ context.Context, id uuid.UUID) (model.User, error) {
	v, ok := u.users[id.String()]
	if !ok {
		return model.User{}, customErrors.ErrNotFound
	}
	return v, nil
}
func (u *memUserRepo) GetUserByRefreshToken(_ context.Context, token string) (model.User, error) {
	if token == "" {
		return model.User{}, customErrors.ErrNotFound
	}
	for _, v := range u.users {
		if v.RefreshToken == token {
			return v, nil
		}
	}
	return model.User{}, customErrors.ErrNotFound
}
func (u *memUserRepo) GetUserByResetToken(_ context.Context, hash string) (model.User, error) {
	for _, v := range u.users {
		if v.PasswordResetToken != nil && *v.PasswordResetToken == hash {
			return v, nil
		}
	}
	return model.User{}, customErrors.ErrNotFound
}
func (u *memUserRepo) UpdateUser(_ context.Context, m model.User) error {
	u.users[m.ID.String()] = m
	return nil
}
func (u *memUserRepo) SetRefreshToken(_ context.Context, id uuid.UUID, token string) error {
	v, ok := u.users[id.String()]
	if !ok {
		return customErrors.ErrNotFound
	}
	v.RefreshToken = token
	u.users[id.String()] = v
	return nil
}
func (u *memUserRepo) DeleteUser(_ context.Context, id uuid.UUID) error {
	delete(u.users, id.String())
	return nil
}

type memLinkRepo struct{ links map[string]model.Link }

func (l *memLinkRepo) CreateLink(_ context.Context, m model.Link) (uuid.UUID, error) {
	l.links[m.ID.String()] = m
	return m.ID, nil
}
func (l *memLinkRepo) GetLinkByID(_ context.Context, id uuid.UUID) (model.Link, error) {
	v, ok := l.links[id.String()]
	if !ok {
		return model.Link{}, customErrors.ErrNotFound
	}
	return v, nil
}
func (l *memLinkRepo) ListLinksByUser(_ context.Context, userID uuid.UUID) ([]model.Link, error) {
	out := make([]model.Link, 0)
	for _, v := range l.links {
		if v.UserID == userID {
			out = append(out, v)
		}
	}
	return out, nil
}
func (l *memLinkRepo) DeleteLink(_ context.Context, id uuid.UUID) error {
	delete(l.links, id.String())
	return nil
}
func (l *memLinkRepo) DeleteLinksByUser(_ context.Context, userID uuid.UUID) error {
	for k, v := range l.links {
		if v.UserID == userID {
			delete(l.links, k)
		}
	}
	return nil
}

type memBlobStore struct{ lastUpload *storage.Upload }

func (b *memBlobStore) Upload(_ context.Context, up storage.Upload) (string, error) {
	if up.ContentType != "image/png" && up.ContentType != "image/jpeg" && up.ContentType != "image/jpg" {
		return "", customErrors.NewInvalidArgument("only .png, .jpg and .jpeg formats are allowed")
	}
	b.lastUpload = &up
	return "https://cdn.example.com/profile-images/" + up.Name, nil
}

/* ───────────────────────────── helpers ───────────────────────────── */

type testEnv struct {
	router *gin.Engine
	users  *memUserRepo
	blobs  *memBlobStore
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		JWTSecret:       "test-secret",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
		AllowedOrigins:  []string{"https://app.example.com"},
	}

	mr := miniredis.RunT(t)
	redisCli := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisCli.Close() })

	jwtUtil, err := authJWT.NewJWTUtil(cfg)
	require.NoError(t, err)

	ur := &memUserRepo{users: make(map[string]model.User)}
	lr := &memLinkRepo{links: make(map[string]model.Link)}
	bs := &memBlobStore{}
	v := validator.New()

	auth := authsvc.New(ur, jwtUtil, cfg, v)
	users := usersvc.New(ur, lr, bs, v)
	links := linksvc.New(lr, v)

	h := myHTTP.NewHandler(auth, users, links, cfg, zap.NewNop())
	return &testEnv{
		router: myHTTP.NewRouter(h, jwtUtil, redisCli, cfg, zap.NewNop()),
		users:  ur,
		blobs:  bs,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, mod ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, m := range mod {
		m(req)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func refreshCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == "refreshToken" {
			return c
		}
	}
	t.Fatal("no refreshToken cookie in response")
	return nil
}

func (e *testEnv) registerAndLogin(t *testing.T, email string) (token string, cookie *http.Cookie) {
	t.Helper()

	w := e.do(t, http.MethodPost, "/api/user/register", gin.H{
		"firstName": "Alice", "lastName": "Walker",
		"email": email, "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = e.do(t, http.MethodPost, "/api/user/login", gin.H{
		"email": email, "password": "secret1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	return body["token"].(string), refreshCookie(t, w)
}

func withAuth(token string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func withCookie(c *http.Cookie) func(*http.Request) {
	return func(r *http.Request) { r.AddCookie(c) }
}

/* ───────────────────────────── tests ───────────────────────────── */

func TestHTTP_RegisterLoginShape(t *testing.T) {
	env := newEnv(t)

	w := env.do(t, http.MethodPost, "/api/user/register", gin.H{
		"firstName": "Alice", "lastName": "Walker",
		"email": "a@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	require.Equal(t, true, body["success"])
	user := body["user"].(map[string]any)
	require.Equal(t, "a@example.com", user["email"])
	require.NotContains(t, user, "password")
	require.NotContains(t, w.Body.String(), "passwordHash")

	w = env.do(t, http.MethodPost, "/api/user/login", gin.H{
		"email": "a@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	require.NotEmpty(t, body["token"])
	require.NotEmpty(t, body["_id"])

	c := refreshCookie(t, w)
	require.True(t, c.HttpOnly)
	require.True(t, c.Secure)
	require.NotEmpty(t, c.Value)
}

func TestHTTP_RegisterDuplicate(t *testing.T) {
	env := newEnv(t)
	env.registerAndLogin(t, "dup@example.com")

	w := env.do(t, http.MethodPost, "/api/user/register", gin.H{
		"firstName": "Alice", "lastName": "Walker",
		"email": "dup@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestHTTP_LoginBadCredentials(t *testing.T) {
	env := newEnv(t)
	env.registerAndLogin(t, "b@example.com")

	wUnknown := env.do(t, http.MethodPost, "/api/user/login", gin.H{
		"email": "missing@example.com", "password": "secret1",
	})
	wWrongPwd := env.do(t, http.MethodPost, "/api/user/login", gin.H{
		"email": "b@example.com", "password": "wrongpwd",
	})

	require.Equal(t, http.StatusUnauthorized, wUnknown.Code)
	require.Equal(t, http.StatusUnauthorized, wWrongPwd.Code)
	// byte-identical bodies, nothing to enumerate accounts with
	require.Equal(t, wUnknown.Body.String(), wWrongPwd.Body.String())
}

func TestHTTP_RefreshFlow(t *testing.T) {
	env := newEnv(t)
	_, cookie := env.registerAndLogin(t, "r@example.com")

	w := env.do(t, http.MethodGet, "/api/user/refresh-token", nil, withCookie(cookie))
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, decode(t, w)["accessToken"])

	// no cookie
	w = env.do(t, http.MethodGet, "/api/user/refresh-token", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "no refresh token in cookies")

	// garbage cookie
	w = env.do(t, http.MethodGet, "/api/user/refresh-token", nil,
		withCookie(&http.Cookie{Name: "refreshToken", Value: "garbage"}))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHTTP_LogoutThenRefresh(t *testing.T) {
	env := newEnv(t)
	_, cookie := env.registerAndLogin(t, "lo@example.com")

	w := env.do(t, http.MethodPost, "/api/user/logout", nil, withCookie(cookie))
	require.Equal(t, http.StatusNoContent, w.Code)

	// cleared cookie in the response
	cleared := refreshCookie(t, w)
	require.Empty(t, cleared.Value)

	// logging out again with the stale cookie is still a 204
	w = env.do(t, http.MethodPost, "/api/user/logout", nil, withCookie(cookie))
	require.Equal(t, http.StatusNoContent, w.Code)

	// the signed, unexpired token no longer refreshes
	w = env.do(t, http.MethodGet, "/api/user/refresh-token", nil, withCookie(cookie))
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "refresh token not recognized")
}

func TestHTTP_ProtectedWithoutToken(t *testing.T) {
	env := newEnv(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/profile"},
		{http.MethodPut, "/api/user"},
		{http.MethodDelete, "/api/user"},
		{http.MethodPost, "/api/links"},
		{http.MethodGet, "/api/links"},
	} {
		w := env.do(t, tc.method, tc.path, nil)
		require.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestHTTP_ProfileRoundTrip(t *testing.T) {
	env := newEnv(t)
	token, _ := env.registerAndLogin(t, "p@example.com")

	w := env.do(t, http.MethodGet, "/api/profile", nil, withAuth(token))
	require.Equal(t, http.StatusOK, w.Code)
	profile := decode(t, w)
	require.Equal(t, "p@example.com", profile["email"])
	require.NotContains(t, w.Body.String(), "passwordHash")
	require.NotContains(t, w.Body.String(), "refreshToken")
}

func TestHTTP_UpdateProfileMultipart(t *testing.T) {
	env := newEnv(t)
	token, _ := env.registerAndLogin(t, "m@example.com")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("profileTitle", "My Page"))
	require.NoError(t, mw.WriteField("bio", "hello there"))
	require.NoError(t, mw.WriteField("backgroundColor", "#AABBCC"))

	hdr := make(map[string][]string)
	hdr["Content-Disposition"] = []string{`form-data; name="profileImage"; filename="me.png"`}
	hdr["Content-Type"] = []string{"image/png"}
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write([]byte("fake png bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, "/api/profile", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	user := body["user"].(map[string]any)
	require.Equal(t, "My Page", user["profileTitle"])
	require.Equal(t, "#AABBCC", user["backgroundColor"])
	require.Contains(t, user["profileImage"], "cdn.example.com")
	require.NotNil(t, env.blobs.lastUpload)
}

func TestHTTP_UpdateProfileBadImageType(t *testing.T) {
	env := newEnv(t)
	token, _ := env.registerAndLogin(t, "gif@example.com")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("profileTitle", "My Page"))
	require.NoError(t, mw.WriteField("bio", "hello"))

	hdr := make(map[string][]string)
	hdr["Content-Disposition"] = []string{`form-data; name="profileImage"; filename="me.gif"`}
	hdr["Content-Type"] = []string{"image/gif"}
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write([]byte("gif bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, "/api/profile", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "formats are allowed")
}

func TestHTTP_LinksCRUD(t *testing.T) {
	env := newEnv(t)
	token, _ := env.registerAndLogin(t, "links@example.com")

	w := env.do(t, http.MethodPost, "/api/links", gin.H{
		"title": "Blog", "url": "https://blog.example.com",
	}, withAuth(token))
	require.Equal(t, http.StatusCreated, w.Code)
	link := decode(t, w)["link"].(map[string]any)
	linkID := link["id"].(string)

	w = env.do(t, http.MethodGet, "/api/links", nil, withAuth(token))
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)

	// another user cannot delete it
	otherToken, _ := env.registerAndLogin(t, "other@example.com")
	w = env.do(t, http.MethodDelete, "/api/links/"+linkID, nil, withAuth(otherToken))
	require.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodDelete, "/api/links/"+linkID, nil, withAuth(token))
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodDelete, "/api/links/"+linkID, nil, withAuth(token))
	require.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodDelete, "/api/links/not-a-uuid", nil, withAuth(token))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHTTP_CreateLinkInvalid(t *testing.T) {
	env := newEnv(t)
	token, _ := env.registerAndLogin(t, "badlink@example.com")

	w := env.do(t, http.MethodPost, "/api/links", gin.H{
		"title": "FTP", "url": "ftp://example.com",
	}, withAuth(token))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHTTP_PasswordResetFlow(t *testing.T) {
	env := newEnv(t)
	_, _ = env.registerAndLogin(t, "reset@example.com")

	// the endpoint answers the same for known and unknown addresses
	wKnown := env.do(t, http.MethodPost, "/api/user/forgot-password", gin.H{
		"email": "reset@example.com",
	})
	wUnknown := env.do(t, http.MethodPost, "/api/user/forgot-password", gin.H{
		"email": "ghost@example.com",
	})
	require.Equal(t, http.StatusOK, wKnown.Code)
	require.Equal(t, http.StatusOK, wUnknown.Code)
	require.Equal(t, wKnown.Body.String(), wUnknown.Body.String())

	w := env.do(t, http.MethodPut, "/api/user/reset-password/bogus-token", gin.H{
		"password": "newsecret",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHTTP_DeleteUser(t *testing.T) {
	env := newEnv(t)
	token, _ := env.registerAndLogin(t, "bye@example.com")

	w := env.do(t, http.MethodPost, "/api/links", gin.H{
		"title": "Blog", "url": "https://blog.example.com",
	}, withAuth(token))
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodDelete, "/api/user", nil, withAuth(token))
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/api/user/login", gin.H{
		"email": "bye@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHTTP_HealthAndNoRoute(t *testing.T) {
	env := newEnv(t)

	w := env.do(t, http.MethodGet, "/healthcheck", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ok", decode(t, w)["status"])

	w = env.do(t, http.MethodGet, "/nope", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "route not found")

	w = env.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, strings.Contains(w.Body.String(), "LinkFolio"))
}

func TestHTTP_SecurityHeaders(t *testing.T) {
	env := newEnv(t)

	w := env.do(t, http.MethodGet, "/healthcheck", nil)
	require.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	require.NotEmpty(t, w.Header().Get("Content-Security-Policy"))
}

func TestHTTP_UpdateUser(t *testing.T) {
	env := newEnv(t)
	token, _ := env.registerAndLogin(t, "upd@example.com")

	w := env.do(t, http.MethodPut, "/api/user", gin.H{
		"firstName": "Renamed", "password": "rotated1",
	}, withAuth(token))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Renamed", decode(t, w)["firstName"])

	w = env.do(t, http.MethodPost, "/api/user/login", gin.H{
		"email": "upd@example.com", "password": "rotated1",
	})
	require.Equal(t, http.StatusOK, w.Code)
}
