package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/vidtube/internal/logging"
	"github.com/dmitrijs2005/vidtube/internal/server/auth"
	"github.com/dmitrijs2005/vidtube/internal/server/credentials"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/memory"
	"github.com/dmitrijs2005/vidtube/internal/server/services"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// copyingAssets records what it was asked to store and leaves the staged
// file in place so tests can observe the handler's cleanup.
type copyingAssets struct {
	stored []string
}

func (c *copyingAssets) Store(_ context.Context, localPath string) (string, error) {
	if _, err := os.Stat(localPath); err != nil {
		return "", err
	}
	c.stored = append(c.stored, localPath)
	return "http://cdn.local/media/" + filepath.Base(localPath), nil
}

type testAPI struct {
	handler   http.Handler
	rm        *memory.Manager
	assets    *copyingAssets
	uploadDir string
}

func newTestAPI(t *testing.T, opts ...func(*RouterConfig)) *testAPI {
	t.Helper()

	issuer, err := auth.NewIssuer(auth.IssuerConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    24 * time.Hour,
	})
	require.NoError(t, err)

	hasher, err := credentials.NewHasher(bcrypt.MinCost, 2)
	require.NoError(t, err)

	log := logging.Nop()
	rm := memory.NewRepositoryManager()
	assets := &copyingAssets{}
	sessions := services.NewSessionRegistry(rm, issuer, log)
	dir := t.TempDir()

	cfg := RouterConfig{UploadDir: dir, CORSOrigin: "http://app.local"}
	for _, opt := range opts {
		opt(&cfg)
	}

	h := NewRouter(Services{
		Users:         services.NewUserService(rm, credentials.NewStore(hasher), sessions, assets, log),
		Channels:      services.NewChannelService(rm, log),
		Authenticator: services.NewAuthenticator(rm, issuer, log),
	}, cfg, log)

	return &testAPI{handler: h, rm: rm, assets: assets, uploadDir: dir}
}

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
}

type response struct {
	*httptest.ResponseRecorder
	body envelope
}

func (r response) data(t *testing.T, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.body.Data, v))
}

func (r response) cookie(name string) *http.Cookie {
	for _, c := range r.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (a *testAPI) do(t *testing.T, req *http.Request) response {
	t.Helper()
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	res := response{ResponseRecorder: rec}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res.body))
		require.Equal(t, rec.Code, res.body.StatusCode)
	}
	return res
}

func jsonRequest(t *testing.T, method, path, token string, body any) *http.Request {
	t.Helper()
	var r io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func multipartRequest(t *testing.T, method, path, token string, fields map[string]string, files map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for field, name := range files {
		fw, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = fw.Write([]byte("\x89PNG\r\n\x1a\nfake image"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

type session struct {
	UserID       string
	AccessToken  string
	RefreshToken string
}

func (a *testAPI) register(t *testing.T, username string) {
	t.Helper()
	res := a.do(t, multipartRequest(t, http.MethodPost, "/api/v1/users/register", "", map[string]string{
		"displayName": "Display " + username,
		"email":       username + "@x.io",
		"username":    username,
		"password":    username + "-pw",
	}, nil))
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
}

func (a *testAPI) login(t *testing.T, username string) session {
	t.Helper()
	res := a.do(t, jsonRequest(t, http.MethodPost, "/api/v1/users/login", "", map[string]string{
		"username": username,
		"password": username + "-pw",
	}))
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())

	var out struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	res.data(t, &out)
	return session{UserID: out.User.ID, AccessToken: out.AccessToken, RefreshToken: out.RefreshToken}
}

func (a *testAPI) signUp(t *testing.T, username string) session {
	t.Helper()
	a.register(t, username)
	return a.login(t, username)
}
