package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI mimics the account endpoints closely enough to exercise cookie
// and CSRF handling.
type fakeAPI struct {
	mu        sync.Mutex
	users     map[string]string
	verified  map[string]bool
	lastPath  string
	lastCSRF  string
	lastAuth  string
	csrfValue string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{users: map[string]string{}, verified: map[string]bool{}, csrfValue: "CSRFCSRFCSRFCSRFCSRFCSRFCSRFCSRF"}
}

func writeErr(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"code": code, "message": msg})
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPath = r.URL.EscapedPath()
	f.lastCSRF = r.Header.Get(common.CSRFHeaderName)
	f.lastAuth = r.Header.Get("Authorization")

	protected := func() bool {
		if f.lastAuth != "JWT tok-1" {
			writeErr(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
			return false
		}
		ck, err := r.Cookie(common.CSRFServerCookieName)
		if err != nil || ck.Value != f.lastCSRF {
			writeErr(w, http.StatusForbidden, "CSRF_INVALID", "forbidden: csrf")
			return false
		}
		return true
	}

	switch {
	case r.URL.Path == "/auth/":
		_, _ = io.WriteString(w, `{"status":"ok"}`)
	case r.URL.Path == "/create-user":
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if _, ok := f.users[req["username"]]; ok {
			writeErr(w, http.StatusConflict, "CONFLICT", "already exists: username already taken")
			return
		}
		f.users[req["username"]] = req["password"]
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "11111111-1111-1111-1111-111111111111", "username": req["username"], "email": req["email"]})
	case r.URL.Path == "/auth/token/get":
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if pw, ok := f.users[req["username"]]; !ok || pw != req["password"] {
			writeErr(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized: invalid username or password")
			return
		}
		http.SetCookie(w, &http.Cookie{Name: common.CSRFServerCookieName, Value: f.csrfValue, Path: "/", HttpOnly: true})
		http.SetCookie(w, &http.Cookie{Name: common.CSRFClientCookieName, Value: f.csrfValue, Path: "/"})
		_ = json.NewEncoder(w).Encode(map[string]any{"token": "tok-1", "expires_at": time.Now().Add(time.Hour)})
	case r.URL.Path == "/users/me":
		if protected() {
			_ = json.NewEncoder(w).Encode(map[string]any{"username": "alice", "verified": f.verified["alice"]})
		}
	case r.URL.Path == "/users/me/update-password":
		if protected() {
			b, _ := io.ReadAll(r.Body)
			f.users["alice"] = string(b)
		}
	case r.URL.Path == "/users/delete-user":
		if protected() {
			delete(f.users, "alice")
		}
	case r.URL.Path == "/users/available/username":
		b, _ := io.ReadAll(r.Body)
		if _, ok := f.users[string(b)]; ok {
			w.WriteHeader(http.StatusConflict)
		}
	case strings.HasPrefix(r.URL.Path, "/users/verify/"):
		if r.URL.Path != "/users/verify/alice/ABCD1234" {
			writeErr(w, http.StatusForbidden, "FORBIDDEN", "forbidden: invalid verification token")
			return
		}
		f.verified["alice"] = true
	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t *testing.T) (*HTTPClient, *fakeAPI) {
	t.Helper()
	api := newFakeAPI()
	ts := httptest.NewServer(api)
	t.Cleanup(ts.Close)

	c, err := NewHTTPClient(ts.URL+"/", 2*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, api
}

func TestNewHTTPClient_RejectsBadURL(t *testing.T) {
	_, err := NewHTTPClient("ftp://example.com", time.Second)
	require.Error(t, err)
	_, err = NewHTTPClient("://", time.Second)
	require.Error(t, err)
}

func TestPing(t *testing.T) {
	c, api := newTestClient(t)
	require.NoError(t, c.Ping(context.Background()))
	assert.Equal(t, "/auth/", api.lastPath)
}

func TestPing_Unavailable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c, err := NewHTTPClient(url, time.Second)
	require.NoError(t, err)
	require.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)
}

func TestSessionFlow(t *testing.T) {
	c, api := newTestClient(t)
	ctx := context.Background()

	acc, err := c.Register(ctx, "alice", "alice@example.com", []byte("pw"))
	require.NoError(t, err)
	assert.Equal(t, "alice", acc.Username)

	_, err = c.Register(ctx, "alice", "alice@example.com", []byte("pw"))
	require.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "username already taken")

	_, err = c.Me(ctx)
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = c.Login(ctx, "alice", []byte("nope"))
	require.ErrorIs(t, err, ErrUnauthorized)

	sess, err := c.Login(ctx, "alice", []byte("pw"))
	require.NoError(t, err)
	assert.Equal(t, "tok-1", sess.Token)

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Username)
	assert.Equal(t, "JWT tok-1", api.lastAuth)
	assert.Equal(t, api.csrfValue, api.lastCSRF)

	require.NoError(t, c.ChangePassword(ctx, []byte("pw2")))
	assert.Equal(t, "pw2", api.users["alice"])

	require.NoError(t, c.Delete(ctx))
	_, err = c.Me(ctx)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestVerify(t *testing.T) {
	c, api := newTestClient(t)
	ctx := context.Background()

	require.ErrorIs(t, c.Verify(ctx, "alice", "WRONG"), ErrForbidden)
	require.NoError(t, c.Verify(ctx, "alice", "ABCD1234"))
	assert.True(t, api.verified["alice"])

	_ = c.Verify(ctx, "a/b", "x y")
	assert.Equal(t, "/users/verify/a%2Fb/x%20y", api.lastPath)
}

func TestUsernameAvailable(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	ok, err := c.UsernameAvailable(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = c.Register(ctx, "alice", "alice@example.com", []byte("pw"))
	require.NoError(t, err)

	ok, err = c.UsernameAvailable(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStatusError(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusConflict, ErrConflict},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusBadRequest, ErrInvalidInput},
		{http.StatusInternalServerError, ErrServer},
	}
	for _, tt := range tests {
		resp := &http.Response{StatusCode: tt.status, Body: io.NopCloser(strings.NewReader("not json"))}
		err := statusError(resp)
		require.ErrorIs(t, err, tt.want)
		assert.Contains(t, err.Error(), "status")
	}
}
