package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client

	mu    sync.Mutex
	token string
}

func NewHTTPClient(base string, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return nil, fmt.Errorf("server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url: unsupported scheme %q", u.Scheme)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	return &HTTPClient{
		baseURL: u,
		http: &http.Client{
			Jar:     jar,
			Timeout: timeout,
			// the login endpoint answers 302 to an existing session; surface it
			CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
		},
	}, nil
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/auth/", nil, false, nil)
}

func (c *HTTPClient) Register(ctx context.Context, username, email string, password []byte) (*Account, error) {
	body, err := json.Marshal(map[string]string{
		"username": username,
		"email":    email,
		"password": string(password),
	})
	if err != nil {
		return nil, err
	}
	var a Account
	if err := c.do(ctx, http.MethodPost, "/create-user", jsonBody(body), false, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Login authenticates and keeps the returned session for later calls.
// If the server reports an existing session, that session is kept.
func (c *HTTPClient) Login(ctx context.Context, username string, password []byte) (*Session, error) {
	body, err := json.Marshal(map[string]string{"username": username, "password": string(password)})
	if err != nil {
		return nil, err
	}
	var s Session
	if err := c.do(ctx, http.MethodPost, "/auth/token/get", jsonBody(body), false, &s); err != nil {
		return nil, err
	}
	if s.Token != "" {
		c.setToken(s.Token)
	}
	return &s, nil
}

func (c *HTTPClient) Renew(ctx context.Context) (*Session, error) {
	var s Session
	if err := c.do(ctx, http.MethodPost, "/auth/token/renew", nil, true, &s); err != nil {
		return nil, err
	}
	c.setToken(s.Token)
	return &s, nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodGet, "/auth/logout", nil, false, nil)
	c.setToken("")
	return err
}

func (c *HTTPClient) Me(ctx context.Context) (*Account, error) {
	var a Account
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, true, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *HTTPClient) Verify(ctx context.Context, username, token string) error {
	path := "/users/verify/" + url.PathEscape(username) + "/" + url.PathEscape(token)
	return c.do(ctx, http.MethodGet, path, nil, false, nil)
}

func (c *HTTPClient) ChangePassword(ctx context.Context, password []byte) error {
	return c.do(ctx, http.MethodPost, "/users/me/update-password", rawBody(string(password)), true, nil)
}

func (c *HTTPClient) Delete(ctx context.Context) error {
	if err := c.do(ctx, http.MethodDelete, "/users/delete-user", nil, true, nil); err != nil {
		return err
	}
	c.setToken("")
	return nil
}

func (c *HTTPClient) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	return c.available(ctx, "/users/available/username", username)
}

func (c *HTTPClient) EmailAvailable(ctx context.Context, email string) (bool, error) {
	return c.available(ctx, "/users/available/email", email)
}

func (c *HTTPClient) available(ctx context.Context, path, value string) (bool, error) {
	err := c.do(ctx, http.MethodPost, path, rawBody(value), false, nil)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrConflict):
		return false, nil
	default:
		return false, err
	}
}

func (c *HTTPClient) setToken(t string) {
	c.mu.Lock()
	c.token = t
	c.mu.Unlock()
}

func (c *HTTPClient) currentToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

type requestBody struct {
	r           io.Reader
	contentType string
}

func jsonBody(b []byte) *requestBody {
	return &requestBody{r: bytes.NewReader(b), contentType: "application/json"}
}

func rawBody(s string) *requestBody {
	return &requestBody{r: strings.NewReader(s), contentType: "text/plain; charset=utf-8"}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// do sends one request. With csrf set, the readable CSRF cookie is echoed
// in the header. A 2xx or 302 response is decoded into out when out is set.
func (c *HTTPClient) do(ctx context.Context, method, path string, body *requestBody, csrf bool, out any) error {
	u := c.baseURL.JoinPath(path)

	var r io.Reader
	if body != nil {
		r = body.r
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), r)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", body.contentType)
	}
	req.Header.Set("Accept", "application/json")
	if tok := c.currentToken(); tok != "" {
		req.Header.Set("Authorization", common.AuthScheme+" "+tok)
	}
	if csrf {
		req.Header.Set(common.CSRFHeaderName, c.cookie(common.CSRFClientCookieName))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusFound || (resp.StatusCode >= 200 && resp.StatusCode < 300) {
		if out == nil || resp.StatusCode == http.StatusFound {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}

	return statusError(resp)
}

func (c *HTTPClient) cookie(name string) string {
	for _, ck := range c.http.Jar.Cookies(c.baseURL) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

func statusError(resp *http.Response) error {
	var sentinel error
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		sentinel = ErrUnauthorized
	case resp.StatusCode == http.StatusForbidden:
		sentinel = ErrForbidden
	case resp.StatusCode == http.StatusConflict:
		sentinel = ErrConflict
	case resp.StatusCode == http.StatusNotFound:
		sentinel = ErrNotFound
	case resp.StatusCode == http.StatusBadRequest:
		sentinel = ErrInvalidInput
	default:
		sentinel = ErrServer
	}

	var eb errorBody
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	if json.Unmarshal(data, &eb) == nil && eb.Message != "" {
		return fmt.Errorf("%w: %s", sentinel, eb.Message)
	}
	return fmt.Errorf("%w: status %d", sentinel, resp.StatusCode)
}
