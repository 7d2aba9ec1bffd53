// Package api is the HTTP client for the Inkpost server. It owns the cookie
// jar holding the refresh token and the reauthenticating transport, so
// callers never deal with tokens directly: they call methods and get either
// data or a sentinel error.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/avoronins/inkpost/internal/client/session"
	"github.com/avoronins/inkpost/internal/common"
)

type Client struct {
	baseURL string
	store   *session.Store

	// httpClient routes through the reauth transport; refreshClient shares
	// the same jar but not the transport, so refresh calls cannot recurse.
	httpClient    *http.Client
	refreshClient *http.Client
}

func New(baseURL string, store *session.Store, timeout time.Duration) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	c := &Client{baseURL: baseURL, store: store}
	c.refreshClient = &http.Client{Jar: jar, Timeout: timeout}
	c.httpClient = &http.Client{
		Jar:     jar,
		Timeout: timeout,
		Transport: &reauthTransport{
			base:    http.DefaultTransport,
			store:   store,
			refresh: c.doRefresh,
		},
	}
	return c, nil
}

// ---- wire types ----

type userPayload struct {
	ID           string `json:"id"`
	UserName     string `json:"username"`
	TokenVersion int    `json:"tokenVersion"`
}

type authResponse struct {
	AccessToken string      `json:"accessToken"`
	User        userPayload `json:"user"`
}

type Article struct {
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	ImageKey  string    `json:"imageKey,omitempty"`
	AuthorID  string    `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (p userPayload) toSessionUser() session.User {
	return session.User{ID: p.ID, UserName: p.UserName, TokenVersion: p.TokenVersion}
}

// ---- auth ----

func (c *Client) SignUp(ctx context.Context, userName, password string) (session.User, error) {
	return c.authenticate(ctx, "/auth/signup", userName, password)
}

func (c *Client) SignIn(ctx context.Context, userName, password string) (session.User, error) {
	return c.authenticate(ctx, "/auth/signin", userName, password)
}

func (c *Client) authenticate(ctx context.Context, path, userName, password string) (session.User, error) {
	var out authResponse
	err := c.do(ctx, http.MethodPost, path,
		map[string]string{"username": userName, "password": password}, &out)
	if err != nil {
		return session.User{}, err
	}

	c.store.Set(session.Session{AccessToken: out.AccessToken, User: out.User.toSessionUser()})
	return out.User.toSessionUser(), nil
}

// Logout revokes every token for the account server-side and drops the local
// session regardless of the outcome.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
	c.store.Clear()
	return err
}

// doRefresh is the refreshFunc wired into the reauth transport. It talks to
// the server through refreshClient, so a failing refresh can never trigger
// another refresh.
func (c *Client) doRefresh(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/refresh", nil)
	if err != nil {
		return "", err
	}

	resp, err := c.refreshClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", ErrUnauthorized
	}

	var out authResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}

	c.store.Set(session.Session{AccessToken: out.AccessToken, User: out.User.toSessionUser()})
	return out.AccessToken, nil
}

// ---- platform ----

func (c *Client) Me(ctx context.Context) (session.User, error) {
	var out struct {
		User userPayload `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, &out); err != nil {
		return session.User{}, err
	}
	return out.User.toSessionUser(), nil
}

func (c *Client) ListArticles(ctx context.Context) ([]Article, error) {
	var out struct {
		Articles []Article `json:"articles"`
	}
	if err := c.do(ctx, http.MethodGet, "/articles", nil, &out); err != nil {
		return nil, err
	}
	return out.Articles, nil
}

func (c *Client) GetArticle(ctx context.Context, slug string) (Article, error) {
	var out Article
	err := c.do(ctx, http.MethodGet, "/articles/"+slug, nil, &out)
	return out, err
}

func (c *Client) CreateArticle(ctx context.Context, title, body, imageKey string) (Article, error) {
	var out Article
	err := c.do(ctx, http.MethodPost, "/articles",
		map[string]string{"title": title, "body": body, "imageKey": imageKey}, &out)
	return out, err
}

func (c *Client) UpdateArticle(ctx context.Context, slug, title, body, imageKey string) (Article, error) {
	var out Article
	err := c.do(ctx, http.MethodPut, "/articles/"+slug,
		map[string]string{"title": title, "body": body, "imageKey": imageKey}, &out)
	return out, err
}

func (c *Client) DeleteArticle(ctx context.Context, slug string) error {
	return c.do(ctx, http.MethodDelete, "/articles/"+slug, nil, nil)
}

// ImageUploadURL asks the server for a presigned PUT target; the returned key
// is later attached to an article.
func (c *Client) ImageUploadURL(ctx context.Context) (key, url string, err error) {
	var out struct {
		Key string `json:"key"`
		URL string `json:"url"`
	}
	if err := c.do(ctx, http.MethodPost, "/images/upload-url", nil, &out); err != nil {
		return "", "", err
	}
	return out.Key, out.URL, nil
}

// ---- plumbing ----

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return errorFromResponse(resp)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func errorFromResponse(resp *http.Response) error {
	var payload struct {
		Message string `json:"message"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	if payload.Message == "" {
		payload.Message = resp.Status
	}

	var sentinel error
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		sentinel = ErrUnauthorized
	case http.StatusForbidden:
		sentinel = common.ErrForbidden
	case http.StatusNotFound:
		sentinel = common.ErrNotFound
	case http.StatusConflict:
		sentinel = common.ErrAlreadyExists
	case http.StatusUnprocessableEntity:
		sentinel = common.ErrValidation
	default:
		sentinel = common.ErrInternal
	}

	return fmt.Errorf("%w: %s", sentinel, payload.Message)
}
