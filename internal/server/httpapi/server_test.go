package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avoronins/inkpost/internal/common"
	"github.com/avoronins/inkpost/internal/logging"
	"github.com/avoronins/inkpost/internal/server/config"
	"github.com/avoronins/inkpost/internal/server/models"
	"github.com/avoronins/inkpost/internal/server/services"
)

// ---- stubs ----

type stubUserService struct {
	signUpFunc       func(ctx context.Context, userName, password string) (*models.User, *services.TokenPair, error)
	signInFunc       func(ctx context.Context, userName, password string) (*models.User, *services.TokenPair, error)
	refreshFunc      func(ctx context.Context, refreshToken string) (*models.User, *services.TokenPair, error)
	logoutFunc       func(ctx context.Context, userID string) error
	authenticateFunc func(ctx context.Context, accessToken string) (*models.User, error)
}

func (s *stubUserService) SignUp(ctx context.Context, u, p string) (*models.User, *services.TokenPair, error) {
	return s.signUpFunc(ctx, u, p)
}
func (s *stubUserService) SignIn(ctx context.Context, u, p string) (*models.User, *services.TokenPair, error) {
	return s.signInFunc(ctx, u, p)
}
func (s *stubUserService) Refresh(ctx context.Context, t string) (*models.User, *services.TokenPair, error) {
	return s.refreshFunc(ctx, t)
}
func (s *stubUserService) Logout(ctx context.Context, id string) error {
	return s.logoutFunc(ctx, id)
}
func (s *stubUserService) Authenticate(ctx context.Context, t string) (*models.User, error) {
	return s.authenticateFunc(ctx, t)
}
func (s *stubUserService) RefreshTokenValidity() time.Duration { return 24 * time.Hour }

type stubArticleService struct {
	createFunc func(ctx context.Context, authorID, title, body, imageKey string) (*models.Article, error)
	getFunc    func(ctx context.Context, slug string) (*models.Article, error)
	listFunc   func(ctx context.Context, limit, offset int) ([]*models.Article, error)
	updateFunc func(ctx context.Context, userID, slug, title, body, imageKey string) (*models.Article, error)
	deleteFunc func(ctx context.Context, userID, slug string) error
}

func (s *stubArticleService) Create(ctx context.Context, a, t, b, k string) (*models.Article, error) {
	return s.createFunc(ctx, a, t, b, k)
}
func (s *stubArticleService) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	return s.getFunc(ctx, slug)
}
func (s *stubArticleService) List(ctx context.Context, l, o int) ([]*models.Article, error) {
	return s.listFunc(ctx, l, o)
}
func (s *stubArticleService) Update(ctx context.Context, u, sl, t, b, k string) (*models.Article, error) {
	return s.updateFunc(ctx, u, sl, t, b, k)
}
func (s *stubArticleService) Delete(ctx context.Context, u, sl string) error {
	return s.deleteFunc(ctx, u, sl)
}
func (s *stubArticleService) PresignedImageUpload(ctx context.Context) (string, string, error) {
	return "images/2026/01/01/key", "https://s3.example/upload", nil
}
func (s *stubArticleService) PresignedImageURL(ctx context.Context, key string) (string, error) {
	return "https://s3.example/get/" + key, nil
}

func testUser() *models.User {
	return &models.User{ID: "user-1", UserName: "alice", TokenVersion: 0}
}

func newTestServer(us UserService, as ArticleService) *Server {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	if as == nil {
		as = &stubArticleService{}
	}
	return NewServer(cfg, logging.NewDefault(), us, as)
}

func do(t *testing.T, s *Server, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

// ---- TESTS ----

func TestGuard_MissingHeader(t *testing.T) {
	us := &stubUserService{
		authenticateFunc: func(ctx context.Context, token string) (*models.User, error) {
			t.Fatal("Authenticate must not be called without a header")
			return nil, nil
		},
	}
	s := newTestServer(us, nil)

	w := do(t, s, http.MethodGet, "/users/me", "", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"message":"Missing authorization header"}`, w.Body.String())
}

func TestGuard_BadScheme(t *testing.T) {
	us := &stubUserService{}
	s := newTestServer(us, nil)

	w := do(t, s, http.MethodGet, "/users/me", "", map[string]string{"Authorization": "Basic abc"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"message":"Missing authorization header"}`, w.Body.String())
}

func TestGuard_StatusBodies(t *testing.T) {
	tests := []struct {
		name    string
		authErr error
		message string
	}{
		{"invalid token", common.ErrInvalidToken, "Invalid or expired token"},
		{"expired token", common.ErrTokenExpired, "Invalid or expired token"},
		{"revoked token", common.ErrTokenRevoked, "Token revoked"},
		{"deleted user", common.ErrUnauthorized, "Invalid or expired token"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			us := &stubUserService{
				authenticateFunc: func(ctx context.Context, token string) (*models.User, error) {
					return nil, tc.authErr
				},
			}
			s := newTestServer(us, nil)

			w := do(t, s, http.MethodGet, "/users/me", "", map[string]string{"Authorization": "Bearer some-token"})

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.JSONEq(t, `{"message":"`+tc.message+`"}`, w.Body.String())
		})
	}
}

func TestGuard_PassesIdentityDownstream(t *testing.T) {
	us := &stubUserService{
		authenticateFunc: func(ctx context.Context, token string) (*models.User, error) {
			require.Equal(t, "good-token", token)
			return testUser(), nil
		},
	}
	s := newTestServer(us, nil)

	w := do(t, s, http.MethodGet, "/users/me", "", map[string]string{"Authorization": "Bearer good-token"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":{"id":"user-1","username":"alice","tokenVersion":0}}`, w.Body.String())
}

func TestSignUp_SetsRefreshCookie(t *testing.T) {
	us := &stubUserService{
		signUpFunc: func(ctx context.Context, u, p string) (*models.User, *services.TokenPair, error) {
			return testUser(), &services.TokenPair{AccessToken: "acc", RefreshToken: "ref"}, nil
		},
	}
	s := newTestServer(us, nil)

	w := do(t, s, http.MethodPost, "/auth/signup",
		`{"username":"alice","password":"longenough1"}`,
		map[string]string{"Content-Type": "application/json"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"accessToken":"acc","user":{"id":"user-1","username":"alice","tokenVersion":0}}`,
		w.Body.String())

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, "refresh_token", cookie.Name)
	assert.Equal(t, "ref", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, int((24 * time.Hour).Seconds()), cookie.MaxAge)
}

func TestSignUp_Conflict(t *testing.T) {
	us := &stubUserService{
		signUpFunc: func(ctx context.Context, u, p string) (*models.User, *services.TokenPair, error) {
			return nil, nil, common.ErrAlreadyExists
		},
	}
	s := newTestServer(us, nil)

	w := do(t, s, http.MethodPost, "/auth/signup",
		`{"username":"alice","password":"longenough1"}`, nil)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSignUp_ValidationMessageSurfaced(t *testing.T) {
	us := &stubUserService{
		signUpFunc: func(ctx context.Context, u, p string) (*models.User, *services.TokenPair, error) {
			return nil, nil, fmt.Errorf("%w: password must be at least 8 characters", common.ErrValidation)
		},
	}
	s := newTestServer(us, nil)

	w := do(t, s, http.MethodPost, "/auth/signup", `{"username":"alice","password":"x"}`, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"message":"password must be at least 8 characters"}`, w.Body.String())
}

func TestSignIn_InvalidCredentials(t *testing.T) {
	us := &stubUserService{
		signInFunc: func(ctx context.Context, u, p string) (*models.User, *services.TokenPair, error) {
			return nil, nil, common.ErrUnauthorized
		},
	}
	s := newTestServer(us, nil)

	w := do(t, s, http.MethodPost, "/auth/signin",
		`{"username":"alice","password":"wrong"}`, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"message":"Invalid credentials"}`, w.Body.String())
}

func TestRefresh_MissingCookie(t *testing.T) {
	us := &stubUserService{
		refreshFunc: func(ctx context.Context, token string) (*models.User, *services.TokenPair, error) {
			t.Fatal("Refresh must not be called without a cookie")
			return nil, nil, nil
		},
	}
	s := newTestServer(us, nil)

	w := do(t, s, http.MethodPost, "/auth/refresh", "", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"message":"Missing refresh token"}`, w.Body.String())
}

func TestRefresh_RotatesCookie(t *testing.T) {
	us := &stubUserService{
		refreshFunc: func(ctx context.Context, token string) (*models.User, *services.TokenPair, error) {
			require.Equal(t, "old-refresh", token)
			return testUser(), &services.TokenPair{AccessToken: "new-acc", RefreshToken: "new-ref"}, nil
		},
	}
	s := newTestServer(us, nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "old-refresh"})
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "new-ref", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestRefresh_RevokedClearsCookie(t *testing.T) {
	us := &stubUserService{
		refreshFunc: func(ctx context.Context, token string) (*models.User, *services.TokenPair, error) {
			return nil, nil, common.ErrTokenRevoked
		},
	}
	s := newTestServer(us, nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "revoked"})
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"message":"Token revoked"}`, w.Body.String())

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestLogout_ClearsCookie(t *testing.T) {
	loggedOut := ""
	us := &stubUserService{
		authenticateFunc: func(ctx context.Context, token string) (*models.User, error) {
			return testUser(), nil
		},
		logoutFunc: func(ctx context.Context, userID string) error {
			loggedOut = userID
			return nil
		},
	}
	s := newTestServer(us, nil)

	w := do(t, s, http.MethodPost, "/auth/logout", "", map[string]string{"Authorization": "Bearer acc"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", loggedOut)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestArticles_MutationRequiresAuth(t *testing.T) {
	us := &stubUserService{}
	s := newTestServer(us, nil)

	w := do(t, s, http.MethodPost, "/articles", `{"title":"t","body":"b"}`, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestArticles_ForbiddenUpdate(t *testing.T) {
	us := &stubUserService{
		authenticateFunc: func(ctx context.Context, token string) (*models.User, error) {
			return testUser(), nil
		},
	}
	as := &stubArticleService{
		updateFunc: func(ctx context.Context, userID, slug, title, body, imageKey string) (*models.Article, error) {
			return nil, common.ErrForbidden
		},
	}
	s := newTestServer(us, as)

	w := do(t, s, http.MethodPut, "/articles/some-post",
		`{"title":"t","body":"b"}`, map[string]string{"Authorization": "Bearer acc"})

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestArticles_PublicRead(t *testing.T) {
	us := &stubUserService{}
	as := &stubArticleService{
		getFunc: func(ctx context.Context, slug string) (*models.Article, error) {
			return &models.Article{Slug: slug, Title: "T", Body: "B", AuthorID: "user-1"}, nil
		},
	}
	s := newTestServer(us, as)

	w := do(t, s, http.MethodGet, "/articles/some-post", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"slug":"some-post"`)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(&stubUserService{}, nil)

	w := do(t, s, http.MethodGet, "/healthz", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
}
