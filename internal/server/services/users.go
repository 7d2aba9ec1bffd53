// Package services contains server-side business logic. This file implements
// UserService: signup, signin, token refresh, logout (revocation), and
// request-time authentication against the per-user TokenVersion counter.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/avoronins/inkpost/internal/common"
	"github.com/avoronins/inkpost/internal/server/auth"
	"github.com/avoronins/inkpost/internal/server/config"
	"github.com/avoronins/inkpost/internal/server/models"
	"github.com/avoronins/inkpost/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
// Both embed the same TokenVersion snapshot; the pair constitutes a session.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

var userNameRe = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// UserService provides authentication-related operations:
//   - SignUp: create users and mint the first token pair
//   - SignIn: verify credentials and mint tokens
//   - Refresh: verify the refresh token, re-check the revocation counter,
//     and mint a fresh pair (rotation on every use)
//   - Logout: bump TokenVersion, invalidating every outstanding token
//   - Authenticate: verify an access token for the request guard
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	accessSecret                 []byte
	refreshSecret                []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		accessSecret:                 []byte(cfg.AccessTokenSecret),
		refreshSecret:                []byte(cfg.RefreshTokenSecret),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// SignUp creates a new user with the given username and password and returns
// the user together with its first token pair. Duplicate usernames yield
// common.ErrAlreadyExists, malformed input common.ErrValidation.
func (s *UserService) SignUp(ctx context.Context, userName, password string) (*models.User, *TokenPair, error) {
	if err := validateCredentials(userName, password); err != nil {
		return nil, nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, common.ErrInternal
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.Create(ctx, &models.User{UserName: userName, PasswordHash: string(hash)})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, nil, common.ErrAlreadyExists
		}
		return nil, nil, fmt.Errorf("error creating user: %w", err)
	}

	pair, err := s.mintTokenPair(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// SignIn verifies the username/password pair and, on success, returns the
// user and a new token pair. Unknown username and wrong password are
// indistinguishable to the caller (common.ErrUnauthorized) so that account
// existence cannot be probed.
func (s *UserService) SignIn(ctx context.Context, userName, password string) (*models.User, *TokenPair, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByUserName(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil, common.ErrUnauthorized
		}
		return nil, nil, common.ErrInternal
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil, common.ErrUnauthorized
	}

	pair, err := s.mintTokenPair(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh validates a refresh token, re-checks the revocation counter, and
// returns the user with a freshly minted pair (both tokens rotate). A token
// whose embedded version lags the stored one yields common.ErrTokenRevoked.
// Note that rotation itself does not bump the counter, so a previous refresh
// token stays valid until logout or expiry.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*models.User, *TokenPair, error) {
	claims, err := auth.ParseToken(refreshToken, s.refreshSecret)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.userForClaims(ctx, claims)
	if err != nil {
		return nil, nil, err
	}

	pair, err := s.mintTokenPair(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Logout revokes every outstanding token for userID by incrementing the
// stored TokenVersion. The refresh token just used is invalidated too.
func (s *UserService) Logout(ctx context.Context, userID string) error {
	repo := s.repomanager.Users(s.db)
	if _, err := repo.IncrementTokenVersion(ctx, userID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrUnauthorized
		}
		return fmt.Errorf("error revoking tokens: %w", err)
	}
	return nil
}

// Authenticate verifies an access token and returns the matching user.
// Used by the HTTP guard. Failure modes:
//   - bad signature / malformed / expired → common.ErrInvalidToken or
//     common.ErrTokenExpired
//   - user deleted since issuance → common.ErrUnauthorized
//   - TokenVersion mismatch → common.ErrTokenRevoked
func (s *UserService) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	claims, err := auth.ParseToken(accessToken, s.accessSecret)
	if err != nil {
		return nil, err
	}
	return s.userForClaims(ctx, claims)
}

// --- helpers below ---

func (s *UserService) userForClaims(ctx context.Context, claims *auth.Claims) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, claims.UserID)
	if err != nil {
		// A token may outlive its account. Missing user is a clean
		// authentication failure, not an internal error.
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, common.ErrInternal
	}

	if user.TokenVersion != claims.TokenVersion {
		return nil, common.ErrTokenRevoked
	}

	return user, nil
}

func (s *UserService) mintTokenPair(user *models.User) (*TokenPair, error) {
	access, err := auth.IssueToken(user.ID, user.TokenVersion, s.accessSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrInternal
	}
	refresh, err := auth.IssueToken(user.ID, user.TokenVersion, s.refreshSecret, s.refreshTokenValidityDuration)
	if err != nil {
		return nil, common.ErrInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func validateCredentials(userName, password string) error {
	if len(userName) < 3 || len(userName) > 64 {
		return fmt.Errorf("%w: username must be between 3 and 64 characters", common.ErrValidation)
	}
	if !userNameRe.MatchString(userName) {
		return fmt.Errorf("%w: username may contain letters, digits, '_', '.' and '-'", common.ErrValidation)
	}
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", common.ErrValidation)
	}
	return nil
}

// RefreshTokenValidity exposes the configured refresh lifetime; the HTTP
// layer uses it as the cookie max age.
func (s *UserService) RefreshTokenValidity() time.Duration {
	return s.refreshTokenValidityDuration
}
