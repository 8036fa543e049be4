package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kellyw/taskdeck/internal/auth"
	"github.com/kellyw/taskdeck/internal/model"
	"github.com/kellyw/taskdeck/internal/repository"
)

// ErrInvalidCredentials is returned for any password sign-in failure. The
// caller gets no hint whether the account or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// maxUsernameAttempts bounds the suffix search when deriving a username from
// an email local part. Hitting it means something is pathologically wrong
// with the directory, not that the namespace is genuinely full.
const maxUsernameAttempts = 1000

// AuthResult is a successful sign-in: the resolved account and a session
// token for it.
type AuthResult struct {
	User  *model.User
	Token string
}

// AuthService resolves external and password identities to directory
// accounts and issues session tokens.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(users repository.UserRepository, tokens *auth.TokenService, passwords *auth.PasswordService, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// SignInWithOAuth resolves verified OAuth claims to an account, creating or
// linking one as needed, and returns it with a fresh session token.
//
// Resolution order:
//  1. A user already linked to this (provider, subject) pair signs in as-is.
//  2. Otherwise an existing user with the same email gets the identity
//     linked to their account.
//  3. Otherwise a new account is created with a username derived from the
//     email local part, suffixed _1, _2, ... until free.
func (s *AuthService) SignInWithOAuth(ctx context.Context, claims *auth.OAuthClaims) (*AuthResult, error) {
	if claims == nil || claims.Subject == "" {
		return nil, fmt.Errorf("auth: missing OAuth subject")
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("auth: missing OAuth email")
	}

	user, err := s.users.GetByOAuthIdentity(ctx, claims.Provider, claims.Subject)
	if err != nil {
		return nil, err
	}

	if user == nil {
		user, err = s.users.GetByEmail(ctx, claims.Email)
		if err != nil {
			return nil, err
		}
		if user != nil {
			user, err = s.users.LinkOAuthIdentity(ctx, user.Key(), claims.Provider, claims.Subject)
			if err != nil {
				return nil, err
			}
			s.logger.Info("linked OAuth identity to existing account",
				slog.Int64("userID", user.ID),
				slog.String("provider", claims.Provider),
			)
		}
	}

	if user == nil {
		user, err = s.registerOAuthUser(ctx, claims)
		if err != nil {
			return nil, err
		}
		s.logger.Info("created account from OAuth sign-in",
			slog.Int64("userID", user.ID),
			slog.String("provider", claims.Provider),
		)
	}

	token, err := s.tokens.Generate(user.Key(), user.Email, claims.Provider)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

// SignInWithPassword authenticates by username or email plus password. Every
// failure mode collapses to ErrInvalidCredentials except store errors, which
// pass through.
func (s *AuthService) SignInWithPassword(ctx context.Context, usernameOrEmail, password string) (*AuthResult, error) {
	usernameOrEmail = strings.TrimSpace(usernameOrEmail)
	if usernameOrEmail == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, usernameOrEmail)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user, err = s.users.GetByEmail(ctx, usernameOrEmail)
		if err != nil {
			return nil, err
		}
	}
	if user == nil || user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.Key(), user.Email, "")
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

func (s *AuthService) registerOAuthUser(ctx context.Context, claims *auth.OAuthClaims) (*model.User, error) {
	username, err := s.deriveUsername(ctx, claims.Email)
	if err != nil {
		return nil, err
	}

	first, last := claims.GivenName, claims.FamilyName
	if first == "" && claims.Name != "" {
		first, last = splitName(claims.Name)
	}

	return s.users.CreateOAuth(ctx, repository.CreateOAuthUserParams{
		Username:       username,
		Email:          claims.Email,
		FirstName:      first,
		LastName:       last,
		Provider:       claims.Provider,
		OAuthID:        claims.Subject,
		ProfilePicture: claims.Picture,
	})
}

// deriveUsername turns the email local part into a free username, appending
// _1, _2, ... on collision.
func (s *AuthService) deriveUsername(ctx context.Context, email string) (string, error) {
	base := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		base = email[:at]
	}

	candidate := base
	for i := 1; i <= maxUsernameAttempts; i++ {
		existing, err := s.users.GetByUsername(ctx, candidate)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s_%d", base, i)
	}
	return "", fmt.Errorf("auth: no free username for %q after %d attempts", base, maxUsernameAttempts)
}

func splitName(full string) (first, last string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
