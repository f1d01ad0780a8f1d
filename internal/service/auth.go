// Package service contains the business logic layer of the application.
//
// The layering follows the usual three-layer shape:
//
//	Handler (HTTP)     → parses requests, writes responses
//	Service (business) → validates, enforces rules, orchestrates
//	Repository (data)  → reads/writes the database
//
// Services receive repository interfaces, never concrete types, so tests can
// inject in-memory mocks and the HTTP layer stays swappable.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/rs/xid"

	"github.com/harshyelwatkar/rapmania/internal/apperror"
	"github.com/harshyelwatkar/rapmania/internal/auth"
	"github.com/harshyelwatkar/rapmania/internal/model"
	"github.com/harshyelwatkar/rapmania/internal/repository"
)

const (
	MinUsernameLength = 3
	MinPasswordLength = 6
)

// avatarURLFor builds the default profile picture for a new account.
func avatarURLFor(username string) string {
	return "https://api.dicebear.com/7.x/avataaars/svg?seed=" + username
}

// AuthService handles sign-up, sign-in, and the Google identity flow.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the user record and the issued session token so the
// HTTP handler can set the cookie and respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// SignUp registers a password account.
//
// Duplicate email/username are checked here for friendly field-level errors;
// whatever races past these checks is still caught by the schema's UNIQUE
// constraints and surfaces as a generic persistence error.
func (s *AuthService) SignUp(ctx context.Context, username, email, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if len(username) < MinUsernameLength {
		return nil, apperror.ValidationFailed("username",
			fmt.Sprintf("username must be at least %d characters", MinUsernameLength))
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperror.ValidationFailed("email", "please enter a valid email")
	}
	if len(password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, apperror.Conflict("user", "email already in use")
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/auth: checking email: %w", err)
	}
	if _, err := s.users.GetUserByUsername(ctx, username); err == nil {
		return nil, apperror.Conflict("user", "username already taken")
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/auth: checking username: %w", err)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: &hash,
		AvatarURL:    avatarURLFor(username),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: creating user %q: %w", username, err)
	}

	s.logger.Info("user signed up",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return s.issueSession(user)
}

// SignIn authenticates a password account.
//
// Every failure — unknown email, Google-only account, wrong password —
// returns the same unauthorized outcome so the response doesn't reveal which
// part was wrong. The Google-only case gets a hint because the caller
// legitimately owns the email.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("incorrect email or password")
		}
		return nil, fmt.Errorf("service/auth: looking up user by email: %w", err)
	}

	if !user.HasPassword() {
		// Account was created through Google sign-in and has no password.
		return nil, apperror.Unauthorized("please sign in with Google")
	}

	if err := s.passwords.Verify(*user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthorized("incorrect email or password")
	}

	s.logger.Info("user signed in", slog.String("userID", user.ID))

	return s.issueSession(user)
}

// ResolveGoogleUser is the single idempotent resolve-or-create operation for
// Google identities:
//
//  1. match by Google ID → existing account, sign in
//  2. else match by email → attach the Google ID to that account
//  3. else → create a new account with no password
//
// Both Google entry points (the client-token POST and the server-side OAuth
// callback) funnel through here, so the branching lives in exactly one place.
func (s *AuthService) ResolveGoogleUser(ctx context.Context, googleID, email, name string) (*AuthResult, error) {
	googleID = strings.TrimSpace(googleID)
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)

	if googleID == "" {
		return nil, apperror.ValidationFailed("googleId", "googleId is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperror.ValidationFailed("email", "please enter a valid email")
	}

	user, err := s.users.GetUserByGoogleID(ctx, googleID)
	switch {
	case err == nil:
		// Known Google account.
	case errors.Is(err, apperror.ErrNotFound):
		user, err = s.resolveByEmailOrCreate(ctx, googleID, email, name)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("service/auth: looking up user by google id: %w", err)
	}

	s.logger.Info("user authenticated via Google",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return s.issueSession(user)
}

func (s *AuthService) resolveByEmailOrCreate(ctx context.Context, googleID, email, name string) (*model.User, error) {
	existing, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		// Known email, first Google sign-in: attach the identity so future
		// logins match by Google ID directly.
		if err := s.users.SetGoogleID(ctx, existing.ID, googleID); err != nil {
			return nil, fmt.Errorf("service/auth: attaching google id: %w", err)
		}
		existing.GoogleID = &googleID
		return existing, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/auth: looking up user by email: %w", err)
	}

	username := strings.TrimSpace(name)
	if username == "" {
		username = strings.SplitN(email, "@", 2)[0]
	}
	// The display name isn't guaranteed unique; disambiguate if it's taken.
	if _, err := s.users.GetUserByUsername(ctx, username); err == nil {
		username = username + "-" + xid.New().String()[:5]
	}

	user := &model.User{
		Username:  username,
		Email:     email,
		GoogleID:  &googleID,
		AvatarURL: avatarURLFor(username),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: creating google user: %w", err)
	}

	return user, nil
}

// GetUserByID returns the user for the given internal ID. Used by the
// /api/auth/me handler after the middleware validates the session.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, fmt.Errorf("service/auth: user ID must not be empty")
	}

	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", id, err)
	}

	return user, nil
}

func (s *AuthService) issueSession(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	return &AuthResult{User: user, Token: token}, nil
}
