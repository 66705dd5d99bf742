// Package auth verifies credentials and issues session tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"payoff/internal/core"
	"payoff/internal/storage"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 32
	minPasswordLength = 6
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidUsername    = errors.New("username must be 3-32 characters")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrUsernameTaken      = errors.New("username already taken")
)

// Principal identifies the caller of an authenticated request.
type Principal struct {
	OwnerID  int64  `json:"owner_id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

type Authenticator struct {
	users  storage.UserStore
	hasher Hasher
	tokens *TokenManager
}

func NewAuthenticator(users storage.UserStore, hasher Hasher, tokens *TokenManager) *Authenticator {
	return &Authenticator{users: users, hasher: hasher, tokens: tokens}
}

func normalizeUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if n := utf8.RuneCountInString(username); n < minUsernameLength || n > maxUsernameLength {
		return "", ErrInvalidUsername
	}
	return username, nil
}

// ValidatePassword enforces the minimum password length.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

func (a *Authenticator) Register(ctx context.Context, username, password string) (core.User, error) {
	username, err := normalizeUsername(username)
	if err != nil {
		return core.User{}, err
	}
	if err := ValidatePassword(password); err != nil {
		return core.User{}, err
	}

	hash, err := a.hasher.Hash(password)
	if err != nil {
		return core.User{}, fmt.Errorf("hash password: %w", err)
	}
	user, err := a.users.CreateUser(ctx, username, hash)
	if errors.Is(err, storage.ErrAlreadyExists) {
		return core.User{}, ErrUsernameTaken
	}
	if err != nil {
		return core.User{}, fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "User registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login checks the credentials and returns the principal with a fresh token.
func (a *Authenticator) Login(ctx context.Context, username, password string) (Principal, string, error) {
	user, err := a.users.UserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, storage.ErrNotFound) {
		return Principal{}, "", ErrInvalidCredentials
	}
	if err != nil {
		return Principal{}, "", fmt.Errorf("get user: %w", err)
	}
	if err := a.hasher.Compare(user.PasswordHash, password); err != nil {
		slog.WarnContext(ctx, "Login failed", "username", user.Username)
		return Principal{}, "", ErrInvalidCredentials
	}

	token, err := a.tokens.Generate(user)
	if err != nil {
		return Principal{}, "", fmt.Errorf("generate token: %w", err)
	}
	return Principal{OwnerID: user.ID, Username: user.Username, IsAdmin: user.IsAdmin}, token, nil
}

// Verify resolves a bearer token. The user is re-read so that revoked admin
// rights and deleted accounts take effect before the token expires.
func (a *Authenticator) Verify(ctx context.Context, token string) (Principal, error) {
	p, err := a.tokens.Parse(token)
	if err != nil {
		return Principal{}, err
	}
	user, err := a.users.UserByID(ctx, p.OwnerID)
	if errors.Is(err, storage.ErrNotFound) {
		return Principal{}, ErrInvalidToken
	}
	if err != nil {
		return Principal{}, fmt.Errorf("get user: %w", err)
	}
	return Principal{OwnerID: user.ID, Username: user.Username, IsAdmin: user.IsAdmin}, nil
}

// Promote grants admin rights to username.
func (a *Authenticator) Promote(ctx context.Context, username string) error {
	return a.users.SetAdmin(ctx, username, true)
}

// ResetPassword replaces the password of username.
func (a *Authenticator) ResetPassword(ctx context.Context, username, password string) error {
	if err := ValidatePassword(password); err != nil {
		return err
	}
	hash, err := a.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return a.users.SetPasswordHash(ctx, username, hash)
}
