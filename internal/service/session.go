package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/cabinetd/cabinet/internal/identity"
	"github.com/cabinetd/cabinet/internal/model"
	"github.com/cabinetd/cabinet/internal/repository"
)

// ErrUnauthorized is the single failure mode of the authorization gate:
// missing token, unknown token, expired session, or an unresolvable user.
var ErrUnauthorized = errors.New("Unauthorized")

// sessionKeyPrefix namespaces session entries in the identity store.
const sessionKeyPrefix = "auth_"

// SessionService is the authorization gate: it issues opaque session tokens
// against credentials and resolves inbound tokens back to user records.
// Every file operation passes through Resolve before touching the catalog.
type SessionService struct {
	identities identity.Store
	users      repository.UserRepository
	ttl        time.Duration
}

func NewSessionService(identities identity.Store, users repository.UserRepository, ttl time.Duration) *SessionService {
	return &SessionService{
		identities: identities,
		users:      users,
		ttl:        ttl,
	}
}

// ResolveIdentity maps a token to a user id. Absence and emptiness both fail
// closed; the store read is the only side effect.
func (s *SessionService) ResolveIdentity(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrUnauthorized
	}

	userID, err := s.identities.Get(ctx, sessionKeyPrefix+token)
	if errors.Is(err, identity.ErrNotFound) {
		return "", ErrUnauthorized
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session: %w", err)
	}
	if userID == "" {
		return "", ErrUnauthorized
	}

	return userID, nil
}

// LoadUser fails closed on malformed ids and missing records.
func (s *SessionService) LoadUser(ctx context.Context, userID string) (*model.User, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, ErrUnauthorized
	}

	user, err := s.users.ByID(userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	return user, nil
}

// Resolve composes ResolveIdentity and LoadUser.
func (s *SessionService) Resolve(ctx context.Context, token string) (*model.User, error) {
	userID, err := s.ResolveIdentity(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.LoadUser(ctx, userID)
}

// Connect verifies credentials and issues a fresh session token with the
// configured TTL. Signing in again issues a new token; it does not touch
// existing sessions.
func (s *SessionService) Connect(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.users.ByEmail(email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return "", ErrUnauthorized
	}
	if err != nil {
		return "", fmt.Errorf("failed to get user: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		return "", ErrUnauthorized
	}

	token, err := generateToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	err = s.identities.Set(ctx, sessionKeyPrefix+token, user.ID, s.ttl)
	if err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	return token, nil
}

// Disconnect revokes the session behind the token.
func (s *SessionService) Disconnect(ctx context.Context, token string) error {
	_, err := s.ResolveIdentity(ctx, token)
	if err != nil {
		return err
	}

	return s.identities.Del(ctx, sessionKeyPrefix+token)
}

func generateToken() (string, error) {
	bytes := make([]byte, 32)
	_, err := rand.Read(bytes)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
