package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/cabinetd/cabinet/internal/model"
	"github.com/cabinetd/cabinet/internal/repository"
	"github.com/cabinetd/cabinet/internal/validation"
)

// Registration error strings are part of the client contract.
var (
	ErrMissingEmail    = errors.New("Missing email")
	ErrMissingPassword = errors.New("Missing password")
	ErrEmailExists     = errors.New("Already exist")
)

type Stats struct {
	Users int64 `json:"users"`
	Files int64 `json:"files"`
}

type UserService struct {
	users repository.UserRepository
	files repository.FileRepository
}

func NewUserService(users repository.UserRepository, files repository.FileRepository) *UserService {
	return &UserService{
		users: users,
		files: files,
	}
}

// Register creates a user record with a bcrypt-hashed password.
func (s *UserService) Register(email, password string) (*model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	if email == "" {
		return nil, ErrMissingEmail
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, ErrMissingEmail
	}
	if password == "" {
		return nil, ErrMissingPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: string(hash),
	}

	err = s.users.Create(user)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return nil, ErrEmailExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user registered", "user_id", user.ID, "email", user.Email)
	return user, nil
}

func (s *UserService) Stats() (*Stats, error) {
	users, err := s.users.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	files, err := s.files.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count files: %w", err)
	}

	return &Stats{Users: users, Files: files}, nil
}
