package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/jz3el/luxemart-ecommerce/internal/auth"
	"github.com/jz3el/luxemart-ecommerce/internal/domain"
)

type TokenIssuer interface {
	Issue(u *domain.User) (string, time.Time, error)
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *domain.User `json:"user"`
}

type AccountService struct {
	users  UserStore
	tokens TokenIssuer
}

func NewAccountService(users UserStore, tokens TokenIssuer) *AccountService {
	return &AccountService{
		users:  users,
		tokens: tokens,
	}
}

func (s *AccountService) Register(ctx context.Context, req *domain.RegisterRequest) (*AuthResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	email := domain.NormalizeEmail(req.Email)

	taken, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrDuplicateEmail
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        email,
		PasswordHash: hash,
		PhoneNumber:  req.PhoneNumber,
		Role:         domain.RoleCustomer,
		IsActive:     true,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "user registered", "user_id", u.ID)
	return s.issue(u)
}

// Login never tells apart an unknown email, an inactive account and a wrong
// password. Legacy password hashes are upgraded on success.
func (s *AccountService) Login(ctx context.Context, req *domain.LoginRequest) (*AuthResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	u, err := s.users.GetUserByEmail(ctx, domain.NormalizeEmail(req.Email))
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive || !auth.VerifyPassword(req.Password, u.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	if auth.NeedsRehash(u.PasswordHash) {
		s.rehash(ctx, u, req.Password)
	}
	return s.issue(u)
}

func (s *AccountService) rehash(ctx context.Context, u *domain.User, password string) {
	hash, err := auth.HashPassword(password)
	if err == nil {
		err = s.users.UpdatePasswordHash(ctx, u.ID, hash)
	}
	if err != nil {
		slog.WarnContext(ctx, "password rehash failed", "user_id", u.ID, "error", err)
		return
	}
	u.PasswordHash = hash
}

func (s *AccountService) GetProfile(ctx context.Context, userID int64) (*domain.User, error) {
	return s.users.GetUserByID(ctx, userID)
}

func (s *AccountService) UpdateProfile(ctx context.Context, userID int64, req *domain.UpdateProfileRequest) (*domain.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	req.Apply(u)
	if err := s.users.UpdateProfile(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AccountService) ChangePassword(ctx context.Context, userID int64, req *domain.ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.VerifyPassword(req.CurrentPassword, u.PasswordHash) {
		return domain.ErrWrongPassword
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePasswordHash(ctx, userID, hash)
}

func (s *AccountService) issue(u *domain.User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: u}, nil
}
