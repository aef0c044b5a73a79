package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"wallet-console/internal/core/domain"
	"wallet-console/internal/core/ports"
	"wallet-console/pkg/apperror"
)

// AuthServiceImpl implements ports.AuthService.
type AuthServiceImpl struct {
	accounts ports.AccountRepository
	hashSvc  ports.HashService
	tokenSvc ports.TokenService
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(
	accounts ports.AccountRepository,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		accounts: accounts,
		hashSvc:  hashSvc,
		tokenSvc: tokenSvc,
	}
}

// SignUp opens an account with no balances.
func (s *AuthServiceImpl) SignUp(ctx context.Context, req ports.SignUpRequest) (*domain.Account, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, apperror.Validation("username, email and password are required")
	}

	existing, err := s.accounts.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check email: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrAccountExists()
	}

	passwordHash, err := s.hashSvc.Hash(req.Password)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	rec := &ports.UserRecord{
		Account: domain.Account{
			Username: req.Username,
			Email:    req.Email,
			IsAdmin:  req.IsAdmin,
		},
		PasswordHash: passwordHash,
	}
	if err := s.accounts.Create(ctx, rec); err != nil {
		return nil, passThrough(err, "create account")
	}

	return &rec.Account, nil
}

// Login validates credentials and returns a bearer token and the account's role.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (string, domain.Role, error) {
	rec, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return "", "", apperror.InternalError(fmt.Errorf("find account: %w", err))
	}
	if rec == nil {
		return "", "", apperror.ErrInvalidCredentials()
	}

	valid, err := s.hashSvc.Verify(password, rec.PasswordHash)
	if err != nil {
		return "", "", apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !valid {
		return "", "", apperror.ErrInvalidCredentials()
	}

	role := domain.RoleUser
	if rec.Account.IsAdmin {
		role = domain.RoleAdmin
	}

	token, _, err := s.tokenSvc.Generate(rec.Account.ID, role)
	if err != nil {
		return "", "", apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}

	return token, role, nil
}

// SeedAdmin creates the administrator account unless the email is taken.
// It reports whether an account was created.
func SeedAdmin(ctx context.Context, auth ports.AuthService, username, email, password string) (bool, error) {
	_, err := auth.SignUp(ctx, ports.SignUpRequest{
		Username: username,
		Email:    email,
		Password: password,
		IsAdmin:  true,
	})
	if apperror.CodeOf(err) == apperror.CodeAccountExists {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}
	return true, nil
}

// passThrough keeps AppErrors raised by the repository and hides anything else
// behind an internal error.
func passThrough(err error, op string) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperror.InternalError(fmt.Errorf("%s: %w", op, err))
}
