// Package auth provides operator authentication: bcrypt password accounts
// and JWT session tokens for the admin API.
package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/venuepulse/ledger/internal/models"
	"github.com/venuepulse/ledger/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)

// OperatorStorage is the slice of the store the authenticator needs.
type OperatorStorage interface {
	CreateOperator(ctx context.Context, op *models.Operator) error
	GetOperatorByEmail(ctx context.Context, email string) (*models.Operator, error)
}

// PasswordAuthenticator implements password-based operator authentication
// using bcrypt.
type PasswordAuthenticator struct {
	storage OperatorStorage
}

// NewPasswordAuthenticator creates a new password-based authenticator.
func NewPasswordAuthenticator(storage OperatorStorage) *PasswordAuthenticator {
	return &PasswordAuthenticator{storage: storage}
}

// Register creates a new operator account with a hashed password.
func (a *PasswordAuthenticator) Register(ctx context.Context, email, displayName, password string) (*models.Operator, error) {
	if len(password) < 8 {
		return nil, ErrWeakPassword
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	op := &models.Operator{
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: string(hashedPassword),
	}
	if err := a.storage.CreateOperator(ctx, op); err != nil {
		if errors.Is(err, storage.ErrEmailExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create operator: %w", err)
	}
	return op, nil
}

// Authenticate verifies the email and password, returning the operator if
// valid. Lookup failure and password mismatch return the same error so the
// response does not leak which emails exist.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, email, password string) (*models.Operator, error) {
	op, err := a.storage.GetOperatorByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return op, nil
}
