package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/venuepulse/ledger/internal/models"
	"github.com/venuepulse/ledger/internal/storage"
)

// CreateOperator persists a new operator account.
func (s *SQLiteStore) CreateOperator(ctx context.Context, op *models.Operator) error {
	if op.ID == "" {
		op.ID = uuid.New().String()
	}
	if op.CreatedAt == 0 {
		op.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO operators (id, email, display_name, password_hash, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		op.ID, op.Email, op.DisplayName, op.PasswordHash, op.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %s", storage.ErrEmailExists, op.Email)
		}
		return fmt.Errorf("failed to insert operator: %w", err)
	}
	return nil
}

// GetOperatorByEmail retrieves an operator by login email.
func (s *SQLiteStore) GetOperatorByEmail(ctx context.Context, email string) (*models.Operator, error) {
	return s.getOperator(ctx, `email = ?`, email)
}

// GetOperatorByID retrieves an operator by ID.
func (s *SQLiteStore) GetOperatorByID(ctx context.Context, id string) (*models.Operator, error) {
	return s.getOperator(ctx, `id = ?`, id)
}

func (s *SQLiteStore) getOperator(ctx context.Context, where string, arg any) (*models.Operator, error) {
	op := &models.Operator{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, display_name, password_hash, created_at FROM operators WHERE `+where,
		arg,
	).Scan(&op.ID, &op.Email, &op.DisplayName, &op.PasswordHash, &op.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: operator", storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get operator: %w", err)
	}
	return op, nil
}
