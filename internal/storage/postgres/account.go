package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type AccountStore struct {
	db *sqlx.DB
}

func NewAccountStore(db *sqlx.DB) *AccountStore {
	return &AccountStore{db: db}
}

// GetOrCreateSystemUser returns the id of the account owning promoted
// projects, creating it on first use.
func (s *AccountStore) GetOrCreateSystemUser(ctx context.Context, email, name string) (string, error) {
	query := `
		INSERT INTO users (id, email, name, role)
		VALUES ($1, $2, $3, 'ADMIN')
		ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		RETURNING id`

	var id string
	err := GetExecutor(ctx, s.db).QueryRowxContext(ctx, query, uuid.NewString(), email, name).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("get or create system user: %w", mapError(err))
	}
	return id, nil
}
