package repository

import (
	"context"
	"encoding/json"
	"errors"

	"byte_battle/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type XPRepository struct {
	db *pgxpool.Pool
}

func NewXPRepository(db *pgxpool.Pool) *XPRepository {
	return &XPRepository{db: db}
}

// AddWithTx increments users.xp inside tx and returns the new total.
func (r *XPRepository) AddWithTx(ctx context.Context, tx pgx.Tx, userID, amount int64) (int64, error) {
	var total int64
	err := tx.QueryRow(ctx,
		`UPDATE users SET xp = xp + $1 WHERE id = $2 RETURNING xp`,
		amount, userID,
	).Scan(&total)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrUserNotFound
	}
	return total, err
}

// CreateWithTx inserts a ledger row using an existing database transaction
func (r *XPRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, t *domain.XPTransaction) error {
	metaJSON, err := json.Marshal(t.Meta)
	if err != nil {
		metaJSON = []byte("{}")
	}

	return tx.QueryRow(ctx,
		`INSERT INTO xp_transactions (user_id, source, amount, meta)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		t.UserID, t.Source, t.Amount, metaJSON,
	).Scan(&t.ID, &t.CreatedAt)
}

// GetByUserID returns recent ledger rows for a user
func (r *XPRepository) GetByUserID(ctx context.Context, userID int64, limit int) ([]*domain.XPTransaction, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, source, amount, meta, created_at
		 FROM xp_transactions
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.XPTransaction
	for rows.Next() {
		var (
			t        domain.XPTransaction
			metaJSON []byte
		)
		if err := rows.Scan(&t.ID, &t.UserID, &t.Source, &t.Amount, &metaJSON, &t.CreatedAt); err != nil {
			return nil, err
		}
		if len(metaJSON) > 0 {
			_ = json.Unmarshal(metaJSON, &t.Meta)
		}
		result = append(result, &t)
	}

	return result, rows.Err()
}
