package service

import (
	"context"
	"errors"
	"log/slog"

	"byte_battle/internal/domain"
	"byte_battle/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrInvalidAmount = errors.New("invalid amount")

// XPService is the reward ledger. Battles only ever write to it.
type XPService struct {
	db     *pgxpool.Pool
	xpRepo *repository.XPRepository
}

func NewXPService(db *pgxpool.Pool) *XPService {
	return &XPService{
		db:     db,
		xpRepo: repository.NewXPRepository(db),
	}
}

// Award credits amount XP to the user and records a ledger row.
// Returns the user's new XP total.
func (s *XPService) Award(ctx context.Context, userID int64, source string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	total, err := s.xpRepo.AddWithTx(ctx, tx, userID, amount)
	if err != nil {
		return 0, err
	}

	entry := &domain.XPTransaction{
		UserID: userID,
		Source: source,
		Amount: amount,
	}
	if err = s.xpRepo.CreateWithTx(ctx, tx, entry); err != nil {
		return 0, err
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, err
	}

	return total, nil
}

// LogOnlyAwarder stands in for the ledger when no database is configured.
type LogOnlyAwarder struct {
	Log *slog.Logger
}

func (a LogOnlyAwarder) Award(_ context.Context, userID int64, source string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	a.Log.Info("xp award (no ledger configured)", "user", userID, "source", source, "amount", amount)
	return 0, nil
}
