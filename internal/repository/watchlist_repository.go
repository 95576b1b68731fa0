package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"signalist/internal/model"
)

// ErrDuplicateEntry is returned when a (userId, symbol) pair already exists.
// Duplicates are rejected at the storage boundary, never absorbed, so the
// resolver can trust that each symbol appears once.
var ErrDuplicateEntry = errors.New("watchlist entry already exists")

type WatchlistRepository struct {
	db *sql.DB
}

func NewWatchlistRepository(db *sql.DB) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

func (r *WatchlistRepository) ListByUserID(ctx context.Context, userID string) ([]model.WatchlistEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, symbol, company, added_at
		FROM watchlist_entry
		WHERE user_id = $1
		ORDER BY added_at ASC
	`, userID)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.WatchlistEntry
	for rows.Next() {
		var e model.WatchlistEntry
		err := rows.Scan(&e.ID, &e.UserID, &e.Symbol, &e.Company, &e.AddedAt)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *WatchlistRepository) Add(ctx context.Context, entry *model.WatchlistEntry) error {
	entry.Symbol = strings.ToUpper(strings.TrimSpace(entry.Symbol))

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO watchlist_entry(user_id, symbol, company)
		VALUES($1, $2, $3)
		ON CONFLICT (user_id, symbol) DO NOTHING
		RETURNING id, added_at
	`, entry.UserID, entry.Symbol, entry.Company).Scan(&entry.ID, &entry.AddedAt)

	if err == sql.ErrNoRows {
		return ErrDuplicateEntry
	}

	return err
}

func (r *WatchlistRepository) Remove(ctx context.Context, userID, symbol string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM watchlist_entry
		WHERE user_id = $1 AND symbol = $2
	`, userID, strings.ToUpper(strings.TrimSpace(symbol)))

	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}
