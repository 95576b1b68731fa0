package model

import "time"

// WatchlistEntry is unique per (UserID, Symbol); Symbol is stored uppercase.
type WatchlistEntry struct {
	ID      int64
	UserID  string
	Symbol  string
	Company string
	AddedAt time.Time
}
