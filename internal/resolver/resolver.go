package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"signalist/internal/model"
)

// fuzzyMatchLimit bounds the email-pattern fallback so a broad pattern
// cannot scan the whole identity store.
const fuzzyMatchLimit = 5

// Identity carries whatever the caller knows about a user. A stable ID is
// always preferred; email is accepted to tolerate historical records where
// the watchlist and identity stores disagree on join keys.
type Identity struct {
	ID    string
	Email string
}

type UserLookup interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	FindByEmailPattern(ctx context.Context, pattern string, limit int) ([]model.User, error)
}

type WatchlistLookup interface {
	ListByUserID(ctx context.Context, userID string) ([]model.WatchlistEntry, error)
}

// Resolver maps a user identity to the uppercase stock symbols they follow.
// An unresolvable identity or an empty watchlist is a normal outcome, not an
// error; only storage connectivity failures surface as errors.
type Resolver struct {
	users      UserLookup
	watchlists WatchlistLookup
	strategies []strategy
}

// strategy returns the resolved user id, whether it matched, and any
// storage error. Strategies are tried in fixed order with early return.
type strategy func(ctx context.Context, identity Identity) (string, bool, error)

func New(users UserLookup, watchlists WatchlistLookup) *Resolver {
	r := &Resolver{users: users, watchlists: watchlists}
	r.strategies = []strategy{
		r.byStableID,
		r.byExactEmail,
		r.byFuzzyEmail,
	}
	return r
}

func (r *Resolver) Resolve(ctx context.Context, identity Identity) ([]string, error) {
	userID, ok, err := r.resolveUserID(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("resolve identity: %w", err)
	}

	if !ok {
		return nil, nil
	}

	entries, err := r.watchlists.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list watchlist for %s: %w", userID, err)
	}

	seen := make(map[string]struct{}, len(entries))
	symbols := make([]string, 0, len(entries))
	for _, e := range entries {
		symbol := strings.ToUpper(strings.TrimSpace(e.Symbol))
		if symbol == "" {
			continue
		}
		if _, dup := seen[symbol]; dup {
			continue
		}
		seen[symbol] = struct{}{}
		symbols = append(symbols, symbol)
	}

	return symbols, nil
}

func (r *Resolver) resolveUserID(ctx context.Context, identity Identity) (string, bool, error) {
	for _, try := range r.strategies {
		userID, ok, err := try(ctx, identity)
		if err != nil {
			return "", false, err
		}
		if ok {
			return userID, true, nil
		}
	}
	return "", false, nil
}

func (r *Resolver) byStableID(ctx context.Context, identity Identity) (string, bool, error) {
	if identity.ID == "" {
		return "", false, nil
	}
	return identity.ID, true, nil
}

func (r *Resolver) byExactEmail(ctx context.Context, identity Identity) (string, bool, error) {
	if identity.Email == "" {
		return "", false, nil
	}

	user, err := r.users.GetByEmail(ctx, identity.Email)
	if err != nil {
		return "", false, err
	}

	if user == nil {
		return "", false, nil
	}

	return user.ID, true, nil
}

// byFuzzyEmail is a best-effort workaround for inconsistent join keys
// between the identity and watchlist stores. It can pick the wrong account
// when several emails share a pattern, so every hit is logged.
func (r *Resolver) byFuzzyEmail(ctx context.Context, identity Identity) (string, bool, error) {
	if identity.Email == "" {
		return "", false, nil
	}

	candidates, err := r.users.FindByEmailPattern(ctx, identity.Email, fuzzyMatchLimit)
	if err != nil {
		return "", false, err
	}

	if len(candidates) == 0 {
		return "", false, nil
	}

	slog.Warn("fuzzy email match used for watchlist resolution",
		"email", identity.Email,
		"matched_user_id", candidates[0].ID,
		"candidates", len(candidates),
	)

	return candidates[0].ID, true, nil
}
