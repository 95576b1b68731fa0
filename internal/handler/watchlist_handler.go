package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"signalist/internal/model"
	"signalist/internal/repository"
	"signalist/internal/resolver"

	"github.com/gin-gonic/gin"
)

type WatchlistStore interface {
	ListByUserID(ctx context.Context, userID string) ([]model.WatchlistEntry, error)
	Add(ctx context.Context, entry *model.WatchlistEntry) error
	Remove(ctx context.Context, userID, symbol string) (bool, error)
}

type SymbolSource interface {
	Resolve(ctx context.Context, identity resolver.Identity) ([]string, error)
}

type WatchlistHandler struct {
	store   WatchlistStore
	symbols SymbolSource
}

func NewWatchlistHandler(store WatchlistStore, symbols SymbolSource) *WatchlistHandler {
	return &WatchlistHandler{store: store, symbols: symbols}
}

func (h *WatchlistHandler) GetWatchlist(c *gin.Context) {
	userID := c.Param("userId")

	entries, err := h.store.ListByUserID(c.Request.Context(), userID)
	if err != nil {
		slog.Error("error fetching watchlist", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	res := WatchlistResponse{
		UserID:  userID,
		Entries: []WatchlistEntryResponse{},
		Total:   len(entries),
	}

	for _, e := range entries {
		res.Entries = append(res.Entries, WatchlistEntryResponse{
			ID:      e.ID,
			UserID:  e.UserID,
			Symbol:  e.Symbol,
			Company: e.Company,
			AddedAt: e.AddedAt.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, res)
}

func (h *WatchlistHandler) AddEntry(c *gin.Context) {
	var req AddWatchlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id and symbol are required"})
		return
	}

	entry := model.WatchlistEntry{
		UserID:  req.UserID,
		Symbol:  req.Symbol,
		Company: req.Company,
	}

	err := h.store.Add(c.Request.Context(), &entry)
	if errors.Is(err, repository.ErrDuplicateEntry) {
		c.JSON(http.StatusConflict, gin.H{"error": "Symbol already in watchlist"})
		return
	}

	if err != nil {
		slog.Error("error adding watchlist entry", "user_id", req.UserID, "symbol", req.Symbol, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusCreated, WatchlistEntryResponse{
		ID:      entry.ID,
		UserID:  entry.UserID,
		Symbol:  entry.Symbol,
		Company: entry.Company,
		AddedAt: entry.AddedAt.Format(time.RFC3339),
	})
}

func (h *WatchlistHandler) RemoveEntry(c *gin.Context) {
	userID := c.Param("userId")
	symbol := c.Param("symbol")

	removed, err := h.store.Remove(c.Request.Context(), userID, symbol)
	if err != nil {
		slog.Error("error removing watchlist entry", "user_id", userID, "symbol", symbol, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "Symbol not in watchlist"})
		return
	}

	c.Status(http.StatusNoContent)
}

// GetWatchlistSymbols resolves the symbols for a user id through the same
// resolver the digest pipeline uses.
func (h *WatchlistHandler) GetWatchlistSymbols(c *gin.Context) {
	userID := c.Param("id")

	symbols, err := h.symbols.Resolve(c.Request.Context(), resolver.Identity{ID: userID})
	if err != nil {
		slog.Error("error resolving watchlist symbols", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch watchlist", "symbols": []string{}})
		return
	}

	if symbols == nil {
		symbols = []string{}
	}

	c.JSON(http.StatusOK, WatchlistSymbolsResponse{
		UserID:  userID,
		Symbols: symbols,
	})
}

func (h *WatchlistHandler) GetHealth(c *gin.Context) {
	_, err := h.store.ListByUserID(c.Request.Context(), "health-probe")
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "disconnected",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": "connected",
	})
}
