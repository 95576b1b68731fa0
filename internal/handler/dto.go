package handler

type WatchlistEntryResponse struct {
	ID      int64  `json:"id"`
	UserID  string `json:"user_id"`
	Symbol  string `json:"symbol"`
	Company string `json:"company"`
	AddedAt string `json:"added_at"`
}

type WatchlistResponse struct {
	UserID  string                   `json:"user_id"`
	Entries []WatchlistEntryResponse `json:"entries"`
	Total   int                      `json:"total"`
}

type AddWatchlistRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	Symbol  string `json:"symbol" binding:"required"`
	Company string `json:"company"`
}

type WatchlistSymbolsResponse struct {
	UserID  string   `json:"user_id"`
	Symbols []string `json:"symbols"`
}

type WelcomeRequest struct {
	Email string `json:"email" binding:"required,email"`
}
