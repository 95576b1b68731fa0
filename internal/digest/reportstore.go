package digest

import (
	"encoding/json"
	"log/slog"

	"signalist/db"
	"signalist/internal/model"
)

// RedisReportStore keeps the most recent run report in Redis so the API
// process can serve it even when the run happened in the digest daemon.
type RedisReportStore struct{}

func NewRedisReportStore() *RedisReportStore {
	return &RedisReportStore{}
}

func (s *RedisReportStore) StoreLastRunReport(reportJSON string) error {
	return db.StoreLastRunReport(reportJSON)
}

func (s *RedisReportStore) GetLastRunReport() (string, error) {
	return db.GetLastRunReport()
}

// PersistReport marshals and stores a run report, logging rather than
// failing the caller when the store is unavailable.
func (s *RedisReportStore) PersistReport(report *model.RunReport) {
	if report == nil {
		return
	}

	data, err := json.Marshal(report)
	if err != nil {
		slog.Error("error marshalling run report", "error", err)
		return
	}

	if err := s.StoreLastRunReport(string(data)); err != nil {
		slog.Error("error storing run report", "error", err)
	}
}
