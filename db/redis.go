package db

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var Redis *redis.Client
var Ctx = context.Background()

const (
	RunLockKeyPrefix = "signalist:digest:lock:"
	LastRunReportKey = "signalist:digest:report:latest"
	lastReportMaxAge = 7 * 24 * time.Hour
)

func ConnectRedis() error {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		slog.Warn("REDIS_URL environment variable is not set")
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt = &redis.Options{Addr: redisURL}
	}

	Redis = redis.NewClient(opt)

	_, err = Redis.Ping(Ctx).Result()
	return err
}

func CloseRedis() {
	if Redis != nil {
		Redis.Close()
	}
}

// AcquireRunLock takes a cross-process lock for one digest run. The key is
// scoped per trigger so the daily cron and an on-demand run in another
// process cannot overlap for the same cron key.
func AcquireRunLock(cronKey string, ttl time.Duration) (bool, error) {
	return Redis.SetNX(Ctx, RunLockKeyPrefix+cronKey, time.Now().UTC().Format(time.RFC3339), ttl).Result()
}

func ReleaseRunLock(cronKey string) error {
	return Redis.Del(Ctx, RunLockKeyPrefix+cronKey).Err()
}

func StoreLastRunReport(reportJSON string) error {
	return Redis.Set(Ctx, LastRunReportKey, reportJSON, lastReportMaxAge).Err()
}

func GetLastRunReport() (string, error) {
	report, err := Redis.Get(Ctx, LastRunReportKey).Result()
	if err == redis.Nil {
		return "", nil
	}
	return report, err
}
