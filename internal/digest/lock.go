package digest

import (
	"time"

	"signalist/db"
)

// RedisRunLock adapts the shared Redis connection to the RunLocker
// contract so cron-triggered and on-demand runs in different processes
// cannot overlap.
type RedisRunLock struct{}

func NewRedisRunLock() *RedisRunLock {
	return &RedisRunLock{}
}

func (l *RedisRunLock) Acquire(cronKey string, ttl time.Duration) (bool, error) {
	return db.AcquireRunLock(cronKey, ttl)
}

func (l *RedisRunLock) Release(cronKey string) error {
	return db.ReleaseRunLock(cronKey)
}
