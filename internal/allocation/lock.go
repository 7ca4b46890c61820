package allocation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrExamLocked means another auto-allocate cycle currently holds the exam.
var ErrExamLocked = errors.New("exam is being allocated")

// Locker serializes planning cycles per exam.  release is safe to call more
// than once.
type Locker interface {
	Acquire(ctx context.Context, examID uint64) (release func(), err error)
}

// compare-and-delete: only the holder of the token may free the key
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('DEL', KEYS[1])
end
return 0
`)

// RedisLocker holds one key per exam for at most TTL.  The TTL bounds how
// long a crashed cycle can block the exam.
type RedisLocker struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisLocker(rdb *redis.Client, prefix string, ttl time.Duration) *RedisLocker {
	if prefix == "" {
		prefix = "esa:lock:exam"
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisLocker{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (l *RedisLocker) key(examID uint64) string {
	return fmt.Sprintf("%s:%d", l.prefix, examID)
}

func (l *RedisLocker) Acquire(ctx context.Context, examID uint64) (func(), error) {
	key := l.key(examID)
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire exam lock: %w", err)
	}
	if !ok {
		return nil, ErrExamLocked
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			// the request context may already be done here
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = releaseScript.Run(ctx, l.rdb, []string{key}, token).Err()
		})
	}, nil
}

// LocalLocker is the in-process fallback used when Redis is disabled.  It
// only protects a single server instance.
type LocalLocker struct {
	mu   sync.Mutex
	held map[uint64]struct{}
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[uint64]struct{})}
}

func (l *LocalLocker) Acquire(_ context.Context, examID uint64) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.held[examID]; busy {
		return nil, ErrExamLocked
	}
	l.held[examID] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, examID)
			l.mu.Unlock()
		})
	}, nil
}
