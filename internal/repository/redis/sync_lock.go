package redis

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only if it still holds our token
var releaseScript = goredis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// Locker is a lease lock on a single Redis key (SET NX PX)
type Locker struct {
	client *goredis.Client
}

func NewLocker(client *goredis.Client) *Locker {
	return &Locker{client: client}
}

// TryLock takes the lease for ttl. ok is false when another holder has it.
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Unlock releases the lease if token still owns it. An expired lease is not an error.
func (l *Locker) Unlock(ctx context.Context, key, token string) error {
	return releaseScript.Run(ctx, l.client, []string{key}, token).Err()
}

// localSweepThreshold is the lease count at which expired leases are swept
const localSweepThreshold = 1024

// LocalLocker is the in-process fallback when no Redis is configured.
// Expired leases are dropped once the map reaches sweepAt entries.
type LocalLocker struct {
	mu      sync.Mutex
	held    map[string]localLease
	sweepAt int
}

type localLease struct {
	token   string
	expires time.Time
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]localLease), sweepAt: localSweepThreshold}
}

func (l *LocalLocker) TryLock(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if lease, ok := l.held[key]; ok && now.Before(lease.expires) {
		return "", false, nil
	}
	if len(l.held) >= l.sweepAt {
		l.sweep(now)
	}
	token := uuid.NewString()
	l.held[key] = localLease{token: token, expires: now.Add(ttl)}
	return token, true, nil
}

// sweep drops expired leases; the next sweep waits until the live set has doubled
func (l *LocalLocker) sweep(now time.Time) {
	for key, lease := range l.held {
		if !now.Before(lease.expires) {
			delete(l.held, key)
		}
	}
	l.sweepAt = localSweepThreshold
	if live := 2 * len(l.held); live > l.sweepAt {
		l.sweepAt = live
	}
}

func (l *LocalLocker) Unlock(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if lease, ok := l.held[key]; ok && lease.token == token {
		delete(l.held, key)
	}
	return nil
}
