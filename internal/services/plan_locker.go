package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	apperrors "budgetplan/internal/errors"
	"budgetplan/internal/logger"
)

// memoryPlanLocker serializes plan writers inside one process. A slot lives
// only while some caller holds or waits on it.
type memoryPlanLocker struct {
	mu    sync.Mutex
	slots map[string]*lockSlot
}

type lockSlot struct {
	ch   chan struct{}
	refs int
}

// NewMemoryPlanLocker creates a PlanLocker for single-instance deployments.
func NewMemoryPlanLocker() PlanLocker {
	return &memoryPlanLocker{slots: make(map[string]*lockSlot)}
}

func (l *memoryPlanLocker) Lock(ctx context.Context, planID string) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[planID]
	if !ok {
		slot = &lockSlot{ch: make(chan struct{}, 1)}
		l.slots[planID] = slot
	}
	slot.refs++
	l.mu.Unlock()

	select {
	case slot.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-slot.ch
				l.release(planID, slot)
			})
		}, nil
	case <-ctx.Done():
		l.release(planID, slot)
		return nil, apperrors.Wrap(apperrors.ErrPlanLocked, ctx.Err())
	}
}

func (l *memoryPlanLocker) release(planID string, slot *lockSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, planID)
	}
}

// releaseScript deletes the lock key only if this holder still owns it.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// redisPlanLocker serializes plan writers across instances sharing a Redis.
type redisPlanLocker struct {
	client *redis.Client
	ttl    time.Duration
	retry  time.Duration
}

// NewRedisPlanLocker creates a PlanLocker backed by SET NX with a TTL so a
// crashed holder cannot keep a plan locked forever.
func NewRedisPlanLocker(client *redis.Client, ttl time.Duration) PlanLocker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &redisPlanLocker{client: client, ttl: ttl, retry: 50 * time.Millisecond}
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

func planLockKey(planID string) string {
	return "budgetplan:lock:plan:" + planID
}

func (l *redisPlanLocker) Lock(ctx context.Context, planID string) (func(), error) {
	key := planLockKey(planID)
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, apperrors.Wrap(apperrors.ErrPlanLocked, err)
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, apperrors.Wrap(apperrors.ErrPlanLocked, ctx.Err())
		case <-time.After(l.retry):
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil {
				logger.ForPlan(planID).Warnw("failed to release plan lock", "error", err)
			}
		})
	}, nil
}

// withPlanLock runs fn while holding the plan's lock.
func withPlanLock(ctx context.Context, locker PlanLocker, planID string, fn func() error) error {
	unlock, err := locker.Lock(ctx, planID)
	if err != nil {
		return err
	}
	defer unlock()
	return fn()
}
