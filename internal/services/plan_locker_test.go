package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"budgetplan/internal/testutil"
)

func slotCount(locker PlanLocker) int {
	l := locker.(*memoryPlanLocker)
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}

func TestMemoryPlanLocker(t *testing.T) {
	t.Run("serializes holders of the same plan", func(t *testing.T) {
		locker := NewMemoryPlanLocker()
		ctx := context.Background()

		var mu sync.Mutex
		active, maxActive := 0, 0
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock, err := locker.Lock(ctx, "plan-a")
				if err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
				mu.Lock()
				active++
				if active > maxActive {
					maxActive = active
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				active--
				mu.Unlock()
				unlock()
			}()
		}
		wg.Wait()

		if maxActive != 1 {
			t.Errorf("expected at most one holder, saw %d", maxActive)
		}
	})

	t.Run("different plans do not block each other", func(t *testing.T) {
		locker := NewMemoryPlanLocker()
		unlockA, err := locker.Lock(context.Background(), "plan-a")
		testutil.AssertNoError(t, err)
		defer unlockA()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		unlockB, err := locker.Lock(ctx, "plan-b")
		testutil.AssertNoError(t, err)
		unlockB()
	})

	t.Run("waiting holder gives up on cancellation", func(t *testing.T) {
		locker := NewMemoryPlanLocker()
		unlock, err := locker.Lock(context.Background(), "plan-a")
		testutil.AssertNoError(t, err)
		defer unlock()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err = locker.Lock(ctx, "plan-a")
		testutil.AssertAppError(t, err, "PLAN_LOCKED")
	})

	t.Run("released plans leave no slot behind", func(t *testing.T) {
		locker := NewMemoryPlanLocker()
		unlock, err := locker.Lock(context.Background(), "plan-a")
		testutil.AssertNoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err = locker.Lock(ctx, "plan-a")
		testutil.AssertAppError(t, err, "PLAN_LOCKED")

		if n := slotCount(locker); n != 1 {
			t.Errorf("expected 1 slot while held, got %d", n)
		}
		unlock()
		if n := slotCount(locker); n != 0 {
			t.Errorf("expected no slots once released, got %d", n)
		}

		for _, id := range []string{"plan-b", "plan-c", "plan-d"} {
			release, err := locker.Lock(context.Background(), id)
			testutil.AssertNoError(t, err)
			release()
		}
		if n := slotCount(locker); n != 0 {
			t.Errorf("expected no slots after sequential use, got %d", n)
		}
	})

	t.Run("unlock is idempotent", func(t *testing.T) {
		locker := NewMemoryPlanLocker()
		unlock, err := locker.Lock(context.Background(), "plan-a")
		testutil.AssertNoError(t, err)
		unlock()
		unlock()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		again, err := locker.Lock(ctx, "plan-a")
		testutil.AssertNoError(t, err)
		again()
	})
}

func TestRedisPlanLocker(t *testing.T) {
	ctx := context.Background()
	server := miniredis.RunT(t)

	client, err := NewRedisClient(ctx, server.Addr())
	testutil.AssertNoError(t, err)
	defer client.Close()

	locker := NewRedisPlanLocker(client, time.Second)
	planID := "0190d4c8-0000-7000-8000-0000000000f1"
	key := planLockKey(planID)

	t.Run("second holder waits until release", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, planID)
		testutil.AssertNoError(t, err)
		if !server.Exists(key) {
			t.Fatalf("expected lock key %s to be set", key)
		}
		if ttl := server.TTL(key); ttl <= 0 || ttl > time.Second {
			t.Errorf("expected a TTL of at most 1s, got %v", ttl)
		}

		waitCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
		defer cancel()
		_, err = locker.Lock(waitCtx, planID)
		testutil.AssertAppError(t, err, "PLAN_LOCKED")

		unlock()
		if server.Exists(key) {
			t.Error("expected lock key removed on release")
		}

		again, err := locker.Lock(ctx, planID)
		testutil.AssertNoError(t, err)
		again()
	})

	t.Run("release leaves a lock taken over by another holder", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, planID)
		testutil.AssertNoError(t, err)

		// The TTL lapses and another instance takes the plan.
		server.FastForward(2 * time.Second)
		if err := server.Set(key, "other-holder"); err != nil {
			t.Fatalf("failed to set key: %v", err)
		}

		unlock()
		if got, _ := server.Get(key); got != "other-holder" {
			t.Errorf("expected other holder's lock kept, got %q", got)
		}
		server.Del(key)
	})

	t.Run("expired lock can be taken", func(t *testing.T) {
		_, err := locker.Lock(ctx, planID)
		testutil.AssertNoError(t, err)

		server.FastForward(2 * time.Second)

		waitCtx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		defer cancel()
		unlock, err := locker.Lock(waitCtx, planID)
		testutil.AssertNoError(t, err)
		unlock()
	})

	t.Run("unreachable server", func(t *testing.T) {
		down := miniredis.RunT(t)
		addr := down.Addr()
		down.Close()

		_, err := NewRedisClient(ctx, addr)
		if err == nil {
			t.Fatal("expected a connection error")
		}
	})
}
