// Package spinlock implements a cooperative, TTL-bounded lock on top of any store that
// offers an atomic create-if-absent write (Redis SETNX, an in-process map, ...).
//
// Acquisition tries to create "<key>.lock" with a TTL of MaxWait+1s. On contention it
// sleeps SpinWait and retries, at most floor(MaxWait/SpinWait) times, then fails with
// ErrNoLock. Sleeping uses a timer and honours context cancellation, so waiting never
// spins the CPU.
//
//	locker := spinlock.New(backend, spinlock.Config{
//		Enabled:  true,
//		SpinWait: 10 * time.Millisecond,
//		MaxWait:  time.Second,
//	})
//
//	if err := locker.Lock(ctx, "sessions:abc"); err != nil {
//		return err // spinlock.ErrNoLock on timeout
//	}
//	defer locker.Unlock(ctx, "sessions:abc")
//
// Release is an unconditional delete. Callers must release on every exit path of the
// operation that acquired the lock. With Enabled=false both calls are no-ops.
package spinlock
