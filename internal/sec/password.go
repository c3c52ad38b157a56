package sec

import (
	"context"
	"errors"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// ComparePassword returns an error if the provided password does not resolve to
// the given hash.
func ComparePassword[T ~string | ~[]byte](password T, hash []byte) error {
	return bcrypt.CompareHashAndPassword(hash, []byte(password))
}

// HashPassword generates the hash for a given password at cost. It errors if
// the password is longer than 72 bytes.
func HashPassword[T ~string | ~[]byte](password T, cost int) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), cost)
}

// Hasher hashes and verifies passwords on a bounded pool of workers.
type Hasher struct {
	cost    int
	workers *semaphore.Weighted
}

// NewHasher returns a Hasher using the given bcrypt cost and allowing at most
// workers concurrent computations. A cost of zero selects
// [bcrypt.DefaultCost]; workers <= 0 selects GOMAXPROCS.
func NewHasher(cost, workers int) *Hasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Hasher{
		cost:    cost,
		workers: semaphore.NewWeighted(int64(workers)),
	}
}

func (h *Hasher) run(ctx context.Context, fn func()) error {
	if err := h.workers.Acquire(ctx, 1); err != nil {
		return err
	}
	defer h.workers.Release(1)
	fn()
	return nil
}

// Hash returns a salted bcrypt hash of password. Hashing the same password
// twice yields different results.
func (h *Hasher) Hash(ctx context.Context, password string) (hash []byte, err error) {
	if runErr := h.run(ctx, func() { hash, err = HashPassword(password, h.cost) }); runErr != nil {
		return nil, runErr
	}
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, newError(KindHashing, "password must be at most 72 bytes", err)
	} else if err != nil {
		return nil, newError(KindHashing, "failed to hash password", err)
	}
	return hash, nil
}

// Verify reports whether password matches hash. A wrong password is not an
// error; a [KindHashing] error is returned only if hash is malformed.
func (h *Hasher) Verify(ctx context.Context, password string, hash []byte) (ok bool, err error) {
	if runErr := h.run(ctx, func() { err = ComparePassword(password, hash) }); runErr != nil {
		return false, runErr
	}
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, newError(KindHashing, "failed to verify password", err)
	}
}
