package ports

import (
	"context"
	"errors"
	"time"
)

// ErrLockNotObtained is returned when another holder owns the key.
var ErrLockNotObtained = errors.New("lock is held by another request")

// Locker hands out short-lived exclusive locks keyed by name.
type Locker interface {
	// Obtain acquires key for ttl. The returned release func gives it back early.
	Obtain(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}
