package cachepolicy

import (
	"errors"
	"fmt"
	"reflect"
)

// Op names a cache operation in errors, logs and metrics.
type Op string

const (
	OpGet   Op = "get"
	OpPut   Op = "put"
	OpEvict Op = "evict"
	OpClear Op = "clear"
)

// ErrCacheUnavailable matches every *CacheError via errors.Is.
var ErrCacheUnavailable = errors.New("cache unavailable")

// CacheError reports a failed operation against the backing store.
type CacheError struct {
	Op    Op
	Cache string
	Key   string
	Err   error
}

func (e *CacheError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("cache %s on %q failed: %v", e.Op, e.Cache, e.Err)
	}
	return fmt.Sprintf("cache %s on %q key %q failed: %v", e.Op, e.Cache, e.Key, e.Err)
}

func (e *CacheError) Unwrap() error { return e.Err }

func (e *CacheError) Is(target error) bool { return target == ErrCacheUnavailable }

// KeyError is the panic value of GenerateKey for an argument without a stable rendering.
type KeyError struct {
	Index  int
	Kind   reflect.Kind
	Reason string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("cache key argument %d (%s): %s", e.Index, e.Kind, e.Reason)
}
