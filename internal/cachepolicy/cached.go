package cachepolicy

import (
	"context"
	"time"

	json "github.com/goccy/go-json"
)

// Cached returns the value stored under spec, computing and storing it on a miss.
// Errors from compute are returned as-is and nothing is stored. Cache failures never
// surface here: they are reported to the manager's error handler and the value is
// computed as if the cache were empty.
func Cached[T any](ctx context.Context, m *Manager, spec KeySpec, compute func(context.Context) (T, error)) (T, error) {
	key := spec.Key()

	if data, ok := m.Get(ctx, spec.Cache, key); ok {
		var v T
		err := json.Unmarshal(data, &v)
		if err == nil {
			m.recorder.Hit(spec.Cache)
			return v, nil
		}
		// Undecodable entries, e.g. written by an older model version, count as misses.
		m.recorder.Error(spec.Cache, OpGet)
		m.errors.HandleGetError(&CacheError{Op: OpGet, Cache: spec.Cache, Key: key, Err: err}, spec.Cache, key)
	}
	m.recorder.Miss(spec.Cache)

	start := time.Now()
	v, err := compute(ctx)
	if err != nil {
		return v, err
	}
	m.recorder.Compute(spec.Cache, time.Since(start))

	data, err := json.Marshal(v)
	if err != nil {
		m.recorder.Error(spec.Cache, OpPut)
		m.errors.HandlePutError(&CacheError{Op: OpPut, Cache: spec.Cache, Key: key, Err: err}, spec.Cache, key, nil)
		return v, nil
	}
	m.Put(ctx, spec.Cache, key, data)
	return v, nil
}
