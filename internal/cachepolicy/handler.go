package cachepolicy

import "go.uber.org/zap"

// ErrorHandler receives failures of the backing store. Implementations must not panic;
// the manager has already degraded the operation to a miss or no-op.
type ErrorHandler interface {
	HandleGetError(err error, cacheName, key string)
	HandlePutError(err error, cacheName, key string, value []byte)
	HandleEvictError(err error, cacheName, key string)
	HandleClearError(err error, cacheName string)
}

// LoggingErrorHandler logs every cache failure at error level.
type LoggingErrorHandler struct {
	logger *zap.Logger
}

func NewLoggingErrorHandler(logger *zap.Logger) *LoggingErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingErrorHandler{logger: logger}
}

func (h *LoggingErrorHandler) HandleGetError(err error, cacheName, key string) {
	h.logger.Error("Cache get failed",
		zap.String("op", string(OpGet)), zap.String("cache", cacheName), zap.String("key", key), zap.Error(err))
}

func (h *LoggingErrorHandler) HandlePutError(err error, cacheName, key string, value []byte) {
	h.logger.Error("Cache put failed",
		zap.String("op", string(OpPut)), zap.String("cache", cacheName), zap.String("key", key),
		zap.Int("value_bytes", len(value)), zap.Error(err))
}

func (h *LoggingErrorHandler) HandleEvictError(err error, cacheName, key string) {
	h.logger.Error("Cache evict failed",
		zap.String("op", string(OpEvict)), zap.String("cache", cacheName), zap.String("key", key), zap.Error(err))
}

func (h *LoggingErrorHandler) HandleClearError(err error, cacheName string) {
	h.logger.Error("Cache clear failed",
		zap.String("op", string(OpClear)), zap.String("cache", cacheName), zap.Error(err))
}
