package backup

import (
	"log/slog"
	"time"

	"github.com/meigma/horizon/internal/manifest"
)

// Compression identifies how backed-up files are stored.
type Compression = manifest.Compression

// Compression modes.
const (
	CompressionNone = manifest.CompressionNone
	CompressionZstd = manifest.CompressionZstd
)

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger for backup operations.
// If not set, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithWorkers sets how many files are copied or verified concurrently.
// Values < 1 use GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(c *Coordinator) {
		c.workers = n
	}
}

// WithCompression sets how new backups store file content.
// Verify reads the mode from each backup's manifest.
func WithCompression(comp Compression) Option {
	return func(c *Coordinator) {
		c.compression = comp
	}
}

// WithClock sets the time source for manifest timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}
