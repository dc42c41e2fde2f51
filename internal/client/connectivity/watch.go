package connectivity

import (
	"context"
	"time"

	"github.com/dmitrijs2005/storykeeper/internal/logging"
)

// ProbeTimeout bounds a single reachability check.
const ProbeTimeout = 3 * time.Second

type Prober interface {
	Ping(ctx context.Context) error
}

// Watch probes the API right away and then every interval, feeding the
// result into s. It returns when ctx is done.
func Watch(ctx context.Context, s *Signal, p Prober, interval time.Duration, logger logging.Logger) {
	probe := func() {
		pctx, cancel := context.WithTimeout(ctx, ProbeTimeout)
		err := p.Ping(pctx)
		cancel()

		if ctx.Err() != nil {
			return
		}
		if s.Set(ctx, err == nil) {
			logger.Info(ctx, "connectivity changed", "online", err == nil)
		}
		if err != nil {
			logger.Debug(ctx, "api probe failed", "error", err)
		}
	}

	probe()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			probe()
		case <-ctx.Done():
			return
		}
	}
}
