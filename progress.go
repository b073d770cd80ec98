package colundi

import (
	"sync"

	"go.uber.org/zap"
)

// progressTracker logs batch progress every progressInterval percent.
type progressTracker struct {
	mu           sync.Mutex
	logger       *zap.Logger
	total        int
	done         int
	lastProgress int
}

func newProgressTracker(total int, logger *zap.Logger) *progressTracker {
	return &progressTracker{
		logger: logger,
		total:  total,
	}
}

// step records one finished pair and logs if a threshold was crossed.
func (p *progressTracker) step() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done++
	if p.total == 0 {
		return
	}
	progress := p.done * percentScale / p.total
	if progress >= p.lastProgress+progressInterval {
		p.logger.Info("progress",
			zap.Int("percent", progress),
			zap.Int("done", p.done),
			zap.Int("total", p.total),
		)
		p.lastProgress = progress - progress%progressInterval
	}
}
