package browser

import (
	"context"
	"time"

	"autoapply-engine/internal/config"
)

// Launcher starts a fresh paced session for each pass.
type Launcher struct {
	opts  LaunchOptions
	rate  float64
	burst int
}

func NewLauncher(cfg config.BrowserConfig) *Launcher {
	return &Launcher{
		opts: LaunchOptions{
			ProfileDir: cfg.ProfileDir,
			Headless:   cfg.Headless,
			SlowMo:     time.Duration(cfg.SlowMoMs) * time.Millisecond,
		},
		rate:  cfg.ActionsPerSecond,
		burst: cfg.ActionBurst,
	}
}

func (l *Launcher) Open(ctx context.Context) (Page, func() error, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	s, err := Launch(l.opts)
	if err != nil {
		return nil, nil, err
	}
	var page Page = s.Page()
	if l.rate > 0 {
		page = NewPacedPage(page, l.rate, l.burst)
	}
	return page, s.Close, nil
}
