package nereval

import (
	"log/slog"

	"github.com/jamesainslie/go-nereval/filter"
)

// Option configures an Evaluator.
type Option func(*config)

type config struct {
	filter *filter.Filter
	logger *slog.Logger
}

func defaultConfig() config {
	return config{
		logger: slog.Default(),
	}
}

// WithFilter restricts predictions with f before matching (default: no filter).
func WithFilter(f *filter.Filter) Option {
	return func(c *config) {
		c.filter = f
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
