package runtime

import (
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
	"golang.org/x/time/rate"
)

// fileConfig mirrors the on-disk YAML shape for Runtime configuration.
type fileConfig struct {
	DisableVisitErrors bool    `yaml:"disable_visit_errors"`
	ParseCacheSize     int     `yaml:"parse_cache_size"`
	RateLimit          float64 `yaml:"rate_limit"`
	RateBurst          int     `yaml:"rate_burst"`
}

// LoadConfig decodes a YAML document into a set of Options suitable for
// passing to New via Options.AsOptions. A zero or absent rate_limit means
// unlimited.
func LoadConfig(r io.Reader) (Options, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Options{}, fmt.Errorf("runtime: read config: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return Options{}, fmt.Errorf("runtime: parse config: %w", err)
	}

	return Options{
		DisableVisitErrors: fc.DisableVisitErrors,
		ParseCacheSize:     fc.ParseCacheSize,
		RateLimit:          rate.Limit(fc.RateLimit),
		RateBurst:          fc.RateBurst,
	}, nil
}

// AsOptions converts an Options value loaded via LoadConfig into the
// Option slice New expects.
func (o Options) AsOptions() []Option {
	opts := []Option{
		WithDisableVisitErrors(o.DisableVisitErrors),
		WithParseCacheSize(o.ParseCacheSize),
	}
	if o.RateLimit > 0 {
		opts = append(opts, WithRateLimit(o.RateLimit, o.RateBurst))
	}
	return opts
}
