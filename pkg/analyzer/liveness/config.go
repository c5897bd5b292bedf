package liveness

import (
	"github.com/panbanda/livewalk/pkg/config"
	"github.com/panbanda/livewalk/pkg/values"
)

// ConfigOptions translates the palette, scan and analysis sections of cfg
// into analyzer options. The known fields file is loaded when configured.
func ConfigOptions(cfg *config.Config) ([]Option, error) {
	palette, err := cfg.ColorPalette()
	if err != nil {
		return nil, err
	}

	opts := []Option{
		WithPalette(palette),
		WithConfigRoot(cfg.ConfigRoot()),
		WithMaxFileSize(cfg.Analysis.MaxFileSize),
		WithWorkers(cfg.Analysis.Workers),
	}

	if cfg.Scan.KnownFields != "" {
		known, err := values.LoadKnownFields(cfg.Scan.KnownFields)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithKnownFields(known))
	}

	return opts, nil
}
