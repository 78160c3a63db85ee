package scrape

import (
	"fmt"
	"time"

	"github.com/pmenendez/explorastur/internal/config"
	"github.com/pmenendez/explorastur/internal/logger"
)

type constructor func(config.Source, config.Settings, *Fetcher, *logger.Logger, time.Time) Source

var constructors = map[string]constructor{
	"telecable": func(src config.Source, st config.Settings, f *Fetcher, l *logger.Logger, now time.Time) Source {
		return NewTelecable(src, st, f, l, now)
	},
	"turismo_asturias": func(src config.Source, st config.Settings, f *Fetcher, l *logger.Logger, now time.Time) Source {
		return NewTurismoAsturias(src, st, f, l, now)
	},
	"oviedo_centros_sociales": func(src config.Source, st config.Settings, f *Fetcher, l *logger.Logger, now time.Time) Source {
		return NewOviedoCentros(src, st, f, l, now)
	},
	"visit_oviedo": func(src config.Source, st config.Settings, f *Fetcher, l *logger.Logger, now time.Time) Source {
		return NewVisitOviedo(src, st, f, l, now)
	},
	"biodevas": func(src config.Source, st config.Settings, f *Fetcher, l *logger.Logger, now time.Time) Source {
		return NewBiodevas(src, st, f, l, now)
	},
	"aviles": func(src config.Source, st config.Settings, f *Fetcher, l *logger.Logger, now time.Time) Source {
		return NewAviles(src, st, f, l, now)
	},
}

// KnownIDs lists the source IDs with a registered scraper.
func KnownIDs() []string {
	ids := make([]string, 0, len(constructors))
	for id := range constructors {
		ids = append(ids, id)
	}
	return ids
}

// Build creates a scraper for one configured source.
func Build(src config.Source, settings config.Settings, f *Fetcher, log *logger.Logger, now time.Time) (Source, error) {
	ctor, ok := constructors[src.ID]
	if !ok {
		return nil, fmt.Errorf("unknown source: %s", src.ID)
	}
	return ctor(src, settings, f, log, now), nil
}

// BuildAll creates scrapers for every enabled source in the config.
// Sources without a registered scraper are skipped with a warning so a
// stale config entry cannot break the run.
func BuildAll(cfg *config.Config, f *Fetcher, log *logger.Logger, now time.Time) []Source {
	var sources []Source
	for _, src := range cfg.Enabled() {
		s, err := Build(src, cfg.Settings, f, log, now)
		if err != nil {
			log.Warn("skipping source", logger.Fields{"source": src.ID, "error": err.Error()})
			continue
		}
		sources = append(sources, s)
	}
	return sources
}
