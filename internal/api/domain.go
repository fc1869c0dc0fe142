package api

import (
	"fmt"

	"github.com/JaimeStill/flatcheck/internal/capture"
	"github.com/JaimeStill/flatcheck/internal/catalog"
	"github.com/JaimeStill/flatcheck/internal/config"
	"github.com/JaimeStill/flatcheck/internal/expose"
	"github.com/JaimeStill/flatcheck/internal/history"
	"github.com/JaimeStill/flatcheck/internal/report"
	"github.com/JaimeStill/flatcheck/internal/wizard"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Catalog  *catalog.Catalog
	Exposes  expose.System
	History  *history.Log
	Exporter *report.Exporter
	Wizard   wizard.System
}

// NewDomain creates all domain systems from the API runtime. A configured
// catalog file replaces the built-in catalog.
func NewDomain(runtime *Runtime, cfg *config.DomainConfig) (*Domain, error) {
	fields := catalog.Default()
	if cfg.Catalog != "" {
		loaded, err := catalog.Load(cfg.Catalog)
		if err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		fields = loaded
		runtime.Logger.Info("catalog loaded", "path", cfg.Catalog, "fields", len(fields.Fields))
	}

	exposes := expose.New(
		runtime.Database.Connection(),
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
	)

	log := history.New(runtime.KV, &cfg.History, runtime.Logger)
	exporter := report.New(&cfg.Report, report.NewPDFSink, runtime.Logger)

	inspections := wizard.New(&cfg.Wizard, wizard.Deps{
		Catalog:  fields,
		Exposes:  exposes,
		Storage:  runtime.Storage,
		History:  log,
		Exporter: exporter,
		Camera:   capture.NewSnapshot(&cfg.Capture),
	}, runtime.Logger)

	return &Domain{
		Catalog:  fields,
		Exposes:  exposes,
		History:  log,
		Exporter: exporter,
		Wizard:   inspections,
	}, nil
}
