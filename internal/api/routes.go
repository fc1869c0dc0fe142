package api

import (
	"net/http"

	"github.com/JaimeStill/flatcheck/internal/config"
	"github.com/JaimeStill/flatcheck/internal/history"
	"github.com/JaimeStill/flatcheck/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) {
	maxUpload := cfg.API.MaxUploadSizeBytes()
	inspections := domain.Wizard.Handler(maxUpload)

	routes.Register(
		mux,
		inspections.CatalogRoutes(),
		inspections.Routes(),
		domain.Exposes.Handler(maxUpload).Routes(),
		history.NewHandler(domain.History, runtime.Storage, runtime.Logger, cfg.API.Pagination).Routes(),
	)
}
