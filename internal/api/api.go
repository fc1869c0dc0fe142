// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/flatcheck/internal/config"
	"github.com/JaimeStill/flatcheck/internal/infrastructure"
	"github.com/JaimeStill/flatcheck/pkg/middleware"
	"github.com/JaimeStill/flatcheck/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware,
// and registers the domain systems with the lifecycle coordinator.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)

	domain, err := NewDomain(runtime, &cfg.Domain)
	if err != nil {
		return nil, err
	}
	if err := domain.Wizard.Start(runtime.Lifecycle); err != nil {
		return nil, fmt.Errorf("wizard start failed: %w", err)
	}

	mux := http.NewServeMux()
	registerRoutes(mux, domain, cfg, runtime)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(
		middleware.RequestID(),
		middleware.SecureHeaders(),
		middleware.CORS(&cfg.API.CORS),
		middleware.Logger(runtime.Logger),
		runtime.Auth.Middleware(),
	)

	return m, nil
}
