package main

import (
	"encoding/json"
	"net/http"

	"github.com/JaimeStill/flatcheck/internal/api"
	"github.com/JaimeStill/flatcheck/internal/config"
	"github.com/JaimeStill/flatcheck/internal/infrastructure"
	"github.com/JaimeStill/flatcheck/pkg/module"
)

type Modules struct {
	API *module.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	return &Modules{API: apiModule}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

func buildRouter(infra *infrastructure.Infrastructure, version string) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, map[string]string{"status": "ok", "version": version})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !infra.Lifecycle.Ready() || !infra.Database.Ready() {
			respond(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
			return
		}
		respond(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	return router
}

func respond(w http.ResponseWriter, status int, body map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
