package routes_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/flatcheck/pkg/routes"
)

func TestRegisterHandlers(t *testing.T) {
	mux := http.NewServeMux()

	routes.Register(mux, routes.Group{
		Prefix: "/items",
		Routes: []routes.Route{
			{
				Method:  "GET",
				Pattern: "",
				Handler: func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusOK)
				},
			},
			{
				Method:  "GET",
				Pattern: "/{id}",
				Handler: func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusOK)
				},
			},
		},
	})

	tests := []struct {
		name   string
		method string
		path   string
		wantOK bool
	}{
		{"list items", "GET", "/items", true},
		{"get item", "GET", "/items/123", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, tt.path, nil)
			mux.ServeHTTP(rec, req)

			if tt.wantOK && rec.Code != http.StatusOK {
				t.Errorf("status: got %d, want 200", rec.Code)
			}
		})
	}
}

func TestNestedGroups(t *testing.T) {
	mux := http.NewServeMux()

	routes.Register(mux, routes.Group{
		Prefix: "/api",
		Children: []routes.Group{
			{
				Prefix: "/v1",
				Routes: []routes.Route{
					{
						Method:  "GET",
						Pattern: "/items",
						Handler: func(w http.ResponseWriter, r *http.Request) {
							w.WriteHeader(http.StatusOK)
						},
					},
				},
			},
		},
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/items", nil)
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("nested route: got %d, want 200", rec.Code)
	}
}

func TestGroupMiddleware(t *testing.T) {
	var calls []string
	tag := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls = append(calls, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	ok := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

	mux := http.NewServeMux()
	routes.Register(mux, routes.Group{
		Prefix:     "/inspections",
		Middleware: []func(http.Handler) http.Handler{tag("outer")},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{id}", Handler: ok},
		},
		Children: []routes.Group{
			{
				Middleware: []func(http.Handler) http.Handler{tag("inner")},
				Routes: []routes.Route{
					{Method: "POST", Pattern: "/{id}/upload", Handler: ok},
				},
			},
		},
	})

	tests := []struct {
		name   string
		method string
		path   string
		want   []string
	}{
		{"parent route", "GET", "/inspections/1", []string{"outer"}},
		{"child route", "POST", "/inspections/1/upload", []string{"outer", "inner"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls = nil
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			if rec.Code != http.StatusOK {
				t.Fatalf("status: got %d, want 200", rec.Code)
			}
			if len(calls) != len(tt.want) {
				t.Fatalf("calls: got %v, want %v", calls, tt.want)
			}
			for i := range tt.want {
				if calls[i] != tt.want[i] {
					t.Errorf("calls: got %v, want %v", calls, tt.want)
				}
			}
		})
	}
}

func TestRouteString(t *testing.T) {
	tests := []struct {
		name   string
		route  routes.Route
		prefix string
		want   string
	}{
		{"method and prefix", routes.Route{Method: "POST", Pattern: "/{id}/advance"}, "/inspections", "POST /inspections/{id}/advance"},
		{"empty pattern", routes.Route{Method: "GET", Pattern: ""}, "/history", "GET /history"},
		{"any method", routes.Route{Pattern: "/healthz"}, "", "/healthz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.route.String(tt.prefix); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRegisterAnyMethod(t *testing.T) {
	mux := http.NewServeMux()
	routes.Register(mux, routes.Group{
		Prefix: "/camera",
		Routes: []routes.Route{{
			Pattern: "",
			Handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			},
		}},
	})

	for _, method := range []string{"POST", "DELETE"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(method, "/camera", nil))
		if rec.Code != http.StatusNoContent {
			t.Errorf("%s: status %d, want 204", method, rec.Code)
		}
	}
}
