package history_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/flatcheck/internal/history"
	"github.com/JaimeStill/flatcheck/pkg/kv"
	"github.com/JaimeStill/flatcheck/pkg/lifecycle"
	"github.com/JaimeStill/flatcheck/pkg/pagination"
	"github.com/JaimeStill/flatcheck/pkg/routes"
	"github.com/JaimeStill/flatcheck/pkg/storage"
)

type mockStorage struct {
	downloadFn func(ctx context.Context, key string) (*storage.Blob, error)
}

func (m *mockStorage) Start(*lifecycle.Coordinator) error { return nil }

func (m *mockStorage) Upload(context.Context, string, io.Reader, string) error { return nil }

func (m *mockStorage) Download(ctx context.Context, key string) (*storage.Blob, error) {
	return m.downloadFn(ctx, key)
}

func (m *mockStorage) Delete(context.Context, string) error { return nil }

func (m *mockStorage) Exists(context.Context, string) (bool, error) { return true, nil }

func newMux(t *testing.T, l *history.Log, store storage.System) *http.ServeMux {
	t.Helper()
	h := history.NewHandler(l, store, discardLogger(), pagination.Config{DefaultPageSize: 2, MaxPageSize: 10})

	mux := http.NewServeMux()
	routes.Register(mux, h.Routes())
	return mux
}

func TestHandlerList(t *testing.T) {
	ctx := context.Background()
	l := newLog(t, kv.NewMemory())
	for i := range 3 {
		l.Append(ctx, entry(i))
	}

	rec := httptest.NewRecorder()
	newMux(t, l, &mockStorage{}).ServeHTTP(rec, httptest.NewRequest("GET", "/history?page=2", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var page pagination.PageResult[history.Entry]
	if err := json.NewDecoder(rec.Body).Decode(&page); err != nil {
		t.Fatal(err)
	}
	if page.Total != 3 || page.TotalPages != 2 || len(page.Data) != 1 {
		t.Errorf("page = %+v", page)
	}
	if page.Data[0].Filename != entry(0).Filename {
		t.Errorf("page 2 holds %q, want oldest", page.Data[0].Filename)
	}
}

func TestHandlerClear(t *testing.T) {
	ctx := context.Background()
	l := newLog(t, kv.NewMemory())
	l.Append(ctx, entry(1))

	rec := httptest.NewRecorder()
	newMux(t, l, &mockStorage{}).ServeHTTP(rec, httptest.NewRequest("DELETE", "/history", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(l.List(ctx)) != 0 {
		t.Error("history not cleared")
	}
}

func TestHandlerDownload(t *testing.T) {
	ctx := context.Background()
	l := newLog(t, kv.NewMemory())

	e := entry(3)
	e.StorageKey = "reports/abc/Flat_0003.pdf"
	l.Append(ctx, e)

	store := &mockStorage{downloadFn: func(_ context.Context, key string) (*storage.Blob, error) {
		if key != e.StorageKey {
			t.Errorf("key = %q", key)
		}
		return &storage.Blob{
			Body:          io.NopCloser(strings.NewReader("%PDF-1.7")),
			ContentType:   "application/pdf",
			ContentLength: 8,
		}, nil
	}}
	mux := newMux(t, l, store)

	t.Run("recorded", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", "/history/download/"+e.StorageKey, nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, e.Filename) {
			t.Errorf("disposition = %q", got)
		}
		if rec.Body.String() != "%PDF-1.7" {
			t.Errorf("body = %q", rec.Body.String())
		}
	})

	t.Run("unrecorded", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", "/history/download/reports/other.pdf", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}
