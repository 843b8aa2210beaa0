package translate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/readlex/readlex/pkg/db"
)

func newTestProviders(t *testing.T, googleHandler, lingvaHandler, mymemoryHandler http.HandlerFunc) ([]Provider, func()) {
	t.Helper()
	googleSrv := httptest.NewServer(googleHandler)
	lingvaSrv := httptest.NewServer(lingvaHandler)
	mymemorySrv := httptest.NewServer(mymemoryHandler)

	providers := []Provider{
		&GoogleProvider{BaseURL: googleSrv.URL, SourceLang: "en", TargetLang: "ru"},
		&LingvaProvider{BaseURL: lingvaSrv.URL, SourceLang: "en", TargetLang: "ru"},
		&MyMemoryProvider{BaseURL: mymemorySrv.URL, SourceLang: "en", TargetLang: "ru"},
	}
	cleanup := func() {
		googleSrv.Close()
		lingvaSrv.Close()
		mymemorySrv.Close()
	}
	return providers, cleanup
}

func TestBackfillAllProvidersSucceed(t *testing.T) {
	providers, cleanup := newTestProviders(t,
		func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("q") != "cat" {
				t.Errorf("unexpected google query: %s", r.URL.RawQuery)
			}
			w.Write([]byte(`[[["кот","cat",null,null]],null,"en"]`))
		},
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"translation":"кошка"}`))
		},
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"responseData":{"translatedText":"кот"}}`))
		},
	)
	defer cleanup()

	agg := NewAggregator(providers, 5*time.Second)
	got := agg.Backfill(context.Background(), "cat", map[string]*string{})

	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %v", got)
	}
	if got[db.ProviderGoogle] == nil || *got[db.ProviderGoogle] != "кот" {
		t.Fatalf("unexpected google result: %v", got[db.ProviderGoogle])
	}
	if got[db.ProviderLingva] == nil || *got[db.ProviderLingva] != "кошка" {
		t.Fatalf("unexpected lingva result: %v", got[db.ProviderLingva])
	}
	if got[db.ProviderMyMemory] == nil || *got[db.ProviderMyMemory] != "кот" {
		t.Fatalf("unexpected mymemory result: %v", got[db.ProviderMyMemory])
	}
}

func TestBackfillPartialFailure(t *testing.T) {
	providers, cleanup := newTestProviders(t,
		func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		},
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json at all`))
		},
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"responseData":{"translatedText":"зоопарк"}}`))
		},
	)
	defer cleanup()

	agg := NewAggregator(providers, 5*time.Second)
	got := agg.Backfill(context.Background(), "zoo", map[string]*string{})

	if len(got) != 3 {
		t.Fatalf("expected an entry per provider, got %v", got)
	}
	if got[db.ProviderGoogle] != nil {
		t.Fatalf("expected null google entry after HTTP error, got %v", *got[db.ProviderGoogle])
	}
	if got[db.ProviderLingva] != nil {
		t.Fatalf("expected null lingva entry after parse error, got %v", *got[db.ProviderLingva])
	}
	if got[db.ProviderMyMemory] == nil || *got[db.ProviderMyMemory] != "зоопарк" {
		t.Fatalf("expected mymemory to survive, got %v", got[db.ProviderMyMemory])
	}
}

func TestBackfillSkipsExistingEntries(t *testing.T) {
	var calls int32
	counting := func(response string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.Write([]byte(response))
		}
	}
	providers, cleanup := newTestProviders(t,
		counting(`[[["кот"]]]`),
		counting(`{"translation":"кошка"}`),
		counting(`{"responseData":{"translatedText":"кот"}}`),
	)
	defer cleanup()

	stored := "кот"
	existing := map[string]*string{
		db.ProviderGoogle:   &stored,
		db.ProviderMyMemory: nil, // looked up before, no result; must not be retried
	}

	agg := NewAggregator(providers, 5*time.Second)
	got := agg.Backfill(context.Background(), "cat", existing)

	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected exactly one lookup, got %d", calls)
	}
	if got[db.ProviderGoogle] == nil || *got[db.ProviderGoogle] != "кот" {
		t.Fatalf("existing google entry changed: %v", got[db.ProviderGoogle])
	}
	if value, ok := got[db.ProviderMyMemory]; !ok || value != nil {
		t.Fatalf("null mymemory entry should be preserved, got ok=%v value=%v", ok, value)
	}
	if got[db.ProviderLingva] == nil || *got[db.ProviderLingva] != "кошка" {
		t.Fatalf("expected lingva to be backfilled, got %v", got[db.ProviderLingva])
	}
}

func TestBackfillCompleteMapMakesNoCalls(t *testing.T) {
	var calls int32
	handler := func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{}`))
	}
	providers, cleanup := newTestProviders(t, handler, handler, handler)
	defer cleanup()

	value := "кот"
	existing := map[string]*string{
		db.ProviderGoogle:   &value,
		db.ProviderLingva:   nil,
		db.ProviderMyMemory: &value,
	}

	agg := NewAggregator(providers, 5*time.Second)
	got := agg.Backfill(context.Background(), "cat", existing)

	if atomic.LoadInt32(&calls) != 0 {
		t.Fatalf("expected no network calls, got %d", calls)
	}
	if len(got) != 3 {
		t.Fatalf("expected input returned unchanged, got %v", got)
	}
}

func TestBackfillTimeoutBecomesNull(t *testing.T) {
	providers, cleanup := newTestProviders(t,
		func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(300 * time.Millisecond)
			w.Write([]byte(`[[["кот"]]]`))
		},
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"translation":"кошка"}`))
		},
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"responseData":{"translatedText":"кот"}}`))
		},
	)
	defer cleanup()

	agg := NewAggregator(providers, 50*time.Millisecond)
	got := agg.Backfill(context.Background(), "cat", map[string]*string{})

	if got[db.ProviderGoogle] != nil {
		t.Fatalf("expected timed-out provider to yield null, got %v", *got[db.ProviderGoogle])
	}
	if got[db.ProviderLingva] == nil || got[db.ProviderMyMemory] == nil {
		t.Fatalf("fast providers should not be affected by the slow one, got %v", got)
	}
}

func TestGoogleProviderParsesNestedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[[["привет","hello",null,null,10]],null,"en",null,null,null,null,[]]`))
	}))
	defer srv.Close()

	p := &GoogleProvider{BaseURL: srv.URL, SourceLang: "en", TargetLang: "ru"}
	got, err := p.Lookup(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if got != "привет" {
		t.Fatalf("expected привет, got %q", got)
	}
}

func TestGoogleProviderEmptyPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	p := &GoogleProvider{BaseURL: srv.URL, SourceLang: "en", TargetLang: "ru"}
	if _, err := p.Lookup(context.Background(), "hello"); err == nil {
		t.Fatal("expected an error for an empty payload")
	}
}
