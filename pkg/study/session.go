package study

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/readlex/readlex/pkg/db"
	"github.com/readlex/readlex/pkg/extract"
	"github.com/readlex/readlex/pkg/logger"
	"github.com/readlex/readlex/pkg/srs"
)

// ErrInvalidQuality rejects grades outside [0,5] before any state mutation.
var ErrInvalidQuality = errors.New("quality must be between 0 and 5")

// ErrWordNotFound mirrors the store's sentinel for unknown word ids.
var ErrWordNotFound = db.ErrWordNotFound

// TextFetcher is the page-fetching collaborator.
type TextFetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// Backfiller is the translation-aggregation collaborator.
type Backfiller interface {
	Backfill(ctx context.Context, word string, existing map[string]*string) map[string]*string
}

// Session drives the vocabulary loop: ingest pages, hand out the next due
// word with translations populated, and apply grades.
type Session struct {
	store      *db.Store
	fetcher    TextFetcher
	translator Backfiller
	now        func() time.Time
}

func NewSession(store *db.Store, fetcher TextFetcher, translator Backfiller) *Session {
	return &Session{store: store, fetcher: fetcher, translator: translator, now: time.Now}
}

// NewSessionWithClock is used by tests that need a fixed date.
func NewSessionWithClock(store *db.Store, fetcher TextFetcher, translator Backfiller, now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	return &Session{store: store, fetcher: fetcher, translator: translator, now: now}
}

// Ingest fetches the page, extracts candidate words, and records a sighting
// for each. Re-sighted words are left untouched. Returns the number of
// unique candidate words on the page; a fetch failure aborts the whole
// ingestion.
func (s *Session) Ingest(ctx context.Context, url string) (int, error) {
	text, err := s.fetcher.FetchText(ctx, url)
	if err != nil {
		return 0, err
	}

	words := extract.Words(text)
	inserted := 0
	for _, word := range words {
		ok, err := s.store.UpsertSighting(ctx, word, url)
		if err != nil {
			return 0, fmt.Errorf("save word %q: %w", word, err)
		}
		if ok {
			inserted++
		}
	}
	logger.Info("ingested page", "url", url, "words", len(words), "new", inserted)
	return len(words), nil
}

// NextCard returns the next due word, backfilling missing translations
// first so the caller always sees the full provider map. Returns nil when
// nothing is due.
func (s *Session) NextCard(ctx context.Context) (*db.Word, error) {
	word, err := s.store.GetDueWord(ctx)
	if err != nil {
		return nil, err
	}
	if word == nil {
		return nil, nil
	}

	existing, err := word.TranslationMap()
	if err != nil {
		return nil, fmt.Errorf("decode translations for %q: %w", word.Text, err)
	}

	merged := s.translator.Backfill(ctx, word.Text, existing)
	if len(merged) != len(existing) {
		if err := s.store.SaveTranslations(ctx, word.ID, merged); err != nil {
			return nil, fmt.Errorf("save translations for %q: %w", word.Text, err)
		}
		word, err = s.store.GetWord(ctx, word.ID)
		if err != nil {
			return nil, err
		}
	}
	return word, nil
}

// Grade applies a quality grade in [0,5] to the word and returns the new
// interval in days. The load-schedule-save sequence runs inside the store's
// critical section.
func (s *Session) Grade(ctx context.Context, id uint, quality int) (int, error) {
	if !srs.ValidQuality(quality) {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidQuality, quality)
	}

	today := s.now()
	state, err := s.store.UpdateReviewState(ctx, id, func(current srs.State) (srs.State, error) {
		return srs.Schedule(current, quality, today), nil
	})
	if err != nil {
		return 0, err
	}
	return state.IntervalDays, nil
}

func (s *Session) Words(ctx context.Context) ([]db.Word, error) {
	return s.store.GetAll(ctx)
}

func (s *Session) Stats(ctx context.Context) (db.Stats, error) {
	return s.store.GetStats(ctx)
}

func (s *Session) ClearAll(ctx context.Context) error {
	return s.store.ClearAll(ctx)
}
