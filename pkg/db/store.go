// pkg/db/store.go
package db

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/readlex/readlex/pkg/srs"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrWordNotFound is returned for ids absent from the store.
var ErrWordNotFound = errors.New("word not found")

// Stats summarizes the learning state of the whole store.
type Stats struct {
	TotalWords     int64   `json:"total_words"`
	DueWords       int64   `json:"due_words"`
	LearnedWords   int64   `json:"learned_words"`
	AverageReviews float64 `json:"average_reviews"`
}

// Store is the authoritative record of every known word. One mutex
// serializes every read-modify-write against the database, so concurrent
// upserts and grades never interleave their read and write halves.
type Store struct {
	mu  sync.Mutex
	gdb *gorm.DB
	now func() time.Time
}

func NewStore(gdb *gorm.DB) *Store {
	return &Store{gdb: gdb, now: time.Now}
}

// NewStoreWithClock is used by tests that need a fixed date.
func NewStoreWithClock(gdb *gorm.DB, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{gdb: gdb, now: now}
}

// UpsertSighting inserts text with a fresh review state unless it is already
// present. The unique index on text plus ON CONFLICT DO NOTHING makes the
// insert race-free; the second sighting's URL is discarded. Reports whether
// a row was inserted.
func (s *Store) UpsertSighting(ctx context.Context, text, sourceURL string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := srs.NewState(s.now())
	word := Word{
		Text:            text,
		SourceURL:       sourceURL,
		DifficultyLevel: state.DifficultyLevel,
		NextReviewDate:  state.NextReviewDate,
		ReviewCount:     state.ReviewCount,
		EaseFactor:      state.EaseFactor,
		IntervalDays:    state.IntervalDays,
	}
	res := s.gdb.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "text"}},
		DoNothing: true,
	}).Create(&word)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// GetDueWord returns the next word due today, preferring low difficulty,
// then low review count, then lowest id. Returns nil when nothing is due.
func (s *Store) GetDueWord(ctx context.Context) (*Word, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dueWordLocked(ctx)
}

func (s *Store) dueWordLocked(ctx context.Context) (*Word, error) {
	var word Word
	err := s.gdb.WithContext(ctx).
		Where("next_review_date <= ?", srs.Date(s.now())).
		Order("difficulty_level ASC, review_count ASC, id ASC").
		First(&word).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &word, nil
}

func (s *Store) GetWord(ctx context.Context, id uint) (*Word, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var word Word
	err := s.gdb.WithContext(ctx).First(&word, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrWordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &word, nil
}

func (s *Store) GetAll(ctx context.Context) ([]Word, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var words []Word
	if err := s.gdb.WithContext(ctx).Order("id ASC").Find(&words).Error; err != nil {
		return nil, err
	}
	return words, nil
}

func (s *Store) GetStats(ctx context.Context) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats Stats
	gdb := s.gdb.WithContext(ctx)
	if err := gdb.Model(&Word{}).Count(&stats.TotalWords).Error; err != nil {
		return Stats{}, err
	}
	if err := gdb.Model(&Word{}).
		Where("next_review_date <= ?", srs.Date(s.now())).
		Count(&stats.DueWords).Error; err != nil {
		return Stats{}, err
	}
	if err := gdb.Model(&Word{}).
		Where("review_count > 0").
		Count(&stats.LearnedWords).Error; err != nil {
		return Stats{}, err
	}
	var avg *float64
	if err := gdb.Model(&Word{}).
		Select("AVG(review_count)").
		Scan(&avg).Error; err != nil {
		return Stats{}, err
	}
	if avg != nil {
		stats.AverageReviews = math.Round(*avg*100) / 100
	}
	return stats, nil
}

// SaveTranslations replaces the translations map for id. Review state is
// untouched.
func (s *Store) SaveTranslations(ctx context.Context, id uint, translations map[string]*string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var word Word
	if err := word.setTranslationMap(translations); err != nil {
		return err
	}
	res := s.gdb.WithContext(ctx).Model(&Word{}).
		Where("id = ?", id).
		Update("translations", word.Translations)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrWordNotFound
	}
	return nil
}

// SaveReviewState overwrites the review state for id.
func (s *Store) SaveReviewState(ctx context.Context, id uint, state srs.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeReviewStateLocked(ctx, id, state)
}

// UpdateReviewState loads the current review state of id, applies update,
// and persists the result, all inside the store's critical section. The
// returned state is the persisted one.
func (s *Store) UpdateReviewState(ctx context.Context, id uint, update func(srs.State) (srs.State, error)) (srs.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var word Word
	err := s.gdb.WithContext(ctx).First(&word, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return srs.State{}, ErrWordNotFound
	}
	if err != nil {
		return srs.State{}, err
	}

	next, err := update(word.ReviewState())
	if err != nil {
		return srs.State{}, err
	}
	if err := s.writeReviewStateLocked(ctx, id, next); err != nil {
		return srs.State{}, err
	}
	return next, nil
}

func (s *Store) writeReviewStateLocked(ctx context.Context, id uint, state srs.State) error {
	res := s.gdb.WithContext(ctx).Model(&Word{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"difficulty_level": state.DifficultyLevel,
			"next_review_date": state.NextReviewDate,
			"review_count":     state.ReviewCount,
			"ease_factor":      state.EaseFactor,
			"interval_days":    state.IntervalDays,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrWordNotFound
	}
	return nil
}

// ClearAll deletes every word.
func (s *Store) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gdb.WithContext(ctx).Where("1 = 1").Delete(&Word{}).Error
}
