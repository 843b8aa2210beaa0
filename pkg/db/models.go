// pkg/db/models.go
package db

import (
	"encoding/json"
	"time"

	"github.com/readlex/readlex/pkg/srs"
	"gorm.io/datatypes"
)

// Translation provider keys used in Word.Translations.
const (
	ProviderGoogle   = "google"
	ProviderLingva   = "lingva"
	ProviderMyMemory = "mymemory"
)

// Word is one row per unique lowercase token. Text is the natural key; a
// second sighting of the same token is ignored, so SourceURL always records
// the first page the word was seen on.
//
// Translations is a JSON object mapping provider name to a nullable string:
// a missing key means the provider was never queried, an explicit null means
// it was queried and had no result.
type Word struct {
	ID              uint           `gorm:"primaryKey"`
	Text            string         `gorm:"not null;uniqueIndex:idx_words_text"`
	SourceURL       string         `gorm:"not null"`
	Translations    datatypes.JSON
	DifficultyLevel int            `gorm:"not null;default:1"`
	NextReviewDate  time.Time      `gorm:"not null;index:idx_words_due"`
	ReviewCount     int            `gorm:"not null;default:0"`
	EaseFactor      float64        `gorm:"not null;default:2.5"`
	IntervalDays    int            `gorm:"not null;default:1"`
}

// ReviewState extracts the scheduling tuple from the row.
func (w *Word) ReviewState() srs.State {
	return srs.State{
		DifficultyLevel: w.DifficultyLevel,
		NextReviewDate:  w.NextReviewDate,
		ReviewCount:     w.ReviewCount,
		EaseFactor:      w.EaseFactor,
		IntervalDays:    w.IntervalDays,
	}
}

// TranslationMap decodes the Translations column. A NULL column decodes to
// an empty map.
func (w *Word) TranslationMap() (map[string]*string, error) {
	if len(w.Translations) == 0 {
		return map[string]*string{}, nil
	}
	var m map[string]*string
	if err := json.Unmarshal(w.Translations, &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = map[string]*string{}
	}
	return m, nil
}

func (w *Word) setTranslationMap(m map[string]*string) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}
	w.Translations = datatypes.JSON(raw)
	return nil
}
