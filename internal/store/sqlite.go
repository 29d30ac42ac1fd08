package store

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/i474232898/forecast-widget/internal/weather"
)

// Preference is the last city a session selected.
type Preference struct {
	SessionID string  `gorm:"column:session_id;primaryKey;size:36" json:"session_id"`
	City      string  `gorm:"column:city;not null"                 json:"city"`
	Latitude  float64 `gorm:"column:latitude;not null"             json:"latitude"`
	Longitude float64 `gorm:"column:longitude;not null"            json:"longitude"`

	CreatedAt time.Time `gorm:"autoCreateTime"       json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;index" json:"updated_at"`
}

func (Preference) TableName() string { return "preferences" }

// PreferenceStore persists per-session city choices in SQLite.
type PreferenceStore struct {
	db *gorm.DB
}

// OpenPreferences opens (and migrates) the SQLite database at path.
// Use ":memory:" for a throwaway database.
func OpenPreferences(path string) (*PreferenceStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}

	if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
		return nil, fmt.Errorf("store: enable WAL: %w", err)
	}
	if err := db.AutoMigrate(&Preference{}); err != nil {
		return nil, fmt.Errorf("store: migrate: %w", err)
	}

	return &PreferenceStore{db: db}, nil
}

// SaveCity records city as the selection of session.
func (p *PreferenceStore) SaveCity(session string, city weather.CitySelector) error {
	r := p.db.Where(Preference{SessionID: session}).
		Assign(Preference{
			City:      city.Name,
			Latitude:  city.Location.Latitude,
			Longitude: city.Location.Longitude,
		}).
		FirstOrCreate(&Preference{})
	if r.Error != nil {
		return fmt.Errorf("store: save preference %s: %w", session, r.Error)
	}
	return nil
}

// LoadCity returns the last city saved for session, or ErrNotFound.
func (p *PreferenceStore) LoadCity(session string) (weather.CitySelector, error) {
	var pref Preference
	err := p.db.First(&pref, "session_id = ?", session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return weather.CitySelector{}, ErrNotFound
	}
	if err != nil {
		return weather.CitySelector{}, fmt.Errorf("store: load preference %s: %w", session, err)
	}

	return weather.CitySelector{
		Name:     pref.City,
		Location: weather.Location{Latitude: pref.Latitude, Longitude: pref.Longitude},
		Selected: true,
	}, nil
}

// PurgeOlderThan deletes preferences not updated within age.
func (p *PreferenceStore) PurgeOlderThan(age time.Duration) (int64, error) {
	cutoff := time.Now().Add(-age)
	r := p.db.Where("updated_at < ?", cutoff).Delete(&Preference{})
	if r.Error != nil {
		return 0, fmt.Errorf("store: purge preferences: %w", r.Error)
	}
	return r.RowsAffected, nil
}

// Close releases the underlying connection.
func (p *PreferenceStore) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
