// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog persists slow-changing reference data used by enrichment:
// airport coordinates, transit characteristics, amenities, safety ratings,
// visa requirements, and curated city activities. The data backs the built-in
// transit, experience, and amenity collaborators; a deployment pointing those
// at real integrations can drop the catalog entirely.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/layover-engine/pkg/types"
)

// Airport is one row of airport reference data.
type Airport struct {
	Code           string               `json:"code" yaml:"code"`
	City           string               `json:"city" yaml:"city"`
	Country        string               `json:"country" yaml:"country"`
	Latitude       float64              `json:"latitude" yaml:"latitude"`
	Longitude      float64              `json:"longitude" yaml:"longitude"`
	TransitMode    string               `json:"transit_mode" yaml:"transit_mode"`
	TransitMinutes int                  `json:"transit_minutes" yaml:"transit_minutes"`
	SafetyRating   float64              `json:"safety_rating" yaml:"safety_rating"`
	VisaRequired   bool                 `json:"visa_required" yaml:"visa_required"`
	Amenities      types.AmenitySummary `json:"amenities" yaml:"amenities"`
}

// CityActivity is one curated activity row, keyed by city.
type CityActivity struct {
	City           string `json:"city" yaml:"city"`
	types.Activity `yaml:",inline"`
}

// Store manages the catalog SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the catalog database at cfg.Path, creating the
// schema if it does not exist. An empty path opens an in-memory database
// pre-populated with the built-in seed so the engine works out of the box.
func NewStore(cfg types.CatalogConfig) (*Store, error) {
	dsn := ":memory:"
	if cfg.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("creating catalog directory: %w", err)
		}
		dsn = cfg.Path + "?_journal_mode=WAL&_foreign_keys=on"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening catalog database: %w", err)
	}
	if cfg.Path == "" {
		// Each pooled connection would otherwise see its own empty :memory: database.
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating catalog schema: %w", err)
	}

	if cfg.Path == "" {
		if err := s.Apply(context.Background(), BuiltinSeed()); err != nil {
			db.Close()
			return nil, fmt.Errorf("seeding in-memory catalog: %w", err)
		}
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS airports (
			code TEXT PRIMARY KEY,
			city TEXT NOT NULL,
			country TEXT NOT NULL,
			latitude REAL,
			longitude REAL,
			transit_mode TEXT,
			transit_minutes INTEGER,
			safety_rating REAL,
			visa_required INTEGER,
			wifi INTEGER, lounges INTEGER, showers INTEGER, sleeping_areas INTEGER,
			restaurants INTEGER, shopping INTEGER, spa INTEGER,
			currency_exchange INTEGER, medical_center INTEGER, children_area INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS activities (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			city TEXT NOT NULL,
			name TEXT NOT NULL,
			category TEXT,
			indoor INTEGER,
			rating REAL,
			duration_minutes INTEGER,
			UNIQUE(city, name)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_city ON activities(city)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Airport returns the reference row for an IATA code, or sql.ErrNoRows-wrapped
// not-found. Lookups are case-insensitive.
func (s *Store) Airport(ctx context.Context, code string) (Airport, error) {
	var a Airport
	var visa, wifi, lounges, showers, sleeping, restaurants, shopping, spa, currency, medical, children int
	err := s.db.QueryRowContext(ctx,
		`SELECT code, city, country, latitude, longitude, transit_mode, transit_minutes,
			safety_rating, visa_required,
			wifi, lounges, showers, sleeping_areas, restaurants, shopping, spa,
			currency_exchange, medical_center, children_area
		 FROM airports WHERE code = ?`, strings.ToUpper(code),
	).Scan(&a.Code, &a.City, &a.Country, &a.Latitude, &a.Longitude,
		&a.TransitMode, &a.TransitMinutes, &a.SafetyRating, &visa,
		&wifi, &lounges, &showers, &sleeping, &restaurants, &shopping, &spa,
		&currency, &medical, &children)
	if err != nil {
		return Airport{}, fmt.Errorf("airport %s: %w", code, err)
	}
	a.VisaRequired = visa != 0
	a.Amenities = types.AmenitySummary{
		WiFi:             wifi != 0,
		Lounges:          lounges != 0,
		Showers:          showers != 0,
		SleepingAreas:    sleeping != 0,
		Restaurants:      restaurants != 0,
		Shopping:         shopping != 0,
		Spa:              spa != 0,
		CurrencyExchange: currency != 0,
		MedicalCenter:    medical != 0,
		ChildrenArea:     children != 0,
	}
	return a, nil
}

// Activities returns the curated activities for a city, best rated first.
// An unknown city returns an empty slice, not an error.
func (s *Store) Activities(ctx context.Context, city string) ([]types.Activity, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, category, indoor, rating, duration_minutes
		 FROM activities WHERE city = ? COLLATE NOCASE
		 ORDER BY rating DESC, name ASC`, city)
	if err != nil {
		return nil, fmt.Errorf("activities for %s: %w", city, err)
	}
	defer rows.Close()

	var out []types.Activity
	for rows.Next() {
		var act types.Activity
		var indoor int
		if err := rows.Scan(&act.Name, &act.Category, &indoor, &act.Rating, &act.DurationMinutes); err != nil {
			return nil, fmt.Errorf("scanning activity: %w", err)
		}
		act.Indoor = indoor != 0
		out = append(out, act)
	}
	return out, rows.Err()
}

// Apply upserts a seed into the database inside one transaction.
func (s *Store) Apply(ctx context.Context, seed Seed) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	airportStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO airports (code, city, country, latitude, longitude,
			transit_mode, transit_minutes, safety_rating, visa_required,
			wifi, lounges, showers, sleeping_areas, restaurants, shopping, spa,
			currency_exchange, medical_center, children_area)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(code) DO UPDATE SET
			city=excluded.city, country=excluded.country,
			latitude=excluded.latitude, longitude=excluded.longitude,
			transit_mode=excluded.transit_mode, transit_minutes=excluded.transit_minutes,
			safety_rating=excluded.safety_rating, visa_required=excluded.visa_required,
			wifi=excluded.wifi, lounges=excluded.lounges, showers=excluded.showers,
			sleeping_areas=excluded.sleeping_areas, restaurants=excluded.restaurants,
			shopping=excluded.shopping, spa=excluded.spa,
			currency_exchange=excluded.currency_exchange,
			medical_center=excluded.medical_center, children_area=excluded.children_area`)
	if err != nil {
		return fmt.Errorf("preparing airport upsert: %w", err)
	}
	defer airportStmt.Close()

	for _, a := range seed.Airports {
		am := a.Amenities
		_, err := airportStmt.ExecContext(ctx,
			strings.ToUpper(a.Code), a.City, a.Country, a.Latitude, a.Longitude,
			a.TransitMode, a.TransitMinutes, a.SafetyRating, boolInt(a.VisaRequired),
			boolInt(am.WiFi), boolInt(am.Lounges), boolInt(am.Showers), boolInt(am.SleepingAreas),
			boolInt(am.Restaurants), boolInt(am.Shopping), boolInt(am.Spa),
			boolInt(am.CurrencyExchange), boolInt(am.MedicalCenter), boolInt(am.ChildrenArea))
		if err != nil {
			return fmt.Errorf("upserting airport %s: %w", a.Code, err)
		}
	}

	activityStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO activities (city, name, category, indoor, rating, duration_minutes)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(city, name) DO UPDATE SET
			category=excluded.category, indoor=excluded.indoor,
			rating=excluded.rating, duration_minutes=excluded.duration_minutes`)
	if err != nil {
		return fmt.Errorf("preparing activity upsert: %w", err)
	}
	defer activityStmt.Close()

	for _, ca := range seed.Activities {
		act := ca.Activity
		_, err := activityStmt.ExecContext(ctx,
			ca.City, act.Name, act.Category, boolInt(act.Indoor), act.Rating, act.DurationMinutes)
		if err != nil {
			return fmt.Errorf("upserting activity %s/%s: %w", ca.City, act.Name, err)
		}
	}

	return tx.Commit()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
