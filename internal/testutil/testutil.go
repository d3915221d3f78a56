// Package testutil provides in-memory repository mocks and image fixtures
// for service and handler tests.
package testutil

import (
	"bytes"
	"database/sql"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"sort"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/snapdiff/snapdiff/internal/pkg/logger"
	"github.com/snapdiff/snapdiff/migrations"
)

// NewTestLogger returns a logger that only emits errors, keeping test output
// quiet.
func NewTestLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: "json"})
}

// NewTestDB opens an in-memory SQLite database with the full schema applied.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	migrationsFS := migrations.GetFS()
	entries, err := fs.ReadDir(migrationsFS, ".")
	if err != nil {
		t.Fatalf("Failed to read migrations: %v", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && len(e.Name()) > 4 && e.Name()[len(e.Name())-4:] == ".sql" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		content, err := fs.ReadFile(migrationsFS, name)
		if err != nil {
			t.Fatalf("Failed to read migration %s: %v", name, err)
		}
		if _, err := db.Exec(string(content)); err != nil {
			t.Fatalf("Failed to apply migration %s: %v", name, err)
		}
	}

	return db
}

// CleanupDB closes the test database.
func CleanupDB(db *sql.DB) {
	if db != nil {
		db.Close()
	}
}

// SolidPNG encodes a w x h image of a single color.
func SolidPNG(w, h int, c color.NRGBA) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	fillRect(img, 0, 0, w, h, c)
	return encodePNG(img)
}

// PNGWithRect encodes a w x h background image with one rectangle of a
// different color, the standard fixture for a localized change.
func PNGWithRect(w, h int, bg color.NRGBA, x, y, rw, rh int, c color.NRGBA) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	fillRect(img, 0, 0, w, h, bg)
	fillRect(img, x, y, rw, rh, c)
	return encodePNG(img)
}

func fillRect(img *image.NRGBA, x, y, w, h int, c color.NRGBA) {
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			img.SetNRGBA(xx, yy, c)
		}
	}
}

func encodePNG(img image.Image) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
