package geojson

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/oldto/oldto/internal/domain"
)

const sampleCollection = `{
	"type": "FeatureCollection",
	"features": [
		{
			"type": "Feature",
			"id": 86514,
			"geometry": {"type": "Point", "coordinates": [-79.359842, 43.651501]},
			"properties": {
				"date": "1912",
				"title": "Queen St. looking east",
				"image": {"url": "https://example.org/86514.jpg", "width": 800},
				"archive": "city"
			}
		},
		{
			"type": "Feature",
			"id": 99001,
			"geometry": null,
			"properties": {"date": null, "title": "Unlocated portrait", "image": {"url": "https://example.org/99001.jpg"}}
		}
	]
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestLoadCollection(t *testing.T) {
	path := writeFile(t, "images.geojson", sampleCollection)

	features, err := LoadCollection(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(features) != 2 {
		t.Fatalf("want 2 features (null geometry kept), got %d", len(features))
	}
	if features[0].ID != "86514" {
		t.Errorf("want canonical id %q, got %q", "86514", features[0].ID)
	}
	if features[0].Point == nil {
		t.Fatal("first feature should have a point")
	}
	if features[0].Point.Lng != -79.359842 || features[0].Point.Lat != 43.651501 {
		t.Errorf("coordinates parsed lon-first: got lng=%f lat=%f", features[0].Point.Lng, features[0].Point.Lat)
	}
	if features[1].Point != nil {
		t.Error("null geometry should produce a nil point")
	}
	if features[1].Props.Date != nil {
		t.Error("null date should decode as absent")
	}
}

func TestLoadCollection_NotFound(t *testing.T) {
	_, err := LoadCollection(filepath.Join(t.TempDir(), "missing.geojson"))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestLoadCollection_Malformed(t *testing.T) {
	path := writeFile(t, "bad.geojson", `{"type": "FeatureCollection", "features": "nope"`)
	_, err := LoadCollection(path)
	if !errors.Is(err, domain.ErrMalformed) {
		t.Fatalf("want ErrMalformed, got %v", err)
	}
}

func TestNormalize_DropsAndStamps(t *testing.T) {
	path := writeFile(t, "images.geojson", sampleCollection)
	features, err := LoadCollection(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	normalized := Normalize(features, zap.NewNop())
	if len(normalized) != 1 {
		t.Fatalf("want 1 feature after dropping null geometry, got %d", len(normalized))
	}

	f := normalized[0]
	if f.Props.Location != "43.651501,-79.359842" {
		t.Errorf("wrong location key: %q", f.Props.Location)
	}
	if domain.CanonicalID(f.Props.ID) != "86514" {
		t.Errorf("id not stamped into properties: %v", f.Props.ID)
	}
	for _, g := range normalized {
		if g.ID == "99001" {
			t.Error("dropped feature leaked into normalized output")
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	path := writeFile(t, "images.geojson", sampleCollection)
	features, err := LoadCollection(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	once := Normalize(features, zap.NewNop())
	twice := Normalize(once, zap.NewNop())
	if len(once) != len(twice) {
		t.Fatalf("length changed on renormalization: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].Props.Location != twice[i].Props.Location {
			t.Errorf("location key changed on renormalization: %q vs %q",
				once[i].Props.Location, twice[i].Props.Location)
		}
	}
}

func TestLoadFeatured(t *testing.T) {
	path := writeFile(t, "images.json", `[86514, "10002", 99001]`)
	ids, err := LoadFeatured(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []domain.ID{"86514", "10002", "99001"}
	if len(ids) != len(want) {
		t.Fatalf("want %d ids, got %d", len(want), len(ids))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("id %d: want %q, got %q", i, want[i], ids[i])
		}
	}
}

func TestLoadFeatured_Malformed(t *testing.T) {
	path := writeFile(t, "images.json", `{"not": "a list"}`)
	if _, err := LoadFeatured(path); !errors.Is(err, domain.ErrMalformed) {
		t.Fatalf("want ErrMalformed, got %v", err)
	}
}
