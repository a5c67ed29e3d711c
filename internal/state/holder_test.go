package state

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/oldto/oldto/internal/domain"
	"github.com/oldto/oldto/internal/index"
)

func TestHolder_PublishAndRead(t *testing.T) {
	h := NewHolder()
	if h.Current() != nil {
		t.Fatal("holder should start empty")
	}

	snap, err := index.BuildSnapshot(nil, nil, "2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h.Publish(snap)
	if h.Current() != snap {
		t.Fatal("published snapshot not visible")
	}

	next, err := index.BuildSnapshot(nil, []domain.ID{"1"}, "2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h.Publish(next)
	if h.Current() != next {
		t.Fatal("swap not visible")
	}
}

func TestHolder_ConcurrentReaders(t *testing.T) {
	h := NewHolder()
	first, _ := index.BuildSnapshot(nil, nil, "1")
	second, _ := index.BuildSnapshot(nil, nil, "2")
	h.Publish(first)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				snap := h.Current()
				// Readers must always observe one complete snapshot.
				if snap != first && snap != second {
					t.Error("observed a snapshot that was never published")
					return
				}
			}
		}()
	}
	h.Publish(second)
	wg.Wait()
}

func TestReloader_Reload(t *testing.T) {
	dir := t.TempDir()
	geojsonPath := filepath.Join(dir, "images.geojson")
	featuredPath := filepath.Join(dir, "images.json")

	collection := `{
		"type": "FeatureCollection",
		"features": [
			{
				"type": "Feature",
				"id": 1,
				"geometry": {"type": "Point", "coordinates": [-79.359842, 43.651501]},
				"properties": {"date": "1900", "title": "t", "image": {"url": "u"}}
			},
			{"type": "Feature", "id": 2, "geometry": null, "properties": {"date": null, "title": "x", "image": {"url": "u2"}}}
		]
	}`
	if err := os.WriteFile(geojsonPath, []byte(collection), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(featuredPath, []byte(`[1]`), 0o644); err != nil {
		t.Fatal(err)
	}

	h := NewHolder()
	r := NewReloader(geojsonPath, featuredPath, "2", h, zap.NewNop())

	snap, err := r.Reload()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Current() != snap {
		t.Fatal("reload did not publish")
	}
	if snap.Features != 1 {
		t.Errorf("want 1 geolocated feature, got %d", snap.Features)
	}
	if len(snap.Featured) != 1 {
		t.Errorf("want 1 featured image, got %d", len(snap.Featured))
	}
}

func TestReloader_FailureKeepsPreviousSnapshot(t *testing.T) {
	dir := t.TempDir()
	geojsonPath := filepath.Join(dir, "images.geojson")
	featuredPath := filepath.Join(dir, "images.json")
	if err := os.WriteFile(geojsonPath, []byte(`{"type":"FeatureCollection","features":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(featuredPath, []byte(`[]`), 0o644); err != nil {
		t.Fatal(err)
	}

	h := NewHolder()
	r := NewReloader(geojsonPath, featuredPath, "2", h, zap.NewNop())
	good, err := r.Reload()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := os.WriteFile(geojsonPath, []byte(`not json`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Reload(); err == nil {
		t.Fatal("expected error for malformed source")
	}
	if h.Current() != good {
		t.Fatal("failed reload must keep the previous snapshot visible")
	}
}
