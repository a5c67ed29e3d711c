package domain

import (
	"testing"

	"github.com/goccy/go-json"
)

func TestCanonicalID(t *testing.T) {
	cases := []struct {
		name string
		raw  any
		want ID
	}{
		{"nil", nil, ""},
		{"string", "86514", "86514"},
		{"float without fraction", float64(86514), "86514"},
		{"large float stays plain", float64(1234567890), "1234567890"},
		{"int", 7, "7"},
		{"json number", json.Number("42"), "42"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanonicalID(tc.raw); got != tc.want {
				t.Errorf("CanonicalID(%v) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestProperties_RoundTrip(t *testing.T) {
	src := []byte(`{"id":86514,"date":null,"title":"Front Street","image":{"url":"u","width":800},"geocode":{"search_term":"front st"}}`)

	var p Properties
	if err := json.Unmarshal(src, &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Date != nil {
		t.Error("null date must decode as absent")
	}
	if p.Title != "Front Street" {
		t.Errorf("title = %q", p.Title)
	}

	out, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(out, &m); err != nil {
		t.Fatal(err)
	}
	// Untouched keys survive, including the explicit null.
	if v, present := m["date"]; !present || v != nil {
		t.Errorf("date must round-trip as an explicit null, got %v (present %v)", v, present)
	}
	if m["geocode"].(map[string]any)["search_term"] != "front st" {
		t.Errorf("passthrough keys lost: %v", m)
	}
	if m["image"].(map[string]any)["width"] != float64(800) {
		t.Errorf("nested image lost before flattening: %v", m)
	}
}

func TestProperties_Flattened(t *testing.T) {
	p := PropertiesFromMap(map[string]any{
		"id":    "1",
		"title": "t",
		"image": map[string]any{"url": "https://example.com/1.jpg", "width": float64(800)},
	})

	f := p.Flattened()
	if f.ImageURL != "https://example.com/1.jpg" {
		t.Errorf("image_url = %q", f.ImageURL)
	}
	if f.Image != nil {
		t.Error("image object must disappear after flattening")
	}
	if f.Extra["width"] != float64(800) {
		t.Errorf("remaining image keys must merge up, got %v", f.Extra)
	}

	// The original is untouched, and flattening the result again is a no-op.
	if p.Image == nil {
		t.Error("Flattened must not mutate the receiver")
	}
	if ff := f.Flattened(); ff.ImageURL != f.ImageURL || ff.Image != nil {
		t.Error("flattening twice must be a no-op")
	}
}

func TestProperties_Year(t *testing.T) {
	dated := PropertiesFromMap(map[string]any{"date": "1915"})
	if dated.Year() != "1915" {
		t.Errorf("Year() = %q", dated.Year())
	}
	undated := PropertiesFromMap(map[string]any{"date": nil})
	if undated.Year() != "" {
		t.Errorf("undated Year() = %q, want empty bucket", undated.Year())
	}
}
