package domain

import (
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
)

// ID is the canonical string form of a feature identifier. Source files may
// carry ids as JSON numbers or strings; the canonical form keys every index
// and participates in sort order.
type ID string

// CanonicalID converts a raw JSON id value to its canonical string form.
// Numeric ids format without an exponent so they match their source text.
func CanonicalID(raw any) ID {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return ID(v)
	case float64:
		return ID(strconv.FormatFloat(v, 'f', -1, 64))
	case int:
		return ID(strconv.Itoa(v))
	case int64:
		return ID(strconv.FormatInt(v, 10))
	case json.Number:
		return ID(v.String())
	default:
		return ID(fmt.Sprint(v))
	}
}

// Point is a longitude/latitude pair in decimal degrees.
type Point struct {
	Lng float64
	Lat float64
}

// Feature is one archival photo record. Point is nil when the source
// geometry is null; such features never reach the serving indices but are
// kept for the comparison engine.
type Feature struct {
	ID    ID
	RawID any // id exactly as it appeared in the source JSON
	Point *Point
	Props Properties
}

// Properties is the property bag of a feature. Fields the core logic
// inspects are typed; everything else passes through Extra untouched and
// round-trips through JSON unchanged.
type Properties struct {
	ID       any     // raw id, stamped during normalization
	Date     *string // nil when absent or null ("undated")
	Title    string
	Location string         // canonical location key, stamped during normalization
	Image    map[string]any // nested image object from the source; nil once flattened
	ImageURL string         // image.url, set by Flattened
	Extra    map[string]any

	datePresent  bool
	titlePresent bool
}

// PropertiesFromMap builds Properties from a decoded JSON object.
func PropertiesFromMap(m map[string]any) Properties {
	var p Properties
	p.Extra = make(map[string]any)
	for k, v := range m {
		switch k {
		case "id":
			p.ID = v
		case "date":
			p.datePresent = true
			if s, ok := v.(string); ok {
				p.Date = &s
			}
		case "title":
			if s, ok := v.(string); ok {
				p.titlePresent = true
				p.Title = s
				continue
			}
			p.Extra[k] = v
		case "location":
			if s, ok := v.(string); ok {
				p.Location = s
				continue
			}
			p.Extra[k] = v
		case "image":
			if img, ok := v.(map[string]any); ok {
				p.Image = img
				continue
			}
			p.Extra[k] = v
		case "image_url":
			if s, ok := v.(string); ok {
				p.ImageURL = s
				continue
			}
			p.Extra[k] = v
		default:
			p.Extra[k] = v
		}
	}
	return p
}

// Flattened returns a copy with the nested image object merged one level
// up: image.url becomes image_url, the remaining image keys join the top
// level, and the image key itself disappears. Properties without an image
// object are returned unchanged.
func (p Properties) Flattened() Properties {
	if p.Image == nil {
		return p
	}
	out := p
	out.Image = nil
	extra := make(map[string]any, len(p.Extra)+len(p.Image))
	for k, v := range p.Extra {
		extra[k] = v
	}
	for k, v := range p.Image {
		if k == "url" {
			if s, ok := v.(string); ok {
				out.ImageURL = s
				continue
			}
		}
		extra[k] = v
	}
	out.Extra = extra
	return out
}

// Year returns the year bucket for counting: the date string, or "" for
// undated records.
func (p Properties) Year() string {
	if p.Date == nil {
		return ""
	}
	return *p.Date
}

// toMap rebuilds the combined JSON object.
func (p Properties) toMap() map[string]any {
	m := make(map[string]any, len(p.Extra)+6)
	for k, v := range p.Extra {
		m[k] = v
	}
	if p.ID != nil {
		m["id"] = p.ID
	}
	if p.Date != nil {
		m["date"] = *p.Date
	} else if p.datePresent {
		m["date"] = nil
	}
	if p.Title != "" || p.titlePresent {
		m["title"] = p.Title
	}
	if p.Location != "" {
		m["location"] = p.Location
	}
	if p.Image != nil {
		m["image"] = p.Image
	}
	if p.ImageURL != "" {
		m["image_url"] = p.ImageURL
	}
	return m
}

// MarshalJSON emits the property bag with deterministic (sorted) keys.
func (p Properties) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.toMap())
}

// UnmarshalJSON decodes a JSON object into the typed fields plus Extra.
func (p *Properties) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*p = PropertiesFromMap(m)
	return nil
}
