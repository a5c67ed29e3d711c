package etag

import "testing"

func TestCompute_Deterministic(t *testing.T) {
	a := Compute("2", []byte(`{"a":1}`), []byte(`[]`))
	b := Compute("2", []byte(`{"a":1}`), []byte(`[]`))
	if a != b {
		t.Fatalf("identical inputs produced different fingerprints: %q vs %q", a, b)
	}
	if len(a) != 32 {
		t.Fatalf("want 32 hex chars, got %d", len(a))
	}
}

func TestCompute_SensitiveToEachInput(t *testing.T) {
	base := Compute("2", []byte(`{"a":1}`), []byte(`[]`))

	cases := map[string]string{
		"version bump": Compute("3", []byte(`{"a":1}`), []byte(`[]`)),
		"first blob":   Compute("2", []byte(`{"a":2}`), []byte(`[]`)),
		"second blob":  Compute("2", []byte(`{"a":1}`), []byte(`[{}]`)),
		"dropped blob": Compute("2", []byte(`{"a":1}`)),
	}
	for name, got := range cases {
		if got == base {
			t.Errorf("%s: fingerprint did not change", name)
		}
	}
}

func TestMatch(t *testing.T) {
	const tag = "abc123"

	cases := []struct {
		name   string
		header string
		want   bool
	}{
		{"empty header", "", false},
		{"bare tag", "abc123", true},
		{"quoted tag", `"abc123"`, true},
		{"weak tag", `W/"abc123"`, true},
		{"list", `"zzz", "abc123"`, true},
		{"list no spaces", `"zzz","abc123"`, true},
		{"star", "*", true},
		{"miss", `"zzz"`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Match(tc.header, tag); got != tc.want {
				t.Errorf("Match(%q, %q) = %v, want %v", tc.header, tag, got, tc.want)
			}
		})
	}
}

func TestMatch_EmptyTagNeverMatches(t *testing.T) {
	if Match(`""`, "") {
		t.Fatal("empty fingerprint must not match")
	}
}
