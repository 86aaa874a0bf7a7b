package geocode

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParsePoint(t *testing.T) {
	cases := []struct {
		lat, lon string
		ok       bool
	}{
		{"50.85", "4.35", true},
		{"-90", "180", true},
		{"90.1", "0", false},
		{"0", "-180.5", false},
		{"abc", "4.35", false},
		{"", "", false},
	}
	for _, tc := range cases {
		_, _, ok := ParsePoint(tc.lat, tc.lon)
		if ok != tc.ok {
			t.Errorf("ParsePoint(%q, %q) ok = %v, want %v", tc.lat, tc.lon, ok, tc.ok)
		}
	}
}

func TestParseLevels(t *testing.T) {
	levels, ok := ParseLevels("4, 6,8")
	if !ok || len(levels) != 3 || levels[0] != 4 || levels[2] != 8 {
		t.Errorf("ParseLevels = %v ok=%v", levels, ok)
	}

	if _, ok := ParseLevels("4,twelve"); ok {
		t.Error("expected failure on non-numeric level")
	}
	if _, ok := ParseLevels("0"); ok {
		t.Error("expected failure on out-of-range level")
	}
	if levels, ok := ParseLevels(""); !ok || levels != nil {
		t.Error("empty filter must parse to nil")
	}
}

func TestReverseHandler_BadInput(t *testing.T) {
	cases := []string{
		"/reverse",
		"/reverse?lat=91&lon=0",
		"/reverse?lat=50&lon=4&levels=99",
	}
	for _, target := range cases {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		ReverseHandler(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
	}
}

func TestCacheKeyRounding(t *testing.T) {
	if key(50.85001, 4.34999) != key(50.85002, 4.34998) {
		t.Error("nearby points must share a cache key")
	}
	if key(50.85, 4.35) == key(50.86, 4.35) {
		t.Error("distinct points must not share a cache key")
	}
}
