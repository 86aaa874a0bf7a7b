package overpass

import (
	"strings"
	"testing"
)

func TestAreaID(t *testing.T) {
	if got := AreaID(52411); got != 3600052411 {
		t.Errorf("AreaID(52411) = %d, want 3600052411", got)
	}
}

func TestCountryRootQuery(t *testing.T) {
	q := CountryRootQuery("BEL", 4)

	for _, want := range []string{
		`[out:json][timeout:90];`,
		`"boundary"="administrative"`,
		`"admin_level"="4"`,
		`"ISO3166-1:alpha3"="BEL"`,
		`out ids;`,
	} {
		if !strings.Contains(q, want) {
			t.Errorf("country-root query missing %q:\n%s", want, q)
		}
	}
}

func TestChildrenQuery(t *testing.T) {
	q := ChildrenQuery(52411, 6)

	for _, want := range []string{
		`area(3600052411)->.parent;`,
		`"admin_level"="6"`,
		`(area.parent)`,
		`out ids;`,
	} {
		if !strings.Contains(q, want) {
			t.Errorf("children query missing %q:\n%s", want, q)
		}
	}
}

func TestGeometryQuery(t *testing.T) {
	q := GeometryQuery([]int64{1, 2, 3})

	for _, want := range []string{
		`relation(id:1,2,3);`,
		`way(r);`,
		`out geom;`,
	} {
		if !strings.Contains(q, want) {
			t.Errorf("geometry query missing %q:\n%s", want, q)
		}
	}
}
