package units

import (
	"math"
	"testing"
)

func fp(v float64) *float64 { return &v }

// The five decimalsMonetary variants observed in real filings. Canonical
// millions must equal raw/1e6 for every one of them; any regression towards
// the naive raw*10^decimals formula has to fail here.
func TestCanonicalMillionsAllDecimalVariants(t *testing.T) {
	cases := []struct {
		name     string
		raw      float64
		decimals int
		want     float64
	}{
		{"dec -6 (APS Bank)", 906142873, -6, 906.142873},
		{"dec -3 (Eurobank)", 26717859000, -3, 26717.859},
		{"dec 0 (AIB Group)", 34213674000, 0, 34213.674},
		{"dec 2 (DZ Bank)", 108798072832, 2, 108798.072832},
		{"dec 4 (Ibercaja)", 8213877442, 4, 8213.877442},
	}

	for _, c := range cases {
		got := CanonicalMillions(fp(c.raw), c.decimals)
		if got == nil {
			t.Fatalf("%s: got nil", c.name)
		}
		if math.Abs(*got-c.want) > 1e-9 {
			t.Errorf("%s: expected %v million, got %v", c.name, c.want, *got)
		}
	}
}

func TestCanonicalMillionsNilPropagates(t *testing.T) {
	if got := CanonicalMillions(nil, -6); got != nil {
		t.Errorf("Absent raw value must stay absent, got %v", *got)
	}
}

func TestCanonicalMillionsIgnoresExponent(t *testing.T) {
	raw := 1000000000.0
	for _, dec := range []int{-6, -3, 0, 2, 4} {
		got := CanonicalMillions(fp(raw), dec)
		if *got != 1000.0 {
			t.Errorf("decimals=%d: expected 1000, got %v", dec, *got)
		}
	}
}

func TestParseDecimals(t *testing.T) {
	cases := []struct {
		declared string
		want     int
	}{
		{"-6", -6},
		{"-3", -3},
		{"0", 0},
		{" 2 ", 2},
		{"4", 4},
		{"", DefaultDecimals},
		{"not-a-number", DefaultDecimals},
	}
	for _, c := range cases {
		if got := ParseDecimals(c.declared); got != c.want {
			t.Errorf("ParseDecimals(%q): expected %d, got %d", c.declared, c.want, got)
		}
	}
}

func TestDefaultAnomalies(t *testing.T) {
	anomalies := DefaultAnomalies()

	reason, flagged := anomalies.UnreliableAbsolute("K8MS7FD7N5Z2WQ51AZ71")
	if !flagged {
		t.Fatal("The known 100x-inflated filing must be flagged")
	}
	if reason == "" {
		t.Error("Flag must carry a reason")
	}

	if _, flagged := anomalies.UnreliableAbsolute("213800A1O379I6DMCU10"); flagged {
		t.Error("Clean entity must not be flagged")
	}
}
