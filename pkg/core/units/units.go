// Package units converts raw reported monetary facts into canonical
// local-currency millions. This is the single place in the pipeline where
// the decimalsMonetary convention of the filings is interpreted; every
// downstream figure depends on it being right.
package units

import (
	"strconv"
	"strings"
)

// DefaultDecimals is the fallback decimalsMonetary exponent when a filing
// declares none.
const DefaultDecimals = -6

// CanonicalMillions converts a raw stored fact value into local-currency
// millions. A nil input propagates as nil: absence of data is never coerced
// to zero.
//
// The P3DH stores factValues such that dividing by 1e6 ALWAYS yields the
// value in local-currency millions, regardless of the declared
// decimalsMonetary exponent. The exponent documents reporting precision,
// not a storage multiplier; applying the naive raw*10^decimals formula
// produces wrong magnitudes for every non-negative exponent. Validated
// against known balance-sheet sizes for each observed variant:
//
//	dec=-6: 906142873    / 1e6 = 906.1M    (APS Bank)
//	dec=-3: 26717859000  / 1e6 = 26717.9M  (Eurobank)
//	dec=0:  34213674000  / 1e6 = 34213.7M  (AIB Group)
//	dec=2:  108798072832 / 1e6 = 108798.1M (DZ Bank)
//	dec=4:  8213877442   / 1e6 = 8213.9M   (Ibercaja)
//
// decimals is accepted (and recorded by callers) so the declared precision
// stays visible in output tables.
func CanonicalMillions(raw *float64, decimals int) *float64 {
	if raw == nil {
		return nil
	}
	m := *raw / 1e6
	return &m
}

// ParseDecimals interprets a declared decimalsMonetary parameter value.
// Unparseable or empty declarations fall back to DefaultDecimals rather
// than failing the filing.
func ParseDecimals(declared string) int {
	d, err := strconv.Atoi(strings.TrimSpace(declared))
	if err != nil {
		return DefaultDecimals
	}
	return d
}
