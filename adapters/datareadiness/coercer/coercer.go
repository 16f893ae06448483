package coercer

import (
	"math"
	"strconv"
	"strings"
)

// TypeCoercer converts raw cells to numbers, mapping anything unparseable
// to a missing value (NaN).
type TypeCoercer struct {
	config  CoercionConfig
	missing map[string]struct{}
}

// CoercionConfig defines the coercion rules
type CoercionConfig struct {
	// MissingTokens are cell values (compared case-insensitively) that mean
	// "no value" even though they are not empty.
	MissingTokens []string `json:"missing_tokens"`
	// AllowThousandsSeparators strips "," before parsing, e.g. "1,204".
	AllowThousandsSeparators bool `json:"allow_thousands_separators"`
}

// DefaultCoercionConfig returns sensible defaults
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		MissingTokens:            []string{"na", "n/a", "nan", "null", "none", "unknown", "."},
		AllowThousandsSeparators: false,
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	missing := make(map[string]struct{}, len(config.MissingTokens))
	for _, tok := range config.MissingTokens {
		missing[strings.ToLower(strings.TrimSpace(tok))] = struct{}{}
	}
	return &TypeCoercer{config: config, missing: missing}
}

// Missing is the sentinel for a missing numeric cell.
func Missing() float64 { return math.NaN() }

// IsMissing reports whether v is the missing sentinel.
func IsMissing(v float64) bool { return math.IsNaN(v) }

// CoerceNumeric parses a cell as a finite float64. Empty, missing-token,
// unparseable and infinite cells come back as Missing().
func (c *TypeCoercer) CoerceNumeric(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Missing()
	}
	if _, ok := c.missing[strings.ToLower(s)]; ok {
		return Missing()
	}
	if c.config.AllowThousandsSeparators {
		s = strings.ReplaceAll(s, ",", "")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) {
		return Missing()
	}
	return v
}

// CoerceColumn coerces every cell of a column and returns the values with
// the count of missing results.
func (c *TypeCoercer) CoerceColumn(cells []string) ([]float64, int) {
	out := make([]float64, len(cells))
	missing := 0
	for i, cell := range cells {
		out[i] = c.CoerceNumeric(cell)
		if IsMissing(out[i]) {
			missing++
		}
	}
	return out, missing
}

// CoerceInt parses a cell as an integral number. Non-integral values are
// rejected rather than truncated.
func (c *TypeCoercer) CoerceInt(raw string) (int, bool) {
	v := c.CoerceNumeric(raw)
	if IsMissing(v) || v != math.Trunc(v) {
		return 0, false
	}
	return int(v), true
}
