package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCanonical verifies alias resolution, case folding and pass-through of
// unknown metric names.
func TestCanonical(t *testing.T) {
	n := NewNormalizer(DefaultConfig())
	tests := []struct {
		in   string
		want string
	}{
		{"Heart Rate", "heart_rate"},
		{" BPM ", "heart_rate"},
		{"hr", "heart_rate"},
		{"Water Intake", "water"},
		{"heart_rate", "heart_rate"},
		{"Steps", "steps"},
		{"blood_oxygen", "blood_oxygen"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, n.Canonical(tt.in), "Canonical(%q)", tt.in)
	}
}

// TestCanonicalIdempotent verifies normalizing an already canonical name is a no-op.
func TestCanonicalIdempotent(t *testing.T) {
	n := NewNormalizer(DefaultConfig())
	for _, label := range []string{"heart rate", "bpm", "HR", "water intake", "steps", "sleep", "weight", "Mood"} {
		once := n.Canonical(label)
		assert.Equal(t, once, n.Canonical(once), "label %q", label)
	}
}

// TestParseDate verifies each supported layout and the time-of-day flag.
func TestParseDate(t *testing.T) {
	n := NewNormalizer(DefaultConfig())
	tests := []struct {
		in       string
		ok       bool
		hasTime  bool
		wantHour int
	}{
		{"2025-11-01", true, false, 0},
		{"2025-11-01 23:15:00", true, true, 23},
		{"2025-11-01T06:30:00", true, true, 6},
		{"2025-11-01T06:30:00Z", true, true, 6},
		{"2025-11-01 22:05", true, true, 22},
		{"11/01/2025", true, false, 0},
		{"2025/11/01", true, false, 0},
		{"yesterday", false, false, 0},
		{"", false, false, 0},
	}
	for _, tt := range tests {
		ts, hasTime, ok := n.ParseDate(tt.in)
		assert.Equal(t, tt.ok, ok, "ParseDate(%q) ok", tt.in)
		if !tt.ok {
			continue
		}
		assert.Equal(t, tt.hasTime, hasTime, "ParseDate(%q) hasTime", tt.in)
		assert.Equal(t, tt.wantHour, ts.Hour(), "ParseDate(%q) hour", tt.in)
		assert.Equal(t, time.November, ts.Month())
		assert.Equal(t, 1, ts.Day())
	}
}

// TestNormalizeDropsUnparseable verifies bad dates are dropped silently and
// counted, and nothing else is removed or added.
func TestNormalizeDropsUnparseable(t *testing.T) {
	n := NewNormalizer(DefaultConfig())
	raws := []RawRecord{
		{UserID: "u1", Date: "2025-11-01 08:00:00", Metric: "BPM", Value: 70},
		{UserID: "u1", Date: "not a date", Metric: "steps", Value: 10},
		{UserID: "u2", Date: "2025-11-02", Metric: "Water Intake", Value: 1.5},
	}

	out := n.Normalize(raws)
	assert.Equal(t, 1, out.Dropped)
	require.Len(t, out.Records, 2)

	first := out.Records[0]
	assert.Equal(t, "heart_rate", first.Metric)
	assert.True(t, first.HasTime)
	assert.Equal(t, time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC), first.Day)

	second := out.Records[1]
	assert.Equal(t, "water", second.Metric)
	assert.Equal(t, "u2", second.UserID)
	assert.False(t, second.HasTime)
}

// TestConfigValidate verifies alias chains and unknown rule operators are rejected.
func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	chained := DefaultConfig()
	chained.Aliases["pulse"] = "hr"
	assert.Error(t, chained.Validate())

	badOp := DefaultConfig()
	badOp.DomainRules = append(badOp.DomainRules, DomainRule{Metric: "steps", Op: "!=", Threshold: 1})
	assert.Error(t, badOp.Validate())

	noWindow := DefaultConfig()
	noWindow.Window = 0
	assert.Error(t, noWindow.Validate())

	_, err := New(noWindow)
	assert.Error(t, err)
}
