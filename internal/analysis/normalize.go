package analysis

import (
	"strings"
	"time"
)

// Normalizer parses dates and canonicalizes metric names.
type Normalizer struct {
	aliases map[string]string
	layouts []string
}

// NewNormalizer copies the alias table and date layouts out of cfg.
func NewNormalizer(cfg Config) *Normalizer {
	aliases := make(map[string]string, len(cfg.Aliases))
	for k, v := range cfg.Aliases {
		aliases[strings.ToLower(strings.TrimSpace(k))] = strings.ToLower(strings.TrimSpace(v))
	}
	return &Normalizer{aliases: aliases, layouts: append([]string(nil), cfg.DateLayouts...)}
}

// Normalized is the output of the normalizer.
type Normalized struct {
	Records []Record
	Dropped int // rows removed for an unparseable date
}

// Normalize returns the subset of raws with a parseable date, in input order.
func (n *Normalizer) Normalize(raws []RawRecord) Normalized {
	out := Normalized{Records: make([]Record, 0, len(raws))}
	for _, raw := range raws {
		ts, hasTime, ok := n.ParseDate(raw.Date)
		if !ok {
			out.Dropped++
			continue
		}
		out.Records = append(out.Records, Record{
			UserID:  raw.UserID,
			Time:    ts,
			Day:     time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC),
			Metric:  n.Canonical(raw.Metric),
			Value:   raw.Value,
			HasTime: hasTime,
		})
	}
	return out
}

// Canonical lower-cases, trims and resolves aliases. Unknown names pass through.
func (n *Normalizer) Canonical(metric string) string {
	m := strings.ToLower(strings.TrimSpace(metric))
	if canon, ok := n.aliases[m]; ok {
		return canon
	}
	return m
}

// ParseDate tries each configured layout in order. hasTime is false for date-only layouts.
func (n *Normalizer) ParseDate(s string) (t time.Time, hasTime bool, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, false
	}
	for _, layout := range n.layouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			return parsed, strings.Contains(layout, "15"), true
		}
	}
	return time.Time{}, false, false
}
