package analysis

// Direction is the label of a trend.
type Direction string

const (
	DirectionUp     Direction = "up"
	DirectionDown   Direction = "down"
	DirectionStable Direction = "stable"
)

// Trend compares a recent window of a series against an earlier one.
type Trend struct {
	Metric        string    `json:"metric"`
	Direction     Direction `json:"direction"`
	ChangePercent float64   `json:"change_percent"`
}

// TrendResult wraps a trend with the status of the classification.
type TrendResult struct {
	Metric string `json:"metric"`
	Status Status `json:"status"`
	Trend  *Trend `json:"trend,omitempty"`
	Note   string `json:"note,omitempty"`
}

// Classifier labels a series up, down or stable.
type Classifier struct {
	band float64
}

// NewClassifier creates a Classifier using the ±band noise floor from cfg.
func NewClassifier(cfg Config) *Classifier {
	return &Classifier{band: cfg.TrendBand}
}

// Classify compares the last three days against the three before them when the
// series has at least six points, and the last point against the first otherwise.
func (c *Classifier) Classify(s Series) TrendResult {
	res := TrendResult{Metric: s.Metric}
	values := s.Values()
	n := len(values)
	switch {
	case n == 0:
		res.Status = StatusNoData
		return res
	case n < 2:
		res.Status = StatusInsufficientData
		return res
	}

	var recent, previous float64
	if n >= 6 {
		recent = mean(values[n-3:])
		previous = mean(values[n-6 : n-3])
	} else {
		recent = values[n-1]
		previous = values[0]
	}

	if previous <= 0 {
		res.Status = StatusInsufficientData
		res.Note = "baseline is zero"
		return res
	}

	change := round((recent-previous)/previous*100, 1)
	dir := DirectionStable
	switch {
	case change > c.band:
		dir = DirectionUp
	case change < -c.band:
		dir = DirectionDown
	}

	res.Status = StatusOK
	res.Trend = &Trend{Metric: s.Metric, Direction: dir, ChangePercent: change}
	return res
}

// ClassifyAll returns the trends that could be computed, in series order.
func (c *Classifier) ClassifyAll(series []Series) []Trend {
	out := []Trend{}
	for _, s := range series {
		if r := c.Classify(s); r.Trend != nil {
			out = append(out, *r.Trend)
		}
	}
	return out
}
