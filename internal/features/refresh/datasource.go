package refresh

import (
	"context"
	"math/rand"
	"time"
)

// DataSource resolves a widget's data_source key into fresh payload data.
type DataSource interface {
	Fetch(ctx context.Context, source string, config map[string]interface{}) (interface{}, error)
}

// SyntheticDataSource generates sample series locally. It stands in until
// real connectors are configured and keeps the sweep loop exercisable in
// development.
type SyntheticDataSource struct{}

func NewSyntheticDataSource() DataSource {
	return &SyntheticDataSource{}
}

func (s *SyntheticDataSource) Fetch(ctx context.Context, source string, config map[string]interface{}) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	points := 12
	if v, ok := config["points"].(float64); ok && v > 0 {
		points = int(v)
	}

	series := make([]map[string]interface{}, 0, points)
	now := time.Now()
	for i := points - 1; i >= 0; i-- {
		series = append(series, map[string]interface{}{
			"t": now.Add(-time.Duration(i) * time.Minute).Format(time.RFC3339),
			"v": rand.Float64() * 100,
		})
	}

	return map[string]interface{}{
		"source":       source,
		"generated_at": now.Format(time.RFC3339),
		"series":       series,
	}, nil
}
