package portfolio

import (
	"bytes"
	"context"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
)

// RenderAllocationChart renders the portfolio's target allocations as a PNG
// pie chart. Returns raw PNG bytes.
func (s *Service) RenderAllocationChart(ctx context.Context, userID, id string) ([]byte, error) {
	portfolio, err := s.storage.PortfolioStore().Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	values := make([]chart.Value, 0, len(portfolio.Allocations))
	for _, a := range portfolio.Allocations {
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s %.1f%%", a.Ticker, a.AllocationPct),
			Value: a.AllocationPct,
		})
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("portfolio has no allocations to chart")
	}

	graph := chart.PieChart{
		Title:  portfolio.Name,
		Width:  600,
		Height: 600,
		Values: values,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render allocation chart: %w", err)
	}
	return buf.Bytes(), nil
}
