package portfolio

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
)

// ExportCSV renders the portfolio's allocations, one row per ticker.
func (s *Service) ExportCSV(ctx context.Context, userID, id string) ([]byte, error) {
	portfolio, err := s.storage.PortfolioStore().Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"ticker", "allocation_percentage", "asset_type", "sector", "invested"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	invested := map[string]float64{}
	for _, h := range portfolio.Holdings {
		invested[h.Ticker] = h.Invested
	}

	for _, a := range portfolio.Allocations {
		row := []string{
			a.Ticker,
			strconv.FormatFloat(a.AllocationPct, 'f', 2, 64),
			a.AssetType,
			a.Sector,
			strconv.FormatFloat(invested[a.Ticker], 'f', 2, 64),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportJSON renders the full portfolio record.
func (s *Service) ExportJSON(ctx context.Context, userID, id string) ([]byte, error) {
	portfolio, err := s.storage.PortfolioStore().Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(portfolio, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal portfolio: %w", err)
	}
	return data, nil
}
