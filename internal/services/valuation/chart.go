package valuation

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/foliohq/folio/internal/models"
)

// RenderAllocationChart renders a PNG donut of net-worth allocation:
// one slice per priced holding plus a combined cash slice. Returns raw
// PNG bytes. Fails when nothing has a positive allocation.
func RenderAllocationChart(v *models.Valuation) ([]byte, error) {
	values := make([]chart.Value, 0, len(v.Holdings)+1)

	for _, h := range v.Holdings {
		if h.Pending || h.AllocationPct <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Value: h.AllocationPct,
			Label: fmt.Sprintf("%s %.1f%%", h.Symbol, h.AllocationPct),
		})
	}

	if v.CashAllocPct > 0 {
		values = append(values, chart.Value{
			Value: v.CashAllocPct,
			Label: fmt.Sprintf("Cash %.1f%%", v.CashAllocPct),
		})
	}

	if len(values) == 0 {
		return nil, fmt.Errorf("no positive allocations to chart")
	}

	graph := chart.DonutChart{
		Title:  "Allocation",
		Width:  600,
		Height: 600,
		Values: values,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
