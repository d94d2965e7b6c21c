package redistribute

import (
	"math"

	"manifestconv/internal/manifest/models"
)

// target pairs a redistributable column with its output precision.
type target struct {
	col      string
	decimals int
}

var targets = []target{
	{models.ColWeight, 5},
	{models.ColDeclareValue, 2},
}

// Apply overwrites WEIGHT and TOTAL DECLARE VALUE on every item row with an
// even share of the shipment's declared total. Totals come from the
// pre-expansion source table, taking the first non-missing numeric value per
// tracking number; duplicate source rows for the same shipment are ignored
// after that. Missing or unparseable totals propagate as missing cells.
// Columns absent from the source are left alone.
//
// Item rows are modified in place; the returned table shares them.
func Apply(items, src models.Table) models.Table {
	counts := make(map[string]int, len(items.Rows))
	for _, row := range items.Rows {
		id, _ := row.String(models.ColTracking)
		counts[id]++
	}

	for _, tg := range targets {
		if !src.HasColumn(tg.col) {
			continue
		}

		// First non-missing total per tracking number, in source order.
		totals := make(map[string]float64)
		for _, row := range src.Rows {
			id, _ := row.String(models.ColTracking)
			if _, seen := totals[id]; seen {
				continue
			}
			if v, ok := row.Float(tg.col); ok {
				totals[id] = v
			}
		}

		for _, row := range items.Rows {
			id, _ := row.String(models.ColTracking)
			total, ok := totals[id]
			if !ok {
				delete(row, tg.col)
				continue
			}
			row[tg.col] = roundTo(total/float64(counts[id]), tg.decimals)
		}
	}
	return items
}

// roundTo rounds half-to-even, like numpy's round.
func roundTo(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.RoundToEven(v*p) / p
}
