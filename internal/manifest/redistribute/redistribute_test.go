package redistribute_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manifestconv/internal/manifest/expander"
	"manifestconv/internal/manifest/models"
	"manifestconv/internal/manifest/redistribute"
)

func srcTable(rows ...models.Row) models.Table {
	return models.Table{
		Columns: []string{models.ColTracking, models.ColDescription, models.ColHSCode, models.ColWeight, models.ColDeclareValue},
		Rows:    rows,
	}
}

func expand(t *testing.T, src models.Table) models.Table {
	t.Helper()
	items, _, err := expander.Expand(src)
	require.NoError(t, err)
	return items
}

func TestApplySplitsAggregatesEvenly(t *testing.T) {
	src := srcTable(models.Row{
		models.ColTracking:     "T1",
		models.ColDescription:  "Shoes, Hat",
		models.ColHSCode:       "6403, 6505",
		models.ColWeight:       "2.0",
		models.ColDeclareValue: "30",
	})

	out := redistribute.Apply(expand(t, src), src)
	require.Len(t, out.Rows, 2)
	for _, row := range out.Rows {
		assert.Equal(t, 1.0, row[models.ColWeight])
		assert.Equal(t, 15.0, row[models.ColDeclareValue])
	}
}

func TestApplyConservesTotalWithinRounding(t *testing.T) {
	src := srcTable(models.Row{
		models.ColTracking:     "T1",
		models.ColDescription:  "A, B, C",
		models.ColHSCode:       "1, 2, 3",
		models.ColWeight:       "1.0",
		models.ColDeclareValue: "10",
	})

	out := redistribute.Apply(expand(t, src), src)
	require.Len(t, out.Rows, 3)

	var weightSum, valueSum float64
	for _, row := range out.Rows {
		w, ok := row.Float(models.ColWeight)
		require.True(t, ok)
		weightSum += w
		v, ok := row.Float(models.ColDeclareValue)
		require.True(t, ok)
		valueSum += v
	}
	assert.InDelta(t, 1.0, weightSum, 3e-5)
	assert.InDelta(t, 10.0, valueSum, 3e-2)
	// Per-item shares carry the documented precision.
	assert.Equal(t, 0.33333, out.Rows[0][models.ColWeight])
	assert.Equal(t, 3.33, out.Rows[0][models.ColDeclareValue])
}

func TestApplyRoundsTiesToEven(t *testing.T) {
	src := srcTable(models.Row{
		models.ColTracking:     "T1",
		models.ColDescription:  "A, B",
		models.ColHSCode:       "1, 2",
		models.ColWeight:       "1",
		models.ColDeclareValue: "0.25",
	})

	out := redistribute.Apply(expand(t, src), src)
	require.Len(t, out.Rows, 2)
	for _, row := range out.Rows {
		assert.Equal(t, 0.5, row[models.ColWeight])
		// 0.125 is a tie at two decimals and rounds to the even neighbor.
		assert.Equal(t, 0.12, row[models.ColDeclareValue])
	}
}

func TestApplyTakesFirstNonMissingTotalPerShipment(t *testing.T) {
	src := srcTable(
		models.Row{
			models.ColTracking:    "T1",
			models.ColDescription: "A",
			models.ColHSCode:      "1",
			// WEIGHT missing on the first row.
			models.ColDeclareValue: "not-a-number",
		},
		models.Row{
			models.ColTracking:     "T1",
			models.ColDescription:  "B",
			models.ColHSCode:       "2",
			models.ColWeight:       "4",
			models.ColDeclareValue: "20",
		},
		models.Row{
			models.ColTracking:     "T1",
			models.ColDescription:  "C",
			models.ColHSCode:       "3",
			models.ColWeight:       "999",
			models.ColDeclareValue: "999",
		},
	)

	out := redistribute.Apply(expand(t, src), src)
	require.Len(t, out.Rows, 3)
	for _, row := range out.Rows {
		// First parseable value wins; the 999 duplicates are ignored.
		assert.InDelta(t, 4.0/3, row[models.ColWeight].(float64), 1e-5)
		assert.InDelta(t, 20.0/3, row[models.ColDeclareValue].(float64), 1e-2)
	}
}

func TestApplyPropagatesMissingTotals(t *testing.T) {
	src := srcTable(models.Row{
		models.ColTracking:     "T1",
		models.ColDescription:  "A, B",
		models.ColHSCode:       "1, 2",
		models.ColWeight:       "n/a",
		models.ColDeclareValue: "",
	})

	out := redistribute.Apply(expand(t, src), src)
	require.Len(t, out.Rows, 2)
	for _, row := range out.Rows {
		_, hasWeight := row[models.ColWeight]
		_, hasValue := row[models.ColDeclareValue]
		assert.False(t, hasWeight)
		assert.False(t, hasValue)
	}
}

func TestApplyIgnoresAbsentColumns(t *testing.T) {
	src := models.Table{
		Columns: []string{models.ColTracking, models.ColDescription, models.ColHSCode},
		Rows: []models.Row{{
			models.ColTracking:    "T1",
			models.ColDescription: "A",
			models.ColHSCode:      "1",
		}},
	}

	out := redistribute.Apply(expand(t, src), src)
	require.Len(t, out.Rows, 1)
	_, hasWeight := out.Rows[0][models.ColWeight]
	assert.False(t, hasWeight)
	assert.False(t, out.HasColumn(models.ColWeight))
}

func TestApplyGroupsPerShipment(t *testing.T) {
	src := srcTable(
		models.Row{
			models.ColTracking:     "T1",
			models.ColDescription:  "A, B",
			models.ColHSCode:       "1, 2",
			models.ColWeight:       "2",
			models.ColDeclareValue: "8",
		},
		models.Row{
			models.ColTracking:     "T2",
			models.ColDescription:  "C",
			models.ColHSCode:       "3",
			models.ColWeight:       "5",
			models.ColDeclareValue: "5",
		},
	)

	out := redistribute.Apply(expand(t, src), src)
	require.Len(t, out.Rows, 3)
	assert.Equal(t, 1.0, out.Rows[0][models.ColWeight])
	assert.Equal(t, 4.0, out.Rows[0][models.ColDeclareValue])
	assert.Equal(t, 5.0, out.Rows[2][models.ColWeight])
	assert.Equal(t, 5.0, out.Rows[2][models.ColDeclareValue])
}
