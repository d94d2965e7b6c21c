package expander

import (
	"strings"

	"manifestconv/internal/manifest/models"
)

// Required lists the input columns the expansion cannot run without.
var Required = []string{models.ColTracking, models.ColDescription, models.ColHSCode}

// Expand explodes each manifest row into one row per (description, HS code)
// pair. The two list cells are split on comma, trimmed, and paired
// positionally; the longer list is truncated to the shorter one. A row whose
// shorter list is empty contributes nothing. All other columns are copied
// verbatim onto every derived row and TOTAL QTY is forced to 1.
//
// The second return is the number of source rows that contributed no items.
func Expand(src models.Table) (models.Table, int, error) {
	var missing []string
	for _, col := range Required {
		if !src.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return models.Table{}, 0, &models.SchemaError{Missing: missing}
	}

	out := models.Table{Columns: append([]string(nil), src.Columns...)}
	out.EnsureColumn(models.ColQuantity)

	dropped := 0
	for _, row := range src.Rows {
		descs := splitListCell(row, models.ColDescription)
		codes := splitListCell(row, models.ColHSCode)
		n := len(descs)
		if len(codes) < n {
			n = len(codes)
		}
		// No usable pairs: the row is dropped, by policy rather than error.
		if n == 0 {
			dropped++
			continue
		}
		for i := 0; i < n; i++ {
			item := row.Clone()
			item[models.ColDescription] = descs[i]
			item[models.ColHSCode] = codes[i]
			item[models.ColQuantity] = 1
			out.Rows = append(out.Rows, item)
		}
	}
	return out, dropped, nil
}

// splitListCell parses a comma-packed cell into its trimmed, non-empty
// pieces. A missing cell parses to an empty list.
func splitListCell(row models.Row, col string) []string {
	raw, ok := row.String(col)
	if !ok {
		return nil
	}
	var parts []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
