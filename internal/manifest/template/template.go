// Package template projects converted item rows onto the fixed column schema
// required by the downstream carrier upload.
package template

import "manifestconv/internal/manifest/models"

// Schema is the destination column list, in output order. It is fixed by the
// downstream system and must not be reordered.
var Schema = []string{
	"TRACKING NO",
	"SENDER NAME",
	"SENDER ADDRESS",
	"SENDER CITY",
	"SENDER STATE",
	"CONSIGNEE NAME",
	"CONSIGNEE ADDRESS",
	"CONSIGNEE CITY",
	"CONSIGNEE COUNTRY",
	"DESCRIPTION",
	"HS CODE",
	"QTY",
	"PCS",
	"LENGTH",
	"WIDTH",
	"HEIGHT",
	"WEIGHT",
	"DECLARED VALUE",
	"CURRENCY",
}

// renames maps destination columns to the manifest column they copy from.
var renames = map[string]string{
	"TRACKING NO":       models.ColTracking,
	"SENDER NAME":       "SHIPPER",
	"SENDER ADDRESS":    "SHIPPER ADDRESS",
	"SENDER CITY":       "SHIPPER CITY",
	"CONSIGNEE NAME":    "CONSIGNEE",
	"CONSIGNEE ADDRESS": "CONSIGNEE ADDRESS",
	"CONSIGNEE CITY":    "CONSIGNEE CITY",
	"CONSIGNEE COUNTRY": "COUNTRY",
	"DESCRIPTION":       models.ColDescription,
	"HS CODE":           models.ColHSCode,
	"WEIGHT":            models.ColWeight,
	"DECLARED VALUE":    models.ColDeclareValue,
	"CURRENCY":          "CURRENCY",
}

// constantOne lists structural columns with no manifest equivalent that the
// downstream schema requires to be filled with the literal 1.
var constantOne = map[string]bool{
	"QTY":    true,
	"PCS":    true,
	"LENGTH": true,
	"WIDTH":  true,
	"HEIGHT": true,
}

const senderStateColumn = "SENDER STATE"

// Project maps every item row onto the fixed destination schema: configured
// renames copy values across, structural columns get the literal 1, the
// sender state is derived from the shipper city, and everything else is an
// empty string. It holds no state across rows.
func Project(items models.Table) models.Table {
	out := models.Table{
		Columns: append([]string(nil), Schema...),
		Rows:    make([]models.Row, 0, len(items.Rows)),
	}
	for _, src := range items.Rows {
		row := make(models.Row, len(Schema))
		for _, col := range Schema {
			switch {
			case col == senderStateColumn:
				city, _ := src.String(renames["SENDER CITY"])
				row[col] = RegionAbbr(city)
			case constantOne[col]:
				row[col] = 1
			default:
				source, mapped := renames[col]
				if !mapped {
					row[col] = ""
					continue
				}
				if v, ok := src[source]; ok {
					row[col] = v
				} else {
					row[col] = ""
				}
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}
