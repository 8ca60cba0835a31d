package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/yairfalse/kartta/types"
)

// WriteCSV renders one row per resource with a fixed column set.
func WriteCSV(w io.Writer, report types.ScanReport) error {
	cw := csv.NewWriter(w)

	header := []string{"service", "region", "type", "id", "name", "state", "estimated_monthly_cost"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, r := range report.AllResources() {
		row := []string{
			r.Service,
			r.Region,
			r.Type,
			r.ID,
			r.Name,
			r.State,
			strconv.FormatFloat(r.EstimatedMonthlyCost, 'f', 2, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
