// Package export turns the premium ledger into a spreadsheet and, when object
// storage is configured, archives it behind a short-lived download link.
package export

import (
	"fmt"

	"github.com/dmitrijs2005/premiumkeeper/internal/premium"
	"github.com/xuri/excelize/v2"
)

const (
	SheetName = "Premier"
	FileName  = "premier_med_provision.xlsx"
	MediaType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Columns are the ledger record keys, in the order they are written.
var Columns = []string{"id", "company", "plate", "premium", "provision", "timestamp", "user"}

// Workbook renders records as a single-sheet xlsx file: a header row of
// record keys, then one row per record.
func Workbook(records []premium.SubmissionRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{
			rec.ID,
			rec.Company,
			rec.Plate,
			rec.Premium,
			rec.Commission,
			rec.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
			rec.User,
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}
