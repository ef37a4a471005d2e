package export

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/xuri/excelize/v2"

	"github.com/rm-hull/l8tefuel-api/internal/models"
)

const (
	SheetName   = "Fuel Logs"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var header = []any{
	"Date", "Station", "City", "Fuel Type", "Liters", "Price/L", "Total",
	"Odometer", "Km Driven", "Consumption (L/100km)", "Notes",
}

// WriteFuelLogs renders one row per log, newest first as given.
func WriteFuelLogs(w io.Writer, logs []models.FuelLog) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return errors.Wrap(err, "failed to rename sheet")
	}

	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return errors.Wrap(err, "failed to write header")
	}

	for i, entry := range logs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			entry.CreatedAt.Format("2006-01-02 15:04"),
			entry.StationName,
			deref(entry.City),
			string(entry.FuelType),
			entry.Liters,
			entry.PricePerLiter,
			entry.TotalPrice,
			deref(entry.Odometer),
			deref(entry.KmDriven),
			deref(entry.Consumption),
			deref(entry.Notes),
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return errors.Wrapf(err, "failed to write row %d", i+2)
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return errors.Wrap(err, "failed to freeze header")
	}

	return f.Write(w)
}

// deref leaves the cell blank for missing values.
func deref[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}
