package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"hotelbooking/internal/model"
)

// SheetName is the worksheet holding the ledger rows.
const SheetName = "Réservations"

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var headers = []string{
	"ID", "Utilisateur", "Hôtel", "Arrivée", "Départ",
	"Voyageurs", "Prix total", "Statut", "Demandes spéciales", "Créée le",
}

// WriteBookings renders bookings as an xlsx workbook into w.
func WriteBookings(w io.Writer, bookings []model.Booking) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	style, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	_ = f.SetCellStyle(SheetName, "A1", lastCol+"1", style)
	_ = f.SetColWidth(SheetName, "A", lastCol, 20)

	for i, b := range bookings {
		price, _ := b.TotalPrice.Float64()
		row := []interface{}{
			b.ID,
			b.UserID,
			b.HotelID,
			b.CheckIn.Format("2006-01-02"),
			b.CheckOut.Format("2006-01-02"),
			b.NumberOfGuests,
			price,
			string(b.Status),
			b.SpecialRequests,
			b.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
