package export

import (
	"fmt"
	"io"

	"github.com/cmlabs-hris/leave-portal/internal/domain/leave"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding exported leave requests.
const SheetName = "Leaves"

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var header = []interface{}{"ID", "Employee ID", "Leave Type", "Start Date", "End Date", "Reason", "Status"}

// WriteLeaves writes records as a single-sheet workbook, one row per request in
// the given order.
func WriteLeaves(w io.Writer, records []leave.LeaveRequest) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := setRow(f, 1, header); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", lastCol+"1", bold); err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	for i, r := range records {
		row := []interface{}{
			r.ID.String(),
			r.EmployeeID,
			string(r.LeaveType),
			r.StartDate,
			r.EndDate,
			r.Reason,
			string(r.Status),
		}
		if err := setRow(f, i+2, row); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(SheetName, "A", lastCol, 16); err != nil {
		return err
	}
	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}
