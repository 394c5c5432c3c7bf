package export

import (
	"bytes"
	"testing"

	"github.com/cmlabs-hris/leave-portal/internal/domain/leave"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func readRows(t *testing.T, data []byte) (string, [][]string) {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	name := f.GetSheetName(0)
	rows, err := f.GetRows(name)
	require.NoError(t, err)
	return name, rows
}

func TestWriteLeaves(t *testing.T) {
	records := []leave.LeaveRequest{
		{ID: "42", EmployeeID: "E1", LeaveType: leave.LeaveTypeVacation, StartDate: "2024-01-01", EndDate: "2024-01-03", Reason: "trip", Status: leave.StatusApproved},
		{ID: "7", EmployeeID: "E2", LeaveType: leave.LeaveTypeWorkFromHome, StartDate: "2024-02-05", EndDate: "2024-02-05", Reason: "plumber", Status: leave.StatusPending},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteLeaves(&buf, records))

	name, rows := readRows(t, buf.Bytes())
	assert.Equal(t, SheetName, name)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"ID", "Employee ID", "Leave Type", "Start Date", "End Date", "Reason", "Status"}, rows[0])
	assert.Equal(t, []string{"42", "E1", "Vacation", "2024-01-01", "2024-01-03", "trip", "Approved"}, rows[1])
	assert.Equal(t, []string{"7", "E2", "Work from Home", "2024-02-05", "2024-02-05", "plumber", "Pending"}, rows[2])
}

func TestWriteLeaves_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLeaves(&buf, nil))

	_, rows := readRows(t, buf.Bytes())
	require.Len(t, rows, 1)
	assert.Equal(t, "Employee ID", rows[0][1])
}
