package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/leave-portal/internal/domain/leave"
	"github.com/cmlabs-hris/leave-portal/internal/pkg/backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	Method   string
	Path     string
	RawQuery string
	Body     map[string]interface{}
}

func newBackend(t *testing.T, status int, reply string) (*httptest.Server, *[]recordedCall) {
	t.Helper()
	calls := &[]recordedCall{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := recordedCall{Method: r.Method, Path: r.URL.EscapedPath(), RawQuery: r.URL.RawQuery}
		if r.Body != nil && r.ContentLength != 0 {
			_ = json.NewDecoder(r.Body).Decode(&call.Body)
		}
		*calls = append(*calls, call)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv, calls
}

func newRepo(srv *httptest.Server) leave.LeaveRequestRepository {
	return NewLeaveRequestRepository(backend.NewClientWithHTTP(srv.URL, srv.Client()))
}

func TestLeaveRequestRepository_Apply(t *testing.T) {
	srv, calls := newBackend(t, http.StatusCreated,
		`{"id":1,"employeeId":"E1","leaveType":"Vacation","startDate":"2024-01-01","endDate":"2024-01-03","reason":"trip","status":"Pending"}`)
	repo := newRepo(srv)

	created, err := repo.Apply(context.Background(), leave.ApplyLeaveRequest{
		EmployeeID: "E1",
		StartDate:  "2024-01-01",
		EndDate:    "2024-01-03",
		Reason:     "trip",
		LeaveType:  leave.LeaveTypeVacation,
	})
	require.NoError(t, err)
	assert.Equal(t, leave.RequestID("1"), created.ID)
	assert.Equal(t, leave.StatusPending, created.Status)

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, http.MethodPost, call.Method)
	assert.Equal(t, "/leave/apply", call.Path)
	assert.Equal(t, map[string]interface{}{
		"employeeId": "E1",
		"startDate":  "2024-01-01",
		"endDate":    "2024-01-03",
		"reason":     "trip",
		"leaveType":  "Vacation",
	}, call.Body)
}

func TestLeaveRequestRepository_ListByEmployee(t *testing.T) {
	srv, calls := newBackend(t, http.StatusOK, `[{"id":"a","employeeId":"E 1","status":"Pending"}]`)
	repo := newRepo(srv)

	got, err := repo.ListByEmployee(context.Background(), "E 1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, leave.RequestID("a"), got[0].ID)

	require.Len(t, *calls, 1)
	assert.Equal(t, http.MethodGet, (*calls)[0].Method)
	assert.Equal(t, "/leave/E%201", (*calls)[0].Path)
}

func TestLeaveRequestRepository_List_Unfiltered(t *testing.T) {
	srv, calls := newBackend(t, http.StatusOK, `null`)
	repo := newRepo(srv)

	got, err := repo.List(context.Background(), leave.ListLeavesFilter{})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	require.Len(t, *calls, 1)
	assert.Equal(t, "/leave", (*calls)[0].Path)
	assert.Equal(t, "", (*calls)[0].RawQuery)
}

func TestLeaveRequestRepository_List_FilteredKeepsOrder(t *testing.T) {
	srv, calls := newBackend(t, http.StatusOK,
		`[{"id":3,"employeeId":"E1","status":"Pending"},{"id":1,"employeeId":"E1","status":"Approved"},{"id":2,"employeeId":"E1","status":"Rejected"}]`)
	repo := newRepo(srv)

	got, err := repo.List(context.Background(), leave.ListLeavesFilter{EmployeeID: "E1"})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []leave.RequestID{"3", "1", "2"}, []leave.RequestID{got[0].ID, got[1].ID, got[2].ID})

	require.Len(t, *calls, 1)
	assert.Equal(t, "/leave", (*calls)[0].Path)
	assert.Equal(t, "employeeId=E1", (*calls)[0].RawQuery)
}

func TestLeaveRequestRepository_UpdateStatus(t *testing.T) {
	srv, calls := newBackend(t, http.StatusOK, `{"id":42,"employeeId":"E1","status":"Approved"}`)
	repo := newRepo(srv)

	updated, err := repo.UpdateStatus(context.Background(), "42", leave.ActionApprove)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, updated.Status)

	require.Len(t, *calls, 1)
	assert.Equal(t, http.MethodPut, (*calls)[0].Method)
	assert.Equal(t, "/leave/42/approve", (*calls)[0].Path)
}

func TestLeaveRequestRepository_NonSuccess(t *testing.T) {
	srv, _ := newBackend(t, http.StatusInternalServerError, `{"message":"db down"}`)
	repo := newRepo(srv)

	_, err := repo.List(context.Background(), leave.ListLeavesFilter{})
	var apiErr *backend.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)

	_, err = repo.UpdateStatus(context.Background(), "42", leave.ActionReject)
	require.True(t, errors.As(err, &apiErr))
}
