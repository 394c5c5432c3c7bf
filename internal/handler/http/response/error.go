package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/leave-portal/internal/domain/leave"
	"github.com/cmlabs-hris/leave-portal/internal/domain/portal"
	"github.com/cmlabs-hris/leave-portal/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	case errors.Is(err, portal.ErrSessionNotFound):
		NotFound(w, "Portal session not found")
	case errors.Is(err, portal.ErrInvalidView):
		BadRequest(w, err.Error(), nil)

	case errors.Is(err, leave.ErrEmployeeIDRequired):
		BadRequest(w, portal.MsgEmployeeIDRequired, nil)
	case errors.Is(err, leave.ErrInvalidAction):
		BadRequest(w, "Action must be approve or reject", nil)

	// The backend detail stays in the logs
	case errors.Is(err, leave.ErrApplyLeave):
		BadGateway(w, portal.MsgApplyFailed)
	case errors.Is(err, leave.ErrFetchLeaves):
		BadGateway(w, portal.MsgFetchAllFailed)
	case errors.Is(err, leave.ErrUpdateStatus):
		BadGateway(w, portal.MsgUpdateStatusFailed)

	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
