package task

import (
	"errors"
	"fmt"
	"strings"

	"github.com/taskdesk/taskdesk/pkg/cerr"
)

// Failure kinds returned by validation, lifecycle checks and the service.
// They are the "code" field of API error responses, so clients can branch on
// them without parsing messages.
const (
	KindMissingField      = "MISSING_FIELD"
	KindFieldTooLong      = "FIELD_TOO_LONG"
	KindEmptyPatch        = "EMPTY_PATCH"
	KindInvalidStatus     = "INVALID_STATUS"
	KindInvalidTransition = "INVALID_TRANSITION"
	KindInvalidIdentifier = "INVALID_IDENTIFIER"
	KindNotFound          = "NOT_FOUND"
	KindStoreUnavailable  = "STORE_UNAVAILABLE"
)

func newMissingFieldError(field string) error {
	return cerr.NewKindError(cerr.InvalidArgument, KindMissingField,
		fmt.Sprintf("%s is required", field), nil)
}

func newFieldTooLongError(field string, limit int) error {
	return cerr.NewKindError(cerr.InvalidArgument, KindFieldTooLong,
		fmt.Sprintf("%s must be at most %d characters", field, limit), nil)
}

func newEmptyPatchError() error {
	return cerr.NewKindError(cerr.InvalidArgument, KindEmptyPatch,
		"patch contains no recognized fields", nil)
}

func newInvalidStatusError(value string) error {
	allowed := make([]string, 0, len(AllStatuses()))
	for _, s := range AllStatuses() {
		allowed = append(allowed, string(s))
	}
	return cerr.NewKindError(cerr.InvalidArgument, KindInvalidStatus,
		fmt.Sprintf("invalid status %q: allowed values are %s", value, strings.Join(allowed, ", ")), nil)
}

func newInvalidTransitionError(current, requested Status) error {
	return cerr.NewKindError(cerr.FailedPrecondition, KindInvalidTransition,
		fmt.Sprintf("transition from %q to %q is not allowed", current, requested), nil)
}

func newInvalidIdentifierError(id string) error {
	return cerr.NewKindError(cerr.InvalidArgument, KindInvalidIdentifier,
		fmt.Sprintf("invalid task id %q", id), nil)
}

func newNotFoundError(underlying error) error {
	return cerr.NewKindError(cerr.NotFound, KindNotFound, "task not found", underlying)
}

// translateRepoError converts repository failures into the service's error
// taxonomy: absence stays NotFound, everything else is reported as a generic
// store failure so persistence internals never leak to callers.
func translateRepoError(err error) error {
	var cErr *cerr.Error
	if errors.As(err, &cErr) && cErr.Code == cerr.NotFound {
		return newNotFoundError(err)
	}
	return cerr.NewKindError(cerr.Unavailable, KindStoreUnavailable, "store unavailable", err)
}
