package dto

import (
	"encoding/json"
	"errors"

	"github.com/spec-kit/survey-service/internal/domain"
	"github.com/spec-kit/survey-service/internal/service"
	apperrors "github.com/spec-kit/survey-service/pkg/util/errorutil"
)

// ErrPairsNotList is returned when allowed_pairs is present but not a JSON array.
var ErrPairsNotList = errors.New("allowed_pairs must be a list")

// PairRequest is one department pair. Either id may be absent.
type PairRequest struct {
	FromDeptID *int64 `json:"from_dept_id"`
	ToDeptID   *int64 `json:"to_dept_id"`
}

// SavePermissionsRequest payload for POST /api/permissions/save. A missing
// allowed_pairs key is an empty set.
type SavePermissionsRequest struct {
	AllowedPairs json.RawMessage `json:"allowed_pairs"`
}

// MailAlertRequest payload for POST /api/permissions/mail-alert.
type MailAlertRequest struct {
	AllowedPairs json.RawMessage `json:"allowed_pairs"`
	StartDate    string          `json:"start_date"`
	EndDate      string          `json:"end_date"`
}

// MailAlertResponse reports the composed alert lines.
type MailAlertResponse struct {
	Message         string   `json:"message"`
	AlertDetails    []string `json:"alert_details"`
	UsersConsidered int      `json:"users_considered"`
}

// PermissionResponse is one edge of the permission set.
type PermissionResponse struct {
	FromDeptID int64 `json:"from_dept_id"`
	ToDeptID   int64 `json:"to_dept_id"`
}

// NewPermissionResponse maps a domain permission.
func NewPermissionResponse(p domain.Permission) PermissionResponse {
	return PermissionResponse{FromDeptID: p.FromDeptID, ToDeptID: p.ToDeptID}
}

// DecodePairs decodes an allowed_pairs value. Absent or null yields an
// empty slice and a non-array is ErrPairsNotList. An entry that is not an
// object of integer ids is a validation error naming its index.
func DecodePairs(raw json.RawMessage) ([]service.PairInput, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return []service.PairInput{}, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, ErrPairsNotList
	}
	pairs := make([]service.PairInput, 0, len(items))
	for i, item := range items {
		var p PairRequest
		if err := json.Unmarshal(item, &p); err != nil {
			return nil, apperrors.NewValidationError(
				"Invalid pair format: 'from_dept_id' and 'to_dept_id' are required.",
				map[string]any{"index": i, "reason": err.Error()},
			)
		}
		pairs = append(pairs, service.PairInput{FromDeptID: p.FromDeptID, ToDeptID: p.ToDeptID})
	}
	return pairs, nil
}
