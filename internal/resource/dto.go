package resource

import (
	"fmt"
	"strings"
)

// ValidationError marks a request-shape failure caught before the store is
// involved; handlers map it to a bad-request response.
type ValidationError struct {
	msg string
}

func (e ValidationError) Error() string { return e.msg }

func newValidationError(format string, args ...interface{}) error {
	return ValidationError{msg: fmt.Sprintf(format, args...)}
}

// Input is the write shape for a single resource: scalar fields plus the
// association id lists that replace the stored sets wholesale.
type Input struct {
	EmpID         *int64   `json:"empId,omitempty"`
	ResourceName  string   `json:"resourceName"`
	DesignationID int64    `json:"designationId"`
	ReportingToID *int64   `json:"reportingToId,omitempty"`
	Billable      bool     `json:"billable"`
	LocationID    int64    `json:"locationId"`
	EmailID       string   `json:"emailId"`
	CteDoj        DateOnly `json:"cteDoj"`
	Remarks       string   `json:"remarks,omitempty"`

	SkillIDs   []int64 `json:"skillIds"`
	ProjectIDs []int64 `json:"projectIds"`
}

// Validate checks the fields a create or update submission must carry.
func (in *Input) Validate() error {
	if strings.TrimSpace(in.ResourceName) == "" {
		return newValidationError("resource name is required")
	}
	if in.DesignationID <= 0 {
		return newValidationError("designation is required")
	}
	if in.LocationID <= 0 {
		return newValidationError("location is required")
	}
	email := strings.TrimSpace(in.EmailID)
	if email == "" {
		return newValidationError("email is required")
	}
	if !strings.Contains(email, "@") || strings.HasPrefix(email, "@") || strings.HasSuffix(email, "@") {
		return newValidationError("invalid email address: %s", email)
	}
	if in.CteDoj.IsZero() {
		return newValidationError("date of joining is required")
	}
	return nil
}

// Normalize collapses duplicate association ids and replaces nil lists with
// empty ones so a persisted record never carries a null set.
func (in *Input) Normalize() {
	in.EmailID = strings.TrimSpace(in.EmailID)
	in.ResourceName = strings.TrimSpace(in.ResourceName)
	in.SkillIDs = dedupeIDs(in.SkillIDs)
	in.ProjectIDs = dedupeIDs(in.ProjectIDs)
}

// FieldsToEdit is the sparse field set of a bulk patch. Nil means "leave the
// column untouched". A non-nil SkillIDs or ProjectIDs replaces every target's
// association set with exactly that list.
type FieldsToEdit struct {
	DesignationID *int64    `json:"designationId,omitempty"`
	LocationID    *int64    `json:"locationId,omitempty"`
	ReportingToID *int64    `json:"reportingToId,omitempty"`
	Billable      *bool     `json:"billable,omitempty"`
	CteDoj        *DateOnly `json:"cteDoj,omitempty"`
	Remarks       *string   `json:"remarks,omitempty"`

	SkillIDs   *[]int64 `json:"skillIds,omitempty"`
	ProjectIDs *[]int64 `json:"projectIds,omitempty"`
}

// BulkPatch applies one sparse field set identically to every target resource.
type BulkPatch struct {
	ResourceIDs []int64      `json:"resourceIds"`
	Fields      FieldsToEdit `json:"fieldsToEdit"`
}

// GridQuery is the composite query object for the resource grid.
type GridQuery struct {
	PageNumber int `json:"pageNumber"`
	PageSize   int `json:"pageSize"`

	Filters []ColumnFilter `json:"filters"`
	Sorts   []ColumnSort   `json:"sorts"`
}

type ColumnFilter struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

type ColumnSort struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

// Validate rejects page windows the engine should never see. The engine still
// clamps out-of-range values on its own.
func (q *GridQuery) Validate() error {
	if q.PageNumber < 1 {
		return newValidationError("page number must be at least 1")
	}
	if q.PageSize <= 0 {
		return newValidationError("page size must be positive")
	}
	return nil
}

// PagedResult is one page of grid rows plus the pre-paging total.
type PagedResult struct {
	Data       []Resource `json:"data"`
	TotalCount int        `json:"totalCount"`
	PageNumber int        `json:"pageNumber"`
	PageSize   int        `json:"pageSize"`
}

// DeleteManyRequest carries the id set for a multi-delete.
type DeleteManyRequest struct {
	EmpIDs []int64 `json:"empIds"`
}

// EmailExistsResponse is the payload of the email availability check.
type EmailExistsResponse struct {
	Email  string `json:"email"`
	Exists bool   `json:"exists"`
}

// BulkUpdateResponse reports how many targeted resources actually existed and
// were patched.
type BulkUpdateResponse struct {
	UpdatedCount int64 `json:"updatedCount"`
}

// BulkCreateResponse reports the size of a committed import batch.
type BulkCreateResponse struct {
	CreatedCount int `json:"createdCount"`
}

func dedupeIDs(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
