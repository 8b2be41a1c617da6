package resource

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Resource is the denormalized grid row served to the directory UI. Reference
// fields carry resolved display labels; the multi-valued associations are
// flattened to comma-joined label lists by the store.
type Resource struct {
	EmpID             int64    `json:"empId"`
	ResourceName      string   `json:"resourceName"`
	Designation       string   `json:"designation"`
	ReportingTo       string   `json:"reportingTo"`
	Billable          bool     `json:"billable"`
	TechnologySkill   string   `json:"technologySkill"`
	ProjectAllocation string   `json:"projectAllocation"`
	Location          string   `json:"location"`
	EmailID           string   `json:"emailId"`
	CteDoj            DateOnly `json:"cteDoj"`
	Remarks           string   `json:"remarks"`
}

// Option is an {id, label} pair from one of the closed reference sets.
type Option struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

// Details is the fetch-one shape: scalars plus option-resolved references and
// full association option lists, assembled by the store from preloaded rows.
type Details struct {
	EmpID       int64    `json:"empId"`
	Name        string   `json:"name"`
	ReportingTo string   `json:"reportingTo"`
	Billable    bool     `json:"billable"`
	Email       string   `json:"email"`
	Remarks     string   `json:"remarks"`
	CteDoj      DateOnly `json:"cteDoj"`

	Designation Option `json:"designation"`
	Location    Option `json:"location"`

	Skills   []Option `json:"skills"`
	Projects []Option `json:"projects"`
}

// Statistics is the aggregate summary for the directory dashboard.
type Statistics struct {
	TotalResources          int64 `json:"totalResources"`
	TotalBillable           int64 `json:"totalBillable"`
	TotalProjectAssignments int64 `json:"totalProjectAssignments"`
}

// Domain errors
var (
	ErrResourceNotFound = errors.New("resource not found")
	ErrDuplicateEmail   = errors.New("email already exists for another resource")
	ErrEmptyTargetSet   = errors.New("resource id list cannot be empty")
	ErrEmptyBatch       = errors.New("batch cannot be empty")
)

// RepositoryAPI is the store boundary for resource records. Each mutation is
// applied atomically; bulk operations commit all rows or none.
type RepositoryAPI interface {
	GetAll() ([]Resource, error)
	GetByID(empID int64) (*Details, error)
	Create(input *Input) (int64, error)
	Update(input *Input) error
	Delete(empID int64) error
	DeleteMany(empIDs []int64) error
	EmailExists(email string) (bool, error)
	Statistics() (*Statistics, error)
	BulkCreate(payload *BulkCreatePayload) error
	BulkUpdate(patch *BulkPatch) (int64, error)
}

const dateOnlyLayout = "2006-01-02"

// DateOnly is a calendar date with no time component. It marshals as
// "YYYY-MM-DD" and maps to a SQL DATE column.
type DateOnly struct {
	time.Time
}

func NewDateOnly(year int, month time.Month, day int) DateOnly {
	return DateOnly{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func ParseDateOnly(value string) (DateOnly, error) {
	t, err := time.Parse(dateOnlyLayout, strings.TrimSpace(value))
	if err != nil {
		return DateOnly{}, err
	}
	return DateOnly{t}, nil
}

func (d DateOnly) String() string {
	return d.Format(dateOnlyLayout)
}

func (d DateOnly) Equal(other DateOnly) bool {
	y1, m1, d1 := d.Date()
	y2, m2, d2 := other.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateOnlyLayout) + `"`), nil
}

func (d *DateOnly) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = DateOnly{}
		return nil
	}
	parsed, err := ParseDateOnly(s)
	if err != nil {
		return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	*d = parsed
	return nil
}

func (d DateOnly) Value() (driver.Value, error) {
	return d.Format(dateOnlyLayout), nil
}

func (d *DateOnly) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*d = DateOnly{v}
		return nil
	case string:
		parsed, err := ParseDateOnly(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		parsed, err := ParseDateOnly(string(v))
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case nil:
		*d = DateOnly{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into DateOnly", src)
	}
}
