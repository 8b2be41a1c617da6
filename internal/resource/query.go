package resource

import (
	"sort"
	"strconv"
	"strings"
)

// The grid query engine is pure and in-memory: the store hands over the full
// resource set and this stage filters, orders and pages it.
//
// Field dispatch is table-driven so adding a grid column is a data change.
// Unrecognized fields deliberately fail open: a filter on an unknown column
// excludes nothing and a sort on one contributes a constant key. The same
// tolerance applies to boolean and date filter values that do not parse.
// That keeps unknown or misspelled UI columns from ever breaking the page,
// at the cost of silently ignoring such filters.

type filterFunc func(r *Resource, value string) bool

type compareFunc func(a, b *Resource) int

var filterFuncs = map[string]filterFunc{
	"empid": func(r *Resource, value string) bool {
		return strconv.FormatInt(r.EmpID, 10) == value
	},
	"resourcename":      containsFold(func(r *Resource) string { return r.ResourceName }),
	"designation":       containsFold(func(r *Resource) string { return r.Designation }),
	"reportingto":       containsFold(func(r *Resource) string { return r.ReportingTo }),
	"technologyskill":   containsFold(func(r *Resource) string { return r.TechnologySkill }),
	"projectallocation": containsFold(func(r *Resource) string { return r.ProjectAllocation }),
	"location":          containsFold(func(r *Resource) string { return r.Location }),
	"emailid":           containsFold(func(r *Resource) string { return r.EmailID }),
	"remarks":           containsFold(func(r *Resource) string { return r.Remarks }),
	"billable": func(r *Resource, value string) bool {
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return true
		}
		return r.Billable == b
	},
	"ctedoj": func(r *Resource, value string) bool {
		d, err := ParseDateOnly(value)
		if err != nil {
			return true
		}
		return r.CteDoj.Equal(d)
	},
}

var compareFuncs = map[string]compareFunc{
	"empid": func(a, b *Resource) int { return compareInt64(a.EmpID, b.EmpID) },
	"resourcename": func(a, b *Resource) int {
		return strings.Compare(a.ResourceName, b.ResourceName)
	},
	"designation": func(a, b *Resource) int {
		return strings.Compare(a.Designation, b.Designation)
	},
	"reportingto": func(a, b *Resource) int {
		return strings.Compare(a.ReportingTo, b.ReportingTo)
	},
	"billable": func(a, b *Resource) int {
		return compareBool(a.Billable, b.Billable)
	},
	"technologyskill": func(a, b *Resource) int {
		return strings.Compare(a.TechnologySkill, b.TechnologySkill)
	},
	"projectallocation": func(a, b *Resource) int {
		return strings.Compare(a.ProjectAllocation, b.ProjectAllocation)
	},
	"location": func(a, b *Resource) int {
		return strings.Compare(a.Location, b.Location)
	},
	"emailid": func(a, b *Resource) int {
		return strings.Compare(a.EmailID, b.EmailID)
	},
	"ctedoj": func(a, b *Resource) int {
		return compareDate(a.CteDoj, b.CteDoj)
	},
	"remarks": func(a, b *Resource) int {
		return strings.Compare(a.Remarks, b.Remarks)
	},
}

// ApplyGridQuery filters, orders and pages the given resource set. It never
// fails: malformed filter or sort input degrades per the fail-open rules above,
// and an out-of-range page yields an empty page with the total count intact.
func ApplyGridQuery(resources []Resource, query GridQuery) PagedResult {
	filtered := applyFilters(resources, query.Filters)
	applySorts(filtered, query.Sorts)

	totalCount := len(filtered)

	pageNumber := query.PageNumber
	if pageNumber < 1 {
		pageNumber = 1
	}

	start := (pageNumber - 1) * query.PageSize
	end := start + query.PageSize
	if query.PageSize <= 0 || start >= totalCount || start < 0 {
		start, end = 0, 0
	} else if end > totalCount {
		end = totalCount
	}

	return PagedResult{
		Data:       filtered[start:end],
		TotalCount: totalCount,
		PageNumber: pageNumber,
		PageSize:   query.PageSize,
	}
}

// applyFilters retains rows matching every filter. Blank filter values and
// unknown fields match everything.
func applyFilters(resources []Resource, filters []ColumnFilter) []Resource {
	out := make([]Resource, 0, len(resources))
	out = append(out, resources...)

	for _, filter := range filters {
		if strings.TrimSpace(filter.Value) == "" {
			continue
		}

		match, ok := filterFuncs[strings.ToLower(filter.Field)]
		if !ok {
			continue
		}

		kept := out[:0]
		for i := range out {
			if match(&out[i], filter.Value) {
				kept = append(kept, out[i])
			}
		}
		out = kept
	}

	return out
}

// applySorts orders rows in place by the sort list: the first entry is the
// primary key and later entries break ties. A stable sort preserves the
// incoming order for fully equal rows.
func applySorts(resources []Resource, sorts []ColumnSort) {
	if len(sorts) == 0 {
		return
	}

	compares := make([]compareFunc, 0, len(sorts))
	for _, s := range sorts {
		cmp, ok := compareFuncs[strings.ToLower(s.Field)]
		if !ok {
			// constant key, falls through to later keys or original order
			continue
		}
		if strings.EqualFold(s.Direction, "desc") {
			cmp = reversed(cmp)
		}
		compares = append(compares, cmp)
	}

	if len(compares) == 0 {
		return
	}

	sort.SliceStable(resources, func(i, j int) bool {
		for _, cmp := range compares {
			if c := cmp(&resources[i], &resources[j]); c != 0 {
				return c < 0
			}
		}
		return false
	})
}

func containsFold(get func(*Resource) string) filterFunc {
	return func(r *Resource, value string) bool {
		return strings.Contains(strings.ToLower(get(r)), strings.ToLower(value))
	}
}

func reversed(cmp compareFunc) compareFunc {
	return func(a, b *Resource) int { return -cmp(a, b) }
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

func compareDate(a, b DateOnly) int {
	switch {
	case a.Time.Before(b.Time):
		return -1
	case a.Time.After(b.Time):
		return 1
	default:
		return 0
	}
}
