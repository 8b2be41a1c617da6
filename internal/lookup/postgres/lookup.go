package postgres

import (
	"github.com/frahmantamala/resource-directory/internal/lookup"
	"github.com/frahmantamala/resource-directory/internal/resource"
	"gorm.io/gorm"
)

// LookupRepository reads the closed reference sets. No write path exists
// through this repository.
type LookupRepository struct {
	db *gorm.DB
}

func NewLookupRepository(db *gorm.DB) lookup.RepositoryAPI {
	return &LookupRepository{db: db}
}

func (r *LookupRepository) GetDropdowns() (*lookup.Dropdowns, error) {
	dropdowns := &lookup.Dropdowns{}

	var err error
	if dropdowns.Designations, err = r.options("designations"); err != nil {
		return nil, err
	}
	if dropdowns.Skills, err = r.options("skills"); err != nil {
		return nil, err
	}
	if dropdowns.Locations, err = r.options("locations"); err != nil {
		return nil, err
	}
	if dropdowns.Projects, err = r.options("projects"); err != nil {
		return nil, err
	}

	managers, err := r.managers()
	if err != nil {
		return nil, err
	}
	dropdowns.Managers = managers

	return dropdowns, nil
}

func (r *LookupRepository) GetRoleOptions() ([]resource.Option, error) {
	return r.options("roles")
}

func (r *LookupRepository) options(table string) ([]resource.Option, error) {
	options := make([]resource.Option, 0)
	err := r.db.Table(table).
		Select("id, name AS label").
		Order("name").
		Scan(&options).Error
	if err != nil {
		return nil, err
	}
	return options, nil
}

// managers lists existing resources as reporting-line candidates.
func (r *LookupRepository) managers() ([]resource.Option, error) {
	options := make([]resource.Option, 0)
	err := r.db.Table("resources").
		Select("emp_id AS id, resource_name AS label").
		Order("resource_name").
		Scan(&options).Error
	if err != nil {
		return nil, err
	}
	return options, nil
}
