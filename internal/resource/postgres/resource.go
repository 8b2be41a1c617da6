package postgres

import (
	"errors"
	"strings"

	"github.com/frahmantamala/resource-directory/internal/resource"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ResourceRepository implements resource.RepositoryAPI using GORM. Every
// mutation runs in its own transaction; bulk submissions commit all rows or
// none.
type ResourceRepository struct {
	db *gorm.DB
}

// NewResourceRepository creates a new resource repository
func NewResourceRepository(db *gorm.DB) resource.RepositoryAPI {
	return &ResourceRepository{db: db}
}

type resourceModel struct {
	EmpID         int64             `gorm:"column:emp_id;primaryKey;autoIncrement"`
	ResourceName  string            `gorm:"column:resource_name;not null"`
	DesignationID int64             `gorm:"column:designation_id;not null"`
	ReportingToID *int64            `gorm:"column:reporting_to_id"`
	Billable      bool              `gorm:"column:billable;not null"`
	LocationID    int64             `gorm:"column:location_id;not null"`
	EmailID       string            `gorm:"column:email_id;not null;uniqueIndex"`
	CteDoj        resource.DateOnly `gorm:"column:cte_doj;type:date;not null"`
	Remarks       *string           `gorm:"column:remarks"`

	Designation designationModel `gorm:"foreignKey:DesignationID;references:ID"`
	Location    locationModel    `gorm:"foreignKey:LocationID;references:ID"`
	Manager     *resourceModel   `gorm:"foreignKey:ReportingToID;references:EmpID"`
	Skills      []skillModel     `gorm:"many2many:resource_skills;foreignKey:EmpID;joinForeignKey:EmpID;references:ID;joinReferences:SkillID"`
	Projects    []projectModel   `gorm:"many2many:resource_projects;foreignKey:EmpID;joinForeignKey:EmpID;references:ID;joinReferences:ProjectID"`
}

func (resourceModel) TableName() string { return "resources" }

type designationModel struct {
	ID   int64  `gorm:"column:id;primaryKey"`
	Name string `gorm:"column:name"`
}

func (designationModel) TableName() string { return "designations" }

type locationModel struct {
	ID   int64  `gorm:"column:id;primaryKey"`
	Name string `gorm:"column:name"`
}

func (locationModel) TableName() string { return "locations" }

type skillModel struct {
	ID   int64  `gorm:"column:id;primaryKey"`
	Name string `gorm:"column:name"`
}

func (skillModel) TableName() string { return "skills" }

type projectModel struct {
	ID   int64  `gorm:"column:id;primaryKey"`
	Name string `gorm:"column:name"`
}

func (projectModel) TableName() string { return "projects" }

type resourceSkillModel struct {
	EmpID   int64 `gorm:"column:emp_id;primaryKey"`
	SkillID int64 `gorm:"column:skill_id;primaryKey"`
}

func (resourceSkillModel) TableName() string { return "resource_skills" }

type resourceProjectModel struct {
	EmpID     int64 `gorm:"column:emp_id;primaryKey"`
	ProjectID int64 `gorm:"column:project_id;primaryKey"`
}

func (resourceProjectModel) TableName() string { return "resource_projects" }

// GetAll returns every resource in its denormalized grid shape.
func (r *ResourceRepository) GetAll() ([]resource.Resource, error) {
	var models []resourceModel
	err := r.db.
		Preload("Designation").
		Preload("Location").
		Preload("Manager").
		Preload("Skills", func(db *gorm.DB) *gorm.DB { return db.Order("skills.name") }).
		Preload("Projects", func(db *gorm.DB) *gorm.DB { return db.Order("projects.name") }).
		Order("emp_id").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	rows := make([]resource.Resource, 0, len(models))
	for i := range models {
		rows = append(rows, toGridRow(&models[i]))
	}
	return rows, nil
}

// GetByID returns the detail shape for one resource, or ErrResourceNotFound.
func (r *ResourceRepository) GetByID(empID int64) (*resource.Details, error) {
	var model resourceModel
	err := r.db.
		Preload("Designation").
		Preload("Location").
		Preload("Manager").
		Preload("Skills", func(db *gorm.DB) *gorm.DB { return db.Order("skills.name") }).
		Preload("Projects", func(db *gorm.DB) *gorm.DB { return db.Order("projects.name") }).
		Where("emp_id = ?", empID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, resource.ErrResourceNotFound
		}
		return nil, err
	}

	details := &resource.Details{
		EmpID:       model.EmpID,
		Name:        model.ResourceName,
		Billable:    model.Billable,
		Email:       model.EmailID,
		CteDoj:      model.CteDoj,
		Designation: resource.Option{ID: model.Designation.ID, Label: model.Designation.Name},
		Location:    resource.Option{ID: model.Location.ID, Label: model.Location.Name},
		Skills:      make([]resource.Option, 0, len(model.Skills)),
		Projects:    make([]resource.Option, 0, len(model.Projects)),
	}
	if model.Remarks != nil {
		details.Remarks = *model.Remarks
	}
	if model.Manager != nil {
		details.ReportingTo = model.Manager.ResourceName
	}
	for _, s := range model.Skills {
		details.Skills = append(details.Skills, resource.Option{ID: s.ID, Label: s.Name})
	}
	for _, p := range model.Projects {
		details.Projects = append(details.Projects, resource.Option{ID: p.ID, Label: p.Name})
	}

	return details, nil
}

// Create inserts one resource with its association sets and returns the
// assigned emp id. A duplicate email, compared case-insensitively, fails with
// ErrDuplicateEmail and nothing is written.
func (r *ResourceRepository) Create(input *resource.Input) (int64, error) {
	var empID int64

	err := r.db.Transaction(func(tx *gorm.DB) error {
		taken, err := emailTaken(tx, input.EmailID, nil)
		if err != nil {
			return err
		}
		if taken {
			return resource.ErrDuplicateEmail
		}

		model := modelFromInput(input)
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			return translateDuplicate(err)
		}
		empID = model.EmpID

		return insertAssociations(tx, empID, input.SkillIDs, input.ProjectIDs)
	})
	if err != nil {
		return 0, err
	}

	return empID, nil
}

// Update replaces a resource's scalar fields and association sets wholesale.
func (r *ResourceRepository) Update(input *resource.Input) error {
	empID := *input.EmpID

	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing resourceModel
		if err := tx.Where("emp_id = ?", empID).First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return resource.ErrResourceNotFound
			}
			return err
		}

		taken, err := emailTaken(tx, input.EmailID, &empID)
		if err != nil {
			return err
		}
		if taken {
			return resource.ErrDuplicateEmail
		}

		updates := map[string]interface{}{
			"resource_name":   input.ResourceName,
			"designation_id":  input.DesignationID,
			"reporting_to_id": input.ReportingToID,
			"billable":        input.Billable,
			"location_id":     input.LocationID,
			"email_id":        input.EmailID,
			"cte_doj":         input.CteDoj,
			"remarks":         nullableString(input.Remarks),
		}
		if err := tx.Model(&resourceModel{}).Where("emp_id = ?", empID).Updates(updates).Error; err != nil {
			return translateDuplicate(err)
		}

		if err := deleteAssociations(tx, []int64{empID}, true, true); err != nil {
			return err
		}
		return insertAssociations(tx, empID, input.SkillIDs, input.ProjectIDs)
	})
}

// Delete removes one resource and its association rows.
func (r *ResourceRepository) Delete(empID int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := deleteAssociations(tx, []int64{empID}, true, true); err != nil {
			return err
		}

		res := tx.Where("emp_id = ?", empID).Delete(&resourceModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return resource.ErrResourceNotFound
		}
		return nil
	})
}

// DeleteMany removes every listed resource; ids that no longer exist are
// skipped silently.
func (r *ResourceRepository) DeleteMany(empIDs []int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := deleteAssociations(tx, empIDs, true, true); err != nil {
			return err
		}
		return tx.Where("emp_id IN ?", empIDs).Delete(&resourceModel{}).Error
	})
}

// EmailExists reports whether any resource holds the email, ignoring case.
func (r *ResourceRepository) EmailExists(email string) (bool, error) {
	return emailTaken(r.db, email, nil)
}

// Statistics returns the directory aggregates.
func (r *ResourceRepository) Statistics() (*resource.Statistics, error) {
	var stats resource.Statistics

	if err := r.db.Model(&resourceModel{}).Count(&stats.TotalResources).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&resourceModel{}).Where("billable = ?", true).Count(&stats.TotalBillable).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&resourceProjectModel{}).Count(&stats.TotalProjectAssignments).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}

// BulkCreate applies an import payload inside one transaction. Correlation
// keys are expanded to the emp ids assigned while inserting the scalar rows,
// then the association rows are wired through the same mapping. Any failure,
// including a duplicate email anywhere in the batch, rolls back everything.
func (r *ResourceRepository) BulkCreate(payload *resource.BulkCreatePayload) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		empIDByKey := make(map[uuid.UUID]int64, len(payload.Resources))

		for i := range payload.Resources {
			row := &payload.Resources[i]

			taken, err := emailTaken(tx, row.EmailID, nil)
			if err != nil {
				return err
			}
			if taken {
				return resource.ErrDuplicateEmail
			}

			model := &resourceModel{
				ResourceName:  row.ResourceName,
				DesignationID: row.DesignationID,
				ReportingToID: row.ReportingToID,
				Billable:      row.Billable,
				LocationID:    row.LocationID,
				EmailID:       row.EmailID,
				CteDoj:        row.CteDoj,
				Remarks:       nullableString(row.Remarks),
			}
			if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
				return translateDuplicate(err)
			}
			empIDByKey[row.TempKey] = model.EmpID
		}

		for _, row := range payload.Skills {
			link := resourceSkillModel{EmpID: empIDByKey[row.TempKey], SkillID: row.SkillID}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		for _, row := range payload.Projects {
			link := resourceProjectModel{EmpID: empIDByKey[row.TempKey], ProjectID: row.ProjectID}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// BulkUpdate applies one sparse patch to every target that still exists, in a
// single transaction, and returns how many targets that was. Fields left unset
// in the patch never touch the corresponding columns; a non-nil skill or
// project list replaces each target's association set with exactly that list.
func (r *ResourceRepository) BulkUpdate(patch *resource.BulkPatch) (int64, error) {
	var updated int64

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing []int64
		if err := tx.Model(&resourceModel{}).
			Where("emp_id IN ?", patch.ResourceIDs).
			Order("emp_id").
			Pluck("emp_id", &existing).Error; err != nil {
			return err
		}
		updated = int64(len(existing))
		if len(existing) == 0 {
			return nil
		}

		fields := &patch.Fields
		if fields.HasScalarChanges() {
			updates := map[string]interface{}{}
			if fields.DesignationID != nil {
				updates["designation_id"] = *fields.DesignationID
			}
			if fields.LocationID != nil {
				updates["location_id"] = *fields.LocationID
			}
			if fields.ReportingToID != nil {
				updates["reporting_to_id"] = *fields.ReportingToID
			}
			if fields.Billable != nil {
				updates["billable"] = *fields.Billable
			}
			if fields.CteDoj != nil {
				updates["cte_doj"] = *fields.CteDoj
			}
			if fields.Remarks != nil {
				updates["remarks"] = nullableString(*fields.Remarks)
			}
			if err := tx.Model(&resourceModel{}).Where("emp_id IN ?", existing).Updates(updates).Error; err != nil {
				return err
			}
		}

		if err := deleteAssociations(tx, existing, fields.SkillIDs != nil, fields.ProjectIDs != nil); err != nil {
			return err
		}
		if fields.SkillIDs != nil {
			for _, empID := range existing {
				if err := insertAssociations(tx, empID, *fields.SkillIDs, nil); err != nil {
					return err
				}
			}
		}
		if fields.ProjectIDs != nil {
			for _, empID := range existing {
				if err := insertAssociations(tx, empID, nil, *fields.ProjectIDs); err != nil {
					return err
				}
			}
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return updated, nil
}

func toGridRow(model *resourceModel) resource.Resource {
	row := resource.Resource{
		EmpID:             model.EmpID,
		ResourceName:      model.ResourceName,
		Designation:       model.Designation.Name,
		Billable:          model.Billable,
		Location:          model.Location.Name,
		EmailID:           model.EmailID,
		CteDoj:            model.CteDoj,
		TechnologySkill:   joinLabels(len(model.Skills), func(i int) string { return model.Skills[i].Name }),
		ProjectAllocation: joinLabels(len(model.Projects), func(i int) string { return model.Projects[i].Name }),
	}
	if model.Remarks != nil {
		row.Remarks = *model.Remarks
	}
	if model.Manager != nil {
		row.ReportingTo = model.Manager.ResourceName
	}
	return row
}

func modelFromInput(input *resource.Input) *resourceModel {
	return &resourceModel{
		ResourceName:  input.ResourceName,
		DesignationID: input.DesignationID,
		ReportingToID: input.ReportingToID,
		Billable:      input.Billable,
		LocationID:    input.LocationID,
		EmailID:       input.EmailID,
		CteDoj:        input.CteDoj,
		Remarks:       nullableString(input.Remarks),
	}
}

func emailTaken(db *gorm.DB, email string, excludeEmpID *int64) (bool, error) {
	query := db.Model(&resourceModel{}).Where("LOWER(email_id) = LOWER(?)", strings.TrimSpace(email))
	if excludeEmpID != nil {
		query = query.Where("emp_id <> ?", *excludeEmpID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func insertAssociations(tx *gorm.DB, empID int64, skillIDs, projectIDs []int64) error {
	for _, skillID := range skillIDs {
		if err := tx.Create(&resourceSkillModel{EmpID: empID, SkillID: skillID}).Error; err != nil {
			return err
		}
	}
	for _, projectID := range projectIDs {
		if err := tx.Create(&resourceProjectModel{EmpID: empID, ProjectID: projectID}).Error; err != nil {
			return err
		}
	}
	return nil
}

func deleteAssociations(tx *gorm.DB, empIDs []int64, skills, projects bool) error {
	if skills {
		if err := tx.Where("emp_id IN ?", empIDs).Delete(&resourceSkillModel{}).Error; err != nil {
			return err
		}
	}
	if projects {
		if err := tx.Where("emp_id IN ?", empIDs).Delete(&resourceProjectModel{}).Error; err != nil {
			return err
		}
	}
	return nil
}

// translateDuplicate maps unique-index violations onto the domain error. The
// pre-insert check already covers the common path; this is the authoritative
// backstop from the index on lower(email_id).
func translateDuplicate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return resource.ErrDuplicateEmail
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return resource.ErrDuplicateEmail
	}
	return err
}

func joinLabels(n int, name func(i int) string) string {
	labels := make([]string, 0, n)
	for i := 0; i < n; i++ {
		labels = append(labels, name(i))
	}
	return strings.Join(labels, ", ")
}

func nullableString(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
