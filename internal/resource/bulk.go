package resource

import (
	"github.com/google/uuid"
)

// Bulk operations are decomposed into correlated payload row sets and handed to
// the store as one atomic submission. Each import submission gets a fresh
// correlation key that stitches its scalar row to its association rows across
// the three row sets; the store expands keys into real emp_ids inside a single
// transaction. The key is never derived from content, so two byte-identical
// submissions still correlate independently (their duplicate email is the
// store's uniqueness constraint to reject at commit time).

// ResourceRow is one scalar row of a bulk-create payload.
type ResourceRow struct {
	TempKey       uuid.UUID
	ResourceName  string
	DesignationID int64
	ReportingToID *int64
	Billable      bool
	LocationID    int64
	EmailID       string
	CteDoj        DateOnly
	Remarks       string
}

// SkillRow pairs a correlation key with one skill id.
type SkillRow struct {
	TempKey uuid.UUID
	SkillID int64
}

// ProjectRow pairs a correlation key with one project id.
type ProjectRow struct {
	TempKey   uuid.UUID
	ProjectID int64
}

// BulkCreatePayload carries the three parallel row sets of one import batch.
type BulkCreatePayload struct {
	Resources []ResourceRow
	Skills    []SkillRow
	Projects  []ProjectRow
}

// BuildBulkCreatePayload decomposes a batch of submissions into correlated row
// sets. A submission with no skills or projects contributes zero rows to the
// corresponding set; absence, not null, represents "no association".
func BuildBulkCreatePayload(inputs []Input) (*BulkCreatePayload, error) {
	if len(inputs) == 0 {
		return nil, ErrEmptyBatch
	}

	payload := &BulkCreatePayload{
		Resources: make([]ResourceRow, 0, len(inputs)),
	}

	for i := range inputs {
		in := inputs[i]
		in.Normalize()
		if err := in.Validate(); err != nil {
			return nil, err
		}

		tempKey := uuid.New()
		payload.Resources = append(payload.Resources, ResourceRow{
			TempKey:       tempKey,
			ResourceName:  in.ResourceName,
			DesignationID: in.DesignationID,
			ReportingToID: in.ReportingToID,
			Billable:      in.Billable,
			LocationID:    in.LocationID,
			EmailID:       in.EmailID,
			CteDoj:        in.CteDoj,
			Remarks:       in.Remarks,
		})

		for _, skillID := range in.SkillIDs {
			payload.Skills = append(payload.Skills, SkillRow{TempKey: tempKey, SkillID: skillID})
		}
		for _, projectID := range in.ProjectIDs {
			payload.Projects = append(payload.Projects, ProjectRow{TempKey: tempKey, ProjectID: projectID})
		}
	}

	return payload, nil
}

// NormalizeBulkPatch validates a bulk edit request and collapses duplicate ids
// in the target set and in any replacement association lists. An empty target
// set is a client error caught here, before the store is involved.
func NormalizeBulkPatch(patch *BulkPatch) error {
	patch.ResourceIDs = dedupeIDs(patch.ResourceIDs)
	if len(patch.ResourceIDs) == 0 {
		return ErrEmptyTargetSet
	}

	if patch.Fields.SkillIDs != nil {
		deduped := dedupeIDs(*patch.Fields.SkillIDs)
		patch.Fields.SkillIDs = &deduped
	}
	if patch.Fields.ProjectIDs != nil {
		deduped := dedupeIDs(*patch.Fields.ProjectIDs)
		patch.Fields.ProjectIDs = &deduped
	}

	return nil
}

// HasScalarChanges reports whether the patch touches any scalar column.
func (f *FieldsToEdit) HasScalarChanges() bool {
	return f.DesignationID != nil ||
		f.LocationID != nil ||
		f.ReportingToID != nil ||
		f.Billable != nil ||
		f.CteDoj != nil ||
		f.Remarks != nil
}
