package resource

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/resource-directory/internal/core/events"
)

// Event types published on the in-process bus after committed mutations.
const (
	EventResourceCreated     = "resource.created"
	EventResourceBulkCreated = "resource.bulk_imported"
	EventResourceBulkUpdated = "resource.bulk_updated"
)

// Service handles resource directory business logic
type Service struct {
	repo     RepositoryAPI
	eventBus *events.EventBus
	logger   *slog.Logger
}

// NewService creates a new resource service
func NewService(repo RepositoryAPI, eventBus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
	}
}

// GetAllResources returns every directory record in its grid shape.
func (s *Service) GetAllResources() ([]Resource, error) {
	resources, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to fetch resources", "error", err)
		return nil, err
	}

	s.logger.Info("fetched resources", "count", len(resources))
	return resources, nil
}

// QueryResources answers a grid query: the full set is fetched once and the
// pure query engine filters, orders and pages it.
func (s *Service) QueryResources(query GridQuery) (*PagedResult, error) {
	if err := query.Validate(); err != nil {
		s.logger.Warn("rejected grid query", "error", err,
			"page_number", query.PageNumber, "page_size", query.PageSize)
		return nil, err
	}

	resources, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to fetch resources for grid query", "error", err)
		return nil, err
	}

	result := ApplyGridQuery(resources, query)

	s.logger.Info("grid query answered",
		"filters", len(query.Filters),
		"sorts", len(query.Sorts),
		"total_count", result.TotalCount,
		"page_rows", len(result.Data))

	return &result, nil
}

// GetResourceByID returns the detail shape for one resource.
func (s *Service) GetResourceByID(empID int64) (*Details, error) {
	details, err := s.repo.GetByID(empID)
	if err != nil {
		if err == ErrResourceNotFound {
			s.logger.Warn("resource not found", "emp_id", empID)
		} else {
			s.logger.Error("failed to fetch resource", "error", err, "emp_id", empID)
		}
		return nil, err
	}

	return details, nil
}

// CreateResource persists a single submission and returns the assigned emp id.
func (s *Service) CreateResource(ctx context.Context, input *Input) (int64, error) {
	input.Normalize()
	if err := input.Validate(); err != nil {
		s.logger.Warn("resource validation failed", "error", err, "email", input.EmailID)
		return 0, err
	}

	empID, err := s.repo.Create(input)
	if err != nil {
		if err == ErrDuplicateEmail {
			s.logger.Warn("duplicate email on create", "email", input.EmailID)
		} else {
			s.logger.Error("failed to create resource", "error", err, "email", input.EmailID)
		}
		return 0, err
	}

	s.logger.Info("resource created", "emp_id", empID, "email", input.EmailID)
	s.publish(ctx, EventResourceCreated, map[string]interface{}{
		"emp_id": empID,
		"email":  input.EmailID,
	})

	return empID, nil
}

// UpdateResource replaces a resource's scalar fields and association sets.
func (s *Service) UpdateResource(input *Input) error {
	if input.EmpID == nil || *input.EmpID <= 0 {
		return newValidationError("emp id is required for update")
	}

	input.Normalize()
	if err := input.Validate(); err != nil {
		s.logger.Warn("resource validation failed", "error", err, "emp_id", *input.EmpID)
		return err
	}

	if err := s.repo.Update(input); err != nil {
		if err == ErrResourceNotFound {
			s.logger.Warn("resource not found for update", "emp_id", *input.EmpID)
		} else {
			s.logger.Error("failed to update resource", "error", err, "emp_id", *input.EmpID)
		}
		return err
	}

	s.logger.Info("resource updated", "emp_id", *input.EmpID)
	return nil
}

// DeleteResource removes a single resource.
func (s *Service) DeleteResource(empID int64) error {
	if err := s.repo.Delete(empID); err != nil {
		if err == ErrResourceNotFound {
			s.logger.Warn("resource not found for delete", "emp_id", empID)
		} else {
			s.logger.Error("failed to delete resource", "error", err, "emp_id", empID)
		}
		return err
	}

	s.logger.Info("resource deleted", "emp_id", empID)
	return nil
}

// DeleteResources removes every resource in the id set.
func (s *Service) DeleteResources(empIDs []int64) error {
	ids := dedupeIDs(empIDs)
	if len(ids) == 0 {
		return ErrEmptyTargetSet
	}

	if err := s.repo.DeleteMany(ids); err != nil {
		s.logger.Error("failed to delete resources", "error", err, "emp_ids", ids)
		return err
	}

	s.logger.Info("resources deleted", "count", len(ids))
	return nil
}

// GetStatistics returns the directory aggregates.
func (s *Service) GetStatistics() (*Statistics, error) {
	stats, err := s.repo.Statistics()
	if err != nil {
		s.logger.Error("failed to fetch statistics", "error", err)
		return nil, err
	}

	return stats, nil
}

// CheckEmailExists reports whether any resource already holds the email,
// ignoring case.
func (s *Service) CheckEmailExists(email string) (bool, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return false, newValidationError("email is required")
	}

	exists, err := s.repo.EmailExists(email)
	if err != nil {
		s.logger.Error("failed to check email", "error", err, "email", email)
		return false, err
	}

	return exists, nil
}

// BulkCreateResources imports a batch of submissions as one atomic store
// submission. Any failure, including a duplicate email anywhere in the batch,
// aborts the whole import.
func (s *Service) BulkCreateResources(ctx context.Context, inputs []Input) (int, error) {
	payload, err := BuildBulkCreatePayload(inputs)
	if err != nil {
		s.logger.Warn("bulk create rejected", "error", err, "count", len(inputs))
		return 0, err
	}

	if err := s.repo.BulkCreate(payload); err != nil {
		if err == ErrDuplicateEmail {
			s.logger.Warn("bulk create aborted on duplicate email", "count", len(inputs))
		} else {
			s.logger.Error("bulk create failed", "error", err, "count", len(inputs))
		}
		return 0, err
	}

	s.logger.Info("bulk create committed",
		"resources", len(payload.Resources),
		"skill_rows", len(payload.Skills),
		"project_rows", len(payload.Projects))

	s.publish(ctx, EventResourceBulkCreated, map[string]interface{}{
		"created_count": len(payload.Resources),
	})

	return len(payload.Resources), nil
}

// BulkUpdateResources applies one sparse patch to every target resource inside
// a single transaction and returns the number of targets that existed. A
// missing target id is skipped, not an error. When the patch carries a skill or
// project list, every target's association set is replaced with exactly that
// list; this is destructive, not a merge.
func (s *Service) BulkUpdateResources(ctx context.Context, patch *BulkPatch) (int64, error) {
	if err := NormalizeBulkPatch(patch); err != nil {
		s.logger.Warn("bulk update rejected", "error", err)
		return 0, err
	}

	updated, err := s.repo.BulkUpdate(patch)
	if err != nil {
		s.logger.Error("bulk update failed", "error", err, "targets", len(patch.ResourceIDs))
		return 0, err
	}

	s.logger.Info("bulk update committed",
		"targets", len(patch.ResourceIDs),
		"updated", updated)

	s.publish(ctx, EventResourceBulkUpdated, map[string]interface{}{
		"target_count":  len(patch.ResourceIDs),
		"updated_count": updated,
	})

	return updated, nil
}

func (s *Service) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.eventBus == nil {
		return
	}

	event := events.BaseEvent{
		ID:        fmt.Sprintf("%s-%d", eventType, time.Now().UnixNano()),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}

	if err := s.eventBus.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish event", "error", err, "event_type", eventType)
	}
}
