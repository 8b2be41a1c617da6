package lookup

import (
	"log/slog"

	"github.com/frahmantamala/resource-directory/internal/resource"
)

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// GetDropdowns returns every reference set in one response.
func (s *Service) GetDropdowns() (*Dropdowns, error) {
	dropdowns, err := s.repo.GetDropdowns()
	if err != nil {
		s.logger.Error("failed to fetch dropdown data", "error", err)
		return nil, err
	}

	s.logger.Info("fetched dropdown data",
		"designations", len(dropdowns.Designations),
		"skills", len(dropdowns.Skills),
		"locations", len(dropdowns.Locations),
		"projects", len(dropdowns.Projects),
		"managers", len(dropdowns.Managers))

	return dropdowns, nil
}

// GetRoleOptions returns the account role reference set.
func (s *Service) GetRoleOptions() ([]resource.Option, error) {
	options, err := s.repo.GetRoleOptions()
	if err != nil {
		s.logger.Error("failed to fetch role options", "error", err)
		return nil, err
	}

	return options, nil
}
