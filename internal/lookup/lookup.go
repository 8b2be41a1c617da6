package lookup

import "github.com/frahmantamala/resource-directory/internal/resource"

// Dropdowns bundles the closed reference sets the directory UI populates its
// selectors from. Managers are existing resources offered as reporting-line
// targets.
type Dropdowns struct {
	Designations []resource.Option `json:"designations"`
	Skills       []resource.Option `json:"skills"`
	Locations    []resource.Option `json:"locations"`
	Projects     []resource.Option `json:"projects"`
	Managers     []resource.Option `json:"managers"`
}

// RepositoryAPI reads the reference sets. This engine never writes them.
type RepositoryAPI interface {
	GetDropdowns() (*Dropdowns, error)
	GetRoleOptions() ([]resource.Option, error)
}
