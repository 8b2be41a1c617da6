package resource

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

// Mock repository for testing
type mockRepository struct {
	rows       []Resource
	details    map[int64]*Details
	nextEmpID  int64
	emails     map[string]int64
	deleted    []int64
	lastCreate *BulkCreatePayload
	lastPatch  *BulkPatch

	getAllError     error
	createError     error
	updateError     error
	bulkCreateError error
	bulkUpdateUpd   int64
	bulkUpdateError error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		details:   make(map[int64]*Details),
		emails:    make(map[string]int64),
		nextEmpID: 1,
	}
}

func (m *mockRepository) GetAll() ([]Resource, error) {
	if m.getAllError != nil {
		return nil, m.getAllError
	}
	return m.rows, nil
}

func (m *mockRepository) GetByID(empID int64) (*Details, error) {
	d, ok := m.details[empID]
	if !ok {
		return nil, ErrResourceNotFound
	}
	return d, nil
}

func (m *mockRepository) Create(input *Input) (int64, error) {
	if m.createError != nil {
		return 0, m.createError
	}
	if _, taken := m.emails[input.EmailID]; taken {
		return 0, ErrDuplicateEmail
	}
	id := m.nextEmpID
	m.nextEmpID++
	m.emails[input.EmailID] = id
	return id, nil
}

func (m *mockRepository) Update(input *Input) error {
	if m.updateError != nil {
		return m.updateError
	}
	if _, ok := m.details[*input.EmpID]; !ok {
		return ErrResourceNotFound
	}
	return nil
}

func (m *mockRepository) Delete(empID int64) error {
	if _, ok := m.details[empID]; !ok {
		return ErrResourceNotFound
	}
	delete(m.details, empID)
	m.deleted = append(m.deleted, empID)
	return nil
}

func (m *mockRepository) DeleteMany(empIDs []int64) error {
	m.deleted = append(m.deleted, empIDs...)
	return nil
}

func (m *mockRepository) EmailExists(email string) (bool, error) {
	_, ok := m.emails[email]
	return ok, nil
}

func (m *mockRepository) Statistics() (*Statistics, error) {
	return &Statistics{TotalResources: int64(len(m.rows))}, nil
}

func (m *mockRepository) BulkCreate(payload *BulkCreatePayload) error {
	if m.bulkCreateError != nil {
		return m.bulkCreateError
	}
	m.lastCreate = payload
	return nil
}

func (m *mockRepository) BulkUpdate(patch *BulkPatch) (int64, error) {
	if m.bulkUpdateError != nil {
		return 0, m.bulkUpdateError
	}
	m.lastPatch = patch
	return m.bulkUpdateUpd, nil
}

var _ = ginkgo.Describe("ResourceService", func() {
	var (
		service *Service
		repo    *mockRepository
	)

	ginkgo.BeforeEach(func() {
		repo = newMockRepository()
		service = NewService(repo, nil, slog.New(slog.NewTextHandler(os.Stderr, nil)))
	})

	validInput := func(email string) *Input {
		return &Input{
			ResourceName:  "Asha Nair",
			DesignationID: 1,
			LocationID:    2,
			EmailID:       email,
			CteDoj:        NewDateOnly(2020, time.May, 5),
		}
	}

	ginkgo.Describe("CreateResource", func() {
		ginkgo.It("creates a valid resource", func() {
			id, err := service.CreateResource(context.Background(), validInput("asha@corp.example"))
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(id).To(gomega.Equal(int64(1)))
		})

		ginkgo.It("rejects invalid submissions before the store", func() {
			input := validInput("asha@corp.example")
			input.ResourceName = "  "

			_, err := service.CreateResource(context.Background(), input)
			gomega.Expect(err).To(gomega.BeAssignableToTypeOf(ValidationError{}))
		})

		ginkgo.It("propagates duplicate email conflicts", func() {
			_, err := service.CreateResource(context.Background(), validInput("asha@corp.example"))
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = service.CreateResource(context.Background(), validInput("asha@corp.example"))
			gomega.Expect(err).To(gomega.MatchError(ErrDuplicateEmail))
		})
	})

	ginkgo.Describe("UpdateResource", func() {
		ginkgo.It("requires an emp id", func() {
			err := service.UpdateResource(validInput("asha@corp.example"))
			gomega.Expect(err).To(gomega.BeAssignableToTypeOf(ValidationError{}))
		})

		ginkgo.It("propagates not-found from the store", func() {
			input := validInput("asha@corp.example")
			missing := int64(99)
			input.EmpID = &missing

			err := service.UpdateResource(input)
			gomega.Expect(err).To(gomega.MatchError(ErrResourceNotFound))
		})
	})

	ginkgo.Describe("QueryResources", func() {
		ginkgo.BeforeEach(func() {
			repo.rows = gridFixture()
		})

		ginkgo.It("rejects invalid page windows", func() {
			_, err := service.QueryResources(GridQuery{PageNumber: 0, PageSize: 10})
			gomega.Expect(err).To(gomega.BeAssignableToTypeOf(ValidationError{}))

			_, err = service.QueryResources(GridQuery{PageNumber: 1, PageSize: 0})
			gomega.Expect(err).To(gomega.BeAssignableToTypeOf(ValidationError{}))
		})

		ginkgo.It("runs the query engine over the full set", func() {
			result, err := service.QueryResources(GridQuery{
				PageNumber: 1,
				PageSize:   10,
				Filters:    []ColumnFilter{{Field: "billable", Value: "true"}},
			})

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(result.TotalCount).To(gomega.Equal(2))
		})

		ginkgo.It("propagates store failures", func() {
			repo.getAllError = errors.New("connection reset")

			_, err := service.QueryResources(GridQuery{PageNumber: 1, PageSize: 10})
			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})

	ginkgo.Describe("DeleteResources", func() {
		ginkgo.It("rejects an empty id set", func() {
			err := service.DeleteResources(nil)
			gomega.Expect(err).To(gomega.MatchError(ErrEmptyTargetSet))
		})

		ginkgo.It("dedupes the id set before the store", func() {
			err := service.DeleteResources([]int64{4, 4, 5})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(repo.deleted).To(gomega.Equal([]int64{4, 5}))
		})
	})

	ginkgo.Describe("CheckEmailExists", func() {
		ginkgo.It("requires an email", func() {
			_, err := service.CheckEmailExists("   ")
			gomega.Expect(err).To(gomega.BeAssignableToTypeOf(ValidationError{}))
		})
	})

	ginkgo.Describe("BulkCreateResources", func() {
		ginkgo.It("commits a valid batch and reports its size", func() {
			inputs := []Input{
				*validInput("asha@corp.example"),
				*validInput("brian@corp.example"),
			}

			created, err := service.BulkCreateResources(context.Background(), inputs)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(created).To(gomega.Equal(2))
			gomega.Expect(repo.lastCreate.Resources).To(gomega.HaveLen(2))
		})

		ginkgo.It("aborts the whole batch on a store conflict", func() {
			repo.bulkCreateError = ErrDuplicateEmail

			_, err := service.BulkCreateResources(context.Background(), []Input{*validInput("asha@corp.example")})
			gomega.Expect(err).To(gomega.MatchError(ErrDuplicateEmail))
		})
	})

	ginkgo.Describe("BulkUpdateResources", func() {
		ginkgo.It("rejects an empty target set", func() {
			_, err := service.BulkUpdateResources(context.Background(), &BulkPatch{})
			gomega.Expect(err).To(gomega.MatchError(ErrEmptyTargetSet))
		})

		ginkgo.It("returns the count of targets that existed", func() {
			repo.bulkUpdateUpd = 2
			billable := false

			updated, err := service.BulkUpdateResources(context.Background(), &BulkPatch{
				ResourceIDs: []int64{1, 2, 99},
				Fields:      FieldsToEdit{Billable: &billable},
			})

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(updated).To(gomega.Equal(int64(2)))
			gomega.Expect(repo.lastPatch.ResourceIDs).To(gomega.Equal([]int64{1, 2, 99}))
		})
	})
})
