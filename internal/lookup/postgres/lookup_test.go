package postgres

import (
	"testing"

	"github.com/frahmantamala/resource-directory/internal/lookup"
	"github.com/frahmantamala/resource-directory/internal/resource"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestLookupRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "LookupRepository Suite")
}

type sqliteNamedRow struct {
	ID   int64  `gorm:"column:id;primaryKey"`
	Name string `gorm:"column:name"`
}

type sqliteDesignation sqliteNamedRow

func (sqliteDesignation) TableName() string { return "designations" }

type sqliteLocation sqliteNamedRow

func (sqliteLocation) TableName() string { return "locations" }

type sqliteSkill sqliteNamedRow

func (sqliteSkill) TableName() string { return "skills" }

type sqliteProject sqliteNamedRow

func (sqliteProject) TableName() string { return "projects" }

type sqliteRole sqliteNamedRow

func (sqliteRole) TableName() string { return "roles" }

type sqliteResource struct {
	EmpID        int64  `gorm:"column:emp_id;primaryKey;autoIncrement"`
	ResourceName string `gorm:"column:resource_name"`
}

func (sqliteResource) TableName() string { return "resources" }

var _ = Describe("LookupRepository", func() {
	var (
		db   *gorm.DB
		repo lookup.RepositoryAPI
	)

	BeforeEach(func() {
		var err error

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(
			&sqliteDesignation{},
			&sqliteLocation{},
			&sqliteSkill{},
			&sqliteProject{},
			&sqliteRole{},
			&sqliteResource{},
		)
		Expect(err).NotTo(HaveOccurred())

		repo = NewLookupRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).NotTo(HaveOccurred())
	})

	Describe("GetDropdowns", func() {
		It("should return every reference set ordered by name", func() {
			Expect(db.Create(&sqliteDesignation{ID: 1, Name: "Engineer"}).Error).NotTo(HaveOccurred())
			Expect(db.Create(&sqliteDesignation{ID: 2, Name: "Architect"}).Error).NotTo(HaveOccurred())
			Expect(db.Create(&sqliteSkill{ID: 1, Name: "Go"}).Error).NotTo(HaveOccurred())
			Expect(db.Create(&sqliteLocation{ID: 1, Name: "Jakarta"}).Error).NotTo(HaveOccurred())
			Expect(db.Create(&sqliteProject{ID: 1, Name: "Atlas"}).Error).NotTo(HaveOccurred())
			Expect(db.Create(&sqliteResource{ResourceName: "Brian Lee"}).Error).NotTo(HaveOccurred())
			Expect(db.Create(&sqliteResource{ResourceName: "Asha Nair"}).Error).NotTo(HaveOccurred())

			dropdowns, err := repo.GetDropdowns()
			Expect(err).NotTo(HaveOccurred())

			Expect(dropdowns.Designations).To(Equal([]resource.Option{
				{ID: 2, Label: "Architect"},
				{ID: 1, Label: "Engineer"},
			}))
			Expect(dropdowns.Skills).To(Equal([]resource.Option{{ID: 1, Label: "Go"}}))
			Expect(dropdowns.Locations).To(Equal([]resource.Option{{ID: 1, Label: "Jakarta"}}))
			Expect(dropdowns.Projects).To(Equal([]resource.Option{{ID: 1, Label: "Atlas"}}))

			Expect(dropdowns.Managers).To(HaveLen(2))
			Expect(dropdowns.Managers[0].Label).To(Equal("Asha Nair"))
			Expect(dropdowns.Managers[1].Label).To(Equal("Brian Lee"))
		})

		It("should return empty sets, not nil, when tables are empty", func() {
			dropdowns, err := repo.GetDropdowns()
			Expect(err).NotTo(HaveOccurred())

			Expect(dropdowns.Designations).To(BeEmpty())
			Expect(dropdowns.Designations).NotTo(BeNil())
			Expect(dropdowns.Managers).To(BeEmpty())
			Expect(dropdowns.Managers).NotTo(BeNil())
		})
	})

	Describe("GetRoleOptions", func() {
		It("should return the role reference set ordered by name", func() {
			Expect(db.Create(&sqliteRole{ID: 1, Name: "Viewer"}).Error).NotTo(HaveOccurred())
			Expect(db.Create(&sqliteRole{ID: 2, Name: "Admin"}).Error).NotTo(HaveOccurred())

			options, err := repo.GetRoleOptions()
			Expect(err).NotTo(HaveOccurred())
			Expect(options).To(Equal([]resource.Option{
				{ID: 2, Label: "Admin"},
				{ID: 1, Label: "Viewer"},
			}))
		})
	})
})
