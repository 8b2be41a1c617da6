package resource

import (
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func bulkInput(name, email string, skills, projects []int64) Input {
	return Input{
		ResourceName:  name,
		DesignationID: 1,
		Billable:      true,
		LocationID:    2,
		EmailID:       email,
		CteDoj:        NewDateOnly(2022, time.April, 4),
		SkillIDs:      skills,
		ProjectIDs:    projects,
	}
}

var _ = ginkgo.Describe("BuildBulkCreatePayload", func() {
	ginkgo.It("rejects an empty batch", func() {
		_, err := BuildBulkCreatePayload(nil)
		gomega.Expect(err).To(gomega.MatchError(ErrEmptyBatch))
	})

	ginkgo.It("rejects a batch containing an invalid submission", func() {
		inputs := []Input{
			bulkInput("Asha Nair", "asha@corp.example", nil, nil),
			bulkInput("", "broken@corp.example", nil, nil),
		}

		_, err := BuildBulkCreatePayload(inputs)
		gomega.Expect(err).To(gomega.HaveOccurred())
		gomega.Expect(err).To(gomega.BeAssignableToTypeOf(ValidationError{}))
	})

	ginkgo.It("decomposes submissions into correlated row sets", func() {
		inputs := []Input{
			bulkInput("Asha Nair", "asha@corp.example", []int64{10, 11}, []int64{20}),
			bulkInput("Brian DSouza", "brian@corp.example", []int64{11}, []int64{20, 21}),
			bulkInput("Chitra Menon", "chitra@corp.example", nil, nil),
		}

		payload, err := BuildBulkCreatePayload(inputs)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		gomega.Expect(payload.Resources).To(gomega.HaveLen(3))
		gomega.Expect(payload.Skills).To(gomega.HaveLen(3))
		gomega.Expect(payload.Projects).To(gomega.HaveLen(3))

		// association rows must carry their submission's correlation key
		asha := payload.Resources[0]
		gomega.Expect(payload.Skills[0].TempKey).To(gomega.Equal(asha.TempKey))
		gomega.Expect(payload.Skills[1].TempKey).To(gomega.Equal(asha.TempKey))
		gomega.Expect(payload.Projects[0].TempKey).To(gomega.Equal(asha.TempKey))

		brian := payload.Resources[1]
		gomega.Expect(payload.Skills[2].TempKey).To(gomega.Equal(brian.TempKey))
		gomega.Expect(payload.Projects[1].TempKey).To(gomega.Equal(brian.TempKey))
		gomega.Expect(payload.Projects[2].TempKey).To(gomega.Equal(brian.TempKey))
	})

	ginkgo.It("assigns distinct keys to identical submissions", func() {
		inputs := []Input{
			bulkInput("Asha Nair", "asha@corp.example", []int64{10}, nil),
			bulkInput("Asha Nair", "asha@corp.example", []int64{10}, nil),
		}

		payload, err := BuildBulkCreatePayload(inputs)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(payload.Resources[0].TempKey).NotTo(gomega.Equal(payload.Resources[1].TempKey))
	})

	ginkgo.It("collapses duplicate association ids within a submission", func() {
		inputs := []Input{
			bulkInput("Asha Nair", "asha@corp.example", []int64{10, 10, 11}, []int64{20, 20}),
		}

		payload, err := BuildBulkCreatePayload(inputs)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(payload.Skills).To(gomega.HaveLen(2))
		gomega.Expect(payload.Projects).To(gomega.HaveLen(1))
	})
})

var _ = ginkgo.Describe("NormalizeBulkPatch", func() {
	ginkgo.It("rejects an empty target set", func() {
		patch := &BulkPatch{}
		gomega.Expect(NormalizeBulkPatch(patch)).To(gomega.MatchError(ErrEmptyTargetSet))
	})

	ginkgo.It("collapses duplicate target ids", func() {
		patch := &BulkPatch{ResourceIDs: []int64{5, 5, 7, 5}}
		gomega.Expect(NormalizeBulkPatch(patch)).To(gomega.Succeed())
		gomega.Expect(patch.ResourceIDs).To(gomega.Equal([]int64{5, 7}))
	})

	ginkgo.It("dedupes replacement association lists but keeps nil lists nil", func() {
		skills := []int64{1, 1, 2}
		patch := &BulkPatch{
			ResourceIDs: []int64{5},
			Fields:      FieldsToEdit{SkillIDs: &skills},
		}

		gomega.Expect(NormalizeBulkPatch(patch)).To(gomega.Succeed())
		gomega.Expect(*patch.Fields.SkillIDs).To(gomega.Equal([]int64{1, 2}))
		gomega.Expect(patch.Fields.ProjectIDs).To(gomega.BeNil())
	})

	ginkgo.It("preserves an explicit empty list as clear-all", func() {
		empty := []int64{}
		patch := &BulkPatch{
			ResourceIDs: []int64{5},
			Fields:      FieldsToEdit{ProjectIDs: &empty},
		}

		gomega.Expect(NormalizeBulkPatch(patch)).To(gomega.Succeed())
		gomega.Expect(patch.Fields.ProjectIDs).NotTo(gomega.BeNil())
		gomega.Expect(*patch.Fields.ProjectIDs).To(gomega.BeEmpty())
	})
})

var _ = ginkgo.Describe("FieldsToEdit", func() {
	ginkgo.It("reports scalar changes", func() {
		billable := true
		f := FieldsToEdit{Billable: &billable}
		gomega.Expect(f.HasScalarChanges()).To(gomega.BeTrue())
	})

	ginkgo.It("treats association-only patches as having no scalar changes", func() {
		skills := []int64{1}
		f := FieldsToEdit{SkillIDs: &skills}
		gomega.Expect(f.HasScalarChanges()).To(gomega.BeFalse())
	})
})
