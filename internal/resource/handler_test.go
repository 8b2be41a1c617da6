package resource

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

// Mock service for handler tests; err is returned by every operation.
type mockService struct {
	err         error
	queryResult *PagedResult
	details     *Details
	createID    int64
	createdCnt  int
	updatedCnt  int64
}

func (m *mockService) GetAllResources() ([]Resource, error) {
	return nil, m.err
}

func (m *mockService) QueryResources(query GridQuery) (*PagedResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.queryResult, nil
}

func (m *mockService) GetResourceByID(empID int64) (*Details, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.details, nil
}

func (m *mockService) CreateResource(ctx context.Context, input *Input) (int64, error) {
	return m.createID, m.err
}

func (m *mockService) UpdateResource(input *Input) error {
	return m.err
}

func (m *mockService) DeleteResource(empID int64) error {
	return m.err
}

func (m *mockService) DeleteResources(empIDs []int64) error {
	return m.err
}

func (m *mockService) GetStatistics() (*Statistics, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &Statistics{}, nil
}

func (m *mockService) CheckEmailExists(email string) (bool, error) {
	return false, m.err
}

func (m *mockService) BulkCreateResources(ctx context.Context, inputs []Input) (int, error) {
	return m.createdCnt, m.err
}

func (m *mockService) BulkUpdateResources(ctx context.Context, patch *BulkPatch) (int64, error) {
	return m.updatedCnt, m.err
}

type errorEnvelope struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeErrorEnvelope(rec *httptest.ResponseRecorder) errorEnvelope {
	var envelope errorEnvelope
	gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &envelope)).To(gomega.Succeed())
	return envelope
}

func withIDParam(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

var _ = ginkgo.Describe("ResourceHandler", func() {
	var (
		service *mockService
		handler *Handler
		rec     *httptest.ResponseRecorder
	)

	ginkgo.BeforeEach(func() {
		service = &mockService{}
		handler = NewHandler(service)
		rec = httptest.NewRecorder()
	})

	ginkgo.Describe("QueryResources", func() {
		validQuery := `{"pageNumber":1,"pageSize":10}`

		ginkgo.It("should return the page on success", func() {
			service.queryResult = &PagedResult{
				Data:       []Resource{{EmpID: 1, ResourceName: "Asha"}},
				TotalCount: 1,
				PageNumber: 1,
				PageSize:   10,
			}

			req := httptest.NewRequest(http.MethodPost, "/resources/query", strings.NewReader(validQuery))
			handler.QueryResources(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			var result PagedResult
			gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &result)).To(gomega.Succeed())
			gomega.Expect(result.TotalCount).To(gomega.Equal(1))
		})

		ginkgo.It("should answer 400 for an invalid page window", func() {
			service.err = newValidationError("page number must be at least 1")

			req := httptest.NewRequest(http.MethodPost, "/resources/query", strings.NewReader(`{"pageNumber":0,"pageSize":10}`))
			handler.QueryResources(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
			envelope := decodeErrorEnvelope(rec)
			gomega.Expect(envelope.Error.Code).To(gomega.Equal("VALIDATION_FAILED"))
			gomega.Expect(envelope.Error.Message).To(gomega.Equal("page number must be at least 1"))
		})

		ginkgo.It("should answer a generic 500 when the store fails", func() {
			service.err = errors.New("pq: connection refused to 10.0.0.5")

			req := httptest.NewRequest(http.MethodPost, "/resources/query", strings.NewReader(validQuery))
			handler.QueryResources(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusInternalServerError))
			envelope := decodeErrorEnvelope(rec)
			gomega.Expect(envelope.Error.Code).To(gomega.Equal("STORE_FAILURE"))
			gomega.Expect(envelope.Error.Message).To(gomega.Equal("request failed"))
			gomega.Expect(rec.Body.String()).NotTo(gomega.ContainSubstring("connection refused"))
		})

		ginkgo.It("should reject an unparsable body", func() {
			req := httptest.NewRequest(http.MethodPost, "/resources/query", strings.NewReader("{not json"))
			handler.QueryResources(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})
	})

	ginkgo.Describe("error taxonomy mapping", func() {
		ginkgo.It("should map a duplicate email to 409 conflict", func() {
			service.err = ErrDuplicateEmail

			body := bytes.NewReader([]byte(`{"resourceName":"Asha","designationId":1,"locationId":1,"emailId":"asha@corp.example","cteDoj":"2022-03-14"}`))
			req := httptest.NewRequest(http.MethodPost, "/resources", body)
			handler.CreateResource(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusConflict))
			envelope := decodeErrorEnvelope(rec)
			gomega.Expect(envelope.Error.Code).To(gomega.Equal("DUPLICATE_EMAIL"))
		})

		ginkgo.It("should map a missing resource to 404", func() {
			service.err = ErrResourceNotFound

			req := withIDParam(httptest.NewRequest(http.MethodGet, "/resources/42", nil), "42")
			handler.GetResource(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNotFound))
			envelope := decodeErrorEnvelope(rec)
			gomega.Expect(envelope.Error.Code).To(gomega.Equal("RESOURCE_NOT_FOUND"))
		})

		ginkgo.It("should map an empty batch to 400", func() {
			service.err = ErrEmptyBatch

			req := httptest.NewRequest(http.MethodPost, "/resources/bulk", strings.NewReader(`[]`))
			handler.BulkCreateResources(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
			envelope := decodeErrorEnvelope(rec)
			gomega.Expect(envelope.Error.Code).To(gomega.Equal("EMPTY_BATCH"))
		})

		ginkgo.It("should map an empty target set to 400", func() {
			service.err = ErrEmptyTargetSet

			req := httptest.NewRequest(http.MethodPatch, "/resources/bulk", strings.NewReader(`{"resourceIds":[],"fieldsToEdit":{}}`))
			handler.BulkUpdateResources(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
			envelope := decodeErrorEnvelope(rec)
			gomega.Expect(envelope.Error.Code).To(gomega.Equal("EMPTY_TARGET_SET"))
		})

		ginkgo.It("should map a validation failure to 400 with the message", func() {
			service.err = newValidationError("email is required")

			body := strings.NewReader(`{"resourceName":"Asha","designationId":1,"locationId":1,"cteDoj":"2022-03-14"}`)
			req := httptest.NewRequest(http.MethodPost, "/resources", body)
			handler.CreateResource(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
			envelope := decodeErrorEnvelope(rec)
			gomega.Expect(envelope.Error.Code).To(gomega.Equal("VALIDATION_FAILED"))
			gomega.Expect(envelope.Error.Message).To(gomega.Equal("email is required"))
		})

		ginkgo.It("should hide unexpected delete failures behind a 500", func() {
			service.err = errors.New("driver: bad connection")

			req := withIDParam(httptest.NewRequest(http.MethodDelete, "/resources/7", nil), "7")
			handler.DeleteResource(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusInternalServerError))
			gomega.Expect(rec.Body.String()).NotTo(gomega.ContainSubstring("bad connection"))
		})
	})
})
