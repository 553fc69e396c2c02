package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/civic-complaint-api/internal/dto"
	"github.com/noah-isme/civic-complaint-api/internal/middleware"
	"github.com/noah-isme/civic-complaint-api/internal/models"
	appErrors "github.com/noah-isme/civic-complaint-api/pkg/errors"
	"github.com/noah-isme/civic-complaint-api/pkg/response"
)

var (
	citizenActor  = models.Actor{ID: "citizen-1", Name: "Asha", Role: models.RoleCitizen}
	officialActor = models.Actor{ID: "official-1", Name: "Officer Rao", Role: models.RoleGovernment}
)

// asActor stands in for the JWT middleware.
func asActor(actor models.Actor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextActorKey, actor)
		c.Next()
	}
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) response.ErrorBody {
	t.Helper()
	var body response.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

type complaintBody struct {
	Message   string                 `json:"message"`
	Complaint map[string]interface{} `json:"complaint"`
}

func decodeComplaint(t *testing.T, rec *httptest.ResponseRecorder) complaintBody {
	t.Helper()
	var body complaintBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func jsonRequest(method, path string, payload interface{}) *http.Request {
	var body io.Reader
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func multipartRequest(t *testing.T, path string, fields map[string]string, image []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if image != nil {
		part, err := writer.CreateFormFile("image", "pole.png")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

type fakeComplaintService struct {
	submitted   *dto.SubmitComplaintRequest
	transition  *dto.UpdateStatusRequest
	lastFilter  models.ComplaintFilter
	removeErr   error
	submitErr   error
	transitions []string
}

func (f *fakeComplaintService) Submit(_ context.Context, citizen models.Citizen, req dto.SubmitComplaintRequest) (*models.Complaint, error) {
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	f.submitted = &req
	loc, err := req.Location.ToLocation()
	if err != nil {
		return nil, err
	}
	return &models.Complaint{
		ID:           "c-1",
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Status:       models.StatusPending,
		Priority:     models.PriorityMedium,
		Location:     loc,
		AuthorID:     citizen.ID,
		RewardPoints: 9,
		Tags:         req.Tags,
		CreatedAt:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}, nil
}

func (f *fakeComplaintService) Get(_ context.Context, actor models.Actor, id string) (*models.Complaint, error) {
	if id == "missing" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Complaint not found")
	}
	return &models.Complaint{ID: id}, nil
}

func (f *fakeComplaintService) List(_ context.Context, _ models.Official, filter models.ComplaintFilter) (*dto.ComplaintListResponse, error) {
	f.lastFilter = filter
	return &dto.ComplaintListResponse{Complaints: []models.Complaint{}, Pagination: response.NewPagination(filter.Page, filter.Limit, 0)}, nil
}

func (f *fakeComplaintService) ListForCitizen(_ context.Context, citizen models.Citizen, filter models.ComplaintFilter) (*dto.ComplaintListResponse, error) {
	f.lastFilter = filter
	f.lastFilter.AuthorID = citizen.ID
	return &dto.ComplaintListResponse{Complaints: []models.Complaint{}, Pagination: response.NewPagination(filter.Page, filter.Limit, 0)}, nil
}

func (f *fakeComplaintService) ListAssigned(_ context.Context, official models.Official, filter models.ComplaintFilter) (*dto.ComplaintListResponse, error) {
	f.lastFilter = filter
	f.lastFilter.AssignedTo = official.ID
	return &dto.ComplaintListResponse{Complaints: []models.Complaint{}, Pagination: response.NewPagination(filter.Page, filter.Limit, 0)}, nil
}

func (f *fakeComplaintService) TransitionStatus(_ context.Context, actor models.Actor, id string, req dto.UpdateStatusRequest) (*models.Complaint, error) {
	f.transition = &req
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	c := &models.Complaint{ID: id, Status: req.Status}
	if req.Status == models.StatusInProgress {
		c.AssignedTo = &actor.ID
		c.AssignedAt = &now
	}
	return c, nil
}

func (f *fakeComplaintService) Assign(_ context.Context, _ models.Actor, id string, req dto.AssignRequest) (*models.Complaint, error) {
	return &models.Complaint{ID: id, AssignedTo: req.AssignedTo}, nil
}

func (f *fakeComplaintService) Remove(_ context.Context, actor models.Actor, id string) error {
	return f.removeErr
}

func (f *fakeComplaintService) History(_ context.Context, _ models.Actor, id string) ([]models.ComplaintStatusHistory, error) {
	return []models.ComplaintStatusHistory{{ComplaintID: id, OldStatus: models.StatusPending, NewStatus: models.StatusVerified}}, nil
}
