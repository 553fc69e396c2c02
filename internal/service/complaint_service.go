package service

import (
	"context"
	"database/sql"
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/civic-complaint-api/internal/dto"
	"github.com/noah-isme/civic-complaint-api/internal/models"
	appErrors "github.com/noah-isme/civic-complaint-api/pkg/errors"
	"github.com/noah-isme/civic-complaint-api/pkg/response"
	"github.com/noah-isme/civic-complaint-api/pkg/storage"
)

type complaintRepository interface {
	Create(ctx context.Context, complaint *models.Complaint) error
	FindByID(ctx context.Context, id string) (*models.Complaint, error)
	List(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, int, error)
	UpdateStatus(ctx context.Context, id string, update models.StatusUpdate, history *models.ComplaintStatusHistory) error
	Assign(ctx context.Context, id string, assignee *string, assignedAt *time.Time) error
	Delete(ctx context.Context, id string) error
	History(ctx context.Context, complaintID string) ([]models.ComplaintStatusHistory, error)
}

type complaintUserLookup interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// ComplaintConfig tunes the complaint workflow.
type ComplaintConfig struct {
	RewardMin     int
	RewardMax     int
	MaxImageBytes int64
}

// ComplaintService implements the complaint lifecycle: submission, status transitions,
// assignment and removal.
type ComplaintService struct {
	repo      complaintRepository
	users     complaintUserLookup
	images    storage.BlobStore
	audit     *AuditService
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ComplaintConfig
	now       func() time.Time
	reward    func(lo, hi int) int
}

// NewComplaintService constructs a ComplaintService. A nil image store stores photos inline as data URIs.
func NewComplaintService(repo complaintRepository, users complaintUserLookup, images storage.BlobStore, audit *AuditService, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg ComplaintConfig) *ComplaintService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.RewardMin <= 0 && cfg.RewardMax <= 0 {
		cfg.RewardMin, cfg.RewardMax = 5, 15
	}
	if cfg.MaxImageBytes <= 0 {
		cfg.MaxImageBytes = 5 * 1024 * 1024
	}
	return &ComplaintService{
		repo:      repo,
		users:     users,
		images:    images,
		audit:     audit,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
		reward: func(lo, hi int) int {
			return lo + rand.Intn(hi-lo+1)
		},
	}
}

// Submit validates and stores a new complaint with status pending and a random reward.
// When an image upload fails nothing is persisted.
func (s *ComplaintService) Submit(ctx context.Context, citizen models.Citizen, req dto.SubmitComplaintRequest) (*models.Complaint, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "Validation failed")
	}

	location, err := req.Location.ToLocation()
	if err != nil {
		return nil, violationError(err)
	}

	complaint := &models.Complaint{
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Status:       models.StatusPending,
		Priority:     req.Priority,
		Location:     location,
		AuthorID:     citizen.ID,
		RewardPoints: s.reward(s.cfg.RewardMin, s.cfg.RewardMax),
		IsAnonymous:  req.IsAnonymous,
		Tags:         normalizeTags(req.Tags),
	}

	if req.Image != nil {
		if err := s.attachImage(ctx, complaint, req.Image); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Create(ctx, complaint); err != nil {
		s.discardImage(ctx, complaint)
		var violation *models.FieldViolation
		if errors.As(err, &violation) {
			return nil, violationError(err)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create complaint")
	}

	s.audit.Record(ctx, citizen.Actor, models.AuditActionComplaintCreate, models.AuditResourceComplaint, complaint.ID, map[string]interface{}{
		"category": complaint.Category,
		"priority": complaint.Priority,
	})
	s.metrics.RecordComplaintEvent("submitted", string(complaint.Status))
	s.invalidateCaches(ctx)

	return complaint, nil
}

// Get returns a complaint visible to the actor: its author or any official.
func (s *ComplaintService) Get(ctx context.Context, actor models.Actor, id string) (*models.Complaint, error) {
	complaint, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := canView(actor, complaint); err != nil {
		return nil, err
	}
	return presentComplaint(actor, complaint), nil
}

// List returns all complaints matching filter. Officials only.
func (s *ComplaintService) List(ctx context.Context, official models.Official, filter models.ComplaintFilter) (*dto.ComplaintListResponse, error) {
	filter.AuthorID = ""
	filter.AssignedTo = ""
	return s.list(ctx, official.Actor, filter)
}

// ListForCitizen returns the citizen's own complaints.
func (s *ComplaintService) ListForCitizen(ctx context.Context, citizen models.Citizen, filter models.ComplaintFilter) (*dto.ComplaintListResponse, error) {
	filter.AuthorID = citizen.ID
	filter.AssignedTo = ""
	return s.list(ctx, citizen.Actor, filter)
}

// ListAssigned returns complaints assigned to the official.
func (s *ComplaintService) ListAssigned(ctx context.Context, official models.Official, filter models.ComplaintFilter) (*dto.ComplaintListResponse, error) {
	filter.AuthorID = ""
	filter.AssignedTo = official.ID
	return s.list(ctx, official.Actor, filter)
}

// TransitionStatus moves a complaint to any of the four statuses. Moving to in_progress
// assigns the complaint to the acting official; moving to resolved stamps the resolution.
// Backward moves are accepted.
func (s *ComplaintService) TransitionStatus(ctx context.Context, actor models.Actor, id string, req dto.UpdateStatusRequest) (*models.Complaint, error) {
	official, ok := actor.AsOfficial()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "Only government officials can update complaint status")
	}
	if !req.Status.Valid() {
		return nil, appErrors.WithField("status", "Status must be one of pending, verified, in_progress, resolved")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "Validation failed")
	}

	complaint, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	previous := complaint.Status
	update := models.StatusUpdate{
		Status:          req.Status,
		AssignedTo:      complaint.AssignedTo,
		AssignedAt:      complaint.AssignedAt,
		ResolvedAt:      complaint.ResolvedAt,
		ResolutionNotes: complaint.ResolutionNotes,
		UpdatedAt:       now,
	}
	switch req.Status {
	case models.StatusInProgress:
		officialID := official.ID
		update.AssignedTo = &officialID
		update.AssignedAt = &now
	case models.StatusResolved:
		update.ResolvedAt = &now
		update.ResolutionNotes = trimmedOrNil(req.ResolutionNotes)
	}

	history := &models.ComplaintStatusHistory{
		ComplaintID: complaint.ID,
		OldStatus:   previous,
		NewStatus:   req.Status,
		ChangedBy:   official.ID,
		Notes:       trimmedOrNil(req.ResolutionNotes),
		CreatedAt:   now,
	}
	if err := s.repo.UpdateStatus(ctx, complaint.ID, update, history); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Complaint not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update complaint status")
	}

	complaint.Status = update.Status
	complaint.AssignedTo = update.AssignedTo
	complaint.AssignedAt = update.AssignedAt
	complaint.ResolvedAt = update.ResolvedAt
	complaint.ResolutionNotes = update.ResolutionNotes
	complaint.UpdatedAt = now

	s.audit.Record(ctx, actor, models.AuditActionComplaintStatus, models.AuditResourceComplaint, complaint.ID, map[string]interface{}{
		"from": previous,
		"to":   req.Status,
	})
	s.metrics.RecordComplaintEvent("status_changed", string(req.Status))
	s.invalidateCaches(ctx)

	return presentComplaint(actor, complaint), nil
}

// Assign sets or clears the assignee. Status is left untouched.
func (s *ComplaintService) Assign(ctx context.Context, actor models.Actor, id string, req dto.AssignRequest) (*models.Complaint, error) {
	if _, ok := actor.AsOfficial(); !ok {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "Only government officials can assign complaints")
	}

	complaint, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	assignee := trimmedOrNil(req.AssignedTo)
	var assignedAt *time.Time
	if assignee != nil {
		user, err := s.users.FindByID(ctx, *assignee)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignee")
		}
		if user == nil || !user.IsGovernment() || !user.Active {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Assignee not found")
		}
		now := s.now()
		assignedAt = &now
	}

	if err := s.repo.Assign(ctx, complaint.ID, assignee, assignedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Complaint not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign complaint")
	}
	complaint.AssignedTo = assignee
	complaint.AssignedAt = assignedAt
	complaint.UpdatedAt = s.now()

	s.audit.Record(ctx, actor, models.AuditActionComplaintAssign, models.AuditResourceComplaint, complaint.ID, map[string]interface{}{
		"assignedTo": assignee,
	})
	s.metrics.RecordComplaintEvent("assigned", string(complaint.Status))
	s.invalidateCaches(ctx)

	return presentComplaint(actor, complaint), nil
}

// Remove deletes a complaint owned by the citizen. The stored image is deleted on a
// best-effort basis: a failure is logged and the deletion still succeeds.
func (s *ComplaintService) Remove(ctx context.Context, actor models.Actor, id string) error {
	citizen, ok := actor.AsCitizen()
	if !ok {
		return appErrors.Clone(appErrors.ErrForbidden, "Only the citizen who filed a complaint can delete it")
	}

	complaint, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if complaint.AuthorID != citizen.ID {
		return appErrors.Clone(appErrors.ErrForbidden, "You can only delete your own complaints")
	}

	if err := s.repo.Delete(ctx, complaint.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Complaint not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete complaint")
	}

	s.discardImage(ctx, complaint)
	s.audit.Record(ctx, actor, models.AuditActionComplaintDelete, models.AuditResourceComplaint, complaint.ID, nil)
	s.metrics.RecordComplaintEvent("deleted", string(complaint.Status))
	s.invalidateCaches(ctx)

	return nil
}

// History returns the status transitions of a complaint visible to the actor.
func (s *ComplaintService) History(ctx context.Context, actor models.Actor, id string) ([]models.ComplaintStatusHistory, error) {
	complaint, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := canView(actor, complaint); err != nil {
		return nil, err
	}
	history, err := s.repo.History(ctx, complaint.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load status history")
	}
	return history, nil
}

func (s *ComplaintService) list(ctx context.Context, actor models.Actor, filter models.ComplaintFilter) (*dto.ComplaintListResponse, error) {
	filter.Page, filter.Limit = NormalizePage(filter.Page, filter.Limit)
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, appErrors.WithField("endDate", "endDate must not be before startDate")
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list complaints")
	}
	for i := range items {
		presentComplaint(actor, &items[i])
	}
	return &dto.ComplaintListResponse{
		Complaints: items,
		Pagination: response.NewPagination(filter.Page, filter.Limit, total),
	}, nil
}

func (s *ComplaintService) load(ctx context.Context, id string) (*models.Complaint, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Complaint not found")
	}
	complaint, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Complaint not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load complaint")
	}
	return complaint, nil
}

func (s *ComplaintService) attachImage(ctx context.Context, complaint *models.Complaint, image *dto.ImageUpload) error {
	if len(image.Data) == 0 {
		return appErrors.WithField("image", "Image file is empty")
	}
	if int64(len(image.Data)) > s.cfg.MaxImageBytes {
		return appErrors.WithField("image", "Image must be 5MB or smaller")
	}
	if !storage.IsImage(image.ContentType) {
		return appErrors.WithField("image", "Only image files are allowed")
	}

	if s.images == nil {
		uri := storage.DataURI(image.ContentType, image.Data)
		complaint.ImageURL = &uri
		return nil
	}

	stored, err := s.images.Upload(ctx, image.Filename, image.ContentType, image.Data)
	if err != nil {
		s.logger.Warn("image upload failed", zap.String("author_id", complaint.AuthorID), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrImageUpload.Code, appErrors.ErrImageUpload.Status, appErrors.ErrImageUpload.Message)
	}
	complaint.ImageURL = &stored.URL
	complaint.ImagePublicID = &stored.PublicID
	return nil
}

func (s *ComplaintService) discardImage(ctx context.Context, complaint *models.Complaint) {
	if s.images == nil || complaint.ImagePublicID == nil || *complaint.ImagePublicID == "" {
		return
	}
	if err := s.images.Delete(ctx, *complaint.ImagePublicID); err != nil {
		s.logger.Warn("failed to delete complaint image",
			zap.String("complaint_id", complaint.ID),
			zap.String("public_id", *complaint.ImagePublicID),
			zap.Error(err),
		)
	}
}

func (s *ComplaintService) invalidateCaches(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Invalidate(ctx, dashboardCachePattern)
	_ = s.cache.Invalidate(ctx, analyticsCachePattern)
}

func canView(actor models.Actor, complaint *models.Complaint) error {
	if _, ok := actor.AsOfficial(); ok {
		return nil
	}
	if citizen, ok := actor.AsCitizen(); ok && complaint.AuthorID == citizen.ID {
		return nil
	}
	return appErrors.Clone(appErrors.ErrForbidden, "")
}

// presentComplaint hides the author of anonymous complaints from everyone but the author.
func presentComplaint(actor models.Actor, complaint *models.Complaint) *models.Complaint {
	if complaint.IsAnonymous && complaint.AuthorID != actor.ID {
		complaint.HideAuthor()
	}
	return complaint
}

func violationError(err error) error {
	var violation *models.FieldViolation
	if errors.As(err, &violation) {
		return appErrors.WithField(violation.Field, violation.Message)
	}
	return appErrors.Validation(err, "Validation failed")
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// NormalizePage clamps page to >= 1 and limit to 1..100 (default 10).
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
