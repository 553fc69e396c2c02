package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/civic-complaint-api/internal/models"
	"github.com/noah-isme/civic-complaint-api/pkg/database"
)

const complaintSelect = `SELECT c.id, c.title, c.description, c.category, c.status, c.priority, ` +
	`c.latitude AS "location.latitude", c.longitude AS "location.longitude", c.address AS "location.address", ` +
	`c.image_url, c.image_public_id, c.author_id, c.assigned_to, c.assigned_at, c.resolved_at, c.resolution_notes, ` +
	`c.reward_points, c.is_anonymous, c.tags, c.created_at, c.updated_at, ` +
	`a.id AS "author.id", a.name AS "author.name", a.email AS "author.email", a.mobile AS "author.mobile" ` +
	`FROM complaints c JOIN users a ON a.id = c.author_id`

// ComplaintRepository provides database access for complaints and their status history.
type ComplaintRepository struct {
	db *sqlx.DB
}

// NewComplaintRepository creates a new instance of ComplaintRepository.
func NewComplaintRepository(db *sqlx.DB) *ComplaintRepository {
	return &ComplaintRepository{db: db}
}

// Create inserts a complaint. The record is validated again so that no caller can persist
// a complaint with a malformed location.
func (r *ComplaintRepository) Create(ctx context.Context, complaint *models.Complaint) error {
	if err := complaint.Validate(); err != nil {
		return err
	}
	if complaint.ID == "" {
		complaint.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if complaint.CreatedAt.IsZero() {
		complaint.CreatedAt = now
	}
	complaint.UpdatedAt = now
	if complaint.Tags == nil {
		complaint.Tags = []string{}
	}

	const query = `INSERT INTO complaints (id, title, description, category, status, priority, latitude, longitude, address, image_url, image_public_id, author_id, reward_points, is_anonymous, tags, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.db.ExecContext(ctx, query,
		complaint.ID,
		complaint.Title,
		complaint.Description,
		complaint.Category,
		complaint.Status,
		complaint.Priority,
		complaint.Location.Latitude,
		complaint.Location.Longitude,
		complaint.Location.Address,
		complaint.ImageURL,
		complaint.ImagePublicID,
		complaint.AuthorID,
		complaint.RewardPoints,
		complaint.IsAnonymous,
		complaint.Tags,
		complaint.CreatedAt,
		complaint.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create complaint: %w", err)
	}
	return nil
}

// FindByID returns a complaint joined with its author.
func (r *ComplaintRepository) FindByID(ctx context.Context, id string) (*models.Complaint, error) {
	query := complaintSelect + ` WHERE c.id = $1 LIMIT 1`
	var complaint models.Complaint
	if err := r.db.GetContext(ctx, &complaint, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find complaint by id: %w", err)
	}
	return &complaint, nil
}

// List returns complaints matching the filter, newest first, with the total count.
func (r *ComplaintRepository) List(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, int, error) {
	where, args := buildComplaintConditions(filter)

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	offset := (page - 1) * limit

	listQuery := fmt.Sprintf("%s%s ORDER BY c.created_at DESC LIMIT %d OFFSET %d", complaintSelect, where, limit, offset)
	complaints := make([]models.Complaint, 0)
	if err := r.db.SelectContext(ctx, &complaints, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list complaints: %w", err)
	}

	countQuery := "SELECT COUNT(*) FROM complaints c" + where
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count complaints: %w", err)
	}

	return complaints, total, nil
}

// UpdateStatus writes a status transition and its history entry in one transaction.
func (r *ComplaintRepository) UpdateStatus(ctx context.Context, id string, update models.StatusUpdate, history *models.ComplaintStatusHistory) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const updateQuery = `UPDATE complaints SET status = $2, assigned_to = $3, assigned_at = $4, resolved_at = $5, resolution_notes = $6, updated_at = $7 WHERE id = $1`
		res, err := tx.ExecContext(ctx, updateQuery, id, update.Status, update.AssignedTo, update.AssignedAt, update.ResolvedAt, update.ResolutionNotes, update.UpdatedAt)
		if err != nil {
			return fmt.Errorf("update complaint status: %w", err)
		}
		if affected, err := res.RowsAffected(); err == nil && affected == 0 {
			return sql.ErrNoRows
		}
		if history == nil {
			return nil
		}
		if history.ID == "" {
			history.ID = uuid.NewString()
		}
		if history.CreatedAt.IsZero() {
			history.CreatedAt = update.UpdatedAt
		}
		const historyQuery = `INSERT INTO complaint_status_history (id, complaint_id, old_status, new_status, changed_by, notes, created_at) VALUES (:id, :complaint_id, :old_status, :new_status, :changed_by, :notes, :created_at)`
		if _, err := tx.NamedExecContext(ctx, historyQuery, history); err != nil {
			return fmt.Errorf("insert status history: %w", err)
		}
		return nil
	})
}

// Assign sets or clears the assignee without touching status.
func (r *ComplaintRepository) Assign(ctx context.Context, id string, assignee *string, assignedAt *time.Time) error {
	const query = `UPDATE complaints SET assigned_to = $2, assigned_at = $3, updated_at = $4 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, assignee, assignedAt, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("assign complaint: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a complaint; its history rows cascade.
func (r *ComplaintRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM complaints WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete complaint: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// History returns the status transitions of a complaint in chronological order.
func (r *ComplaintRepository) History(ctx context.Context, complaintID string) ([]models.ComplaintStatusHistory, error) {
	const query = `SELECT h.id, h.complaint_id, h.old_status, h.new_status, h.changed_by, u.name AS changed_by_name, h.notes, h.created_at FROM complaint_status_history h LEFT JOIN users u ON u.id = h.changed_by WHERE h.complaint_id = $1 ORDER BY h.created_at ASC`
	history := make([]models.ComplaintStatusHistory, 0)
	if err := r.db.SelectContext(ctx, &history, query, complaintID); err != nil {
		return nil, fmt.Errorf("list status history: %w", err)
	}
	return history, nil
}

func buildComplaintConditions(filter models.ComplaintFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter.AuthorID != "" {
		conditions = append(conditions, fmt.Sprintf("c.author_id = $%d", len(args)+1))
		args = append(args, filter.AuthorID)
	}
	if filter.AssignedTo != "" {
		conditions = append(conditions, fmt.Sprintf("c.assigned_to = $%d", len(args)+1))
		args = append(args, filter.AssignedTo)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("c.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Category != nil {
		conditions = append(conditions, fmt.Sprintf("c.category = $%d", len(args)+1))
		args = append(args, *filter.Category)
	}
	if filter.Priority != nil {
		conditions = append(conditions, fmt.Sprintf("c.priority = $%d", len(args)+1))
		args = append(args, *filter.Priority)
	}
	if filter.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("c.created_at >= $%d", len(args)+1))
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("c.created_at <= $%d", len(args)+1))
		args = append(args, *filter.EndDate)
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
