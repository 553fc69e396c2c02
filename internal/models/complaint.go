package models

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/lib/pq"
)

// ComplaintStatus is the lifecycle position of a complaint.
type ComplaintStatus string

const (
	StatusPending    ComplaintStatus = "pending"
	StatusVerified   ComplaintStatus = "verified"
	StatusInProgress ComplaintStatus = "in_progress"
	StatusResolved   ComplaintStatus = "resolved"
)

// AllStatuses lists every status in workflow order.
var AllStatuses = []ComplaintStatus{StatusPending, StatusVerified, StatusInProgress, StatusResolved}

// Valid reports whether s is one of the four workflow states.
func (s ComplaintStatus) Valid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ComplaintCategory names the municipal department responsible for a complaint.
type ComplaintCategory string

const (
	CategoryEngineering ComplaintCategory = "engineering"
	CategoryHealth      ComplaintCategory = "health"
	CategoryEducation   ComplaintCategory = "education"
	CategoryWaterSupply ComplaintCategory = "water_supply"
	CategorySanitation  ComplaintCategory = "sanitation"
	CategoryElectricity ComplaintCategory = "electricity"
	CategoryTransport   ComplaintCategory = "transport"
	CategoryRevenue     ComplaintCategory = "revenue"
	CategoryParks       ComplaintCategory = "parks"
)

// AllCategories lists the fixed set of departments.
var AllCategories = []ComplaintCategory{
	CategoryEngineering,
	CategoryHealth,
	CategoryEducation,
	CategoryWaterSupply,
	CategorySanitation,
	CategoryElectricity,
	CategoryTransport,
	CategoryRevenue,
	CategoryParks,
}

// Valid reports whether c is a known department.
func (c ComplaintCategory) Valid() bool {
	for _, v := range AllCategories {
		if c == v {
			return true
		}
	}
	return false
}

// ComplaintPriority ranks urgency.
type ComplaintPriority string

const (
	PriorityLow      ComplaintPriority = "low"
	PriorityMedium   ComplaintPriority = "medium"
	PriorityHigh     ComplaintPriority = "high"
	PriorityCritical ComplaintPriority = "critical"
)

// AllPriorities lists priorities from lowest to highest.
var AllPriorities = []ComplaintPriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// Valid reports whether p is a known priority.
func (p ComplaintPriority) Valid() bool {
	for _, v := range AllPriorities {
		if p == v {
			return true
		}
	}
	return false
}

// Field length limits for complaint text.
const (
	TitleMinLen       = 5
	TitleMaxLen       = 200
	DescriptionMinLen = 10
	DescriptionMaxLen = 1000
	MaxRewardPoints   = 1000
)

// FieldViolation is a model-level rule violation bound to one input field.
type FieldViolation struct {
	Field   string
	Message string
}

func (v *FieldViolation) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// Location is a validated geotag. Build it with NewLocation; the zero value is not a valid location.
type Location struct {
	Latitude  float64 `db:"latitude" json:"latitude"`
	Longitude float64 `db:"longitude" json:"longitude"`
	Address   string  `db:"address" json:"address"`
}

// NewLocation checks coordinate ranges and requires a non-empty address.
func NewLocation(latitude, longitude float64, address string) (Location, error) {
	loc := Location{Latitude: latitude, Longitude: longitude, Address: strings.TrimSpace(address)}
	if err := loc.Validate(); err != nil {
		return Location{}, err
	}
	return loc, nil
}

// Validate reports a missing address or out-of-range coordinates.
func (l Location) Validate() error {
	if math.IsNaN(l.Latitude) || l.Latitude < -90 || l.Latitude > 90 {
		return &FieldViolation{Field: "location.latitude", Message: "Latitude must be between -90 and 90"}
	}
	if math.IsNaN(l.Longitude) || l.Longitude < -180 || l.Longitude > 180 {
		return &FieldViolation{Field: "location.longitude", Message: "Longitude must be between -180 and 180"}
	}
	if strings.TrimSpace(l.Address) == "" {
		return &FieldViolation{Field: "location.address", Message: "Address is required"}
	}
	return nil
}

// LocationInput is the wire form of a location. Pointer fields let a missing key be told apart from zero.
type LocationInput struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Address   *string  `json:"address"`
}

// ToLocation enforces presence of all three fields before building a Location.
func (in *LocationInput) ToLocation() (Location, error) {
	if in == nil {
		return Location{}, &FieldViolation{Field: "location", Message: "Location is required"}
	}
	if in.Latitude == nil {
		return Location{}, &FieldViolation{Field: "location.latitude", Message: "Latitude is required"}
	}
	if in.Longitude == nil {
		return Location{}, &FieldViolation{Field: "location.longitude", Message: "Longitude is required"}
	}
	if in.Address == nil {
		return Location{}, &FieldViolation{Field: "location.address", Message: "Address is required"}
	}
	return NewLocation(*in.Latitude, *in.Longitude, *in.Address)
}

// ComplaintPerson is the public profile of a complaint's author.
type ComplaintPerson struct {
	ID     string `db:"id" json:"id"`
	Name   string `db:"name" json:"name"`
	Email  string `db:"email" json:"email"`
	Mobile string `db:"mobile" json:"mobile"`
}

// Complaint represents a citizen-submitted issue stored in the complaints table.
type Complaint struct {
	ID              string            `db:"id" json:"id"`
	Title           string            `db:"title" json:"title"`
	Description     string            `db:"description" json:"description"`
	Category        ComplaintCategory `db:"category" json:"category"`
	Status          ComplaintStatus   `db:"status" json:"status"`
	Priority        ComplaintPriority `db:"priority" json:"priority"`
	Location        Location          `db:"location" json:"location"`
	ImageURL        *string           `db:"image_url" json:"imageUrl,omitempty"`
	ImagePublicID   *string           `db:"image_public_id" json:"imagePublicId,omitempty"`
	AuthorID        string            `db:"author_id" json:"authorId,omitempty"`
	AssignedTo      *string           `db:"assigned_to" json:"assignedTo"`
	AssignedAt      *time.Time        `db:"assigned_at" json:"assignedAt"`
	ResolvedAt      *time.Time        `db:"resolved_at" json:"resolvedAt"`
	ResolutionNotes *string           `db:"resolution_notes" json:"resolutionNotes,omitempty"`
	RewardPoints    int               `db:"reward_points" json:"rewardPoints"`
	IsAnonymous     bool              `db:"is_anonymous" json:"isAnonymous"`
	Tags            pq.StringArray    `db:"tags" json:"tags"`
	CreatedAt       time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time         `db:"updated_at" json:"updatedAt"`

	Author *ComplaintPerson `db:"author" json:"author,omitempty"`
}

// Validate checks a complaint record before it is written.
func (c *Complaint) Validate() error {
	if n := len([]rune(strings.TrimSpace(c.Title))); n < TitleMinLen || n > TitleMaxLen {
		return &FieldViolation{Field: "title", Message: fmt.Sprintf("Title must be between %d and %d characters", TitleMinLen, TitleMaxLen)}
	}
	if n := len([]rune(strings.TrimSpace(c.Description))); n < DescriptionMinLen || n > DescriptionMaxLen {
		return &FieldViolation{Field: "description", Message: fmt.Sprintf("Description must be between %d and %d characters", DescriptionMinLen, DescriptionMaxLen)}
	}
	if !c.Category.Valid() {
		return &FieldViolation{Field: "category", Message: "Invalid category"}
	}
	if !c.Status.Valid() {
		return &FieldViolation{Field: "status", Message: "Invalid status"}
	}
	if !c.Priority.Valid() {
		return &FieldViolation{Field: "priority", Message: "Invalid priority"}
	}
	if c.RewardPoints < 0 || c.RewardPoints > MaxRewardPoints {
		return &FieldViolation{Field: "rewardPoints", Message: fmt.Sprintf("Reward points must be between 0 and %d", MaxRewardPoints)}
	}
	return c.Location.Validate()
}

// HideAuthor strips author identity, used for anonymous complaints shown to officials.
func (c *Complaint) HideAuthor() {
	c.Author = nil
	c.AuthorID = ""
}

// ComplaintFilter captures filtering criteria for listing complaints.
type ComplaintFilter struct {
	AuthorID   string
	AssignedTo string
	Status     *ComplaintStatus
	Category   *ComplaintCategory
	Priority   *ComplaintPriority
	StartDate  *time.Time
	EndDate    *time.Time
	Page       int
	Limit      int
}

// ComplaintStatusHistory records one status transition.
type ComplaintStatusHistory struct {
	ID            string          `db:"id" json:"id"`
	ComplaintID   string          `db:"complaint_id" json:"complaintId"`
	OldStatus     ComplaintStatus `db:"old_status" json:"oldStatus"`
	NewStatus     ComplaintStatus `db:"new_status" json:"newStatus"`
	ChangedBy     string          `db:"changed_by" json:"changedBy"`
	ChangedByName *string         `db:"changed_by_name" json:"changedByName,omitempty"`
	Notes         *string         `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
}

// StatusUpdate is the set of column changes produced by a status transition.
type StatusUpdate struct {
	Status          ComplaintStatus
	AssignedTo      *string
	AssignedAt      *time.Time
	ResolvedAt      *time.Time
	ResolutionNotes *string
	UpdatedAt       time.Time
}
