package models

import "time"

// StatusCount is a complaint count for one status.
type StatusCount struct {
	Status ComplaintStatus `db:"status" json:"status"`
	Count  int             `db:"count" json:"count"`
}

// CategoryCount is a complaint count for one category.
type CategoryCount struct {
	Category ComplaintCategory `db:"category" json:"category"`
	Count    int               `db:"count" json:"count"`
}

// DailyCount is the number of complaints created on one calendar day.
type DailyCount struct {
	Day   time.Time `db:"day" json:"-"`
	Date  string    `db:"-" json:"date"`
	Count int       `db:"count" json:"count"`
}

// AreaCount groups complaints by address.
type AreaCount struct {
	Address   string  `db:"address" json:"address"`
	Count     int     `db:"count" json:"count"`
	Latitude  float64 `db:"latitude" json:"latitude"`
	Longitude float64 `db:"longitude" json:"longitude"`
}

// ComplaintStats summarises complaints for one scope (a citizen or everyone).
type ComplaintStats struct {
	Total        int `db:"total" json:"total"`
	Pending      int `db:"pending" json:"pending"`
	Verified     int `db:"verified" json:"verified"`
	InProgress   int `db:"in_progress" json:"inProgress"`
	Resolved     int `db:"resolved" json:"resolved"`
	RewardPoints int `db:"reward_points" json:"rewardPoints"`
}

// ExportFilter narrows the exported complaint set.
type ExportFilter struct {
	Status    *ComplaintStatus
	Category  *ComplaintCategory
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
}

// AnalyticsSystemMetrics represents system level analytics captured from instrumentation.
type AnalyticsSystemMetrics struct {
	CacheHitRatio            float64   `json:"cacheHitRatio"`
	CacheHits                uint64    `json:"cacheHits"`
	CacheMisses              uint64    `json:"cacheMisses"`
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	DBQueryCount             uint64    `json:"dbQueryCount"`
	AverageDBQueryDurationMs float64   `json:"averageDbQueryDurationMs"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}
