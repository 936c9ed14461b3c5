// Package storage is the faucet's persistence layer: transaction
// history, daily aggregate metrics, API client records, admin accounts,
// audit activity, and a small settings table. A single Store interface
// is satisfied by a gorm-backed relational implementation and by a
// degraded no-op implementation used when no database is configured.
package storage

import "time"

// TransactionStatus is the terminal state of a dispatch attempt.
type TransactionStatus string

const (
	StatusSuccess TransactionStatus = "success"
	StatusFailed  TransactionStatus = "failed"
)

// TransactionRecord is written once on dispatch completion and never
// mutated afterward.
type TransactionRecord struct {
	ID           uint   `gorm:"primaryKey"`
	RequestID    string `gorm:"size:64;index"`
	WalletAddress string `gorm:"size:80;index"`
	Amount        string `gorm:"size:32"` // base-units, string to preserve precision
	TxHash        *string `gorm:"size:128"`
	Status        TransactionStatus `gorm:"size:16;index"`
	ErrorMessage  *string `gorm:"size:512"`
	ClientIP      string  `gorm:"size:64"`
	UserAgent     string  `gorm:"size:256"`
	CreatedAt     time.Time `gorm:"index"`
}

// TransactionStats aggregates TransactionRecord rows.
type TransactionStats struct {
	Total       int64
	Successful  int64
	Failed      int64
	TotalAmount int64
}

// DailyMetrics is keyed by UTC calendar date (stored as YYYY-MM-DD).
type DailyMetrics struct {
	Date                   string `gorm:"primaryKey;size:10"`
	TotalRequests          int64
	SuccessfulRequests     int64
	FailedRequests         int64
	TotalAmountDistributed int64
	RateLimitErrors        int64
	NetworkErrors          int64
	UpdatedAt              time.Time
}

// MetricsDelta holds the per-field increments that one call to
// UpsertDailyMetrics adds to the day's row; any number of fields may be
// non-zero.
type MetricsDelta struct {
	Requests           int64
	Successful         int64
	Failed             int64
	AmountDistributed  int64
	RateLimitErrors    int64
	NetworkErrors      int64
}

// ApiClient is a registered consumer of the faucet's public API.
// ClientSecret is persisted but never serialized back to a caller after
// creation — that redaction is the HTTP surface's responsibility, not
// this layer's.
type ApiClient struct {
	ClientID          string `gorm:"primaryKey;size:64"`
	APIKey            string `gorm:"size:64;uniqueIndex"`
	ClientSecret      string `gorm:"size:80"`
	Name              string `gorm:"size:128"`
	Description        string `gorm:"size:512"`
	HomepageURL        string `gorm:"size:256"`
	CallbackURL        string `gorm:"size:256"`
	IsActive           bool   `gorm:"index"`
	RateLimitOverride  *int
	UsageCount         int64
	LastUsedAt         *time.Time
	CreatedAt          time.Time
}

// AdminRole enumerates the two AdminUser privilege levels.
type AdminRole string

const (
	RoleAdmin      AdminRole = "admin"
	RoleSuperAdmin AdminRole = "superAdmin"
)

// AdminUser is an operator account for the protected admin surface.
type AdminUser struct {
	Username     string `gorm:"primaryKey;size:64"`
	PasswordHash string `gorm:"size:128"`
	Role         AdminRole `gorm:"size:16"`
	IsActive     bool
	LastLogin    *time.Time
	CreatedAt    time.Time
}

// AdminActivity is an append-only audit row.
type AdminActivity struct {
	ID            uint   `gorm:"primaryKey"`
	AdminUsername string `gorm:"size:64;index"`
	Action        string `gorm:"size:64"`
	Details       string `gorm:"size:1024"`
	ClientIP      string `gorm:"size:64"`
	CreatedAt     time.Time `gorm:"index"`
}

// Setting is a single named, admin-writable configuration override
// (e.g. faucet_mode, rate_limit_enabled, emergency_mode).
type Setting struct {
	Name      string `gorm:"primaryKey;size:64"`
	Value     string `gorm:"size:512"`
	UpdatedBy string `gorm:"size:64"`
	UpdatedAt time.Time
}

// CreateApiClientParams carries a fully-formed, not-yet-persisted
// client record; token minting (clientId/apiKey/clientSecret format and
// randomness) is the registry layer's job, not this layer's.
type CreateApiClientParams struct {
	ClientID     string
	APIKey       string
	ClientSecret string
	Name         string
	Description  string
	HomepageURL  string
	CallbackURL  string
}

// SettingUpdateResult reports per-name outcome of a bulk settings write.
type SettingUpdateResult struct {
	Updated []string
	Errors  map[string]string
}
