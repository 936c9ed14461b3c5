package storage

import "context"

// Store is the persistence capability set consulted by the admission
// pipeline and the admin surface. Both the gorm-backed implementation
// and the degraded fallback satisfy it.
type Store interface {
	SaveTransaction(ctx context.Context, rec *TransactionRecord) error
	ListTransactions(ctx context.Context, limit, offset int) ([]TransactionRecord, error)
	TransactionStats(ctx context.Context) (TransactionStats, error)

	UpsertDailyMetrics(ctx context.Context, date string, delta MetricsDelta) error
	ListDailyMetrics(ctx context.Context, lastNDays int) ([]DailyMetrics, error)

	CreateApiClient(ctx context.Context, params CreateApiClientParams) (*ApiClient, error)
	FindApiClientByKey(ctx context.Context, apiKey string) (*ApiClient, error)
	FindApiClientByID(ctx context.Context, clientID string) (*ApiClient, error)
	ListApiClients(ctx context.Context, limit, offset int) ([]ApiClient, error)
	DeactivateApiClient(ctx context.Context, clientID string) error
	RegenerateApiKey(ctx context.Context, clientID, newAPIKey string) error
	RecordClientUsage(ctx context.Context, clientID, endpoint, method string, status int, responseTimeMs int64)

	AuthenticateAdmin(ctx context.Context, username, password string) (*AdminUser, error)
	SaveAdminActivity(ctx context.Context, activity *AdminActivity) error
	ListAdminActivities(ctx context.Context, limit int) ([]AdminActivity, error)

	ReadSetting(ctx context.Context, name string) (string, bool)
	WriteSettings(ctx context.Context, values map[string]string, actor string) SettingUpdateResult

	Close() error
}
