package storage

import (
	"context"

	"github.com/sirupsen/logrus"
)

// DegradedStore is used when no DB_URL is configured or the configured
// backend failed to connect at startup. Writes are accepted as no-ops,
// reads return empty results, and the faucet keeps serving requests —
// only the admin listings go quiet.
type DegradedStore struct {
	log *logrus.Entry
}

// NewDegradedStore logs the one startup warning and returns a Store
// that never retains anything. Writes and listings never error; lookups
// of a single client and admin authentication report errNotFound.
func NewDegradedStore(log *logrus.Entry, reason error) *DegradedStore {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	entry := log.WithField("event", "storage.degraded")
	if reason != nil {
		entry = entry.WithError(reason)
	}
	entry.Warn("persistence store unavailable, running in degraded mode")
	return &DegradedStore{log: log}
}

func (d *DegradedStore) SaveTransaction(context.Context, *TransactionRecord) error { return nil }

func (d *DegradedStore) ListTransactions(context.Context, int, int) ([]TransactionRecord, error) {
	return nil, nil
}

func (d *DegradedStore) TransactionStats(context.Context) (TransactionStats, error) {
	return TransactionStats{}, nil
}

func (d *DegradedStore) UpsertDailyMetrics(context.Context, string, MetricsDelta) error { return nil }

func (d *DegradedStore) ListDailyMetrics(context.Context, int) ([]DailyMetrics, error) {
	return nil, nil
}

func (d *DegradedStore) CreateApiClient(_ context.Context, params CreateApiClientParams) (*ApiClient, error) {
	return &ApiClient{
		ClientID:     params.ClientID,
		APIKey:       params.APIKey,
		ClientSecret: params.ClientSecret,
		Name:         params.Name,
		IsActive:     true,
	}, nil
}

func (d *DegradedStore) FindApiClientByKey(context.Context, string) (*ApiClient, error) {
	return nil, errNotFound
}

func (d *DegradedStore) FindApiClientByID(context.Context, string) (*ApiClient, error) {
	return nil, errNotFound
}

func (d *DegradedStore) ListApiClients(context.Context, int, int) ([]ApiClient, error) {
	return nil, nil
}

func (d *DegradedStore) DeactivateApiClient(context.Context, string) error { return nil }

func (d *DegradedStore) RegenerateApiKey(context.Context, string, string) error { return nil }

func (d *DegradedStore) RecordClientUsage(context.Context, string, string, string, int, int64) {}

func (d *DegradedStore) AuthenticateAdmin(context.Context, string, string) (*AdminUser, error) {
	return nil, errNotFound
}

func (d *DegradedStore) SaveAdminActivity(context.Context, *AdminActivity) error { return nil }

func (d *DegradedStore) ListAdminActivities(context.Context, int) ([]AdminActivity, error) {
	return nil, nil
}

func (d *DegradedStore) ReadSetting(context.Context, string) (string, bool) { return "", false }

// WriteSettings accepts every recognized name as a no-op success,
// matching the degraded-mode rule that writes never fail the caller;
// unrecognized names still report per-name so bulk-update callers see
// the same partial-success shape the SQL backend returns.
func (d *DegradedStore) WriteSettings(_ context.Context, values map[string]string, _ string) SettingUpdateResult {
	result := SettingUpdateResult{Errors: make(map[string]string)}
	for name := range values {
		if _, ok := validSettingNames[name]; !ok {
			result.Errors[name] = "Setting not found"
			continue
		}
		result.Updated = append(result.Updated, name)
	}
	return result
}

func (d *DegradedStore) Close() error { return nil }
