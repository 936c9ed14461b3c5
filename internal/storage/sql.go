package storage

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLStore is the relational backend: gorm over either mysql or sqlite,
// selected by the DB_URL scheme at construction.
type SQLStore struct {
	db  *gorm.DB
	log *logrus.Entry
}

// NewSQLStore opens rawURL (mysql://... or sqlite://path, also accepting
// a bare filesystem path as sqlite), migrates all tables, and bootstraps
// a superAdmin account if none exists.
func NewSQLStore(rawURL, adminUsername, adminPassword string, log *logrus.Entry) (*SQLStore, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	dialector, err := dialectorFor(rawURL)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(
		&TransactionRecord{},
		&DailyMetrics{},
		&ApiClient{},
		&AdminUser{},
		&AdminActivity{},
		&Setting{},
	); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	s := &SQLStore{db: db, log: log}
	if err := s.bootstrapSuperAdmin(adminUsername, adminPassword); err != nil {
		return nil, fmt.Errorf("bootstrap admin: %w", err)
	}
	if err := s.bootstrapSettings(); err != nil {
		return nil, fmt.Errorf("bootstrap settings: %w", err)
	}
	return s, nil
}

// bootstrapSettings seeds every recognized rate-limit setting with its
// documented default, skipping any name an operator already wrote.
func (s *SQLStore) bootstrapSettings() error {
	for name, value := range defaultSettings {
		row := Setting{Name: name, Value: value, UpdatedBy: "bootstrap", UpdatedAt: time.Now().UTC()}
		if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

func dialectorFor(rawURL string) (gorm.Dialector, error) {
	switch {
	case strings.HasPrefix(rawURL, "mysql://"):
		return mysql.Open(strings.TrimPrefix(rawURL, "mysql://")), nil
	case strings.HasPrefix(rawURL, "sqlite://"):
		return sqlite.Open(strings.TrimPrefix(rawURL, "sqlite://")), nil
	case rawURL == "":
		return nil, fmt.Errorf("empty DB_URL")
	default:
		// A bare filesystem path (e.g. "./data/faucet.db") is treated as
		// the embedded-file backend.
		return sqlite.Open(rawURL), nil
	}
}

func (s *SQLStore) bootstrapSuperAdmin(username, password string) error {
	if username == "" || password == "" {
		return nil
	}
	var count int64
	if err := s.db.Model(&AdminUser{}).
		Where("role = ? AND is_active = ?", RoleSuperAdmin, true).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := &AdminUser{
		Username:     username,
		PasswordHash: string(hash),
		Role:         RoleSuperAdmin,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(admin).Error
}

func (s *SQLStore) SaveTransaction(ctx context.Context, rec *TransactionRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	return s.db.WithContext(ctx).Create(rec).Error
}

func (s *SQLStore) ListTransactions(ctx context.Context, limit, offset int) ([]TransactionRecord, error) {
	var rows []TransactionRecord
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&rows).Error
	return rows, err
}

func (s *SQLStore) TransactionStats(ctx context.Context) (TransactionStats, error) {
	var stats TransactionStats
	db := s.db.WithContext(ctx).Model(&TransactionRecord{})

	if err := db.Count(&stats.Total).Error; err != nil {
		return stats, err
	}
	if err := s.db.WithContext(ctx).Model(&TransactionRecord{}).
		Where("status = ?", StatusSuccess).Count(&stats.Successful).Error; err != nil {
		return stats, err
	}
	if err := s.db.WithContext(ctx).Model(&TransactionRecord{}).
		Where("status = ?", StatusFailed).Count(&stats.Failed).Error; err != nil {
		return stats, err
	}

	var totalAmountStr []string
	if err := s.db.WithContext(ctx).Model(&TransactionRecord{}).
		Where("status = ?", StatusSuccess).
		Pluck("amount", &totalAmountStr).Error; err != nil {
		return stats, err
	}
	for _, v := range totalAmountStr {
		n, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			stats.TotalAmount += n
		}
	}
	return stats, nil
}

// UpsertDailyMetrics performs an atomic read-modify-write on the day's
// row via gorm's upsert clause, so concurrent requests on the same date
// never lose an increment.
func (s *SQLStore) UpsertDailyMetrics(ctx context.Context, date string, delta MetricsDelta) error {
	row := DailyMetrics{
		Date:                   date,
		TotalRequests:          delta.Requests,
		SuccessfulRequests:     delta.Successful,
		FailedRequests:         delta.Failed,
		TotalAmountDistributed: delta.AmountDistributed,
		RateLimitErrors:        delta.RateLimitErrors,
		NetworkErrors:          delta.NetworkErrors,
		UpdatedAt:              time.Now().UTC(),
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_requests":           gorm.Expr("total_requests + ?", delta.Requests),
			"successful_requests":      gorm.Expr("successful_requests + ?", delta.Successful),
			"failed_requests":          gorm.Expr("failed_requests + ?", delta.Failed),
			"total_amount_distributed": gorm.Expr("total_amount_distributed + ?", delta.AmountDistributed),
			"rate_limit_errors":        gorm.Expr("rate_limit_errors + ?", delta.RateLimitErrors),
			"network_errors":           gorm.Expr("network_errors + ?", delta.NetworkErrors),
			"updated_at":               time.Now().UTC(),
		}),
	}).Create(&row).Error
}

func (s *SQLStore) ListDailyMetrics(ctx context.Context, lastNDays int) ([]DailyMetrics, error) {
	var rows []DailyMetrics
	cutoff := time.Now().UTC().AddDate(0, 0, -lastNDays).Format("2006-01-02")
	err := s.db.WithContext(ctx).
		Where("date >= ?", cutoff).
		Order("date DESC").
		Find(&rows).Error
	return rows, err
}

func (s *SQLStore) CreateApiClient(ctx context.Context, params CreateApiClientParams) (*ApiClient, error) {
	client := &ApiClient{
		ClientID:     params.ClientID,
		APIKey:       params.APIKey,
		ClientSecret: params.ClientSecret,
		Name:         params.Name,
		Description:  params.Description,
		HomepageURL:  params.HomepageURL,
		CallbackURL:  params.CallbackURL,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(client).Error; err != nil {
		return nil, err
	}
	return client, nil
}

func (s *SQLStore) FindApiClientByKey(ctx context.Context, apiKey string) (*ApiClient, error) {
	var client ApiClient
	err := s.db.WithContext(ctx).Where("api_key = ?", apiKey).First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (s *SQLStore) FindApiClientByID(ctx context.Context, clientID string) (*ApiClient, error) {
	var client ApiClient
	err := s.db.WithContext(ctx).Where("client_id = ?", clientID).First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (s *SQLStore) ListApiClients(ctx context.Context, limit, offset int) ([]ApiClient, error) {
	var rows []ApiClient
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&rows).Error
	return rows, err
}

func (s *SQLStore) DeactivateApiClient(ctx context.Context, clientID string) error {
	return s.db.WithContext(ctx).Model(&ApiClient{}).
		Where("client_id = ?", clientID).
		Update("is_active", false).Error
}

func (s *SQLStore) RegenerateApiKey(ctx context.Context, clientID, newAPIKey string) error {
	return s.db.WithContext(ctx).Model(&ApiClient{}).
		Where("client_id = ?", clientID).
		Update("api_key", newAPIKey).Error
}

func (s *SQLStore) RecordClientUsage(ctx context.Context, clientID, endpoint, method string, status int, responseTimeMs int64) {
	now := time.Now().UTC()
	err := s.db.WithContext(ctx).Model(&ApiClient{}).
		Where("client_id = ?", clientID).
		Updates(map[string]interface{}{
			"usage_count":  gorm.Expr("usage_count + 1"),
			"last_used_at": now,
		}).Error
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"client_id": clientID,
			"endpoint":  endpoint,
			"method":    method,
			"status":    status,
		}).Error("failed to record client usage")
	}
}

// AuthenticateAdmin compares password against the stored bcrypt hash,
// which is inherently constant-time with respect to the plaintext.
func (s *SQLStore) AuthenticateAdmin(ctx context.Context, username, password string) (*AdminUser, error) {
	var admin AdminUser
	err := s.db.WithContext(ctx).Where("username = ? AND is_active = ?", username, true).First(&admin).Error
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	_ = s.db.WithContext(ctx).Model(&AdminUser{}).
		Where("username = ?", username).
		Update("last_login", now).Error
	admin.LastLogin = &now
	return &admin, nil
}

func (s *SQLStore) SaveAdminActivity(ctx context.Context, activity *AdminActivity) error {
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now().UTC()
	}
	return s.db.WithContext(ctx).Create(activity).Error
}

func (s *SQLStore) ListAdminActivities(ctx context.Context, limit int) ([]AdminActivity, error) {
	var rows []AdminActivity
	err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&rows).Error
	return rows, err
}

func (s *SQLStore) ReadSetting(ctx context.Context, name string) (string, bool) {
	var setting Setting
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&setting).Error
	if err != nil {
		return "", false
	}
	return setting.Value, true
}

// WriteSettings validates and writes each name independently so that one
// invalid name does not block the others from applying.
func (s *SQLStore) WriteSettings(ctx context.Context, values map[string]string, actor string) SettingUpdateResult {
	result := SettingUpdateResult{Errors: make(map[string]string)}
	now := time.Now().UTC()

	for name, value := range values {
		if _, ok := validSettingNames[name]; !ok {
			result.Errors[name] = "Setting not found"
			continue
		}
		row := Setting{Name: name, Value: value, UpdatedBy: actor, UpdatedAt: now}
		err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_by", "updated_at"}),
		}).Create(&row).Error
		if err != nil {
			result.Errors[name] = err.Error()
			continue
		}
		result.Updated = append(result.Updated, name)
	}
	return result
}

func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
