package storage

import "sort"

// validSettingNames are the only names WriteSettings accepts; anything
// else is reported per-name in SettingUpdateResult.Errors.
var validSettingNames = map[string]struct{}{
	"rate_limit_enabled":          {},
	"rate_limit_window_ms":        {},
	"faucet_max_per_wallet":       {},
	"faucet_max_per_ip":           {},
	"faucet_cooldown_seconds":     {},
	"api_max_requests_per_window": {},
	"api_burst_limit":             {},
	"wallet_daily_limit":          {},
	"wallet_weekly_limit":         {},
	"emergency_mode":              {},
	"emergency_max_per_ip":        {},
	"emergency_cooldown":          {},
	"faucet_mode":                 {},
}

// defaultSettings seeds every recognized RateLimitSetting row (spec.md
// §6) on first connect, so ReadSetting has a row to find before any
// admin write.
var defaultSettings = map[string]string{
	"rate_limit_enabled":          "true",
	"rate_limit_window_ms":        "3600000",
	"faucet_max_per_wallet":       "1",
	"faucet_max_per_ip":           "10",
	"faucet_cooldown_seconds":     "3600",
	"api_max_requests_per_window": "1000",
	"api_burst_limit":             "20",
	"wallet_daily_limit":          "5",
	"wallet_weekly_limit":         "10",
	"emergency_mode":              "false",
	"emergency_max_per_ip":        "1",
	"emergency_cooldown":          "7200",
	"faucet_mode":                 "wallet",
}

// RecognizedSettingNames returns every name WriteSettings accepts, in a
// stable sorted order, for callers (the admin surface's "current
// settings" listing) that need to enumerate the full set rather than
// look up one name at a time.
func RecognizedSettingNames() []string {
	names := make([]string, 0, len(validSettingNames))
	for name := range validSettingNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultSettingValue returns the documented default for a recognized
// setting name, or "" if name is not recognized.
func DefaultSettingValue(name string) string {
	return defaultSettings[name]
}
