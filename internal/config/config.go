// Package config provides configuration loading from environment variables.
package config

import (
	"net/url"
	"netbackup/internal/apperrors"
	"time"
)

// ServiceConfig holds configuration for the backup service process.
type ServiceConfig struct {
	Port              string
	MetricsPort       string
	APIKey            string
	ShutdownDrainWait time.Duration // Time to wait for load balancer to drain (0 to skip)
	BucketURL         string        // gocloud.dev blob URL, e.g. s3://bucket?region=eu-west-1
	ScheduleInterval  time.Duration // 0 disables the scheduled trigger
}

// BackupConfig holds the controller settings a backup run needs.
type BackupConfig struct {
	BaseURL        string
	Username       string
	Password       string
	ClientIdentity string // Sent as User-Agent on scheduled runs when set
	Site           string
	Version        string // Backup file version, used in the download path and key suffix
	KeyPrefix      string
	HTTPTimeout    time.Duration

	PollAttempts     int
	PollDelay        time.Duration
	TransferAttempts int
	TransferDelay    time.Duration
}

// LoadServiceConfig loads service configuration from environment variables.
func LoadServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		Port:              GetEnv("PORT", "8080"),
		MetricsPort:       GetEnv("METRICS_PORT", "9090"),
		APIKey:            GetSecretFile(GetEnv("API_KEY_FILE", "")),
		ShutdownDrainWait: GetDurationEnv("SHUTDOWN_DRAIN_WAIT", 5*time.Second),
		BucketURL:         GetEnv("BUCKET_URL", "mem://"),
		ScheduleInterval:  GetDurationEnv("BACKUP_SCHEDULE_INTERVAL", 24*time.Hour),
	}
}

// LoadBackupConfig loads controller settings from environment variables.
// PASSWORD_FILE takes precedence over PASSWORD.
// The result is not validated; call Validate before use.
func LoadBackupConfig() *BackupConfig {
	password := GetSecretFile(GetEnv("PASSWORD_FILE", ""))
	if password == "" {
		password = GetEnv("PASSWORD", "")
	}

	return &BackupConfig{
		BaseURL:          GetEnv("BASE_URL", ""),
		Username:         GetEnv("USERNAME", ""),
		Password:         password,
		ClientIdentity:   GetEnv("USER_AGENT", ""),
		Site:             GetEnv("BACKUP_SITE", "default"),
		Version:          GetEnv("BACKUP_VERSION", "8.0.7"),
		KeyPrefix:        GetEnv("BACKUP_KEY_PREFIX", "network_backup"),
		HTTPTimeout:      GetDurationEnv("HTTP_TIMEOUT", 60*time.Second),
		PollAttempts:     GetIntEnv("POLL_ATTEMPTS", 3),
		PollDelay:        GetDurationEnv("POLL_DELAY", 60*time.Second),
		TransferAttempts: GetIntEnv("TRANSFER_ATTEMPTS", 3),
		TransferDelay:    GetDurationEnv("TRANSFER_DELAY", 5*time.Second),
	}
}

// Validate reports the first missing or invalid setting.
func (c *BackupConfig) Validate() error {
	if c == nil {
		return apperrors.Configuration("", "backup configuration is missing")
	}
	if c.BaseURL == "" {
		return apperrors.Configuration("BASE_URL", "BASE_URL is required")
	}
	if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return apperrors.Configuration("BASE_URL", "BASE_URL must be an absolute URL")
	}
	if c.Username == "" {
		return apperrors.Configuration("USERNAME", "USERNAME is required")
	}
	if c.Password == "" {
		return apperrors.Configuration("PASSWORD", "PASSWORD is required")
	}
	if c.PollAttempts < 1 {
		return apperrors.Configuration("POLL_ATTEMPTS", "POLL_ATTEMPTS must be at least 1")
	}
	if c.TransferAttempts < 1 {
		return apperrors.Configuration("TRANSFER_ATTEMPTS", "TRANSFER_ATTEMPTS must be at least 1")
	}
	if c.PollDelay < 0 || c.TransferDelay < 0 {
		return apperrors.Configuration("POLL_DELAY", "retry delays must not be negative")
	}
	return nil
}

// MaxRunDuration is the longest a run can take when every request uses its
// full timeout: login, trigger, every probe and every download, plus the
// delays between attempts. The on-demand endpoint's write timeout is derived
// from it.
func (c *BackupConfig) MaxRunDuration() time.Duration {
	requests := 2 + c.PollAttempts + c.TransferAttempts
	total := time.Duration(requests) * c.HTTPTimeout
	if c.PollAttempts > 1 {
		total += time.Duration(c.PollAttempts-1) * c.PollDelay
	}
	if c.TransferAttempts > 1 {
		total += time.Duration(c.TransferAttempts-1) * c.TransferDelay
	}
	return total
}
