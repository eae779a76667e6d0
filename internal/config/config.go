package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the gateway and the scan CLI.
type Config struct {
	AppName        string
	AppEnv         string
	AppPort        string
	GraderBaseURL  string
	GraderTimeout  time.Duration
	JWTSecret      string
	AutoResetDelay time.Duration
	MaxUploadMB    int
	LoginMaxFails  int
	LoginLockout   time.Duration
	SessionFile    string
	CameraURL      string
	SheetDir       string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional
// .env file. Keys are LIVETEST_-prefixed with dots replaced by underscores:
// "grader.url" is read from LIVETEST_GRADER_URL, "app.port" from
// LIVETEST_APP_PORT, "auto_reset_delay" from LIVETEST_AUTO_RESET_DELAY,
// and so on for every key defaulted below.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("LIVETEST")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "LiveTest Gateway")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("grader.timeout", "30s")
	v.SetDefault("auto_reset_delay", "3s")
	v.SetDefault("max_upload_mb", 10)
	v.SetDefault("login.max_fails", 5)
	v.SetDefault("login.lockout", "30s")
	v.SetDefault("session.file", ".livetest-session.json")

	timeout, err := time.ParseDuration(v.GetString("grader.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid grader timeout: %w", err)
	}

	resetDelay, err := time.ParseDuration(v.GetString("auto_reset_delay"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid auto reset delay: %w", err)
	}

	lockout, err := time.ParseDuration(v.GetString("login.lockout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid login lockout: %w", err)
	}

	cfg := Config{
		AppName:        v.GetString("app.name"),
		AppEnv:         v.GetString("app.env"),
		AppPort:        v.GetString("app.port"),
		GraderBaseURL:  strings.TrimRight(v.GetString("grader.url"), "/"),
		GraderTimeout:  timeout,
		JWTSecret:      v.GetString("jwt.secret"),
		AutoResetDelay: resetDelay,
		MaxUploadMB:    v.GetInt("max_upload_mb"),
		LoginMaxFails:  v.GetInt("login.max_fails"),
		LoginLockout:   lockout,
		SessionFile:    v.GetString("session.file"),
		CameraURL:      v.GetString("camera.url"),
		SheetDir:       v.GetString("sheet.dir"),
	}

	if cfg.GraderBaseURL == "" {
		return Config{}, fmt.Errorf("grader url must be provided")
	}

	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 10
	}

	if cfg.LoginMaxFails <= 0 {
		cfg.LoginMaxFails = 5
	}

	if cfg.AutoResetDelay <= 0 {
		cfg.AutoResetDelay = 3 * time.Second
	}

	return cfg, nil
}
