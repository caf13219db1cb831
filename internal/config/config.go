package config

import (
	"bufio"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr          string
		SecureCookies bool
	}
	Database struct {
		Path string
	}
	Auth struct {
		SessionSecret     string
		SessionMaxAgeDays int
	}
	EBird struct {
		BaseURL        string
		APIKey         string
		MaxResults     int
		TimeoutSeconds int
	}
	Storage struct {
		Bucket    string
		KeyPrefix string
		Region    string
		Endpoint  string
	}
	AWS struct {
		Profile string
	}
	Log struct {
		Level string
	}
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	loadDotEnv()

	v := viper.New()
	v.SetEnvPrefix("BIRDFINDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:3000")
	v.SetDefault("server.securecookies", false)
	v.SetDefault("database.path", "data/birdfinder.db")
	v.SetDefault("auth.sessionsecret", "")
	v.SetDefault("auth.sessionmaxagedays", 7)
	v.SetDefault("ebird.baseurl", "https://api.ebird.org/v2")
	v.SetDefault("ebird.apikey", "")
	v.SetDefault("ebird.maxresults", 20)
	v.SetDefault("ebird.timeoutseconds", 10)
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.keyprefix", "bird-lists")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("aws.profile", "")
	v.SetDefault("log.level", "info")

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// EnsureSessionSecret fills in a random session secret when none is configured.
// It reports whether a secret had to be generated; sessions signed with a
// generated secret do not survive a restart.
func (c *Config) EnsureSessionSecret() (bool, error) {
	if strings.TrimSpace(c.Auth.SessionSecret) != "" {
		return false, nil
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return false, fmt.Errorf("generate session secret: %w", err)
	}
	c.Auth.SessionSecret = hex.EncodeToString(b)
	return true, nil
}

// SessionMaxAge is the lifetime of the browser session cookie.
func (c Config) SessionMaxAge() time.Duration {
	return time.Duration(c.Auth.SessionMaxAgeDays) * 24 * time.Hour
}

// EBirdTimeout bounds each outbound eBird request.
func (c Config) EBirdTimeout() time.Duration {
	return time.Duration(c.EBird.TimeoutSeconds) * time.Second
}

func loadDotEnv() {
	file, err := os.Open(".env")
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		partsIndex := strings.Index(line, "=")
		if partsIndex <= 0 {
			continue
		}

		key := strings.TrimSpace(line[:partsIndex])
		value := strings.TrimSpace(line[partsIndex+1:])
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}

		if _, exists := os.LookupEnv(key); !exists {
			_ = os.Setenv(key, value)
		}
	}
}
