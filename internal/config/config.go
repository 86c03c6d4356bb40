package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Common
	Env      string
	LogLevel string
	Timezone string
	// Local store
	DBPath string
	// Publisher
	HomepageURL     string
	DocumentBaseURL string
	Headless        bool
	BrowserTimeout  time.Duration
	FetchTimeout    time.Duration
	// Remote store
	MongoURI        string
	MongoUser       string
	MongoPass       string
	MongoDatabase   string
	MongoCollection string
	MongoTimeout    time.Duration
	// Cache
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CachePattern  string
	// Holidays
	HolidayAPIBase  string
	HolidayCountry  string
	HolidayCacheTTL time.Duration
	// Notifications
	SMTP SMTPConfig
	// Daemon
	CronSpec   string
	RunOnStart bool
}

// SMTPConfig is resolved from the credential store at bootstrap; env never
// carries mail secrets.
type SMTPConfig struct {
	Enabled bool
	Host    string
	Port    int
	User    string
	Pass    string
	From    string
	To      string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func boolDef(s string, def bool) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return b
}

// Load reads environment variables and applies defaults. Credential-store
// values (mongo user/pass, cache pattern, SMTP) are overlaid later by
// bootstrap; env always wins over the store.
func Load() Config {
	return Config{
		Env:             getEnv("ENV", "local"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Timezone:        getEnv("TIMEZONE", "Africa/Harare"),
		DBPath:          getEnv("DB_PATH", "rates.db"),
		HomepageURL:     getEnv("RBZ_HOMEPAGE_URL", "https://www.rbz.co.zw/"),
		DocumentBaseURL: getEnv("RBZ_DOCUMENT_BASE_URL", "https://www.rbz.co.zw/documents"),
		Headless:        boolDef(getEnv("BROWSER_HEADLESS", "true"), true),
		BrowserTimeout:  time.Duration(atoiDef(getEnv("BROWSER_TIMEOUT_MS", "60000"), 60000)) * time.Millisecond,
		FetchTimeout:    time.Duration(atoiDef(getEnv("FETCH_TIMEOUT_MS", "30000"), 30000)) * time.Millisecond,
		MongoURI:        getEnv("MONGO_URI", ""),
		MongoDatabase:   getEnv("MONGO_DATABASE", "fx-rates"),
		MongoCollection: getEnv("MONGO_COLLECTION", "fx-rates"),
		MongoTimeout:    time.Duration(atoiDef(getEnv("MONGO_TIMEOUT_MS", "5000"), 5000)) * time.Millisecond,
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         atoiDef(getEnv("REDIS_DB", "0"), 0),
		CachePattern:    getEnv("CACHE_PATTERN", ""),
		HolidayAPIBase:  getEnv("HOLIDAY_API_BASE", "https://date.nager.at"),
		HolidayCountry:  getEnv("HOLIDAY_COUNTRY", "ZW"),
		HolidayCacheTTL: time.Duration(atoiDef(getEnv("HOLIDAY_CACHE_TTL_H", "168"), 168)) * time.Hour,
		CronSpec:        getEnv("CRON_SPEC", "0 15 8 * * 1-5"),
		RunOnStart:      boolDef(getEnv("RUN_ON_START", "false"), false),
	}
}
