// config/config.go
package config

import (
	"os"
	"time"
)

var (
	Port          string
	MongoURI      string
	DatabaseName  string
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	CORSOrigin    string
)

func LoadConfig() {
	Port = os.Getenv("PORT")
	if Port == "" {
		Port = "3001"
	}

	MongoURI = os.Getenv("MONGODB_URI")
	if MongoURI == "" {
		MongoURI = "mongodb://localhost:27017"
	}

	DatabaseName = os.Getenv("MONGODB_DATABASE")
	if DatabaseName == "" {
		DatabaseName = "vulnmgt"
	}

	AccessSecret = []byte(os.Getenv("JWT_ACCESS_SECRET"))
	if len(AccessSecret) == 0 {
		AccessSecret = []byte("dev-access-secret-change-me")
	}

	RefreshSecret = []byte(os.Getenv("JWT_REFRESH_SECRET"))
	if len(RefreshSecret) == 0 {
		RefreshSecret = []byte("dev-refresh-secret-change-me")
	}

	AccessTTL = parseTTL(os.Getenv("JWT_ACCESS_EXPIRES"), 15*time.Minute)
	RefreshTTL = parseTTL(os.Getenv("JWT_REFRESH_EXPIRES"), 7*24*time.Hour)

	CORSOrigin = os.Getenv("CORS_ORIGIN")
	if CORSOrigin == "" {
		CORSOrigin = "http://localhost:3000"
	}
}

// parseTTL accepts Go durations plus the day shorthand ("7d") the old
// deployment configs used.
func parseTTL(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if n := len(raw); n > 1 && raw[n-1] == 'd' {
		var days int
		for _, c := range raw[:n-1] {
			if c < '0' || c > '9' {
				return fallback
			}
			days = days*10 + int(c-'0')
		}
		return time.Duration(days) * 24 * time.Hour
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}
