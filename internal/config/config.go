package config

import (
	"fmt"
	"os"
	"strings"
)

type Config struct {
	DatabaseURL    string
	HTTPListenAddr string
	LogLevel       string
	ServiceName    string

	// SiteURL is the public base URL feed links are built against.
	SiteURL string
	// AdminURL is the base URL of the admin record list, used for the
	// "view more" link embedded in rendered feeds.
	AdminURL string
	// FeedTitle is the channel title used by the feed renderers.
	FeedTitle string

	// RoleAccess is the set of role identifiers allowed to manage and
	// view private feeds.
	RoleAccess []string
	// PrettyPermalinks selects the /feed/stream/ URL form over the
	// ?feed=stream query form.
	PrettyPermalinks bool
	// PrivateFeeds enables the feed endpoints and profile key surface.
	PrivateFeeds bool

	// NonceSecret keys the anti-forgery tokens guarding key regeneration.
	NonceSecret string
}

func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		HTTPListenAddr:   getEnv("HTTP_LISTEN_ADDR", ":8090"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		ServiceName:      getEnv("SERVICE_NAME", "feed-api"),
		SiteURL:          getEnv("SITE_URL", "http://localhost:8090"),
		AdminURL:         getEnv("ADMIN_URL", ""),
		FeedTitle:        getEnv("FEED_TITLE", "Stream Records"),
		RoleAccess:       splitList(getEnv("STREAM_ROLE_ACCESS", "administrator")),
		PrettyPermalinks: getEnv("STREAM_PRETTY_PERMALINKS", "true") == "true",
		PrivateFeeds:     getEnv("STREAM_PRIVATE_FEEDS", "true") == "true",
		NonceSecret:      getEnv("STREAM_NONCE_SECRET", ""),
	}

	if cfg.AdminURL == "" {
		cfg.AdminURL = strings.TrimRight(cfg.SiteURL, "/") + "/admin/records"
	}

	return cfg, nil
}

// Validate checks that the values a running service cannot do without are
// present.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.NonceSecret == "" {
		return fmt.Errorf("STREAM_NONCE_SECRET is required")
	}
	if len(c.RoleAccess) == 0 {
		return fmt.Errorf("STREAM_ROLE_ACCESS must name at least one role")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
