package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Exact path, or a prefix when it ends in "/"
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// LoadConfig reads RATE_LIMIT_* settings from the process environment.
func LoadConfig() *Config {
	return LoadConfigFrom(os.LookupEnv)
}

// LoadConfigFrom reads RATE_LIMIT_* settings through lookup. Unset or
// unparsable values keep their defaults.
func LoadConfigFrom(lookup func(string) (string, bool)) *Config {
	env := envReader{lookup: lookup}
	if !env.boolean("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    env.integer("RATE_LIMIT_DEFAULT_LIMIT", 1000),
		DefaultWindow:   env.duration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: env.duration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		IdleTTL:         env.duration("RATE_LIMIT_IDLE_TTL", time.Hour),
		Whitelist:       clientSet(env.str("RATE_LIMIT_WHITELIST")),
		Blacklist:       clientSet(env.str("RATE_LIMIT_BLACKLIST")),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the per-endpoint limits of the screening API.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Scoring and model work is the expensive tier
		{Path: "/v1/rank", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/v1/classify", Method: "POST", Limit: 120, Window: time.Minute, Burst: 20},
		{Path: "/v1/model/reload", Method: "POST", Limit: 5, Window: time.Minute, Burst: 1},

		// Writes
		{Path: "/v1/candidates/", Method: "DELETE", Limit: 30, Window: time.Minute, Burst: 5},

		// Reads and /v1/skills fall through to the default limit; /health is unlimited
	}
}

type envReader struct {
	lookup func(string) (string, bool)
}

func (e envReader) str(key string) string {
	v, _ := e.lookup(key)
	return strings.TrimSpace(v)
}

func (e envReader) integer(key string, def int) int {
	if n, err := strconv.Atoi(e.str(key)); err == nil {
		return n
	}
	return def
}

func (e envReader) boolean(key string, def bool) bool {
	if b, err := strconv.ParseBool(e.str(key)); err == nil {
		return b
	}
	return def
}

func (e envReader) duration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(e.str(key)); err == nil {
		return d
	}
	return def
}

// clientSet splits a comma-separated client list into a lookup set.
func clientSet(list string) map[string]bool {
	set := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			set[ip] = true
		}
	}
	return set
}
