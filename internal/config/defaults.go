// AngelaMos | 2026
// defaults.go

package config

import "strings"

var defaults = map[string]any{
	"app.name":        "Classifieds",
	"app.version":     "1.0.0",
	"app.environment": "development",

	"server.host":             "0.0.0.0",
	"server.port":             8080,
	"server.read_timeout":     "30s",
	"server.write_timeout":    "75s",
	"server.idle_timeout":     "120s",
	"server.shutdown_timeout": "15s",

	"database.max_open_conns":     25,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  "1h",
	"database.conn_max_idle_time": "30m",

	"redis.pool_size":      10,
	"redis.min_idle_conns": 5,

	"jwt.access_token_expire":  "15m",
	"jwt.refresh_token_expire": "720h",
	"jwt.issuer":               "classifieds",
	"jwt.audience":             "classifieds-api",
	"jwt.private_key_path":     "keys/private.pem",
	"jwt.public_key_path":      "keys/public.pem",

	"oauth.google_jwks_url": "https://www.googleapis.com/oauth2/v3/certs",

	"rate_limit.requests": 120,
	"rate_limit.window":   "1m",
	"rate_limit.burst":    30,

	"cors.allowed_origins":   []string{"http://localhost:5173"},
	"cors.allowed_methods":   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
	"cors.allowed_headers":   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
	"cors.allow_credentials": true,
	"cors.max_age":           300,

	"log.level":  "info",
	"log.format": "json",

	"otel.insecure":     true,
	"otel.sample_rate":  0.1,
	"otel.service_name": "classifieds",

	"storage.driver":           "s3",
	"storage.region":           "us-east-1",
	"storage.max_upload_bytes": 5 << 20,

	"wallet.subscription_period": "720h",

	"realtime.driver":        "redis",
	"realtime.buffer_size":   64,
	"realtime.ping_interval": "30s",
	"realtime.write_timeout": "10s",

	"screenshot.timeout":         "60s",
	"screenshot.viewport_width":  1280,
	"screenshot.viewport_height": 800,
}

// sections are matched longest first so RATE_LIMIT_BURST lands in
// rate_limit rather than a section called rate.
var sections = []string{
	"rate_limit", "screenshot", "realtime", "database", "storage",
	"server", "wallet", "oauth", "redis", "cors", "otel", "jwt", "log", "app",
}

// aliases are the conventional names deploy tooling already sets.
var aliases = map[string]string{
	"ENVIRONMENT":                 "app.environment",
	"HOST":                        "server.host",
	"PORT":                        "server.port",
	"GOOGLE_CLIENT_ID":            "oauth.google_client_id",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "otel.endpoint",
}

// envKey maps SECTION_FIELD onto section.field. Variables outside every
// section are ignored.
func envKey(name string) string {
	if key, ok := aliases[name]; ok {
		return key
	}
	lower := strings.ToLower(name)
	for _, s := range sections {
		if field, ok := strings.CutPrefix(lower, s+"_"); ok && field != "" {
			return s + "." + field
		}
	}
	return ""
}
