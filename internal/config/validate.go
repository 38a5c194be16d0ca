// AngelaMos | 2026
// validate.go

package config

import (
	"errors"
	"fmt"
	"slices"
)

// validate reports every problem at once so a misconfigured deploy is
// fixed in one pass.
func (c *Config) validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Database.URL != "", "DATABASE_URL is required")
	check(c.Redis.URL != "", "REDIS_URL is required")
	check(c.JWT.PrivateKeyPath != "" && c.JWT.PublicKeyPath != "",
		"jwt key paths are required")
	check(c.Server.ReadTimeout > 0 && c.Server.WriteTimeout > 0,
		"server timeouts must be positive")

	check(!c.CORS.AllowCredentials || !slices.Contains(c.CORS.AllowedOrigins, "*"),
		"cors wildcard origin cannot be combined with credentials")
	check(c.App.Environment != "production" || !c.Otel.Enabled || !c.Otel.Insecure,
		"OTEL_INSECURE must be false in production")

	check(slices.Contains([]string{"s3", "gcs"}, c.Storage.Driver),
		"storage.driver must be s3 or gcs, got %q", c.Storage.Driver)
	check(c.Storage.Bucket != "", "STORAGE_BUCKET is required")
	check(c.Storage.MaxUploadBytes > 0, "storage.max_upload_bytes must be positive")

	check(c.Wallet.SubscriptionPeriod > 0, "wallet.subscription_period must be positive")
	check(slices.Contains([]string{"redis", "memory"}, c.Realtime.Driver),
		"realtime.driver must be redis or memory, got %q", c.Realtime.Driver)

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
