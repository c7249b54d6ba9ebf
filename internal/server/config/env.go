package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const envPrefix = "GK_"

// parseEnv overlays GK_* variables. Durations accept Go syntax ("24h") or a
// bare number of minutes; origins are a comma separated list.
func parseEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok {
			*dst = v
		}
	}

	str("LISTEN_ADDR", &cfg.ListenAddr)
	str("DATABASE_DSN", &cfg.DatabaseDSN)
	str("SECRET_KEY", &cfg.SecretKey)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("S3_ROOT_USER", &cfg.S3RootUser)
	str("S3_ROOT_PASSWORD", &cfg.S3RootPassword)
	str("S3_BUCKET", &cfg.S3Bucket)
	str("S3_REGION", &cfg.S3Region)
	str("S3_BASE_ENDPOINT", &cfg.S3BaseEndpoint)

	if v, ok := lookup(envPrefix + "TOKEN_VALIDITY"); ok {
		d, err := parseMinutes(v)
		if err != nil {
			return fmt.Errorf("%sTOKEN_VALIDITY: %w", envPrefix, err)
		}
		cfg.TokenValidity = d
	}

	if v, ok := lookup(envPrefix + "BCRYPT_COST"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sBCRYPT_COST: %w", envPrefix, err)
		}
		cfg.BcryptCost = n
	}

	for name, dst := range map[string]*bool{
		"ADMIN_CREATE_BYPASSES_STRENGTH_CHECK": &cfg.AdminCreateBypassesStrengthCheck,
		"ALLOW_RAW_TOKEN":                      &cfg.AllowRawToken,
	} {
		v, ok := lookup(envPrefix + name)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, name, err)
		}
		*dst = b
	}

	if v, ok := lookup(envPrefix + "ALLOWED_ORIGINS"); ok {
		cfg.AllowedOrigins = splitList(v)
	}
	return nil
}

func parseMinutes(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Minute, nil
	}
	return time.ParseDuration(v)
}

func splitList(v string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
