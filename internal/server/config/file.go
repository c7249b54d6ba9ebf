package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/garagekeeper/internal/flagx"
	"github.com/dmitrijs2005/garagekeeper/internal/timex"
	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk shape of the config file. It is seeded from the
// current Config before decoding so keys missing from the file keep their value.
type fileConfig struct {
	ListenAddr                       string         `json:"listen_addr" yaml:"listen_addr"`
	DatabaseDSN                      string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey                        string         `json:"secret_key" yaml:"secret_key"`
	TokenValidity                    timex.Duration `json:"token_validity" yaml:"token_validity"`
	BcryptCost                       int            `json:"bcrypt_cost" yaml:"bcrypt_cost"`
	AdminCreateBypassesStrengthCheck bool           `json:"admin_create_bypasses_strength_check" yaml:"admin_create_bypasses_strength_check"`
	AllowRawToken                    bool           `json:"allow_raw_token" yaml:"allow_raw_token"`
	AllowedOrigins                   []string       `json:"allowed_origins" yaml:"allowed_origins"`
	LogLevel                         string         `json:"log_level" yaml:"log_level"`
	S3RootUser                       string         `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword                   string         `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket                         string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region                         string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint                   string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
}

func newFileConfig(c *Config) *fileConfig {
	return &fileConfig{
		ListenAddr:                       c.ListenAddr,
		DatabaseDSN:                      c.DatabaseDSN,
		SecretKey:                        c.SecretKey,
		TokenValidity:                    timex.Duration{Duration: c.TokenValidity},
		BcryptCost:                       c.BcryptCost,
		AdminCreateBypassesStrengthCheck: c.AdminCreateBypassesStrengthCheck,
		AllowRawToken:                    c.AllowRawToken,
		AllowedOrigins:                   c.AllowedOrigins,
		LogLevel:                         c.LogLevel,
		S3RootUser:                       c.S3RootUser,
		S3RootPassword:                   c.S3RootPassword,
		S3Bucket:                         c.S3Bucket,
		S3Region:                         c.S3Region,
		S3BaseEndpoint:                   c.S3BaseEndpoint,
	}
}

func (f *fileConfig) apply(c *Config) {
	c.ListenAddr = f.ListenAddr
	c.DatabaseDSN = f.DatabaseDSN
	c.SecretKey = f.SecretKey
	c.TokenValidity = f.TokenValidity.Duration
	c.BcryptCost = f.BcryptCost
	c.AdminCreateBypassesStrengthCheck = f.AdminCreateBypassesStrengthCheck
	c.AllowRawToken = f.AllowRawToken
	c.AllowedOrigins = f.AllowedOrigins
	c.LogLevel = f.LogLevel
	c.S3RootUser = f.S3RootUser
	c.S3RootPassword = f.S3RootPassword
	c.S3Bucket = f.S3Bucket
	c.S3Region = f.S3Region
	c.S3BaseEndpoint = f.S3BaseEndpoint
}

// parseFile overlays the file named by -c/-config. Files ending in .yaml or
// .yml are decoded as YAML, anything else as JSON.
func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	fc := newFileConfig(cfg)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	default:
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}
