package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const defaultHTTPAddr = ":8080"
const defaultStorageDriver = "memory"
const defaultMigrationsDir = "migrations"
const defaultConnectionString = "Host=localhost;Port=5432;Database=bank_ledger_db;Username=postgres;Password=postgres;Timeout=30;CommandTimeout=30"

type Config struct {
	HTTPAddr      string `yaml:"httpAddr"`
	StorageDriver string `yaml:"storageDriver"`
	DatabaseDSN   string `yaml:"databaseDsn"`
	MigrationsDir string `yaml:"migrationsDir"`
}

// Load layers configuration: built-in defaults, then the optional YAML file
// named by CONFIG_FILE, then individual environment variables.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:      defaultHTTPAddr,
		StorageDriver: defaultStorageDriver,
		DatabaseDSN:   defaultConnectionString,
		MigrationsDir: defaultMigrationsDir,
	}

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %q: %w", path, err)
		}
	}

	if addr := strings.TrimSpace(os.Getenv("HTTP_ADDR")); addr != "" {
		cfg.HTTPAddr = addr
	}
	if driver := strings.TrimSpace(os.Getenv("STORAGE_DRIVER")); driver != "" {
		cfg.StorageDriver = driver
	}
	if dsn := strings.TrimSpace(os.Getenv("DATABASE_DSN")); dsn != "" {
		cfg.DatabaseDSN = dsn
	}
	if dir := strings.TrimSpace(os.Getenv("MIGRATIONS_DIR")); dir != "" {
		cfg.MigrationsDir = dir
	}

	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	if cfg.StorageDriver != "memory" && cfg.StorageDriver != "postgres" {
		return Config{}, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}

	cfg.DatabaseDSN = normalizeConnectionString(cfg.DatabaseDSN)

	return cfg, nil
}

// normalizeConnectionString accepts both libpq key/value DSNs and the
// semicolon-separated form used by ops tooling, returning libpq form.
func normalizeConnectionString(raw string) string {
	if !strings.Contains(raw, ";") {
		return raw
	}

	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	hasSSLMode := false

	for _, part := range parts {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}

		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(kv[0]))
		val := strings.TrimSpace(kv[1])

		switch key {
		case "host":
			out = append(out, "host="+val)
		case "port":
			out = append(out, "port="+val)
		case "database":
			out = append(out, "dbname="+val)
		case "username":
			out = append(out, "user="+val)
		case "password":
			out = append(out, "password="+val)
		case "timeout", "connect timeout":
			out = append(out, "connect_timeout="+val)
		case "commandtimeout", "command timeout":
			out = append(out, "statement_timeout="+val+"s")
		case "sslmode":
			hasSSLMode = true
			out = append(out, "sslmode="+val)
		default:
			out = append(out, key+"="+val)
		}
	}

	if len(out) == 0 {
		return raw
	}

	if !hasSSLMode {
		out = append(out, "sslmode=disable")
	}

	return strings.Join(out, " ")
}
