package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds everything the server reads from the environment.
// Loaded once in main and passed down explicitly, so components
// (admin check in particular) stay testable in isolation.
type Config struct {
	Port        string
	DatabaseURL string
	Env         string // "development" or "production"

	// Session signing
	SessionSecret []byte
	SessionTTL    time.Duration

	// SIWE verification
	SiweDomain string
	ChainID    int
	NonceTTL   time.Duration

	// Lowercased admin wallet addresses. Checked only at user creation;
	// existing rows keep their flag if the list later changes.
	AdminAddresses []string
}

func Load() *Config {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Env:         getEnv("ENV", "development"),

		SessionSecret: []byte(getEnv("SESSION_SECRET", "default-secret-change-in-production")),
		SessionTTL:    7 * 24 * time.Hour,

		SiweDomain: getEnv("SIWE_DOMAIN", "localhost:3000"),
		ChainID:    getEnvInt("CHAIN_ID", 1),
		NonceTTL:   5 * time.Minute,
	}

	for _, addr := range strings.Split(strings.ToLower(os.Getenv("ADMIN_ADDRESSES")), ",") {
		addr = strings.TrimSpace(addr)
		if addr != "" {
			cfg.AdminAddresses = append(cfg.AdminAddresses, addr)
		}
	}

	return cfg
}

// IsAdminAddress reports whether addr is on the static admin allow-list.
func (c *Config) IsAdminAddress(addr string) bool {
	addr = strings.ToLower(addr)
	for _, a := range c.AdminAddresses {
		if a == addr {
			return true
		}
	}
	return false
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}
