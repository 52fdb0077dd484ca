package admin

import (
	"database/sql"
	"fmt"
	"log"
	"strconv"

	"github.com/jmoiron/sqlx"

	"github.com/giftpool/backend/internal/config"
	"github.com/giftpool/backend/internal/models"
)

// GetAllRuntimeConfig returns all runtime config entries
func GetAllRuntimeConfig(db *sqlx.DB) ([]models.RuntimeConfig, error) {
	var configs []models.RuntimeConfig
	err := db.Select(&configs, `
		SELECT key, value, updated_by, updated_at
		FROM runtime_config
		ORDER BY key
	`)
	return configs, err
}

// validateRuntimeValue rejects values that would break the tables: each
// tunable key has its own range.
func validateRuntimeValue(key, value string) error {
	switch key {
	case config.KeyFrictionBase:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f <= 0 || f >= 1 {
			return fmt.Errorf("friction base must be a float in (0,1), got %q", value)
		}
	case config.KeyMaxShotSpeed:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("max shot speed must be a positive float, got %q", value)
		}
	case config.KeyMinPocketCount:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("min pocket count must be a positive integer, got %q", value)
		}
	case config.KeySolveDelayMillis:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("solve delay must be a non-negative integer, got %q", value)
		}
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

// UpdateRuntimeConfigValue validates and stores a runtime tuning value, then
// applies it to the live config so the next session picks it up.
func UpdateRuntimeConfigValue(db *sqlx.DB, cfg *config.Config, key, value string, adminID int64) error {
	if err := validateRuntimeValue(key, value); err != nil {
		return err
	}

	_, err := db.Exec(`
		INSERT INTO runtime_config (key, value, updated_by, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, updated_by=EXCLUDED.updated_by, updated_at=NOW()
	`, key, value, adminID)
	if err != nil {
		return err
	}

	cfg.SetOverride(key, value)
	log.Printf("[CONFIG] Runtime config %s set to %s by admin %d", key, value, adminID)
	return nil
}

// DeleteRuntimeConfigValue removes a runtime override, reverting the key to
// its built-in default.
func DeleteRuntimeConfigValue(db *sqlx.DB, cfg *config.Config, key string, adminID int64) error {
	if _, err := db.Exec(`DELETE FROM runtime_config WHERE key=$1`, key); err != nil {
		return err
	}
	cfg.SetOverride(key, "")
	log.Printf("[CONFIG] Runtime config %s cleared by admin %d", key, adminID)
	return nil
}

// ApplyRuntimeConfigToConfig loads runtime config from the DB at boot and
// applies the overrides to the live Config. Keys that no longer validate
// (e.g. after a deploy tightened a range) are skipped, not fatal.
func ApplyRuntimeConfigToConfig(db *sqlx.DB, cfg *config.Config) error {
	configs, err := GetAllRuntimeConfig(db)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil
		}
		return err
	}

	applied := 0
	for _, c := range configs {
		if err := validateRuntimeValue(c.Key, c.Value); err != nil {
			log.Printf("[CONFIG] Skipping stored runtime config %s: %v", c.Key, err)
			continue
		}
		cfg.SetOverride(c.Key, c.Value)
		applied++
	}

	log.Printf("[CONFIG] Applied %d runtime config overrides from database", applied)
	return nil
}
