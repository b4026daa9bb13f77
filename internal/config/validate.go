package config

import (
	"fmt"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("telegram.token is required")
	}

	switch c.Storage.Driver {
	case StoragePostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required when storage.driver is %q", StoragePostgres)
		}
	case StorageMemory:
	default:
		return fmt.Errorf("storage.driver must be %q or %q (got %q)", StoragePostgres, StorageMemory, c.Storage.Driver)
	}

	if err := c.Cache.validate(); err != nil {
		return fmt.Errorf("cache: %w", err)
	}

	if err := c.Bot.validate(); err != nil {
		return fmt.Errorf("bot: %w", err)
	}

	return nil
}

func (c *CacheConfig) validate() error {
	switch c.Driver {
	case CacheMemory:
		if c.MaxEntries <= 0 {
			return fmt.Errorf("max_entries must be > 0 (got %d)", c.MaxEntries)
		}
	case CacheRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("redis_addr is required when driver is %q", CacheRedis)
		}
	default:
		return fmt.Errorf("driver must be %q or %q (got %q)", CacheMemory, CacheRedis, c.Driver)
	}
	if c.StateTTL <= 0 {
		return fmt.Errorf("state_ttl must be > 0 (got %v)", c.StateTTL)
	}
	if c.ExpiredGrace < 0 {
		return fmt.Errorf("expired_grace must be >= 0 (got %v)", c.ExpiredGrace)
	}
	return nil
}

func (b *BotConfig) validate() error {
	if b.MaxNameLen <= 0 {
		return fmt.Errorf("max_name_len must be > 0 (got %d)", b.MaxNameLen)
	}
	if b.MaxDescriptionLen <= 0 {
		return fmt.Errorf("max_description_len must be > 0 (got %d)", b.MaxDescriptionLen)
	}
	if b.MaxTags < 0 {
		return fmt.Errorf("max_tags must be >= 0 (got %d)", b.MaxTags)
	}
	if b.MaxTagLen <= 0 {
		return fmt.Errorf("max_tag_len must be > 0 (got %d)", b.MaxTagLen)
	}
	if b.ListLimit <= 0 {
		return fmt.Errorf("list_limit must be > 0 (got %d)", b.ListLimit)
	}
	return nil
}
