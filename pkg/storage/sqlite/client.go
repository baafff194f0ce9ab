package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Client wraps the sqlite-backed catalog cache.
type Client struct {
	DB *gorm.DB
}

func NewClient(path string) (*Client, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite cache: %w", err)
	}

	return &Client{DB: db}, nil
}

// InitializeAndMigrate creates the cache file's directory if needed, opens
// the database and runs AutoMigrate.
func InitializeAndMigrate(path string) (*Client, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	client, err := NewClient(path)
	if err != nil {
		return nil, err
	}

	if err := client.AutoMigrateInstrumentRow(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return client, nil
}

func (c *Client) AutoMigrateInstrumentRow() error {
	if err := c.DB.AutoMigrate(&InstrumentRow{}); err != nil {
		return fmt.Errorf("auto-migrate instrument table: %w", err)
	}
	return nil
}

func (c *Client) IsHealthy(ctx context.Context) bool {
	db, err := c.DB.DB()
	if err != nil {
		return false
	}
	return db.PingContext(ctx) == nil
}

func (c *Client) Close() error {
	db, err := c.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to retrieve raw DB: %w", err)
	}
	return db.Close()
}
