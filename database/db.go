package database

import (
	"fmt"
	"log"

	"github.com/anoixa/album-chat/database/models"
)

// AutoMigrate 自动迁移数据库结构
func AutoMigrate(p Provider) error {
	log.Println("Running database auto migration...")
	if err := p.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to auto migrate database: %w", err)
	}
	log.Println("Database auto migration completed.")
	return nil
}
