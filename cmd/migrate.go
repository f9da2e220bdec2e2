package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/anoixa/album-chat/config"
	"github.com/anoixa/album-chat/database"
	"github.com/anoixa/album-chat/database/models"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// migrateCmd 数据库迁移命令
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Database migration tools",
	Long:  `Create the schema in the configured database, or copy data from one database to another (e.g., SQLite to PostgreSQL).`,
}

// migrateSchemaCmd 在配置的数据库中建表
var migrateSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Create or update tables in the configured database",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runSchemaMigration(); err != nil {
			log.Fatalf("Schema migration failed: %v", err)
		}
	},
}

// migrateRunCmd 执行迁移命令
var migrateRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run database migration",
	Long: `Run database migration from source to target database.

Examples:
  # Migrate from SQLite to PostgreSQL
  album-chat migrate run --from-sqlite ./data/album-chat.db --to-postgres "host=localhost user=postgres password=secret dbname=albumchat port=5432"

  # Migrate with overwrite strategy (replace existing rows)
  album-chat migrate run --from-sqlite ./data/album-chat.db --to-postgres "..." --on-conflict=overwrite

  # Stop on conflict
  album-chat migrate run --from-sqlite ./data/album-chat.db --to-postgres "..." --on-conflict=error`,
	Run: func(cmd *cobra.Command, args []string) {
		fromType, _ := cmd.Flags().GetString("from-type")
		toType, _ := cmd.Flags().GetString("to-type")
		fromDSN, _ := cmd.Flags().GetString("from-dsn")
		toDSN, _ := cmd.Flags().GetString("to-dsn")
		fromSQLite, _ := cmd.Flags().GetString("from-sqlite")
		toPostgres, _ := cmd.Flags().GetString("to-postgres")
		skipConfirm, _ := cmd.Flags().GetBool("yes")
		batchSize, _ := cmd.Flags().GetInt("batch-size")
		onConflict, _ := cmd.Flags().GetString("on-conflict")

		if fromSQLite != "" {
			fromType, fromDSN = "sqlite", fromSQLite
		}
		if toPostgres != "" {
			toType, toDSN = "postgres", toPostgres
		}

		opts := migrateOptions{batchSize: batchSize, onConflict: onConflict}
		if err := runMigration(fromType, toType, fromDSN, toDSN, skipConfirm, opts); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateSchemaCmd)
	migrateCmd.AddCommand(migrateRunCmd)

	migrateRunCmd.Flags().String("from-type", "", "Source database type (sqlite, postgres)")
	migrateRunCmd.Flags().String("to-type", "", "Target database type (sqlite, postgres)")
	migrateRunCmd.Flags().String("from-dsn", "", "Source database DSN/connection string")
	migrateRunCmd.Flags().String("to-dsn", "", "Target database DSN/connection string")
	migrateRunCmd.Flags().String("from-sqlite", "", "Source SQLite file path (shortcut)")
	migrateRunCmd.Flags().String("to-postgres", "", "Target PostgreSQL connection string (shortcut)")
	migrateRunCmd.Flags().Bool("yes", false, "Skip confirmation prompt")
	migrateRunCmd.Flags().Int("batch-size", 100, "Batch size for data migration")
	migrateRunCmd.Flags().String("on-conflict", "skip", "Conflict resolution strategy: skip (default), overwrite, error")
}

// runSchemaMigration 对配置的数据库执行自动迁移
func runSchemaMigration() error {
	config.InitConfig()

	factory, err := database.NewFactory(config.Get())
	if err != nil {
		return err
	}
	defer factory.Close()

	return factory.AutoMigrate()
}

type migrateOptions struct {
	batchSize  int
	onConflict string
}

// migrateStats 每张表写入的行数，按迁移顺序
type migrateStats struct {
	tables []string
	rows   map[string]int64
}

func (s *migrateStats) add(table string, rows int64) {
	if s.rows == nil {
		s.rows = make(map[string]int64)
	}
	s.tables = append(s.tables, table)
	s.rows[table] = rows
}

// runMigration 执行数据库迁移
func runMigration(fromType, toType, fromDSN, toDSN string, skipConfirm bool, opts migrateOptions) error {
	// 验证冲突处理策略
	if opts.onConflict != "skip" && opts.onConflict != "overwrite" && opts.onConflict != "error" {
		return fmt.Errorf("invalid on-conflict strategy: %s (must be skip, overwrite, or error)", opts.onConflict)
	}

	// 验证参数
	if fromType == "" || toType == "" {
		return fmt.Errorf("both --from-type and --to-type are required")
	}
	if fromDSN == "" || toDSN == "" {
		return fmt.Errorf("both --from-dsn and --to-dsn (or shortcuts) are required")
	}
	if fromType == toType && fromDSN == toDSN {
		return fmt.Errorf("source and target databases are the same")
	}

	log.Printf("Migrating from %s to %s", fromType, toType)
	log.Printf("Source: %s", maskDSN(fromDSN))
	log.Printf("Target: %s", maskDSN(toDSN))
	log.Printf("Conflict strategy: %s", opts.onConflict)

	sourceDB, err := openDatabase(fromType, fromDSN)
	if err != nil {
		return fmt.Errorf("failed to connect to source database: %w", err)
	}
	sqlDB, _ := sourceDB.DB()
	defer sqlDB.Close()

	targetDB, err := openDatabase(toType, toDSN)
	if err != nil {
		return fmt.Errorf("failed to connect to target database: %w", err)
	}
	sqlDB2, _ := targetDB.DB()
	defer sqlDB2.Close()

	// 确认迁移
	if !skipConfirm {
		fmt.Println("\nWarning: This will migrate all data from source to target database.")
		fmt.Printf("Conflict resolution strategy: %s\n", opts.onConflict)
		fmt.Println("Existing data in target database may be affected.")
		fmt.Print("Do you want to continue? [y/N]: ")
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Migration cancelled.")
			return nil
		}
	}

	stats, err := copyDatabase(context.Background(), sourceDB, targetDB, opts)
	printMigrateStats(stats)
	if err != nil {
		return err
	}

	log.Println("Migration completed successfully!")
	return nil
}

// copyDatabase 建表后按外键依赖顺序复制全部数据
func copyDatabase(ctx context.Context, sourceDB, targetDB *gorm.DB, opts migrateOptions) (*migrateStats, error) {
	if opts.batchSize <= 0 {
		opts.batchSize = 100
	}
	stats := &migrateStats{}

	log.Println("Migrating database schema...")
	if err := targetDB.AutoMigrate(models.All()...); err != nil {
		return stats, fmt.Errorf("failed to migrate schema: %w", err)
	}

	steps := []struct {
		table string
		copy  func() (int64, error)
	}{
		{"users", func() (int64, error) { return copyTable[models.User](ctx, sourceDB, targetDB, "id", opts) }},
		{"albums", func() (int64, error) { return copyTable[models.Album](ctx, sourceDB, targetDB, "id", opts) }},
		{"album_participants", func() (int64, error) {
			return copyTable[models.AlbumParticipant](ctx, sourceDB, targetDB, "album_id, user_id", opts)
		}},
		{"images", func() (int64, error) { return copyTable[models.Image](ctx, sourceDB, targetDB, "id", opts) }},
		{"chats", func() (int64, error) { return copyTable[models.Chat](ctx, sourceDB, targetDB, "id", opts) }},
		{"messages", func() (int64, error) { return copyTable[models.Message](ctx, sourceDB, targetDB, "id", opts) }},
	}

	for _, step := range steps {
		log.Printf("Migrating %s...", step.table)
		rows, err := step.copy()
		stats.add(step.table, rows)
		if err != nil {
			return stats, fmt.Errorf("%s migration failed: %w", step.table, err)
		}
	}

	if targetDB.Dialector.Name() == "postgres" {
		if err := resetSequences(ctx, targetDB); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// copyTable 分批读取源表并写入目标表，返回目标表受影响的行数
// 软删除的行也一并复制
func copyTable[T any](ctx context.Context, sourceDB, targetDB *gorm.DB, order string, opts migrateOptions) (int64, error) {
	var written int64
	for offset := 0; ; offset += opts.batchSize {
		var batch []T
		err := sourceDB.WithContext(ctx).Unscoped().Order(order).Limit(opts.batchSize).Offset(offset).Find(&batch).Error
		if err != nil {
			return written, err
		}
		if len(batch) == 0 {
			return written, nil
		}

		tx := targetDB.WithContext(ctx).Session(&gorm.Session{SkipHooks: true})
		switch opts.onConflict {
		case "skip":
			tx = tx.Clauses(clause.OnConflict{DoNothing: true})
		case "overwrite":
			tx = tx.Clauses(clause.OnConflict{UpdateAll: true})
		}
		result := tx.Omit(clause.Associations).Create(&batch)
		if result.Error != nil {
			return written, result.Error
		}
		written += result.RowsAffected

		if len(batch) < opts.batchSize {
			return written, nil
		}
	}
}

// resetSequences 显式写入主键后，把 PostgreSQL 自增序列推进到当前最大值
func resetSequences(ctx context.Context, db *gorm.DB) error {
	for _, table := range []string{"users", "albums", "images", "chats", "messages"} {
		sql := fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE((SELECT MAX(id) FROM %s), 0) + 1, false)", table, table)
		if err := db.WithContext(ctx).Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to reset sequence of %s: %w", table, err)
		}
	}
	return nil
}

// openDatabase 打开数据库连接
func openDatabase(dbType, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch dbType {
	case "sqlite", "sqlite3":
		dialector = sqlite.Open(dsn)
	case "postgres", "postgresql":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

// maskDSN 隐藏敏感信息
func maskDSN(dsn string) string {
	if len(dsn) > 50 {
		return dsn[:50] + "..."
	}
	return dsn
}

// printMigrateStats 打印迁移统计
func printMigrateStats(stats *migrateStats) {
	if stats == nil {
		return
	}
	fmt.Println()
	fmt.Println("========================================")
	fmt.Println("       Migration Statistics")
	fmt.Println("========================================")
	for _, table := range stats.tables {
		fmt.Printf("%-20s %d\n", table+":", stats.rows[table])
	}
	fmt.Println("========================================")
}
