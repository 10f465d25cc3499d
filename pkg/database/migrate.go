package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationsTable 记录 learnpath 迁移版本的表，与同库其他服务的 schema_migrations 隔离
const MigrationsTable = "learnpath_schema_migrations"

// SchemaTables 迁移脚本创建的业务表，启动日志与健康排查使用
var SchemaTables = []string{"users", "study_times", "subjects", "model_papers", "plans", "progresses"}

// ErrDirtySchema 上次迁移中途失败，需要人工修复后 force 版本
var ErrDirtySchema = errors.New("learnpath 数据库迁移处于 dirty 状态")

// RunMigrations 执行 learnpath 数据库迁移
// 版本处于 dirty 状态时拒绝启动，避免在半迁移的表结构上读写计划与进度
func RunMigrations(db *sql.DB, logger *zap.Logger) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("加载 learnpath 迁移脚本失败: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: MigrationsTable})
	if err != nil {
		return fmt.Errorf("创建 learnpath 迁移驱动失败: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("初始化 learnpath 迁移实例失败: %w", err)
	}

	if version, dirty, err := m.Version(); err == nil && dirty {
		return fmt.Errorf("%w: version=%d", ErrDirtySchema, version)
	}

	upErr := m.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("执行 learnpath 迁移失败（表 %v）: %w", SchemaTables, upErr)
	}

	version, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("读取 learnpath 迁移版本失败: %w", err)
	}
	logger.Info("learnpath 数据库迁移完成",
		zap.Uint("version", version),
		zap.Bool("changed", upErr == nil),
		zap.String("table", MigrationsTable),
		zap.Strings("tables", SchemaTables),
	)

	return nil
}
