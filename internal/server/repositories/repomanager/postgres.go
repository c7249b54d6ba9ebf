// Package repomanager vends PostgreSQL-backed repositories bound to a DBTX and
// applies the embedded schema migrations with goose.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/garagekeeper/internal/dbx"
	"github.com/dmitrijs2005/garagekeeper/internal/server/migrations"
	"github.com/dmitrijs2005/garagekeeper/internal/server/repositories/cars"
	"github.com/dmitrijs2005/garagekeeper/internal/server/repositories/users"
	"github.com/dmitrijs2005/garagekeeper/internal/server/repositories/workorders"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Cars(db dbx.DBTX) cars.Repository
	WorkOrders(db dbx.DBTX) workorders.Repository
	Attachments(db dbx.DBTX) workorders.AttachmentRepository
}

type PostgresRepositoryManager struct{}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Cars(db dbx.DBTX) cars.Repository {
	return cars.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) WorkOrders(db dbx.DBTX) workorders.Repository {
	return workorders.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Attachments(db dbx.DBTX) workorders.AttachmentRepository {
	return workorders.NewPostgresAttachmentRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies every pending migration embedded in the migrations package.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
