package workorders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/garagekeeper/internal/common"
	"github.com/dmitrijs2005/garagekeeper/internal/dbx"
	"github.com/dmitrijs2005/garagekeeper/internal/server/models"
)

const selectWorkOrder = `SELECT id, car_id, title, description, status, assigned_to, created_by, created_at, updated_at
	FROM work_orders`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, wo *models.WorkOrder) (*models.WorkOrder, error) {
	query :=
		`INSERT INTO work_orders (id, car_id, title, description, status, assigned_to, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		wo.ID, wo.CarID, wo.Title, wo.Description, string(wo.Status), nullableID(wo.AssignedTo), wo.CreatedBy,
	).Scan(&wo.CreatedAt, &wo.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return wo, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.WorkOrder, error) {
	return r.getOne(ctx, selectWorkOrder+` WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.WorkOrder, error) {
	return r.getOne(ctx, selectWorkOrder+` WHERE id = $1 FOR UPDATE`, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, query, id string) (*models.WorkOrder, error) {
	wo, err := scanWorkOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return wo, nil
}

func (r *PostgresRepository) List(ctx context.Context, filter models.WorkOrderFilter) ([]*models.WorkOrder, error) {
	var (
		conds []string
		args  []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if filter.CarID != "" {
		add("car_id", filter.CarID)
	}
	if filter.Status != "" {
		add("status", string(filter.Status))
	}
	if filter.AssignedTo != "" {
		add("assigned_to", filter.AssignedTo)
	}

	query := selectWorkOrder
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]*models.WorkOrder, 0)
	for rows.Next() {
		wo, err := scanWorkOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, wo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Update(ctx context.Context, wo *models.WorkOrder) error {
	query :=
		`UPDATE work_orders SET title = $2, description = $3, status = $4, assigned_to = $5, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		wo.ID, wo.Title, wo.Description, string(wo.Status), nullableID(wo.AssignedTo),
	).Scan(&wo.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM work_orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectRows(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanWorkOrder(s scanner) (*models.WorkOrder, error) {
	var (
		wo       models.WorkOrder
		status   string
		assigned sql.NullString
	)
	if err := s.Scan(&wo.ID, &wo.CarID, &wo.Title, &wo.Description, &status, &assigned,
		&wo.CreatedBy, &wo.CreatedAt, &wo.UpdatedAt); err != nil {
		return nil, err
	}
	wo.Status = models.WorkOrderStatus(status)
	if assigned.Valid {
		wo.AssignedTo = &assigned.String
	}
	return &wo, nil
}

func nullableID(id *string) sql.NullString {
	if id == nil {
		return sql.NullString{}
	}
	return dbx.NullString(*id)
}
