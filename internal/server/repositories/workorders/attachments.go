package workorders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/garagekeeper/internal/common"
	"github.com/dmitrijs2005/garagekeeper/internal/dbx"
	"github.com/dmitrijs2005/garagekeeper/internal/server/models"
)

type PostgresAttachmentRepository struct {
	db dbx.DBTX
}

func NewPostgresAttachmentRepository(db dbx.DBTX) *PostgresAttachmentRepository {
	return &PostgresAttachmentRepository{db: db}
}

func (r *PostgresAttachmentRepository) Create(ctx context.Context, a *models.Attachment) (*models.Attachment, error) {
	query :=
		`INSERT INTO work_order_attachments (id, work_order_id, file_name, storage_key)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`

	if err := r.db.QueryRowContext(ctx, query, a.ID, a.WorkOrderID, a.FileName, a.StorageKey).Scan(&a.CreatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresAttachmentRepository) Get(ctx context.Context, workOrderID, id string) (*models.Attachment, error) {
	query :=
		`SELECT id, work_order_id, file_name, storage_key, created_at FROM work_order_attachments
		 WHERE work_order_id = $1 AND id = $2`

	a := &models.Attachment{}
	err := r.db.QueryRowContext(ctx, query, workOrderID, id).
		Scan(&a.ID, &a.WorkOrderID, &a.FileName, &a.StorageKey, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresAttachmentRepository) ListByWorkOrder(ctx context.Context, workOrderID string) ([]*models.Attachment, error) {
	query :=
		`SELECT id, work_order_id, file_name, storage_key, created_at FROM work_order_attachments
		 WHERE work_order_id = $1
		 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, workOrderID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Attachment, 0)
	for rows.Next() {
		a := &models.Attachment{}
		if err := rows.Scan(&a.ID, &a.WorkOrderID, &a.FileName, &a.StorageKey, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
