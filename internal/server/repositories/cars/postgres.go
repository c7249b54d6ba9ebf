package cars

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/garagekeeper/internal/common"
	"github.com/dmitrijs2005/garagekeeper/internal/dbx"
	"github.com/dmitrijs2005/garagekeeper/internal/server/models"
)

const selectCar = `SELECT id, make, model, year, vin, license_plate, owner_name, created_at FROM cars`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, car *models.Car) (*models.Car, error) {
	query :=
		`INSERT INTO cars (id, make, model, year, vin, license_plate, owner_name)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		car.ID, car.Make, car.Model, car.Year, car.VIN, car.LicensePlate, car.OwnerName,
	).Scan(&car.CreatedAt)
	if err != nil {
		return nil, mapWriteError(err)
	}
	return car, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Car, error) {
	c := &models.Car{}
	err := r.db.QueryRowContext(ctx, selectCar+` WHERE id = $1`, id).
		Scan(&c.ID, &c.Make, &c.Model, &c.Year, &c.VIN, &c.LicensePlate, &c.OwnerName, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Car, error) {
	rows, err := r.db.QueryContext(ctx, selectCar+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Car, 0)
	for rows.Next() {
		c := &models.Car{}
		if err := rows.Scan(&c.ID, &c.Make, &c.Model, &c.Year, &c.VIN, &c.LicensePlate, &c.OwnerName, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Update(ctx context.Context, car *models.Car) error {
	query :=
		`UPDATE cars SET make = $2, model = $3, year = $4, vin = $5, license_plate = $6, owner_name = $7
		 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		car.ID, car.Make, car.Model, car.Year, car.VIN, car.LicensePlate, car.OwnerName)
	if err != nil {
		return mapWriteError(err)
	}
	return dbx.ExpectRows(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cars WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectRows(res)
}

func mapWriteError(err error) error {
	if _, ok := dbx.UniqueViolation(err); ok {
		return &common.DuplicateError{Field: "vin"}
	}
	return fmt.Errorf("db error: %w", err)
}
