package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/garagekeeper/internal/common"
	"github.com/dmitrijs2005/garagekeeper/internal/dbx"
	"github.com/dmitrijs2005/garagekeeper/internal/server/models"
)

const selectUser = `SELECT id, username, password_hash, is_admin,
		first_name, last_name, job_title, department, email, phone_number,
		hire_date, salary, date_of_birth, gender, address, employment_status, created_at
	FROM users`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (id, username, password_hash, is_admin,
			first_name, last_name, job_title, department, email, phone_number,
			hire_date, salary, date_of_birth, gender, address, employment_status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 RETURNING created_at`

	p := user.Profile
	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Username, user.PasswordHash, user.IsAdmin,
		p.FirstName, p.LastName, p.JobTitle, p.Department, dbx.NullString(p.Email), p.PhoneNumber,
		dbx.NullTime(p.HireDate), dbx.NullInt64(p.Salary), dbx.NullTime(p.DateOfBirth), p.Gender, p.Address, p.EmploymentStatus,
	).Scan(&user.CreatedAt)
	if err != nil {
		return nil, mapWriteError(err)
	}
	return user, nil
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, selectUser+` WHERE username = $1`, username)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, selectUser+` WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, selectUser+` WHERE id = $1 FOR UPDATE`, id)
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx, selectUser+` ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]*models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Update(ctx context.Context, user *models.User) error {
	query :=
		`UPDATE users SET username = $2, password_hash = $3, is_admin = $4,
			first_name = $5, last_name = $6, job_title = $7, department = $8, email = $9, phone_number = $10,
			hire_date = $11, salary = $12, date_of_birth = $13, gender = $14, address = $15, employment_status = $16
		 WHERE id = $1`

	p := user.Profile
	res, err := r.db.ExecContext(ctx, query,
		user.ID, user.Username, user.PasswordHash, user.IsAdmin,
		p.FirstName, p.LastName, p.JobTitle, p.Department, dbx.NullString(p.Email), p.PhoneNumber,
		dbx.NullTime(p.HireDate), dbx.NullInt64(p.Salary), dbx.NullTime(p.DateOfBirth), p.Gender, p.Address, p.EmploymentStatus,
	)
	if err != nil {
		return mapWriteError(err)
	}
	return dbx.ExpectRows(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectRows(res)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*models.User, error) {
	var (
		u                     models.User
		email                 sql.NullString
		hireDate, dateOfBirth sql.NullTime
		salary                sql.NullInt64
	)
	err := s.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsAdmin,
		&u.FirstName, &u.LastName, &u.JobTitle, &u.Department, &email, &u.PhoneNumber,
		&hireDate, &salary, &dateOfBirth, &u.Gender, &u.Address, &u.EmploymentStatus, &u.CreatedAt)
	if err != nil {
		return nil, err
	}

	u.Email = email.String
	if hireDate.Valid {
		u.HireDate = &hireDate.Time
	}
	if dateOfBirth.Valid {
		u.DateOfBirth = &dateOfBirth.Time
	}
	if salary.Valid {
		u.Salary = &salary.Int64
	}
	return &u, nil
}

func mapWriteError(err error) error {
	if constraint, ok := dbx.UniqueViolation(err); ok {
		switch constraint {
		case "users_email_key":
			return &common.DuplicateError{Field: "email"}
		default:
			return &common.DuplicateError{Field: "username"}
		}
	}
	return fmt.Errorf("db error: %w", err)
}
