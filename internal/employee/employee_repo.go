package employee

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// TeamCount is one row of the per-team aggregation.
type TeamCount struct {
	Team  string
	Count int64
}

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository

	// tx-aware writes, used inside multi-write transactions
	Insert(ctx context.Context, e *Employee) error
	DeleteAll(ctx context.Context) error

	FindAll(ctx context.Context) ([]Employee, error)
	FindByID(ctx context.Context, id uint) (*Employee, error)
	Update(ctx context.Context, e *Employee) error
	Delete(ctx context.Context, id uint) error

	Count(ctx context.Context) (int64, error)
	CountByActive(ctx context.Context, active bool) (int64, error)
	CountByTeam(ctx context.Context) ([]TeamCount, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) Insert(ctx context.Context, e *Employee) error {
	if r.tx == nil {
		return r.db.WithContext(ctx).Create(e).Error
	}

	query := `
        INSERT INTO employees (
            nombre, usuario, correo, equipo, jefe, accesos, comentarios, activo, vacaciones_disponibles, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
        RETURNING id, created_at
    `

	return r.tx.QueryRowContext(
		ctx, query,
		e.FullName, e.Username, e.Email, e.Team, e.Manager,
		e.AccessList, e.Comments, e.Active, e.VacationBalance,
	).Scan(&e.ID, &e.CreatedAt)
}

func (r *repository) DeleteAll(ctx context.Context) error {
	// vacations go with the roster via ON DELETE CASCADE
	if r.tx == nil {
		return r.db.WithContext(ctx).Exec(`DELETE FROM employees`).Error
	}
	_, err := r.tx.ExecContext(ctx, `DELETE FROM employees`)
	return err
}

func (r *repository) FindAll(ctx context.Context) ([]Employee, error) {
	var employees []Employee
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&employees).Error
	return employees, err
}

func (r *repository) FindByID(ctx context.Context, id uint) (*Employee, error) {
	var e Employee
	err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error
	return &e, err
}

func (r *repository) Update(ctx context.Context, e *Employee) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&Employee{}, "id = ?", id).Error
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Employee{}).Count(&count).Error
	return count, err
}

func (r *repository) CountByActive(ctx context.Context, active bool) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Employee{}).
		Where("activo = ?", active).
		Count(&count).Error
	return count, err
}

func (r *repository) CountByTeam(ctx context.Context) ([]TeamCount, error) {
	var counts []TeamCount
	err := r.db.WithContext(ctx).
		Model(&Employee{}).
		Select("equipo AS team, COUNT(id) AS count").
		Group("equipo").
		Order("equipo ASC").
		Scan(&counts).Error
	return counts, err
}
