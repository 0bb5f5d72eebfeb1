package vacation

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// EmployeeHold is the employee row as seen under a FOR UPDATE lock: just
// enough to validate and mutate the balance.
type EmployeeHold struct {
	ID       uint
	FullName string
	Balance  int
}

//go:generate mockgen -source=vacation_repo.go -destination=mock/vacation_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository

	// Row-locking operations; only valid inside a transaction.
	LockEmployee(ctx context.Context, employeeID uint) (*EmployeeHold, error)
	UpdateEmployeeBalance(ctx context.Context, employeeID uint, balance int) error
	LockByID(ctx context.Context, id uint) (*Vacation, error)
	Insert(ctx context.Context, v *Vacation) error
	UpdateDates(ctx context.Context, v *Vacation) error
	DeleteRow(ctx context.Context, id uint) error

	FindAll(ctx context.Context) ([]Vacation, error)
	FindByID(ctx context.Context, id uint) (*Vacation, error)
	FindAllByStatus(ctx context.Context, status string) ([]Vacation, error)
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

// LockEmployee takes the row lock that serializes every balance check and
// mutation for one employee. Two concurrent registrations can therefore
// never both pass the balance pre-check against a stale value.
func (r *repository) LockEmployee(ctx context.Context, employeeID uint) (*EmployeeHold, error) {
	query := `
        SELECT id, nombre, vacaciones_disponibles
        FROM employees
        WHERE id = $1
        FOR UPDATE
    `

	var hold EmployeeHold
	err := r.tx.QueryRowContext(ctx, query, employeeID).
		Scan(&hold.ID, &hold.FullName, &hold.Balance)
	if err != nil {
		return nil, err
	}
	return &hold, nil
}

func (r *repository) UpdateEmployeeBalance(ctx context.Context, employeeID uint, balance int) error {
	_, err := r.tx.ExecContext(ctx,
		`UPDATE employees SET vacaciones_disponibles = $2 WHERE id = $1`,
		employeeID, balance,
	)
	return err
}

func (r *repository) LockByID(ctx context.Context, id uint) (*Vacation, error) {
	query := `
        SELECT id, employee_id, fecha_inicio, fecha_fin, dias_solicitados, estado, registrado_por, anio, created_at
        FROM vacations
        WHERE id = $1
        FOR UPDATE
    `

	var v Vacation
	err := r.tx.QueryRowContext(ctx, query, id).Scan(
		&v.ID, &v.EmployeeID, &v.StartDate, &v.EndDate,
		&v.DaysRequested, &v.Status, &v.RegisteredBy, &v.Year, &v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *repository) Insert(ctx context.Context, v *Vacation) error {
	query := `
        INSERT INTO vacations (
            employee_id, fecha_inicio, fecha_fin, dias_solicitados, estado, registrado_por, anio, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
        RETURNING id, created_at
    `

	return r.tx.QueryRowContext(
		ctx, query,
		v.EmployeeID, v.StartDate, v.EndDate, v.DaysRequested,
		v.Status, v.RegisteredBy, v.Year,
	).Scan(&v.ID, &v.CreatedAt)
}

func (r *repository) UpdateDates(ctx context.Context, v *Vacation) error {
	_, err := r.tx.ExecContext(ctx,
		`UPDATE vacations SET fecha_inicio = $2, fecha_fin = $3, dias_solicitados = $4, anio = $5 WHERE id = $1`,
		v.ID, v.StartDate, v.EndDate, v.DaysRequested, v.Year,
	)
	return err
}

func (r *repository) DeleteRow(ctx context.Context, id uint) error {
	_, err := r.tx.ExecContext(ctx, `DELETE FROM vacations WHERE id = $1`, id)
	return err
}

func (r *repository) FindAll(ctx context.Context) ([]Vacation, error) {
	var vacations []Vacation
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Order("fecha_inicio DESC").
		Find(&vacations).Error
	return vacations, err
}

func (r *repository) FindByID(ctx context.Context, id uint) (*Vacation, error) {
	var v Vacation
	err := r.db.WithContext(ctx).
		Preload("Employee").
		First(&v, "id = ?", id).Error
	return &v, err
}

func (r *repository) FindAllByStatus(ctx context.Context, status string) ([]Vacation, error) {
	var vacations []Vacation
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Where("estado = ?", status).
		Order("fecha_inicio ASC").
		Find(&vacations).Error
	return vacations, err
}
