package employee

import (
	"errors"
	"strings"

	employeeerrors "github.com/Corose/dashboard/internal/employee/errors"
	"github.com/Corose/dashboard/internal/shared/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return employeeerrors.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01": // serialization failure, deadlock
			return apperror.ErrConflict
		}
	}

	if strings.Contains(strings.ToLower(err.Error()), "could not serialize access") {
		return apperror.ErrConflict
	}

	return err
}
