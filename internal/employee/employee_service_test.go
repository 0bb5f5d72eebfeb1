package employee_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Corose/dashboard/internal/employee"
	employeeerrors "github.com/Corose/dashboard/internal/employee/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type fakeEmployeeRepository struct {
	withTxFn        func(tx *sql.Tx) employee.Repository
	insertFn        func(ctx context.Context, e *employee.Employee) error
	deleteAllFn     func(ctx context.Context) error
	findAllFn       func(ctx context.Context) ([]employee.Employee, error)
	findByIDFn      func(ctx context.Context, id uint) (*employee.Employee, error)
	updateFn        func(ctx context.Context, e *employee.Employee) error
	deleteFn        func(ctx context.Context, id uint) error
	countFn         func(ctx context.Context) (int64, error)
	countByActiveFn func(ctx context.Context, active bool) (int64, error)
	countByTeamFn   func(ctx context.Context) ([]employee.TeamCount, error)
}

func (f *fakeEmployeeRepository) WithTx(tx *sql.Tx) employee.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeEmployeeRepository) Insert(ctx context.Context, e *employee.Employee) error {
	if f.insertFn != nil {
		return f.insertFn(ctx, e)
	}
	return nil
}

func (f *fakeEmployeeRepository) DeleteAll(ctx context.Context) error {
	if f.deleteAllFn != nil {
		return f.deleteAllFn(ctx)
	}
	return nil
}

func (f *fakeEmployeeRepository) FindAll(ctx context.Context) ([]employee.Employee, error) {
	if f.findAllFn != nil {
		return f.findAllFn(ctx)
	}
	return nil, nil
}

func (f *fakeEmployeeRepository) FindByID(ctx context.Context, id uint) (*employee.Employee, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEmployeeRepository) Update(ctx context.Context, e *employee.Employee) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, e)
	}
	return nil
}

func (f *fakeEmployeeRepository) Delete(ctx context.Context, id uint) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakeEmployeeRepository) Count(ctx context.Context) (int64, error) {
	if f.countFn != nil {
		return f.countFn(ctx)
	}
	return 0, nil
}

func (f *fakeEmployeeRepository) CountByActive(ctx context.Context, active bool) (int64, error) {
	if f.countByActiveFn != nil {
		return f.countByActiveFn(ctx, active)
	}
	return 0, nil
}

func (f *fakeEmployeeRepository) CountByTeam(ctx context.Context) ([]employee.TeamCount, error) {
	if f.countByTeamFn != nil {
		return f.countByTeamFn(ctx)
	}
	return nil, nil
}

type employeeServiceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	service employee.Service
	repo    *fakeEmployeeRepository
}

func setupEmployeeServiceTest(t *testing.T) *employeeServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeEmployeeRepository{}
	svc := employee.NewService(db, repo, nil)

	return &employeeServiceDeps{
		db:      db,
		sqlMock: sqlMock,
		service: svc,
		repo:    repo,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

// buildRosterFile assembles a minimal roster workbook in the import layout.
func buildRosterFile(t *testing.T, rows [][]string) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	headers := []string{"Nombre", "Usuario", "Correo", "Equipo", "Jefe", "Accesos"}
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		assert.NoError(t, err)
		assert.NoError(t, f.SetCellValue(sheet, cell, h))
	}
	for i, row := range rows {
		for col, v := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			assert.NoError(t, err)
			assert.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}

	buf, err := f.WriteToBuffer()
	assert.NoError(t, err)
	return buf
}

func TestEmployeeService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success seeds default vacation balance", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		req := employee.CreateEmployeeRequest{
			FullName:   "Ana Torres",
			Username:   "ana.torres",
			Email:      "ana.torres@example.com",
			Team:       "Plataforma",
			Manager:    "Luis Vega",
			AccessList: []string{"VPN", "Jira"},
		}

		deps.repo.insertFn = func(ctx context.Context, e *employee.Employee) error {
			assert.Equal(t, "Ana Torres", e.FullName)
			assert.Equal(t, "VPN,Jira", e.AccessList)
			assert.True(t, e.Active)
			assert.Equal(t, employee.DefaultVacationBalance, e.VacationBalance)
			e.ID = 7
			e.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
			return nil
		}

		resp, err := deps.service.Create(ctx, req)

		assert.NoError(t, err)
		assert.Equal(t, uint(7), resp.ID)
		assert.Equal(t, []string{"VPN", "Jira"}, resp.AccessList)
		assert.Equal(t, 12, resp.VacationBalance)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative insert failure rolls back", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.insertFn = func(ctx context.Context, e *employee.Employee) error {
			return errors.New("db error")
		}

		_, err := deps.service.Create(ctx, employee.CreateEmployeeRequest{
			FullName: "Ana Torres",
			Username: "ana.torres",
			Email:    "ana.torres@example.com",
			Team:     "Plataforma",
		})

		assert.Error(t, err)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestEmployeeService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("negative unknown employee", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByIDFn = func(ctx context.Context, id uint) (*employee.Employee, error) {
			return nil, gorm.ErrRecordNotFound
		}

		err := deps.service.Delete(ctx, 404)

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})

	t.Run("success", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByIDFn = func(ctx context.Context, id uint) (*employee.Employee, error) {
			return &employee.Employee{ID: id}, nil
		}
		deleted := false
		deps.repo.deleteFn = func(ctx context.Context, id uint) error {
			assert.Equal(t, uint(7), id)
			deleted = true
			return nil
		}

		err := deps.service.Delete(ctx, 7)

		assert.NoError(t, err)
		assert.True(t, deleted)
	})
}

func TestEmployeeService_Import(t *testing.T) {
	ctx := context.Background()

	t.Run("replace mode wipes before inserting", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		upload := buildRosterFile(t, [][]string{
			{"Ana Torres", "ana.torres", "ana@example.com", "Plataforma", "Luis Vega", "VPN"},
			{"Marco Ruiz", "marco.ruiz", "marco@example.com", "Datos", "", ""},
		})

		wiped := false
		deps.repo.deleteAllFn = func(ctx context.Context) error {
			wiped = true
			return nil
		}
		var inserted []employee.Employee
		deps.repo.insertFn = func(ctx context.Context, e *employee.Employee) error {
			assert.True(t, wiped, "wipe must happen before the first insert")
			inserted = append(inserted, *e)
			return nil
		}

		result, err := deps.service.Import(ctx, upload, employee.ImportModeReplace)

		assert.NoError(t, err)
		assert.Equal(t, 2, result.Imported)
		assert.Equal(t, "replace", result.Mode)
		assert.Len(t, inserted, 2)
		assert.Equal(t, "Ana Torres", inserted[0].FullName)
		assert.Equal(t, employee.DefaultVacationBalance, inserted[0].VacationBalance)
		// Missing cells come through as empty strings, not errors.
		assert.Equal(t, "", inserted[1].Manager)
		assert.Equal(t, "", inserted[1].AccessList)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("append mode keeps existing rows", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		upload := buildRosterFile(t, [][]string{
			{"Ana Torres", "ana.torres", "ana@example.com", "Plataforma", "", ""},
		})

		deps.repo.deleteAllFn = func(ctx context.Context) error {
			t.Fatal("append mode must not wipe the roster")
			return nil
		}

		result, err := deps.service.Import(ctx, upload, employee.ImportModeAppend)

		assert.NoError(t, err)
		assert.Equal(t, 1, result.Imported)
		assert.Equal(t, "append", result.Mode)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative malformed file writes nothing", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.db.Close()

		deps.repo.insertFn = func(ctx context.Context, e *employee.Employee) error {
			t.Fatal("a malformed file must not reach the database")
			return nil
		}

		_, err := deps.service.Import(ctx, strings.NewReader("not a spreadsheet"), employee.ImportModeReplace)

		assert.ErrorIs(t, err, employeeerrors.ErrImportFailed)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative insert failure aborts the whole import", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		upload := buildRosterFile(t, [][]string{
			{"Ana Torres", "ana.torres", "ana@example.com", "Plataforma", "", ""},
			{"Marco Ruiz", "marco.ruiz", "marco@example.com", "Datos", "", ""},
		})

		calls := 0
		deps.repo.insertFn = func(ctx context.Context, e *employee.Employee) error {
			calls++
			if calls == 2 {
				return errors.New("db error")
			}
			return nil
		}

		_, err := deps.service.Import(ctx, upload, employee.ImportModeAppend)

		assert.Error(t, err)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestEmployeeService_Stats(t *testing.T) {
	ctx := context.Background()

	t.Run("cache miss computes and stores", func(t *testing.T) {
		db, sqlMock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		rdb, redisMock := redismock.NewClientMock()
		repo := &fakeEmployeeRepository{
			countFn: func(ctx context.Context) (int64, error) { return 10, nil },
			countByActiveFn: func(ctx context.Context, active bool) (int64, error) {
				if active {
					return 8, nil
				}
				return 2, nil
			},
			countByTeamFn: func(ctx context.Context) ([]employee.TeamCount, error) {
				return []employee.TeamCount{{Team: "Datos", Count: 4}, {Team: "Plataforma", Count: 6}}, nil
			},
		}
		svc := employee.NewService(db, repo, rdb)

		expected := employee.StatsResponse{
			Total:    10,
			Active:   8,
			Inactive: 2,
			Teams: []employee.TeamCountResponse{
				{Team: "Datos", Count: 4},
				{Team: "Plataforma", Count: 6},
			},
		}
		payload, err := json.Marshal(expected)
		assert.NoError(t, err)

		redisMock.ExpectGet(employee.StatsCacheKey).RedisNil()
		redisMock.ExpectSet(employee.StatsCacheKey, payload, 10*time.Minute).SetVal("OK")

		resp, err := svc.Stats(ctx)

		assert.NoError(t, err)
		assert.Equal(t, expected, resp)
		assert.NoError(t, redisMock.ExpectationsWereMet())
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})

	t.Run("cache hit skips the counts", func(t *testing.T) {
		db, _, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		rdb, redisMock := redismock.NewClientMock()
		repo := &fakeEmployeeRepository{
			countFn: func(ctx context.Context) (int64, error) {
				t.Fatal("cached stats must not hit the repository")
				return 0, nil
			},
		}
		svc := employee.NewService(db, repo, rdb)

		cached := employee.StatsResponse{Total: 3, Active: 3, Teams: []employee.TeamCountResponse{}}
		payload, err := json.Marshal(cached)
		assert.NoError(t, err)
		redisMock.ExpectGet(employee.StatsCacheKey).SetVal(string(payload))

		resp, err := svc.Stats(ctx)

		assert.NoError(t, err)
		assert.Equal(t, cached, resp)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("negative count failure", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.db.Close()

		deps.repo.countFn = func(ctx context.Context) (int64, error) {
			return 0, errors.New("db error")
		}

		_, err := deps.service.Stats(ctx)

		assert.Error(t, err)
	})
}

func TestEmployeeService_Export(t *testing.T) {
	ctx := context.Background()

	t.Run("success produces a readable workbook", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.db.Close()

		deps.repo.findAllFn = func(ctx context.Context) ([]employee.Employee, error) {
			return []employee.Employee{
				{
					ID: 1, FullName: "Ana Torres", Username: "ana.torres",
					Email: "ana@example.com", Team: "Plataforma",
					CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				},
			}, nil
		}
		deps.repo.countByTeamFn = func(ctx context.Context) ([]employee.TeamCount, error) {
			return []employee.TeamCount{{Team: "Plataforma", Count: 1}}, nil
		}

		buf, err := deps.service.Export(ctx)

		assert.NoError(t, err)
		f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
		assert.NoError(t, err)
		defer f.Close()

		assert.Equal(t, []string{"Usuarios", "Estadísticas"}, f.GetSheetList())
		name, err := f.GetCellValue("Usuarios", "B2")
		assert.NoError(t, err)
		assert.Equal(t, "Ana Torres", name)
	})

	t.Run("negative repo error", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.db.Close()

		deps.repo.findAllFn = func(ctx context.Context) ([]employee.Employee, error) {
			return nil, errors.New("db error")
		}

		_, err := deps.service.Export(ctx)

		assert.Error(t, err)
	})
}
