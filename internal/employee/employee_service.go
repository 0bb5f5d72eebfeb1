package employee

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	employeeerrors "github.com/Corose/dashboard/internal/employee/errors"
	"github.com/Corose/dashboard/internal/events"
	"github.com/Corose/dashboard/internal/messaging/kafka"
	"github.com/Corose/dashboard/internal/rbac"
	"github.com/Corose/dashboard/internal/shared/contextutil"
	"github.com/Corose/dashboard/internal/spreadsheet"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const StatsCacheKey = "roster:stats"

type ImportMode string

const (
	ImportModeReplace ImportMode = "replace"
	ImportModeAppend  ImportMode = "append"
)

func ParseImportMode(v string, fallback ImportMode) (ImportMode, error) {
	switch ImportMode(strings.ToLower(strings.TrimSpace(v))) {
	case "":
		return fallback, nil
	case ImportModeReplace:
		return ImportModeReplace, nil
	case ImportModeAppend:
		return ImportModeAppend, nil
	default:
		return "", employeeerrors.ErrInvalidImportMode
	}
}

// DefaultVacationBalance is the fixed yearly allotment every new roster
// entry starts with.
const DefaultVacationBalance = 12

//go:generate mockgen -source=employee_service.go -destination=mock/employee_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)
	GetAll(ctx context.Context) ([]EmployeeResponse, error)
	GetByID(ctx context.Context, id uint) (EmployeeResponse, error)
	Update(ctx context.Context, id uint, req UpdateEmployeeRequest) (EmployeeResponse, error)
	Delete(ctx context.Context, id uint) error
	Stats(ctx context.Context) (StatsResponse, error)
	Import(ctx context.Context, upload io.Reader, mode ImportMode) (ImportResult, error)
	Export(ctx context.Context) (*bytes.Buffer, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	outbox kafka.OutboxRepository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(db, repo, nil, rdb, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	outboxRepo kafka.OutboxRepository,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		outbox: outboxRepo,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

func (s *service) Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create employee requested",
		zap.String("request_id", rid),
		zap.String("usuario", req.Username),
		zap.String("equipo", req.Team),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create employee begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	e := &Employee{
		FullName:        req.FullName,
		Username:        req.Username,
		Email:           req.Email,
		Team:            req.Team,
		Manager:         req.Manager,
		AccessList:      strings.Join(req.AccessList, ","),
		Comments:        req.Comments,
		Active:          true,
		VacationBalance: DefaultVacationBalance,
	}

	if err := qtx.Insert(ctx, e); err != nil {
		s.logger.Error("create employee persist failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	// The legacy panel pinged the Teams channel only when a guest added
	// someone, so admins could review the entry.
	if contextutil.GetRole(ctx) == rbac.RoleGuest {
		if err := s.queueNotification(ctx, tx, events.EventEmployeeAdded,
			fmt.Sprintf("Nuevo usuario agregado: %s", e.FullName)); err != nil {
			return EmployeeResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create employee commit failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	s.invalidateStats(ctx)
	s.logger.Info("create employee success",
		zap.String("request_id", rid),
		zap.Uint("employee_id", e.ID),
	)

	return mapToResponse(*e), nil
}

func (s *service) GetAll(ctx context.Context) ([]EmployeeResponse, error) {
	employees, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("get all employees failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}
	return mapToListResponse(employees), nil
}

func (s *service) GetByID(ctx context.Context, id uint) (EmployeeResponse, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*e), nil
}

func (s *service) Update(ctx context.Context, id uint, req UpdateEmployeeRequest) (EmployeeResponse, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	e.FullName = req.FullName
	e.Username = req.Username
	e.Email = req.Email
	e.Team = req.Team
	e.Manager = req.Manager
	e.AccessList = strings.Join(req.AccessList, ",")
	e.Comments = req.Comments
	e.Active = req.Active

	if err := s.repo.Update(ctx, e); err != nil {
		s.logger.Error("update employee persist failed", zap.Uint("employee_id", id), zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	s.invalidateStats(ctx)
	s.logger.Info("update employee success", zap.Uint("employee_id", id))

	return mapToResponse(*e), nil
}

func (s *service) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return mapRepositoryError(err)
	}

	// ON DELETE CASCADE removes the employee's vacation ledger rows with it.
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("delete employee failed", zap.Uint("employee_id", id), zap.Error(err))
		return mapRepositoryError(err)
	}

	s.invalidateStats(ctx)
	s.logger.Info("delete employee success", zap.Uint("employee_id", id))
	return nil
}

func (s *service) Stats(ctx context.Context) (StatsResponse, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, StatsCacheKey).Result(); err == nil {
			var resp StatsResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	// singleflight keeps a dashboard refresh storm from hammering the counts
	v, err, _ := s.sf.Do(StatsCacheKey, func() (interface{}, error) {
		total, err := s.repo.Count(ctx)
		if err != nil {
			return nil, mapRepositoryError(err)
		}
		active, err := s.repo.CountByActive(ctx, true)
		if err != nil {
			return nil, mapRepositoryError(err)
		}
		inactive, err := s.repo.CountByActive(ctx, false)
		if err != nil {
			return nil, mapRepositoryError(err)
		}
		teams, err := s.repo.CountByTeam(ctx)
		if err != nil {
			return nil, mapRepositoryError(err)
		}

		resp := StatsResponse{
			Total:    total,
			Active:   active,
			Inactive: inactive,
			Teams:    make([]TeamCountResponse, len(teams)),
		}
		for i, t := range teams {
			resp.Teams[i] = TeamCountResponse{Team: t.Team, Count: t.Count}
		}

		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, StatsCacheKey, jsonData, 10*time.Minute)
			}
		}

		return resp, nil
	})

	if err != nil {
		return StatsResponse{}, err
	}

	return v.(StatsResponse), nil
}

func (s *service) Import(ctx context.Context, upload io.Reader, mode ImportMode) (ImportResult, error) {
	rid := contextutil.GetRequestID(ctx)

	// Parse completely before touching the database; a malformed file must
	// not leave a half-imported roster.
	rows, err := spreadsheet.Parse(upload)
	if err != nil {
		s.logger.Warn("roster import parse failed", zap.String("request_id", rid), zap.Error(err))
		return ImportResult{}, employeeerrors.ErrImportFailed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ImportResult{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if mode == ImportModeReplace {
		if err := qtx.DeleteAll(ctx); err != nil {
			s.logger.Error("roster import wipe failed", zap.Error(err))
			return ImportResult{}, mapRepositoryError(err)
		}
	}

	for _, row := range rows {
		e := &Employee{
			FullName:        row.Get("Nombre"),
			Username:        row.Get("Usuario"),
			Email:           row.Get("Correo"),
			Team:            row.Get("Equipo"),
			Manager:         row.Get("Jefe"),
			AccessList:      row.Get("Accesos"),
			Active:          true,
			VacationBalance: DefaultVacationBalance,
		}
		if err := qtx.Insert(ctx, e); err != nil {
			s.logger.Error("roster import insert failed", zap.Error(err))
			return ImportResult{}, mapRepositoryError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("roster import commit failed", zap.Error(err))
		return ImportResult{}, mapRepositoryError(err)
	}

	s.invalidateStats(ctx)
	s.logger.Info("roster import success",
		zap.String("request_id", rid),
		zap.Int("rows", len(rows)),
		zap.String("mode", string(mode)),
	)

	return ImportResult{Imported: len(rows), Mode: string(mode)}, nil
}

func (s *service) Export(ctx context.Context) (*bytes.Buffer, error) {
	employees, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	teams, err := s.repo.CountByTeam(ctx)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	rows := make([]spreadsheet.RosterRow, len(employees))
	for i, e := range employees {
		rows[i] = spreadsheet.RosterRow{
			ID:         e.ID,
			Name:       e.FullName,
			Username:   e.Username,
			Email:      e.Email,
			Team:       e.Team,
			Manager:    e.Manager,
			AccessList: e.AccessList,
			Comments:   e.Comments,
			CreatedAt:  e.CreatedAt,
		}
	}

	counts := make([]spreadsheet.TeamCount, len(teams))
	for i, t := range teams {
		counts[i] = spreadsheet.TeamCount{Team: t.Team, Count: t.Count}
	}

	return spreadsheet.Write(rows, counts)
}

func (s *service) queueNotification(ctx context.Context, tx *sql.Tx, eventType, text string) error {
	if s.outbox == nil {
		return nil
	}

	rid := contextutil.GetRequestID(ctx)
	event := events.NotificationEvent{
		EventType:  eventType,
		RequestID:  rid,
		Text:       text,
		OccurredAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	outboxRepo := s.outbox.WithTx(tx)
	if err := outboxRepo.Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "roster",
		AggregateID:   eventType,
		EventType:     eventType,
		Topic:         events.NotificationTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Error("queue notification failed", zap.String("event_type", eventType), zap.Error(err))
		return err
	}

	return nil
}

func (s *service) invalidateStats(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, StatsCacheKey).Err(); err != nil {
		s.logger.Error("failed to invalidate roster stats cache",
			zap.Error(err),
			zap.String("key", StatsCacheKey),
		)
	}
}

func mapToResponse(e Employee) EmployeeResponse {
	accessList := []string{}
	if e.AccessList != "" {
		accessList = strings.Split(e.AccessList, ",")
	}

	return EmployeeResponse{
		ID:              e.ID,
		FullName:        e.FullName,
		Username:        e.Username,
		Email:           e.Email,
		Team:            e.Team,
		Manager:         e.Manager,
		AccessList:      accessList,
		Comments:        e.Comments,
		Active:          e.Active,
		VacationBalance: e.VacationBalance,
		CreatedAt:       e.CreatedAt.Format(time.RFC3339),
	}
}

func mapToListResponse(employees []Employee) []EmployeeResponse {
	resp := make([]EmployeeResponse, len(employees))
	for i, e := range employees {
		resp[i] = mapToResponse(e)
	}
	return resp
}
