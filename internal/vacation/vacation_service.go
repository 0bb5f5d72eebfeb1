package vacation

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Corose/dashboard/internal/events"
	"github.com/Corose/dashboard/internal/messaging/kafka"
	"github.com/Corose/dashboard/internal/shared/apperror"
	"github.com/Corose/dashboard/internal/shared/contextutil"
	vacationerrors "github.com/Corose/dashboard/internal/vacation/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// Config controls the one policy decision that is still disputed. The legacy
// panel never touched the balance when a request's dates were edited, even
// though the original day count had already been debited. EditAdjustsBalance
// keeps that behavior switchable instead of silently changing it.
type Config struct {
	EditAdjustsBalance bool
}

//go:generate mockgen -source=vacation_service.go -destination=mock/vacation_service_mock.go -package=mock
type Service interface {
	Register(ctx context.Context, actorUsername string, req RegisterVacationRequest) (VacationResponse, error)
	GetAll(ctx context.Context) ([]VacationResponse, error)
	GetByID(ctx context.Context, id uint) (VacationResponse, error)
	Update(ctx context.Context, id uint, req EditVacationRequest) (VacationResponse, error)
	Delete(ctx context.Context, id uint) error
	Overview(ctx context.Context, today time.Time) (OverviewResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	outbox kafka.OutboxRepository
	cfg    Config
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, cfg Config, logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(db, repo, nil, cfg, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	outboxRepo kafka.OutboxRepository,
	cfg Config,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("vacation.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("vacation.service")
	}
	return &service{db: db, repo: repo, outbox: outboxRepo, cfg: cfg, logger: l}
}

func (s *service) Register(ctx context.Context, actorUsername string, req RegisterVacationRequest) (VacationResponse, error) {
	s.logger.Debug("register vacation requested",
		zap.String("actor", actorUsername),
		zap.Uint("employee_id", req.EmployeeID),
		zap.String("fecha_inicio", req.StartDate),
		zap.String("fecha_fin", req.EndDate),
	)

	startDate, endDate, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		s.logger.Warn("register vacation validation failed", zap.Error(err))
		return VacationResponse{}, err
	}

	days := daysInclusive(startDate, endDate)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("register vacation begin tx failed", zap.Error(err))
		return VacationResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	// Balance check and decrement happen under the same employee row lock,
	// inside one transaction with the ledger insert.
	hold, err := qtx.LockEmployee(ctx, req.EmployeeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return VacationResponse{}, vacationerrors.ErrEmployeeNotFound
		}
		s.logger.Error("register vacation lock employee failed", zap.Error(err))
		return VacationResponse{}, mapRepositoryError(err)
	}

	if hold.Balance < days {
		s.logger.Warn("register vacation insufficient balance",
			zap.Uint("employee_id", req.EmployeeID),
			zap.Int("balance", hold.Balance),
			zap.Int("requested", days),
		)
		return VacationResponse{}, vacationerrors.ErrInsufficientBalance
	}

	if err := qtx.UpdateEmployeeBalance(ctx, req.EmployeeID, hold.Balance-days); err != nil {
		s.logger.Error("register vacation balance update failed", zap.Error(err))
		return VacationResponse{}, mapRepositoryError(err)
	}

	v := &Vacation{
		EmployeeID:    req.EmployeeID,
		StartDate:     startDate,
		EndDate:       endDate,
		DaysRequested: days,
		Status:        StatusApproved,
		RegisteredBy:  actorUsername,
		Year:          startDate.Year(),
	}

	if err := qtx.Insert(ctx, v); err != nil {
		s.logger.Error("register vacation persist failed", zap.Error(err))
		return VacationResponse{}, mapRepositoryError(err)
	}

	if err := s.queueNotification(ctx, tx, events.EventVacationRegistered,
		fmt.Sprintf("Vacaciones registradas: %s, %d días desde %s",
			hold.FullName, days, startDate.Format("2006-01-02"))); err != nil {
		return VacationResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("register vacation commit failed", zap.Error(err))
		return VacationResponse{}, mapRepositoryError(err)
	}

	s.logger.Info("register vacation success",
		zap.Uint("vacation_id", v.ID),
		zap.Uint("employee_id", req.EmployeeID),
		zap.Int("days", days),
	)

	resp := mapToResponse(*v)
	resp.EmployeeName = hold.FullName
	return resp, nil
}

func (s *service) GetAll(ctx context.Context) ([]VacationResponse, error) {
	vacations, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return mapToListResponse(vacations), nil
}

func (s *service) GetByID(ctx context.Context, id uint) (VacationResponse, error) {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return VacationResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*v), nil
}

func (s *service) Update(ctx context.Context, id uint, req EditVacationRequest) (VacationResponse, error) {
	startDate, endDate, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return VacationResponse{}, err
	}

	newDays := daysInclusive(startDate, endDate)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return VacationResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	v, err := qtx.LockByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return VacationResponse{}, vacationerrors.ErrVacationNotFound
		}
		return VacationResponse{}, mapRepositoryError(err)
	}

	if s.cfg.EditAdjustsBalance {
		delta := newDays - v.DaysRequested
		if delta != 0 {
			hold, err := qtx.LockEmployee(ctx, v.EmployeeID)
			if err != nil {
				return VacationResponse{}, mapRepositoryError(err)
			}
			if delta > 0 && hold.Balance < delta {
				return VacationResponse{}, vacationerrors.ErrInsufficientBalance
			}
			if err := qtx.UpdateEmployeeBalance(ctx, v.EmployeeID, hold.Balance-delta); err != nil {
				return VacationResponse{}, mapRepositoryError(err)
			}
		}
	}

	v.StartDate = startDate
	v.EndDate = endDate
	v.DaysRequested = newDays
	v.Year = startDate.Year()

	if err := qtx.UpdateDates(ctx, v); err != nil {
		s.logger.Error("update vacation persist failed", zap.Uint("vacation_id", id), zap.Error(err))
		return VacationResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return VacationResponse{}, mapRepositoryError(err)
	}

	s.logger.Info("update vacation success",
		zap.Uint("vacation_id", id),
		zap.Int("days", newDays),
		zap.Bool("balance_adjusted", s.cfg.EditAdjustsBalance),
	)

	return mapToResponse(*v), nil
}

func (s *service) Delete(ctx context.Context, id uint) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	v, err := qtx.LockByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return vacationerrors.ErrVacationNotFound
		}
		return mapRepositoryError(err)
	}

	hold, err := qtx.LockEmployee(ctx, v.EmployeeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return vacationerrors.ErrEmployeeNotFound
		}
		return mapRepositoryError(err)
	}

	// Restore exactly what was debited when the request was registered.
	if err := qtx.UpdateEmployeeBalance(ctx, v.EmployeeID, hold.Balance+v.DaysRequested); err != nil {
		return mapRepositoryError(err)
	}

	if err := qtx.DeleteRow(ctx, id); err != nil {
		return mapRepositoryError(err)
	}

	if err := s.queueNotification(ctx, tx, events.EventVacationCancelled,
		fmt.Sprintf("Vacaciones canceladas: %s, %d días devueltos",
			hold.FullName, v.DaysRequested)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return mapRepositoryError(err)
	}

	s.logger.Info("delete vacation success",
		zap.Uint("vacation_id", id),
		zap.Uint("employee_id", v.EmployeeID),
		zap.Int("days_restored", v.DaysRequested),
	)

	return nil
}

func (s *service) Overview(ctx context.Context, today time.Time) (OverviewResponse, error) {
	today = truncateToDate(today)

	vacations, err := s.repo.FindAllByStatus(ctx, StatusApproved)
	if err != nil {
		return OverviewResponse{}, mapRepositoryError(err)
	}

	resp := OverviewResponse{
		Active:   []ActiveVacationResponse{},
		Upcoming: []UpcomingVacationResponse{},
		Finished: []VacationResponse{},
	}

	for _, v := range vacations {
		start := truncateToDate(v.StartDate)
		end := truncateToDate(v.EndDate)

		switch {
		case start.After(today):
			resp.Upcoming = append(resp.Upcoming, UpcomingVacationResponse{
				VacationResponse: mapToResponse(v),
				DaysUntilStart:   daysBetween(today, start),
			})
		case end.Before(today):
			resp.Finished = append(resp.Finished, mapToResponse(v))
		default:
			resp.Active = append(resp.Active, ActiveVacationResponse{
				VacationResponse: mapToResponse(v),
				DaysRemaining:    daysBetween(today, end),
			})
		}

		if v.Year == today.Year() {
			resp.TotalDaysThisYear += v.DaysRequested
		}
	}

	sort.Slice(resp.Active, func(i, j int) bool {
		return resp.Active[i].EndDate < resp.Active[j].EndDate
	})
	sort.Slice(resp.Upcoming, func(i, j int) bool {
		return resp.Upcoming[i].StartDate < resp.Upcoming[j].StartDate
	})
	sort.Slice(resp.Finished, func(i, j int) bool {
		return resp.Finished[i].EndDate > resp.Finished[j].EndDate
	})

	return resp, nil
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
		AggregateType: "vacation",
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

func parseDateRange(start, end string) (time.Time, time.Time, error) {
	startDate, err := parseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	endDate, err := parseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if startDate.After(endDate) {
		return time.Time{}, time.Time{}, vacationerrors.ErrInvalidDateRange
	}
	return startDate, endDate, nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, vacationerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysInclusive counts both endpoints: a same-day request is one day.
func daysInclusive(start, end time.Time) int {
	return daysBetween(start, end) + 1
}

func daysBetween(a, b time.Time) int {
	return int(truncateToDate(b).Sub(truncateToDate(a)).Hours() / 24)
}

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return vacationerrors.ErrVacationNotFound
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

func mapToResponse(v Vacation) VacationResponse {
	resp := VacationResponse{
		ID:            v.ID,
		EmployeeID:    v.EmployeeID,
		StartDate:     v.StartDate.Format("2006-01-02"),
		EndDate:       v.EndDate.Format("2006-01-02"),
		DaysRequested: v.DaysRequested,
		Status:        v.Status,
		RegisteredBy:  v.RegisteredBy,
		Year:          v.Year,
	}
	if v.Employee != nil {
		resp.EmployeeName = v.Employee.FullName
	}
	return resp
}

func mapToListResponse(vacations []Vacation) []VacationResponse {
	resp := make([]VacationResponse, len(vacations))
	for i, v := range vacations {
		resp[i] = mapToResponse(v)
	}
	return resp
}
