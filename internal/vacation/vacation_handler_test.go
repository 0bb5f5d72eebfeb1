package vacation_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Corose/dashboard/internal/rbac"
	"github.com/Corose/dashboard/internal/shared/contextutil"
	"github.com/Corose/dashboard/internal/vacation"
	vacationerrors "github.com/Corose/dashboard/internal/vacation/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *apiError       `json:"error"`
}

func decodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	err := json.Unmarshal(body, &env)
	assert.NoError(t, err)
	return env
}

type fakeVacationService struct {
	registerFn func(ctx context.Context, actorUsername string, req vacation.RegisterVacationRequest) (vacation.VacationResponse, error)
	getAllFn   func(ctx context.Context) ([]vacation.VacationResponse, error)
	getByIDFn  func(ctx context.Context, id uint) (vacation.VacationResponse, error)
	updateFn   func(ctx context.Context, id uint, req vacation.EditVacationRequest) (vacation.VacationResponse, error)
	deleteFn   func(ctx context.Context, id uint) error
	overviewFn func(ctx context.Context, today time.Time) (vacation.OverviewResponse, error)
}

func (f *fakeVacationService) Register(ctx context.Context, actorUsername string, req vacation.RegisterVacationRequest) (vacation.VacationResponse, error) {
	return f.registerFn(ctx, actorUsername, req)
}
func (f *fakeVacationService) GetAll(ctx context.Context) ([]vacation.VacationResponse, error) {
	return f.getAllFn(ctx)
}
func (f *fakeVacationService) GetByID(ctx context.Context, id uint) (vacation.VacationResponse, error) {
	return f.getByIDFn(ctx, id)
}
func (f *fakeVacationService) Update(ctx context.Context, id uint, req vacation.EditVacationRequest) (vacation.VacationResponse, error) {
	return f.updateFn(ctx, id, req)
}
func (f *fakeVacationService) Delete(ctx context.Context, id uint) error {
	return f.deleteFn(ctx, id)
}
func (f *fakeVacationService) Overview(ctx context.Context, today time.Time) (vacation.OverviewResponse, error) {
	return f.overviewFn(ctx, today)
}

func TestVacationHandler_Register(t *testing.T) {
	t.Run("success passes actor from context", func(t *testing.T) {
		svc := &fakeVacationService{
			registerFn: func(ctx context.Context, actor string, req vacation.RegisterVacationRequest) (vacation.VacationResponse, error) {
				assert.Equal(t, "hr.admin", actor)
				assert.Equal(t, uint(7), req.EmployeeID)
				return vacation.VacationResponse{
					ID:            31,
					EmployeeID:    req.EmployeeID,
					StartDate:     req.StartDate,
					EndDate:       req.EndDate,
					DaysRequested: 5,
					Status:        vacation.StatusApproved,
					RegisteredBy:  actor,
				}, nil
			},
		}

		h := vacation.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"employee_id":7,"fecha_inicio":"2024-01-01","fecha_fin":"2024-01-05"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/vacations", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Request = c.Request.WithContext(
			contextutil.WithActor(c.Request.Context(), "hr.admin", rbac.RoleAdmin),
		)

		h.Register(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var got vacation.VacationResponse
		err := json.Unmarshal(env.Data, &got)
		assert.NoError(t, err)
		assert.Equal(t, uint(31), got.ID)
		assert.Equal(t, 5, got.DaysRequested)
		assert.Equal(t, "hr.admin", got.RegisteredBy)
	})

	t.Run("negative validation error", func(t *testing.T) {
		h := vacation.NewHandler(&fakeVacationService{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/vacations", strings.NewReader(`{}`))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Register(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.NotNil(t, env.Error)
		assert.Equal(t, "INVALID_INPUT", env.Error.Code)
	})

	t.Run("negative insufficient balance yields 422", func(t *testing.T) {
		svc := &fakeVacationService{
			registerFn: func(ctx context.Context, actor string, req vacation.RegisterVacationRequest) (vacation.VacationResponse, error) {
				return vacation.VacationResponse{}, vacationerrors.ErrInsufficientBalance
			},
		}
		h := vacation.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"employee_id":7,"fecha_inicio":"2024-01-01","fecha_fin":"2024-01-05"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/vacations", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Register(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.NotNil(t, env.Error)
		assert.Equal(t, "INVALID_STATE", env.Error.Code)
	})

	t.Run("negative unknown error never leaks", func(t *testing.T) {
		svc := &fakeVacationService{
			registerFn: func(ctx context.Context, actor string, req vacation.RegisterVacationRequest) (vacation.VacationResponse, error) {
				return vacation.VacationResponse{}, errors.New("pq: connection reset")
			},
		}
		h := vacation.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"employee_id":7,"fecha_inicio":"2024-01-01","fecha_fin":"2024-01-05"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/vacations", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Register(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.NotNil(t, env.Error)
		assert.Equal(t, "INTERNAL_ERROR", env.Error.Code)
		assert.Equal(t, "An unexpected error occurred", env.Error.Message)
	})
}

func TestVacationHandler_Overview(t *testing.T) {
	t.Run("success with explicit reference date", func(t *testing.T) {
		svc := &fakeVacationService{
			overviewFn: func(ctx context.Context, today time.Time) (vacation.OverviewResponse, error) {
				assert.Equal(t, "2024-06-15", today.Format("2006-01-02"))
				return vacation.OverviewResponse{
					Active: []vacation.ActiveVacationResponse{
						{VacationResponse: vacation.VacationResponse{ID: 1}, DaysRemaining: 5},
					},
					Upcoming:          []vacation.UpcomingVacationResponse{},
					Finished:          []vacation.VacationResponse{},
					TotalDaysThisYear: 11,
				}, nil
			},
		}
		h := vacation.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/vacations/overview?today=2024-06-15", nil)

		h.Overview(c)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var got vacation.OverviewResponse
		err := json.Unmarshal(env.Data, &got)
		assert.NoError(t, err)
		assert.Len(t, got.Active, 1)
		assert.Equal(t, 5, got.Active[0].DaysRemaining)
		assert.Equal(t, 11, got.TotalDaysThisYear)
	})

	t.Run("negative malformed reference date", func(t *testing.T) {
		h := vacation.NewHandler(&fakeVacationService{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/vacations/overview?today=15-06-2024", nil)

		h.Overview(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.NotNil(t, env.Error)
		assert.Equal(t, "INVALID_INPUT", env.Error.Code)
	})
}

func TestVacationHandler_Delete(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &fakeVacationService{
			deleteFn: func(ctx context.Context, id uint) error {
				assert.Equal(t, uint(31), id)
				return nil
			},
		}

		h := vacation.NewHandler(svc)
		r := gin.New()
		r.DELETE("/vacations/:id", h.Delete)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/vacations/31", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
	})

	t.Run("negative malformed id", func(t *testing.T) {
		h := vacation.NewHandler(&fakeVacationService{})
		r := gin.New()
		r.DELETE("/vacations/:id", h.Delete)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/vacations/abc", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.Equal(t, "INVALID_INPUT", env.Error.Code)
	})

	t.Run("negative not found", func(t *testing.T) {
		svc := &fakeVacationService{
			deleteFn: func(ctx context.Context, id uint) error {
				return vacationerrors.ErrVacationNotFound
			},
		}
		h := vacation.NewHandler(svc)
		r := gin.New()
		r.DELETE("/vacations/:id", h.Delete)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/vacations/404", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.Equal(t, "NOT_FOUND", env.Error.Code)
	})
}

func TestVacationHandler_GetByID(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &fakeVacationService{
			getByIDFn: func(ctx context.Context, id uint) (vacation.VacationResponse, error) {
				return vacation.VacationResponse{ID: id, EmployeeID: 7, DaysRequested: 3}, nil
			},
		}
		h := vacation.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/vacations/31", nil)
		c.Params = []gin.Param{{Key: "id", Value: "31"}}

		h.GetByID(c)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var got vacation.VacationResponse
		err := json.Unmarshal(env.Data, &got)
		assert.NoError(t, err)
		assert.Equal(t, uint(31), got.ID)
	})
}
