package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"taskman/internal/errors"
	"taskman/internal/handler"
	"taskman/internal/model"
	"taskman/internal/service"
)

// testValidator mirrors the router's validator wiring for handler tests.
type testValidator struct {
	validator *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}
	return e
}

// fakeTaskService implements service.TaskService with per-test hooks.
type fakeTaskService struct {
	listFn   func(ctx context.Context) ([]model.Task, error)
	getFn    func(ctx context.Context, id uint) (*model.Task, error)
	createFn func(ctx context.Context, in service.CreateTaskInput) (*model.Task, error)
	updateFn func(ctx context.Context, id uint, patch map[string]interface{}) (*model.Task, error)
	deleteFn func(ctx context.Context, id uint) error
}

func (f *fakeTaskService) ListTasks(ctx context.Context) ([]model.Task, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return nil, nil
}

func (f *fakeTaskService) GetTask(ctx context.Context, id uint) (*model.Task, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return nil, nil
}

func (f *fakeTaskService) CreateTask(ctx context.Context, in service.CreateTaskInput) (*model.Task, error) {
	if f.createFn != nil {
		return f.createFn(ctx, in)
	}
	return nil, nil
}

func (f *fakeTaskService) UpdateTask(ctx context.Context, id uint, patch map[string]interface{}) (*model.Task, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, patch)
	}
	return nil, nil
}

func (f *fakeTaskService) DeleteTask(ctx context.Context, id uint) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func jsonRequest(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestTaskHandler_CreateTask(t *testing.T) {
	t.Run("invalid date format", func(t *testing.T) {
		h := handler.NewTaskHandler(&fakeTaskService{})
		c, _ := jsonRequest(newEcho(), http.MethodPost, "/tasks/",
			`{"user_id":1,"title":"t","status":"active","category":"work","created_date":"2024-13-40 99:99:99"}`)

		err := h.CreateTask(c)
		he, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
		assert.Equal(t, "Invalid date format. Please use YYYY-MM-DD HH:MM:SS format", he.Message)
	})

	t.Run("empty created_date defaults to now", func(t *testing.T) {
		var got service.CreateTaskInput
		h := handler.NewTaskHandler(&fakeTaskService{
			createFn: func(ctx context.Context, in service.CreateTaskInput) (*model.Task, error) {
				got = in
				return &model.Task{ID: 5, UserID: in.UserID, Title: in.Title}, nil
			},
		})
		c, rec := jsonRequest(newEcho(), http.MethodPost, "/tasks/",
			`{"user_id":1,"title":"t","status":"active","category":"work","created_date":"","due_date":null}`)

		assert.NoError(t, h.CreateTask(c))
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.WithinDuration(t, time.Now(), got.CreatedDate, 5*time.Second)
		assert.Nil(t, got.DueDate)
	})

	t.Run("echoes id, user_id and title", func(t *testing.T) {
		h := handler.NewTaskHandler(&fakeTaskService{
			createFn: func(ctx context.Context, in service.CreateTaskInput) (*model.Task, error) {
				return &model.Task{ID: 5, UserID: in.UserID, Title: in.Title}, nil
			},
		})
		c, rec := jsonRequest(newEcho(), http.MethodPost, "/tasks/",
			`{"user_id":3,"title":"groceries","status":"active","category":"home","created_date":"2024-05-01 09:30:00"}`)

		assert.NoError(t, h.CreateTask(c))
		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp handler.TaskMutationResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Task created successfully", resp.Message)
		assert.Equal(t, uint(5), resp.ID)
		assert.Equal(t, uint(3), resp.UserID)
		assert.Equal(t, "groceries", resp.Title)
	})

	t.Run("missing title fails validation", func(t *testing.T) {
		h := handler.NewTaskHandler(&fakeTaskService{})
		c, _ := jsonRequest(newEcho(), http.MethodPost, "/tasks/",
			`{"user_id":1,"status":"active","category":"work"}`)

		err := h.CreateTask(c)
		he, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})
}

func TestTaskHandler_GetTask(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		h := handler.NewTaskHandler(&fakeTaskService{
			getFn: func(ctx context.Context, id uint) (*model.Task, error) {
				return nil, errors.ErrTaskNotFound
			},
		})
		c, _ := jsonRequest(newEcho(), http.MethodGet, "/tasks/99", "")
		c.SetParamNames("id")
		c.SetParamValues("99")

		err := h.GetTask(c)
		he, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusNotFound, he.Code)
		assert.Equal(t, "Task not found", he.Message)
	})

	t.Run("formats dates", func(t *testing.T) {
		due := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		h := handler.NewTaskHandler(&fakeTaskService{
			getFn: func(ctx context.Context, id uint) (*model.Task, error) {
				return &model.Task{
					ID:          1,
					UserID:      2,
					Title:       "report",
					CreatedDate: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
					DueDate:     &due,
					Status:      "active",
					Category:    "work",
				}, nil
			},
		})
		c, rec := jsonRequest(newEcho(), http.MethodGet, "/tasks/1", "")
		c.SetParamNames("id")
		c.SetParamValues("1")

		assert.NoError(t, h.GetTask(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp handler.TaskResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "2024-05-01 09:30:00", resp.CreatedDate)
		assert.Equal(t, "2024-06-01 12:00:00", *resp.DueDate)
		assert.Nil(t, resp.Summary)
		assert.Nil(t, resp.Priority)
	})
}

func TestTaskHandler_ListTasks(t *testing.T) {
	h := handler.NewTaskHandler(&fakeTaskService{
		listFn: func(ctx context.Context) ([]model.Task, error) {
			return []model.Task{
				{ID: 1, UserID: 1, Title: "a", CreatedDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Status: "s", Category: "c"},
				{ID: 2, UserID: 2, Title: "b", CreatedDate: time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC), Status: "s", Category: "c"},
			}, nil
		},
	})
	c, rec := jsonRequest(newEcho(), http.MethodGet, "/tasks/", "")

	assert.NoError(t, h.ListTasks(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp []handler.TaskResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp, 2)
	assert.Equal(t, "2024-01-01 00:00:00", resp[0].CreatedDate)
	assert.Nil(t, resp[0].DueDate)
}

func TestTaskHandler_UpdateTask(t *testing.T) {
	t.Run("passes patch through", func(t *testing.T) {
		var gotPatch map[string]interface{}
		h := handler.NewTaskHandler(&fakeTaskService{
			updateFn: func(ctx context.Context, id uint, patch map[string]interface{}) (*model.Task, error) {
				gotPatch = patch
				return &model.Task{ID: id, UserID: 2, Title: "renamed"}, nil
			},
		})
		c, rec := jsonRequest(newEcho(), http.MethodPut, "/tasks/1", `{"title":"renamed","summary":null}`)
		c.SetParamNames("id")
		c.SetParamValues("1")

		assert.NoError(t, h.UpdateTask(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "renamed", gotPatch["title"])
		v, present := gotPatch["summary"]
		assert.True(t, present)
		assert.Nil(t, v)
	})

	t.Run("not found", func(t *testing.T) {
		h := handler.NewTaskHandler(&fakeTaskService{
			updateFn: func(ctx context.Context, id uint, patch map[string]interface{}) (*model.Task, error) {
				return nil, errors.ErrTaskNotFound
			},
		})
		c, _ := jsonRequest(newEcho(), http.MethodPut, "/tasks/9", `{"title":"x"}`)
		c.SetParamNames("id")
		c.SetParamValues("9")

		err := h.UpdateTask(c)
		he, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusNotFound, he.Code)
	})
}

func TestTaskHandler_DeleteTask(t *testing.T) {
	h := handler.NewTaskHandler(&fakeTaskService{})
	c, rec := jsonRequest(newEcho(), http.MethodDelete, "/tasks/1", "")
	c.SetParamNames("id")
	c.SetParamValues("1")

	assert.NoError(t, h.DeleteTask(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Task deleted successfully"}`, rec.Body.String())
}
