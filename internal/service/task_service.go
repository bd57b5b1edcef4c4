package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"taskman/internal/cache"
	"taskman/internal/errors"
	"taskman/internal/model"
	"taskman/internal/repository"
)

const taskCacheTTL = 5 * time.Minute

// CreateTaskInput carries the fields for a new task. Dates are already
// parsed by the handler; the owner is not checked for existence.
type CreateTaskInput struct {
	UserID      uint
	Title       string
	Summary     *string
	CreatedDate time.Time
	DueDate     *time.Time
	Priority    *string
	Status      string
	Category    string
}

// TaskService exposes task domain operations.
type TaskService interface {
	ListTasks(ctx context.Context) ([]model.Task, error)
	GetTask(ctx context.Context, id uint) (*model.Task, error)
	CreateTask(ctx context.Context, in CreateTaskInput) (*model.Task, error)
	UpdateTask(ctx context.Context, id uint, patch map[string]interface{}) (*model.Task, error)
	DeleteTask(ctx context.Context, id uint) error
}

type taskService struct {
	repo  repository.TaskRepository
	cache *cache.Client
}

// NewTaskService builds a TaskService with repository and cache.
func NewTaskService(repo repository.TaskRepository, cache *cache.Client) TaskService {
	return &taskService{repo: repo, cache: cache}
}

func (s *taskService) cacheKey(id uint) string {
	return fmt.Sprintf("task:%d", id)
}

func (s *taskService) ListTasks(ctx context.Context) ([]model.Task, error) {
	return s.repo.List(ctx)
}

func (s *taskService) GetTask(ctx context.Context, id uint) (*model.Task, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.Task
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrTaskNotFound
		}
		return nil, err
	}

	if payload, err := json.Marshal(task); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, taskCacheTTL)
	}
	return task, nil
}

func (s *taskService) CreateTask(ctx context.Context, in CreateTaskInput) (*model.Task, error) {
	task := &model.Task{
		UserID:      in.UserID,
		Title:       in.Title,
		Summary:     in.Summary,
		CreatedDate: in.CreatedDate,
		DueDate:     in.DueDate,
		Priority:    in.Priority,
		Status:      in.Status,
		Category:    in.Category,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

// UpdateTask merges patch into the stored task with key-presence semantics:
// an absent key keeps the stored value, a present key overwrites it, and an
// explicit null clears nullable fields. Date strings that do not parse leave
// the stored value unchanged.
func (s *taskService) UpdateTask(ctx context.Context, id uint, patch map[string]interface{}) (*model.Task, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrTaskNotFound
		}
		return nil, err
	}

	if v, ok := patch["user_id"]; ok {
		if f, ok := v.(float64); ok {
			task.UserID = uint(f)
		}
	}
	if v, ok := patch["title"]; ok {
		task.Title = asString(v)
	}
	if v, ok := patch["summary"]; ok {
		task.Summary = asStringPtr(v)
	}
	if v, ok := patch["created_date"]; ok {
		if t, ok := asTime(v); ok {
			task.CreatedDate = t
		}
	}
	if v, ok := patch["due_date"]; ok {
		if v == nil {
			task.DueDate = nil
		} else if t, ok := asTime(v); ok {
			task.DueDate = &t
		}
	}
	if v, ok := patch["priority"]; ok {
		task.Priority = asStringPtr(v)
	}
	if v, ok := patch["status"]; ok {
		task.Status = asString(v)
	}
	if v, ok := patch["category"]; ok {
		task.Category = asString(v)
	}

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return task, nil
}

func (s *taskService) DeleteTask(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrTaskNotFound
		}
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return nil
}

func asString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func asStringPtr(v interface{}) *string {
	if s, ok := v.(string); ok {
		return &s
	}
	return nil
}

// asTime accepts the canonical layout and falls back to RFC 3339.
func asTime(v interface{}) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	if t, err := time.Parse(model.DateTimeLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
