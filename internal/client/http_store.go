// Package client talks to the task board store service over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/yukikurage/task-board/internal/dto"
	"github.com/yukikurage/task-board/internal/models"
)

// ErrNotFound matches any 404 from the store service.
var ErrNotFound = errors.New("not found")

// StatusError is a non-2xx answer from the store service.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("store service returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("store service returned %d %s: %s", e.StatusCode, e.Code, e.Message)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

type Option func(*HTTPStore)

func WithHTTPClient(c *http.Client) Option {
	return func(s *HTTPStore) {
		s.http = c
	}
}

// HTTPStore implements board.Store against the /api/tasks routes.
type HTTPStore struct {
	baseURL string
	http    *http.Client
}

func NewHTTPStore(baseURL string, opts ...Option) *HTTPStore {
	s := &HTTPStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *HTTPStore) FetchAll(ctx context.Context) ([]models.Task, error) {
	var list dto.TaskListResponse
	if err := s.do(ctx, http.MethodGet, "/api/tasks", nil, &list); err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}

	tasks := make([]models.Task, len(list.Tasks))
	for i, t := range list.Tasks {
		tasks[i] = fromDTO(t)
	}
	return tasks, nil
}

func (s *HTTPStore) Create(ctx context.Context, task models.Task) (models.Task, error) {
	req := dto.CreateTaskRequest{
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		WorkType:    task.WorkType,
		Priority:    task.Priority,
		StartDate:   task.StartDate,
		DueDate:     task.DueDate,
		Tags:        []string(task.Tags),
		AssigneeID:  task.AssigneeID,
		TeamID:      task.TeamID,
	}

	var created dto.TaskDTO
	if err := s.do(ctx, http.MethodPost, "/api/tasks", req, &created); err != nil {
		return models.Task{}, fmt.Errorf("failed to create task: %w", err)
	}
	return fromDTO(created), nil
}

func (s *HTTPStore) Update(ctx context.Context, id string, patch models.TaskPatch) error {
	if err := s.do(ctx, http.MethodPatch, taskPath(id), patch, nil); err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

func (s *HTTPStore) UpdateStatus(ctx context.Context, id string, status models.TaskStatus) error {
	req := dto.UpdateTaskStatusRequest{Status: status}
	if err := s.do(ctx, http.MethodPut, taskPath(id)+"/status", req, nil); err != nil {
		return fmt.Errorf("failed to update task status: %w", err)
	}
	return nil
}

func (s *HTTPStore) Delete(ctx context.Context, id string) error {
	if err := s.do(ctx, http.MethodDelete, taskPath(id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// SuggestAssignee asks the store service's advisor to pick someone from the
// team roster. It is not part of board.Store.
func (s *HTTPStore) SuggestAssignee(ctx context.Context, teamID, description string) (*dto.SuggestionResponse, error) {
	req := dto.SuggestAssigneeRequest{TeamID: teamID, Description: description}

	var out dto.SuggestionResponse
	if err := s.do(ctx, http.MethodPost, "/api/advisor/suggest", req, &out); err != nil {
		return nil, fmt.Errorf("failed to suggest assignee: %w", err)
	}
	return &out, nil
}

func taskPath(id string) string {
	return "/api/tasks/" + url.PathEscape(id)
}

func (s *HTTPStore) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var envelope struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Message == "" {
		return &StatusError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}
	return &StatusError{StatusCode: resp.StatusCode, Code: envelope.Code, Message: envelope.Message}
}

func fromDTO(t dto.TaskDTO) models.Task {
	return models.Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		WorkType:    t.WorkType,
		Priority:    t.Priority,
		StartDate:   t.StartDate,
		DueDate:     t.DueDate,
		Tags:        models.TagSet(t.Tags),
		AssigneeID:  t.AssigneeID,
		TeamID:      t.TeamID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
