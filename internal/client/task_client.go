package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/taskdesk/taskdesk/internal/task"
	"github.com/taskdesk/taskdesk/pkg/cerr"
)

// TaskClient talks to the task API over HTTP. Error responses are decoded
// back into typed errors so failure kinds survive the wire.
type TaskClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewTaskClient(baseURL string) *TaskClient {
	return &TaskClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
}

type listResult struct {
	Count int          `json:"count"`
	Data  []*task.Task `json:"data"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type changeStatusBody struct {
	Status string `json:"status"`
	Force  bool   `json:"force"`
}

func (c *TaskClient) CreateTask(ctx context.Context, title, description string) (*task.Task, error) {
	var t task.Task
	err := c.do(ctx, http.MethodPost, "/api/v1/tasks", task.CreateRequest{
		Title:       title,
		Description: description,
	}, &t)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *TaskClient) ListTasks(ctx context.Context, status, search string) ([]*task.Task, error) {
	query := url.Values{}
	if status != "" {
		query.Set("status", status)
	}
	if search != "" {
		query.Set("search", search)
	}
	path := "/api/v1/tasks"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	var result listResult
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

func (c *TaskClient) GetTask(ctx context.Context, id string) (*task.Task, error) {
	var t task.Task
	if err := c.do(ctx, http.MethodGet, "/api/v1/tasks/"+url.PathEscape(id), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *TaskClient) UpdateTask(ctx context.Context, id string, patch task.PatchRequest) (*task.Task, error) {
	var t task.Task
	if err := c.do(ctx, http.MethodPatch, "/api/v1/tasks/"+url.PathEscape(id), patch, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *TaskClient) ChangeTaskStatus(ctx context.Context, id, status string, force bool) (*task.Task, error) {
	var t task.Task
	err := c.do(ctx, http.MethodPost, "/api/v1/tasks/"+url.PathEscape(id)+"/status", changeStatusBody{
		Status: status,
		Force:  force,
	}, &t)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// DeleteTask removes a task and returns the deleted snapshot.
func (c *TaskClient) DeleteTask(ctx context.Context, id string) (*task.Task, error) {
	var t task.Task
	if err := c.do(ctx, http.MethodDelete, "/api/v1/tasks/"+url.PathEscape(id), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *TaskClient) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return cerr.NewError(cerr.Unavailable, "server unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return cerr.NewError(cerr.Internal, "failed to decode response", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	code := cerr.NewCodeFromHTTPStatus(resp.StatusCode)
	var apiErr apiError
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil {
		return cerr.NewError(code, http.StatusText(resp.StatusCode), err)
	}
	return cerr.NewKindError(code, apiErr.Code, apiErr.Message, nil)
}
