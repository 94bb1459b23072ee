package kitsu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"shotsync/internal/config"
	"shotsync/internal/logging"
	"shotsync/internal/services"
)

const userAgent = "shotsync/1.0"

// HTTPDoer abstracts http.Client.Do for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client talks to a single Kitsu server. It logs in lazily on the first
// request and reuses the access token afterwards.
type Client struct {
	baseURL  string
	email    string
	password string
	http     HTTPDoer
	logger   *slog.Logger

	mu    sync.Mutex
	token string
}

// Option customises Client construction.
type Option func(*Client)

// WithHTTPClient overrides the HTTP backend (used in tests).
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.http = doer
		}
	}
}

// WithLogger attaches a logger for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "kitsu")
	}
}

// New builds a client from the [kitsu] config section.
func New(cfg config.Kitsu, opts ...Option) (*Client, error) {
	server := strings.TrimRight(strings.TrimSpace(cfg.Server), "/")
	if server == "" {
		return nil, services.Wrap(services.ErrConfiguration, "kitsu", "configure", "server not set", nil)
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = time.Minute
	}
	c := &Client{
		baseURL:  apiBase(server),
		email:    cfg.Email,
		password: cfg.Password,
		http:     &http.Client{Timeout: timeout},
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// apiBase accepts either the server root or the /api root.
func apiBase(server string) string {
	if strings.HasSuffix(server, "/api") {
		return server
	}
	return server + "/api"
}

// Authenticate logs in with the configured credentials.
func (c *Client) Authenticate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loginLocked(ctx)
}

func (c *Client) loginLocked(ctx context.Context) error {
	if c.email == "" || c.password == "" {
		return services.Wrap(services.ErrConfiguration, "kitsu", "login", "email and password are required", nil)
	}
	body := map[string]string{"email": c.email, "password": c.password}
	var resp struct {
		AccessToken string `json:"access_token"`
		Login       bool   `json:"login"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, "", &resp); err != nil {
		return err
	}
	if resp.AccessToken == "" {
		return services.Wrap(services.ErrAuth, "kitsu", "login", "no access token in response", nil)
	}
	c.token = resp.AccessToken
	c.logger.Debug("kitsu login succeeded", logging.String("email", c.email))
	return nil
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == "" {
		if err := c.loginLocked(ctx); err != nil {
			return "", err
		}
	}
	return c.token, nil
}

// ServerInfo reports the API name and version; it needs no login and is
// used as a reachability probe.
func (c *Client) ServerInfo(ctx context.Context) (string, error) {
	var info struct {
		API     string `json:"api"`
		Version string `json:"version"`
	}
	if err := c.do(ctx, http.MethodGet, "", nil, "", &info); err != nil {
		return "", err
	}
	return strings.TrimSpace(info.API + " " + info.Version), nil
}

// GetProject returns the project with the given name.
func (c *Client) GetProject(ctx context.Context, name string) (Project, error) {
	var projects []Project
	if err := c.getJSON(ctx, "/data/projects?name="+url.QueryEscape(name), &projects); err != nil {
		return Project{}, err
	}
	for _, p := range projects {
		if p.Name == name {
			return p, nil
		}
	}
	return Project{}, services.Wrap(services.ErrNotFound, "kitsu", "get project", fmt.Sprintf("project %q", name), nil)
}

// GetSequence returns the named sequence of project.
func (c *Client) GetSequence(ctx context.Context, project Project, name string) (Sequence, error) {
	var sequences []Sequence
	if err := c.getJSON(ctx, "/data/projects/"+url.PathEscape(project.ID)+"/sequences", &sequences); err != nil {
		return Sequence{}, err
	}
	for _, s := range sequences {
		if s.Name == name {
			return s, nil
		}
	}
	return Sequence{}, services.Wrap(services.ErrNotFound, "kitsu", "get sequence", fmt.Sprintf("sequence %q in project %q", name, project.Name), nil)
}

// ImportShots uploads a processed breakdown CSV; Kitsu creates or updates
// the shots it describes.
func (c *Client) ImportShots(ctx context.Context, project Project, csvPath string) error {
	path := "/import/csv/projects/" + url.PathEscape(project.ID) + "/shots"
	return c.upload(ctx, path, csvPath)
}

// GetTaskType returns the task type with the given name.
func (c *Client) GetTaskType(ctx context.Context, name string) (TaskType, error) {
	var types []TaskType
	if err := c.getJSON(ctx, "/data/task-types?name="+url.QueryEscape(name), &types); err != nil {
		return TaskType{}, err
	}
	if len(types) == 0 {
		return TaskType{}, services.Wrap(services.ErrNotFound, "kitsu", "get task type", fmt.Sprintf("task type %q", name), nil)
	}
	return types[0], nil
}

// GetTaskStatus returns the task status with the given name.
func (c *Client) GetTaskStatus(ctx context.Context, name string) (TaskStatus, error) {
	var statuses []TaskStatus
	if err := c.getJSON(ctx, "/data/task-status?name="+url.QueryEscape(name), &statuses); err != nil {
		return TaskStatus{}, err
	}
	if len(statuses) == 0 {
		return TaskStatus{}, services.Wrap(services.ErrNotFound, "kitsu", "get task status", fmt.Sprintf("task status %q", name), nil)
	}
	return statuses[0], nil
}

// ListTasks returns every task of taskType in project.
func (c *Client) ListTasks(ctx context.Context, project Project, taskType TaskType) ([]Task, error) {
	path := "/data/projects/" + url.PathEscape(project.ID) + "/tasks?task_type_id=" + url.QueryEscape(taskType.ID)
	var tasks []Task
	if err := c.getJSON(ctx, path, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListShots returns the shots of a sequence.
func (c *Client) ListShots(ctx context.Context, sequence Sequence) ([]Shot, error) {
	var shots []Shot
	if err := c.getJSON(ctx, "/data/sequences/"+url.PathEscape(sequence.ID)+"/shots", &shots); err != nil {
		return nil, err
	}
	return shots, nil
}

// GetEntity resolves any entity id to its name.
func (c *Client) GetEntity(ctx context.Context, id string) (Entity, error) {
	var entity Entity
	if err := c.getJSON(ctx, "/data/entities/"+url.PathEscape(id), &entity); err != nil {
		return Entity{}, err
	}
	return entity, nil
}

// AddComment posts a comment on task and moves it to status.
func (c *Client) AddComment(ctx context.Context, taskID, statusID, text string) (Comment, error) {
	body := map[string]string{"task_status_id": statusID, "comment": text}
	var comment Comment
	if err := c.authed(ctx, http.MethodPost, "/actions/tasks/"+url.PathEscape(taskID)+"/comment", body, &comment); err != nil {
		return Comment{}, err
	}
	if comment.ID == "" {
		return Comment{}, services.Wrap(services.ErrExternalTool, "kitsu", "add comment", "response missing comment id", nil)
	}
	return comment, nil
}

// AddPreview creates a preview revision on comment and uploads the movie
// file into it. The server normalizes the movie for playback.
func (c *Client) AddPreview(ctx context.Context, taskID, commentID, moviePath string) (PreviewFile, error) {
	path := "/actions/tasks/" + url.PathEscape(taskID) + "/comments/" + url.PathEscape(commentID) + "/add-preview"
	var preview PreviewFile
	if err := c.authed(ctx, http.MethodPost, path, map[string]any{}, &preview); err != nil {
		return PreviewFile{}, err
	}
	if preview.ID == "" {
		return PreviewFile{}, services.Wrap(services.ErrExternalTool, "kitsu", "add preview", "response missing preview id", nil)
	}
	uploadPath := "/pictures/preview-files/" + url.PathEscape(preview.ID) + "?normalize=true"
	if err := c.upload(ctx, uploadPath, moviePath); err != nil {
		return PreviewFile{}, err
	}
	return preview, nil
}

// SetMainPreview makes preview the thumbnail of its entity.
func (c *Client) SetMainPreview(ctx context.Context, previewID string) error {
	return c.authed(ctx, http.MethodPut, "/actions/preview-files/"+url.PathEscape(previewID)+"/set-main-preview", map[string]any{}, nil)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.authed(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) authed(ctx context.Context, method, path string, body any, out any) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}
	return c.do(ctx, method, path, body, token, out)
}

func (c *Client) do(ctx context.Context, method, path string, body any, token string, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, token, out)
}

func (c *Client) upload(ctx context.Context, path, filePath string) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}
	file, err := os.Open(filePath)
	if err != nil {
		return services.Wrap(services.ErrValidation, "kitsu", "upload", "open file", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("copy %s: %w", filePath, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return c.send(req, token, nil)
}

func (c *Client) send(req *http.Request, token string, out any) error {
	req.Header.Set("User-Agent", userAgent)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	op := req.Method + " " + req.URL.Path

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return ctxErr
		}
		return services.Wrap(services.ErrTransient, "kitsu", op, "request failed", err)
	}
	defer resp.Body.Close()
	c.logger.Debug("kitsu request", logging.String("op", op), logging.Int("status", resp.StatusCode))

	if resp.StatusCode >= 400 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		detail := fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
		switch {
		case resp.StatusCode == http.StatusUnauthorized:
			return services.Wrap(services.ErrAuth, "kitsu", op, detail, nil)
		case resp.StatusCode == http.StatusNotFound:
			return services.Wrap(services.ErrNotFound, "kitsu", op, detail, nil)
		case resp.StatusCode >= 500:
			return services.Wrap(services.ErrTransient, "kitsu", op, detail, nil)
		default:
			return services.Wrap(services.ErrExternalTool, "kitsu", op, detail, nil)
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrExternalTool, "kitsu", op, "decode response", err)
	}
	return nil
}
