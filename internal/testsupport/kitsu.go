package testsupport

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"shotsync/internal/services/kitsu"
)

// FakeKitsu is an in-memory Kitsu server covering the endpoints the client
// uses. Fields may be set before Start; recorded calls are read after.
type FakeKitsu struct {
	Project    kitsu.Project
	Sequences  []kitsu.Sequence
	Shots      map[string][]kitsu.Shot
	TaskType   kitsu.TaskType
	TaskStatus kitsu.TaskStatus
	Tasks      []kitsu.Task
	Entities   map[string]kitsu.Entity
	// FailComments lists task ids whose comment call returns 500.
	FailComments map[string]bool

	mu           sync.Mutex
	imports      [][]byte
	comments     []string
	uploads      []string
	mainPreviews []string
	nextID       int
}

// NewFakeKitsu returns a server with one project, sequence, task type and
// status already defined.
func NewFakeKitsu() *FakeKitsu {
	return &FakeKitsu{
		Project:      kitsu.Project{ID: "proj-1", Name: "Feature"},
		Sequences:    []kitsu.Sequence{{ID: "seq-1", Name: "SQ01", ProjectID: "proj-1"}},
		Shots:        map[string][]kitsu.Shot{},
		TaskType:     kitsu.TaskType{ID: "tt-1", Name: "From EVEREST"},
		TaskStatus:   kitsu.TaskStatus{ID: "ts-1", Name: "Done", ShortName: "done"},
		Entities:     map[string]kitsu.Entity{},
		FailComments: map[string]bool{},
	}
}

// AddShot registers a remote shot in sequence seqID with a matching task.
func (f *FakeKitsu) AddShot(seqID string, shot kitsu.Shot) {
	f.Shots[seqID] = append(f.Shots[seqID], shot)
	f.Entities[shot.ID] = kitsu.Entity{ID: shot.ID, Name: shot.Name, Type: "Shot"}
	f.Tasks = append(f.Tasks, kitsu.Task{
		ID:         "task-" + shot.ID,
		EntityID:   shot.ID,
		TaskTypeID: f.TaskType.ID,
		ProjectID:  f.Project.ID,
	})
}

// Start serves the fake until the test ends.
func (f *FakeKitsu) Start(t testing.TB) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	return srv
}

// Imports returns the bodies of every shot CSV import.
func (f *FakeKitsu) Imports() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.imports...)
}

// Comments returns the task ids that received a comment.
func (f *FakeKitsu) Comments() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.comments...)
}

// Uploads returns the file names uploaded as previews.
func (f *FakeKitsu) Uploads() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.uploads...)
}

// MainPreviews returns the preview ids promoted to main preview.
func (f *FakeKitsu) MainPreviews() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.mainPreviews...)
}

func (f *FakeKitsu) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]string{"api": "Zou", "version": "0.20.0"})
	})
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{"access_token": "test-token", "login": true})
	})
	mux.HandleFunc("GET /api/data/projects", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("name") != f.Project.Name {
			writeJSON(w, []kitsu.Project{})
			return
		}
		writeJSON(w, []kitsu.Project{f.Project})
	})
	mux.HandleFunc("GET /api/data/projects/{id}/sequences", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, f.Sequences)
	})
	mux.HandleFunc("GET /api/data/sequences/{id}/shots", func(w http.ResponseWriter, r *http.Request) {
		shots := f.Shots[r.PathValue("id")]
		if shots == nil {
			shots = []kitsu.Shot{}
		}
		writeJSON(w, shots)
	})
	mux.HandleFunc("POST /api/import/csv/projects/{id}/shots", func(w http.ResponseWriter, r *http.Request) {
		body, ok := readUpload(w, r)
		if !ok {
			return
		}
		f.mu.Lock()
		f.imports = append(f.imports, body)
		f.mu.Unlock()
		writeJSON(w, []any{})
	})
	mux.HandleFunc("GET /api/data/task-types", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, []kitsu.TaskType{f.TaskType})
	})
	mux.HandleFunc("GET /api/data/task-status", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, []kitsu.TaskStatus{f.TaskStatus})
	})
	mux.HandleFunc("GET /api/data/projects/{id}/tasks", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, f.Tasks)
	})
	mux.HandleFunc("GET /api/data/entities/{id}", func(w http.ResponseWriter, r *http.Request) {
		entity, ok := f.Entities[r.PathValue("id")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, entity)
	})
	mux.HandleFunc("POST /api/actions/tasks/{id}/comment", func(w http.ResponseWriter, r *http.Request) {
		taskID := r.PathValue("id")
		if f.FailComments[taskID] {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		f.mu.Lock()
		f.comments = append(f.comments, taskID)
		id := f.newIDLocked("comment")
		f.mu.Unlock()
		writeJSON(w, kitsu.Comment{ID: id})
	})
	mux.HandleFunc("POST /api/actions/tasks/{id}/comments/{cid}/add-preview", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		id := f.newIDLocked("preview")
		f.mu.Unlock()
		writeJSON(w, kitsu.PreviewFile{ID: id})
	})
	mux.HandleFunc("POST /api/pictures/preview-files/{id}", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.uploads = append(f.uploads, header.Filename)
		f.mu.Unlock()
		writeJSON(w, map[string]string{"id": r.PathValue("id")})
	})
	mux.HandleFunc("PUT /api/actions/preview-files/{id}/set-main-preview", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.mainPreviews = append(f.mainPreviews, r.PathValue("id"))
		f.mu.Unlock()
		writeJSON(w, map[string]string{})
	})
	return mux
}

func (f *FakeKitsu) newIDLocked(prefix string) string {
	f.nextID++
	return prefix + "-" + strconv.Itoa(f.nextID)
}

func readUpload(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	defer file.Close()
	body, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return body, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
