package kitsu_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"shotsync/internal/config"
	"shotsync/internal/services"
	"shotsync/internal/services/kitsu"
)

type fakeServer struct {
	t       *testing.T
	logins  atomic.Int32
	uploads map[string]string
	mux     *http.ServeMux
}

func newFakeServer(t *testing.T) (*fakeServer, *httptest.Server) {
	t.Helper()
	fs := &fakeServer{t: t, uploads: map[string]string{}, mux: http.NewServeMux()}
	fs.mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"login": false}`))
			return
		}
		fs.logins.Add(1)
		writeJSON(w, map[string]any{"login": true, "access_token": "tok-1"})
	})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" && r.Header.Get("Authorization") != "Bearer tok-1" && r.URL.Path != "/api" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fs.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)
	return fs, server
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newClient(t *testing.T, serverURL, password string) *kitsu.Client {
	t.Helper()
	cfg := config.Default().Kitsu
	cfg.Server = serverURL
	cfg.Email = "pipeline@example.com"
	cfg.Password = password
	client, err := kitsu.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestNewRequiresServer(t *testing.T) {
	_, err := kitsu.New(config.Default().Kitsu)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestLoginOnceAndLookupProjectSequenceShots(t *testing.T) {
	fs, server := newFakeServer(t)
	fs.mux.HandleFunc("GET /api/data/projects", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("name"); got != "Everest" {
			t.Errorf("unexpected project query %q", got)
		}
		writeJSON(w, []map[string]any{{"id": "p1", "name": "Everest"}})
	})
	fs.mux.HandleFunc("GET /api/data/projects/p1/sequences", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]any{{"id": "s0", "name": "SQ00"}, {"id": "s1", "name": "SQ01"}})
	})
	fs.mux.HandleFunc("GET /api/data/sequences/s1/shots", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"sh1","name":"SH_0010","description":null,"nb_frames":24,"data":{"frame_in":"0","frame_out":24,"fps":"23.976"}}]`))
	})

	client := newClient(t, server.URL+"/", "secret")
	ctx := context.Background()

	project, err := client.GetProject(ctx, "Everest")
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	seq, err := client.GetSequence(ctx, project, "SQ01")
	if err != nil {
		t.Fatalf("GetSequence: %v", err)
	}
	if seq.ID != "s1" {
		t.Fatalf("unexpected sequence %+v", seq)
	}
	shots, err := client.ListShots(ctx, seq)
	if err != nil {
		t.Fatalf("ListShots: %v", err)
	}
	if len(shots) != 1 || shots[0].Name != "SH_0010" || shots[0].Description != "" {
		t.Fatalf("unexpected shots %+v", shots)
	}
	if shots[0].Data["fps"] != "23.976" {
		t.Fatalf("expected raw data to be preserved, got %#v", shots[0].Data)
	}
	if n := fs.logins.Load(); n != 1 {
		t.Fatalf("expected a single login, got %d", n)
	}
}

func TestGetSequenceNotFound(t *testing.T) {
	fs, server := newFakeServer(t)
	fs.mux.HandleFunc("GET /api/data/projects/p1/sequences", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]any{})
	})
	client := newClient(t, server.URL, "secret")
	_, err := client.GetSequence(context.Background(), kitsu.Project{ID: "p1", Name: "Everest"}, "SQ09")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLoginFailureIsAuthError(t *testing.T) {
	_, server := newFakeServer(t)
	client := newClient(t, server.URL, "wrong")
	err := client.Authenticate(context.Background())
	if !errors.Is(err, services.ErrAuth) {
		t.Fatalf("expected auth error, got %v", err)
	}
}

func TestImportShotsUploadsMultipartFile(t *testing.T) {
	fs, server := newFakeServer(t)
	var received string
	fs.mux.HandleFunc("POST /api/import/csv/projects/p1/shots", func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		received = header.Filename + ":" + string(data)
		writeJSON(w, []any{})
	})

	csvPath := filepath.Join(t.TempDir(), "shots_kitsu.csv")
	if err := os.WriteFile(csvPath, []byte("Sequence,Name\nSQ01,SH_0010\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	client := newClient(t, server.URL, "secret")
	if err := client.ImportShots(context.Background(), kitsu.Project{ID: "p1"}, csvPath); err != nil {
		t.Fatalf("ImportShots: %v", err)
	}
	if received != "shots_kitsu.csv:Sequence,Name\nSQ01,SH_0010\n" {
		t.Fatalf("unexpected upload %q", received)
	}
}

func TestPublishSequence(t *testing.T) {
	fs, server := newFakeServer(t)
	var calls []string
	fs.mux.HandleFunc("POST /api/actions/tasks/t1/comment", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		calls = append(calls, "comment:"+body["task_status_id"]+":"+body["comment"])
		writeJSON(w, map[string]any{"id": "c1"})
	})
	fs.mux.HandleFunc("POST /api/actions/tasks/t1/comments/c1/add-preview", func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, "add-preview")
		writeJSON(w, map[string]any{"id": "pv1", "revision": 1})
	})
	fs.mux.HandleFunc("POST /api/pictures/preview-files/pv1", func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, "upload:"+r.URL.Query().Get("normalize"))
		writeJSON(w, map[string]any{"id": "pv1"})
	})
	fs.mux.HandleFunc("PUT /api/actions/preview-files/pv1/set-main-preview", func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, "set-main")
		writeJSON(w, map[string]any{})
	})

	movie := filepath.Join(t.TempDir(), "SH_0010.mp4")
	if err := os.WriteFile(movie, []byte("mp4"), 0o644); err != nil {
		t.Fatal(err)
	}
	client := newClient(t, server.URL, "secret")
	ctx := context.Background()
	comment, err := client.AddComment(ctx, "t1", "done", "Auto-published preview.")
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	preview, err := client.AddPreview(ctx, "t1", comment.ID, movie)
	if err != nil {
		t.Fatalf("AddPreview: %v", err)
	}
	if err := client.SetMainPreview(ctx, preview.ID); err != nil {
		t.Fatalf("SetMainPreview: %v", err)
	}
	want := "comment:done:Auto-published preview.|add-preview|upload:true|set-main"
	if got := strings.Join(calls, "|"); got != want {
		t.Fatalf("unexpected call sequence\n got %s\nwant %s", got, want)
	}
}

func TestServerErrorsAreClassified(t *testing.T) {
	fs, server := newFakeServer(t)
	fs.mux.HandleFunc("GET /api/data/entities/missing", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such entity", http.StatusNotFound)
	})
	fs.mux.HandleFunc("GET /api/data/entities/boom", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	})
	client := newClient(t, server.URL, "secret")
	if _, err := client.GetEntity(context.Background(), "missing"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := client.GetEntity(context.Background(), "boom"); !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient, got %v", err)
	}
}

func TestServerInfoNeedsNoLogin(t *testing.T) {
	fs, server := newFakeServer(t)
	fs.mux.HandleFunc("GET /api", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"api": "Zou", "version": "0.20.1"})
	})
	client := newClient(t, server.URL+"/api", "")
	info, err := client.ServerInfo(context.Background())
	if err != nil {
		t.Fatalf("ServerInfo: %v", err)
	}
	if info != "Zou 0.20.1" {
		t.Fatalf("unexpected info %q", info)
	}
	if fs.logins.Load() != 0 {
		t.Fatal("expected no login")
	}
}
