package web_test

import (
	"encoding/json"
	"net/http"
	"slices"
	"strings"
	"testing"

	"codeprojects/internal/config"
	"codeprojects/internal/matcher"
	"codeprojects/internal/project"
	"codeprojects/internal/web"
)

var sampleRecords = []project.Record{
	{Position: 2, Name: "myProject", Path: "/src/my"},
	{Position: 1, Name: "other", Path: "/src/other"},
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s error = %v", url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if v != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s error = %v", url, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestGetProjects(t *testing.T) {
	t.Run("returns every record", func(t *testing.T) {
		_, baseURL := startServer(t, newFakeService(sampleRecords...), nil)

		var got []project.Record
		if status := getJSON(t, baseURL+"/api/projects", &got); status != http.StatusOK {
			t.Fatalf("status = %d", status)
		}
		if !slices.Equal(got, sampleRecords) {
			t.Errorf("projects = %+v, want %+v", got, sampleRecords)
		}
	})

	t.Run("empty list is an empty array", func(t *testing.T) {
		_, baseURL := startServer(t, newFakeService(), nil)

		resp, err := http.Get(baseURL + "/api/projects")
		if err != nil {
			t.Fatal(err)
		}
		defer func() { _ = resp.Body.Close() }()

		var raw json.RawMessage
		if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
			t.Fatal(err)
		}
		if string(raw) != "[]" {
			t.Errorf("body = %s, want []", raw)
		}
	})
}

func TestMatch(t *testing.T) {
	_, baseURL := startServer(t, newFakeService(sampleRecords...), nil)

	tests := []struct {
		name   string
		query  string
		status int
		want   []string
	}{
		{"name pass", "?q=my+pro", http.StatusOK, []string{"/src/my"}},
		{"short query outside single mode", "?q=my", http.StatusOK, nil},
		{"short query in single mode", "?q=my&single=true", http.StatusOK, []string{"/src/my"}},
		{"app pass", "?q=vscode+oth", http.StatusOK, []string{"/src/other"}},
		{"bare trigger keyword", "?q=vscode", http.StatusOK, nil},
		{"invalid single", "?q=my&single=maybe", http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []matcher.Match
			status := getJSON(t, baseURL+"/api/match"+tt.query, &got)
			if status != tt.status {
				t.Fatalf("status = %d, want %d", status, tt.status)
			}
			var paths []string
			for _, m := range got {
				paths = append(paths, m.Record.Path)
			}
			if !slices.Equal(paths, tt.want) {
				t.Errorf("paths = %v, want %v", paths, tt.want)
			}
		})
	}
}

func TestMatch_SortedByRelevance(t *testing.T) {
	svc := newFakeService(
		project.Record{Position: 1, Name: "alpha-long-name", Path: "/a"},
		project.Record{Position: 1, Name: "alpha", Path: "/b"},
	)
	_, baseURL := startServer(t, svc, nil)

	var got []matcher.Match
	getJSON(t, baseURL+"/api/match?q=alpha", &got)
	if len(got) != 2 || got[0].Record.Path != "/b" {
		t.Fatalf("matches = %+v, want /b first", got)
	}
	if got[0].Text != "Open alpha" || got[0].ID != matcher.IDPrefix+"/b" {
		t.Errorf("match = %+v", got[0])
	}
}

func TestRun(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		runErr error
		status int
		opened []string
	}{
		{"known path", `{"path":"/src/my"}`, nil, http.StatusNoContent, []string{"/src/my"}},
		{"unknown path", `{"path":"/nope"}`, nil, http.StatusNotFound, nil},
		{"missing path", `{}`, nil, http.StatusBadRequest, nil},
		{"invalid body", `not json`, nil, http.StatusBadRequest, nil},
		{"launch failure", `{"path":"/src/other"}`, errBoom, http.StatusInternalServerError, []string{"/src/other"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newFakeService(sampleRecords...)
			svc.runErr = tt.runErr
			_, baseURL := startServer(t, svc, nil)

			resp := postJSON(t, baseURL+"/api/run", tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if got := svc.openedPaths(); !slices.Equal(got, tt.opened) {
				t.Errorf("opened = %v, want %v", got, tt.opened)
			}
		})
	}
}

func TestReload(t *testing.T) {
	t.Run("without config loader", func(t *testing.T) {
		svc := newFakeService(sampleRecords...)
		_, baseURL := startServer(t, svc, nil)

		resp := postJSON(t, baseURL+"/api/reload", "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		var got web.ReloadResponse
		if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
			t.Fatal(err)
		}
		if got.Count != 2 || svc.reloads != 1 {
			t.Errorf("count = %d reloads = %d", got.Count, svc.reloads)
		}
	})

	t.Run("applies reloaded config", func(t *testing.T) {
		svc := newFakeService(sampleRecords...)
		loadConfig := func() (config.Config, error) {
			cfg := config.DefaultConfig()
			cfg.AppNameMatches = false
			return cfg, nil
		}
		_, baseURL := startServer(t, svc, loadConfig)

		resp := postJSON(t, baseURL+"/api/reload", "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		if svc.lastCfg.AppNameMatches {
			t.Error("Reload should receive the freshly loaded config")
		}
	})

	t.Run("config error", func(t *testing.T) {
		svc := newFakeService(sampleRecords...)
		loadConfig := func() (config.Config, error) { return config.Config{}, errBoom }
		_, baseURL := startServer(t, svc, loadConfig)

		resp := postJSON(t, baseURL+"/api/reload", "")
		if resp.StatusCode != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", resp.StatusCode)
		}
		if svc.reloads != 0 {
			t.Error("projects should not reload when config fails")
		}
	})
}
