package web_test

import (
	"bufio"
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"codeprojects/internal/matcher"
)

func dialQuery(t *testing.T, baseURL string, opts *websocket.DialOptions) (*websocket.Conn, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(baseURL, "http")+"/api/query", opts)
	return conn, err
}

func TestHandleQuery_AnswersEachFrame(t *testing.T) {
	_, baseURL := startServer(t, newFakeService(sampleRecords...), nil)

	conn, err := dialQuery(t, baseURL, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer func() { _ = conn.CloseNow() }()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	tests := []struct {
		frame string
		want  []string
	}{
		{"myP", []string{"/src/my"}},
		{"vscode oth", []string{"/src/other"}},
		{`{"q":"ot","single":true}`, []string{"/src/other"}},
		{"zzz", nil},
	}

	for _, tt := range tests {
		if err := conn.Write(ctx, websocket.MessageText, []byte(tt.frame)); err != nil {
			t.Fatalf("Write(%q) error = %v", tt.frame, err)
		}
		var got []matcher.Match
		if err := wsjson.Read(ctx, conn, &got); err != nil {
			t.Fatalf("Read after %q error = %v", tt.frame, err)
		}
		var paths []string
		for _, m := range got {
			paths = append(paths, m.Record.Path)
		}
		if strings.Join(paths, ",") != strings.Join(tt.want, ",") {
			t.Errorf("frame %q: paths = %v, want %v", tt.frame, paths, tt.want)
		}
	}
}

func TestHandleQuery_RejectsForeignOrigin(t *testing.T) {
	_, baseURL := startServer(t, newFakeService(), nil)

	header := http.Header{}
	header.Set("Origin", "http://evil.example")
	conn, err := dialQuery(t, baseURL, &websocket.DialOptions{HTTPHeader: header})
	if err == nil {
		_ = conn.CloseNow()
		t.Fatal("expected dial from a foreign origin to fail")
	}
}

func TestHandleEvents_RefreshOnReload(t *testing.T) {
	svc := newFakeService(sampleRecords...)
	_, baseURL := startServer(t, svc, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/events", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /api/events error = %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	readEvent := func() string {
		t.Helper()
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				t.Fatalf("reading SSE stream: %v", err)
			}
			if name, ok := strings.CutPrefix(strings.TrimSpace(line), "event: "); ok {
				return name
			}
		}
	}

	if got := readEvent(); got != "connected" {
		t.Fatalf("first event = %q, want connected", got)
	}

	svc.LoadAll()

	if got := readEvent(); got != "refresh" {
		t.Errorf("event = %q, want refresh", got)
	}
}
