package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/petal-labs/anther/builtin"
	"github.com/petal-labs/anther/tool"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	reg := tool.NewRegistry()
	if _, err := builtin.RegisterAll(reg, builtin.Options{Workspace: t.TempDir()}); err != nil {
		t.Fatalf("RegisterAll() error = %v", err)
	}

	history := NewMemoryHistory(0)
	dispatcher, err := tool.NewDispatcher(tool.DispatcherConfig{Registry: reg, Recorder: history})
	if err != nil {
		t.Fatalf("NewDispatcher() error = %v", err)
	}

	srv := New(Config{Dispatcher: dispatcher, History: history})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func postJSON(t *testing.T, url string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	resp, err := http.Post(url, "application/json", &buf)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	decoded := map[string]any{}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, decoded
}

func getJSON(t *testing.T, url string) (*http.Response, map[string]any) {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	decoded := map[string]any{}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, decoded
}

func TestToolCallRoundTripOverHTTP(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := postJSON(t, ts.URL+"/tool/create_file", map[string]any{
		"filename": "a.txt",
		"content":  "hi",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create_file status = %d, body = %v", resp.StatusCode, body)
	}
	if body["result"] == nil || body["error"] != nil {
		t.Fatalf("body = %v, want result envelope", body)
	}

	resp, body = postJSON(t, ts.URL+"/tool/read_file", map[string]any{"filename": "a.txt"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("read_file status = %d", resp.StatusCode)
	}
	result := body["result"].(map[string]any)
	if result["content"] != "hi" {
		t.Fatalf("content = %v, want hi", result["content"])
	}
}

func TestUnknownToolIs404(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := postJSON(t, ts.URL+"/tool/nope", map[string]any{})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	errBody := body["error"].(map[string]any)
	if errBody["kind"] != tool.KindNotFound {
		t.Fatalf("kind = %v, want %s", errBody["kind"], tool.KindNotFound)
	}
}

func TestMissingArgumentIs400(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := postJSON(t, ts.URL+"/tool/read_file", map[string]any{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	errBody := body["error"].(map[string]any)
	if errBody["kind"] != tool.KindInvalidArguments {
		t.Fatalf("kind = %v, want %s", errBody["kind"], tool.KindInvalidArguments)
	}
	if !strings.Contains(errBody["message"].(string), "filename") {
		t.Fatalf("message = %v, want violated parameter named", errBody["message"])
	}
}

func TestMalformedBodyIs400(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/tool/list_files", "application/json", strings.NewReader("{broken"))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestEmptyBodyMeansNoArguments(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/tool/list_files", "application/json", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestOversizedBodyIs413(t *testing.T) {
	reg := tool.NewRegistry()
	if _, err := builtin.RegisterAll(reg, builtin.Options{Workspace: t.TempDir()}); err != nil {
		t.Fatalf("RegisterAll() error = %v", err)
	}
	dispatcher, err := tool.NewDispatcher(tool.DispatcherConfig{Registry: reg})
	if err != nil {
		t.Fatalf("NewDispatcher() error = %v", err)
	}
	ts := httptest.NewServer(New(Config{Dispatcher: dispatcher, MaxBody: 64}).Handler())
	defer ts.Close()

	huge := `{"filename": "a.txt", "content": "` + strings.Repeat("x", 256) + `"}`
	resp, err := http.Post(ts.URL+"/tool/create_file", "application/json", strings.NewReader(huge))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", resp.StatusCode)
	}
}

func TestResourceRead(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := getJSON(t, ts.URL+"/resource/server/info")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	page, ok := body["result"].(string)
	if !ok || !strings.Contains(page, "create_file") {
		t.Fatalf("result = %v, want info page listing tools", body["result"])
	}

	resp, body = getJSON(t, ts.URL+"/resource/no/such/thing")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404: %v", resp.StatusCode, body)
	}
}

func TestPromptRenderOverHTTP(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := postJSON(t, ts.URL+"/prompt/data_analysis", map[string]any{
		"data_type": "csv",
		"objective": "find outliers",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %v", resp.StatusCode, body)
	}
	text := body["result"].(string)
	if !strings.Contains(text, "csv") || !strings.Contains(text, "find outliers") {
		t.Fatalf("rendered prompt missing arguments:\n%s", text)
	}

	resp, body = postJSON(t, ts.URL+"/prompt/data_analysis", map[string]any{"data_type": "csv"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for missing objective: %v", resp.StatusCode, body)
	}
}

func TestToolCatalog(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := getJSON(t, ts.URL+"/api/tools")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	tools := body["tools"].([]any)
	if len(tools) != 8 {
		t.Fatalf("len(tools) = %d, want 8", len(tools))
	}
	first := tools[0].(map[string]any)
	if first["name"] != "code_review" || first["status"] != string(tool.StatusReady) {
		t.Fatalf("first entry = %v, want code_review ready", first)
	}

	resp, body = getJSON(t, ts.URL+"/api/tools/read_file")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body["name"] != "read_file" {
		t.Fatalf("name = %v, want read_file", body["name"])
	}

	resp, _ = getJSON(t, ts.URL+"/api/tools/nope")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestInvocationHistoryEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	postJSON(t, ts.URL+"/tool/list_files", map[string]any{})
	postJSON(t, ts.URL+"/tool/nope", map[string]any{})

	resp, body := getJSON(t, ts.URL+"/api/invocations?limit=10")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	records := body["invocations"].([]any)
	if len(records) != 2 {
		t.Fatalf("len(invocations) = %d, want 2", len(records))
	}
	// Newest first: the failed call to the unknown tool.
	newest := records[0].(map[string]any)
	if newest["tool"] != "nope" || newest["ok"] != false {
		t.Fatalf("newest = %v, want failed nope call", newest)
	}

	resp, _ = getJSON(t, ts.URL+"/api/invocations?limit=bogus")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for bad limit", resp.StatusCode)
	}
}

func TestCORSPreflight(t *testing.T) {
	_, ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/tool/list_files", nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("Allow-Origin = %q, want *", got)
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	_, ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/tool/list_files", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("X-Request-Id", "req-42")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get("X-Request-Id"); got != "req-42" {
		t.Fatalf("X-Request-Id = %q, want req-42", got)
	}
}
