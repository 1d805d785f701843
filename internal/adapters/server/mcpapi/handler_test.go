package mcpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hylla/sikte/internal/analytics"
	"github.com/hylla/sikte/internal/domain"
)

// jsonRPCResponse models the minimal JSON-RPC response fields used here.
type jsonRPCResponse struct {
	ID     float64        `json:"id"`
	Result map[string]any `json:"result"`
}

func testStore(t *testing.T) *analytics.Store {
	t.Helper()
	counter := 0
	store := analytics.NewStore(context.Background(), nil, func() string {
		counter++
		return "id-" + string(rune('0'+counter))
	}, func() time.Time {
		return time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	}, nil)

	_, err := store.AppendSession(context.Background(), domain.SessionInput{
		Date:      time.Date(2024, 1, 9, 10, 0, 0, 0, time.UTC),
		Duration:  30,
		Type:      domain.SessionWork,
		Completed: true,
	})
	if err != nil {
		t.Fatalf("AppendSession() error = %v", err)
	}
	return store
}

func initializeRequest() map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "initialize",
		"params": map[string]any{
			"protocolVersion": mcp.LATEST_PROTOCOL_VERSION,
			"clientInfo": map[string]any{
				"name":    "sikte-test",
				"version": "1.0.0",
			},
		},
	}
}

func callToolRequest(id int, toolName string, arguments map[string]any) map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  "tools/call",
		"params": map[string]any{
			"name":      toolName,
			"arguments": arguments,
		},
	}
}

func postJSONRPC(t *testing.T, client *http.Client, url string, payload any) (*http.Response, jsonRPCResponse) {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	var decoded jsonRPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if err := resp.Body.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return resp, decoded
}

// toolResultText decodes the first text entry from one tool-call result.
func toolResultText(t *testing.T, result map[string]any) string {
	t.Helper()
	contentRaw, ok := result["content"].([]any)
	if !ok || len(contentRaw) == 0 {
		t.Fatalf("content missing in tool result: %#v", result)
	}
	first, ok := contentRaw[0].(map[string]any)
	if !ok {
		t.Fatalf("first content entry has unexpected type: %#v", contentRaw[0])
	}
	text, ok := first["text"].(string)
	if !ok {
		t.Fatalf("content text missing in tool result: %#v", first)
	}
	return text
}

func TestNewHandlerRequiresStore(t *testing.T) {
	if _, err := NewHandler(Config{}, nil); err == nil {
		t.Fatal("expected error for nil store")
	}
}

func TestHandlerUsesStatelessTransport(t *testing.T) {
	handler, err := NewHandler(Config{}, testStore(t))
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	server := httptest.NewServer(handler)
	defer server.Close()

	resp, decoded := postJSONRPC(t, server.Client(), server.URL, initializeRequest())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if decoded.ID != 1 {
		t.Fatalf("id = %v, want 1", decoded.ID)
	}
	if got := resp.Header.Get("Mcp-Session-Id"); got != "" {
		t.Fatalf("Mcp-Session-Id header = %q, want empty (stateless transport)", got)
	}
}

func TestHandlerRegistersAnalyticsTools(t *testing.T) {
	handler, err := NewHandler(Config{}, testStore(t))
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	server := httptest.NewServer(handler)
	defer server.Close()
	_, _ = postJSONRPC(t, server.Client(), server.URL, initializeRequest())
	_, toolsResp := postJSONRPC(t, server.Client(), server.URL, map[string]any{
		"jsonrpc": "2.0",
		"id":      2,
		"method":  "tools/list",
	})

	toolsRaw, ok := toolsResp.Result["tools"].([]any)
	if !ok {
		t.Fatalf("tools list payload missing tools: %#v", toolsResp.Result)
	}
	toolNames := make([]string, 0, len(toolsRaw))
	for _, toolRaw := range toolsRaw {
		toolMap, ok := toolRaw.(map[string]any)
		if !ok {
			continue
		}
		name, _ := toolMap["name"].(string)
		toolNames = append(toolNames, name)
	}
	for _, required := range []string{
		"sikte.goal_progress_history",
		"sikte.productivity_stats",
		"sikte.category_analytics",
		"sikte.generate_report",
	} {
		if !slices.Contains(toolNames, required) {
			t.Fatalf("tool list missing %s: %#v", required, toolNames)
		}
	}
}

func TestProductivityStatsTool(t *testing.T) {
	handler, err := NewHandler(Config{}, testStore(t))
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	server := httptest.NewServer(handler)
	defer server.Close()
	_, _ = postJSONRPC(t, server.Client(), server.URL, initializeRequest())
	_, callResp := postJSONRPC(t, server.Client(), server.URL,
		callToolRequest(2, "sikte.productivity_stats", map[string]any{"days": 7}))

	var stats analytics.ProductivityStats
	if err := json.Unmarshal([]byte(toolResultText(t, callResp.Result)), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.TotalWorkTime != 30 || stats.MostProductiveDay != "2024-01-09" {
		t.Fatalf("unexpected stats %#v", stats)
	}
}

func TestGenerateReportToolRejectsInvertedRange(t *testing.T) {
	handler, err := NewHandler(Config{}, testStore(t))
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	server := httptest.NewServer(handler)
	defer server.Close()
	_, _ = postJSONRPC(t, server.Client(), server.URL, initializeRequest())
	_, callResp := postJSONRPC(t, server.Client(), server.URL,
		callToolRequest(2, "sikte.generate_report", map[string]any{
			"start": "2024-01-05",
			"end":   "2024-01-01",
		}))

	isError, _ := callResp.Result["isError"].(bool)
	if !isError {
		t.Fatalf("expected tool error, got %#v", callResp.Result)
	}
	if text := toolResultText(t, callResp.Result); !strings.Contains(text, "range") {
		t.Fatalf("unexpected error text %q", text)
	}
}

func TestNormalizeConfig(t *testing.T) {
	tests := []struct {
		name string
		in   Config
		want Config
	}{
		{
			name: "empty",
			in:   Config{},
			want: Config{ServerName: "sikte", ServerVersion: "dev", EndpointPath: "/mcp"},
		},
		{
			name: "trims and roots endpoint",
			in:   Config{ServerName: " analytics ", ServerVersion: " 1.2.3 ", EndpointPath: "tools/"},
			want: Config{ServerName: "analytics", ServerVersion: "1.2.3", EndpointPath: "/tools"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeConfig(tt.in); got != tt.want {
				t.Fatalf("normalizeConfig() = %#v, want %#v", got, tt.want)
			}
		})
	}
}
