package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DariaMikhailovna/Wappo/api"
	"github.com/DariaMikhailovna/Wappo/game/config"
	"github.com/DariaMikhailovna/Wappo/game/engine"
	"github.com/DariaMikhailovna/Wappo/game/service"
	"github.com/DariaMikhailovna/Wappo/game/session"
	"github.com/DariaMikhailovna/Wappo/game/solver"
	"github.com/mark3labs/mcp-go/mcp"
)

func pincerPuzzle() *engine.Puzzle {
	return &engine.Puzzle{
		Name:   "Pincer",
		Height: 3,
		Width:  3,
		Layout: []string{
			"+-+-+-+",
			"|  P  |",
			"+ +-+-+",
			"H |   |",
			"+ +-+ +",
			"|E E X|",
			"+-+-+-+",
		},
	}
}

// newAPIServer runs the real REST API with the pincer puzzle installed.
func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()

	puzzles, err := config.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create puzzle manager: %v", err)
	}
	if err := puzzles.SavePuzzle("pincer", pincerPuzzle()); err != nil {
		t.Fatalf("Failed to save puzzle: %v", err)
	}

	svc := service.NewGameService(session.NewManager(), puzzles, solver.New())
	ts := httptest.NewServer(api.NewServer(svc, nil))
	t.Cleanup(ts.Close)
	return ts
}

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), name string, args map[string]interface{}) (string, bool) {
	t.Helper()

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}

	result, err := handler(context.Background(), request)
	if err != nil {
		t.Fatalf("%s failed: %v", name, err)
	}
	if result == nil || len(result.Content) == 0 {
		t.Fatalf("%s returned no content", name)
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("%s: expected text content", name)
	}
	return text.Text, result.IsError
}

func createSession(t *testing.T, client *Client) string {
	t.Helper()

	text, isErr := callTool(t, client.handleCreateSession, "create_session", map[string]interface{}{"puzzle_id": "pincer"})
	if isErr {
		t.Fatalf("create_session failed: %s", text)
	}

	firstLine := strings.SplitN(text, "\n", 2)[0]
	id := strings.TrimPrefix(firstLine, "Created session: ")
	if id == firstLine || id == "" {
		t.Fatalf("No session ID in %q", text)
	}
	return id
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/")

	if client.baseURL != "http://localhost:8080" {
		t.Errorf("Expected trailing slash to be trimmed, got %s", client.baseURL)
	}
	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Expected JSON content type, got %q", r.Header.Get("Content-Type"))
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(map[string]string{"echo": body["direction"]})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var response map[string]string
	err := client.apiCall(context.Background(), "POST", "/api", map[string]string{"direction": "left"}, &response)
	if err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}
	if response["echo"] != "left" {
		t.Errorf("Expected echo left, got %v", response)
	}
}

func TestClient_apiCall_Errors(t *testing.T) {
	t.Run("unreachable", func(t *testing.T) {
		client := NewClient("http://127.0.0.1:1")
		if err := client.apiCall(context.Background(), "GET", "/api", nil, nil); err == nil {
			t.Error("Expected error for unreachable server")
		}
	})

	t.Run("plain status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Internal Server Error"))
		}))
		defer server.Close()

		err := NewClient(server.URL).apiCall(context.Background(), "GET", "/api", nil, nil)
		if err == nil || !strings.Contains(err.Error(), "API error: 500") {
			t.Errorf("Expected 'API error: 500', got: %v", err)
		}
	})

	t.Run("error body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "session not found"})
		}))
		defer server.Close()

		err := NewClient(server.URL).apiCall(context.Background(), "GET", "/api", nil, nil)
		if err == nil || err.Error() != "session not found" {
			t.Errorf("Expected the API error message, got: %v", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(50 * time.Millisecond)
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := NewClient(server.URL).apiCall(ctx, "GET", "/api", nil, nil); err == nil {
			t.Error("Expected error for cancelled context")
		}
	})
}

func TestClient_SessionTools(t *testing.T) {
	ts := newAPIServer(t)
	client := NewClient(ts.URL)
	id := createSession(t, client)

	text, _ := callTool(t, client.handleGetSession, "get_session", map[string]interface{}{"session_id": id})
	for _, want := range []string{"Session: " + id, "Puzzle: pincer", "|  P  |", "Player: (1,3)", "Enemy 2: (5,3)"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in get_session output:\n%s", want, text)
		}
	}

	text, _ = callTool(t, client.handleListSessions, "list_sessions", map[string]interface{}{})
	if !strings.Contains(text, "Active Sessions (1)") || !strings.Contains(text, id) {
		t.Errorf("Unexpected list_sessions output:\n%s", text)
	}

	text, isErr := callTool(t, client.handleGetSession, "get_session", map[string]interface{}{"session_id": "nope"})
	if !isErr || !strings.Contains(text, "not found") {
		t.Errorf("Expected a tool error for an unknown session, got %q", text)
	}
}

func TestClient_MoveTools(t *testing.T) {
	ts := newAPIServer(t)
	client := NewClient(ts.URL)
	id := createSession(t, client)

	text, _ := callTool(t, client.handleMove, "move", map[string]interface{}{
		"session_id": id,
		"direction":  "up",
		"intent":     "check the wall",
	})
	if !strings.Contains(text, "✗ Move failed") || !strings.Contains(text, "Player: (1,3)") {
		t.Errorf("Expected a blocked move, got:\n%s", text)
	}

	text, _ = callTool(t, client.handleMove, "move", map[string]interface{}{
		"session_id": id,
		"direction":  "right",
	})
	for _, want := range []string{"✓ Move successful", "Player: (1,5)", "Enemy 1: (5,5) big"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q after moving right:\n%s", want, text)
		}
	}

	text, isErr := callTool(t, client.handleMove, "move", map[string]interface{}{
		"session_id": id,
		"direction":  "north",
	})
	if !isErr {
		t.Errorf("Expected an invalid direction to be a tool error, got:\n%s", text)
	}

	text, _ = callTool(t, client.handleReset, "reset_game", map[string]interface{}{"session_id": id})
	if !strings.Contains(text, "Game reset successfully") || !strings.Contains(text, "Player: (1,3)") {
		t.Errorf("Unexpected reset output:\n%s", text)
	}
}

func TestClient_SolveAndBulkMove(t *testing.T) {
	ts := newAPIServer(t)
	client := NewClient(ts.URL)
	id := createSession(t, client)

	text, _ := callTool(t, client.handleSolve, "solve", map[string]interface{}{"session_id": id})
	if !strings.Contains(text, "Solution in 7 moves: RLRLLDL") || !strings.Contains(text, "Next move: right") {
		t.Fatalf("Unexpected solve output:\n%s", text)
	}

	text, _ = callTool(t, client.handleSolve, "solve", map[string]interface{}{"puzzle_id": "pincer"})
	if !strings.Contains(text, "RLRLLDL") {
		t.Errorf("Expected puzzle solve to match, got:\n%s", text)
	}

	text, isErr := callTool(t, client.handleSolve, "solve", map[string]interface{}{})
	if !isErr {
		t.Errorf("Expected an error without session or puzzle, got:\n%s", text)
	}

	text, isErr = callTool(t, client.handleBulkMove, "bulk_move", map[string]interface{}{"session_id": id})
	if !isErr {
		t.Errorf("Expected an error without moves, got:\n%s", text)
	}

	text, _ = callTool(t, client.handleBulkMove, "bulk_move", map[string]interface{}{
		"session_id": id,
		"solution":   "RLRLLDL",
		"intent":     "replay the solver's answer",
	})
	for _, want := range []string{"Executed 7/7 moves", "7. left", service.MessageWin, "ESCAPED"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in bulk_move output:\n%s", want, text)
		}
	}

	text, _ = callTool(t, client.handleMoveHistory, "move_history", map[string]interface{}{
		"session_id": id,
		"limit":      float64(2),
	})
	if !strings.Contains(text, "page 1/4, 7 total moves") || !strings.Contains(text, "#7 ✓ left") {
		t.Errorf("Unexpected history output:\n%s", text)
	}
}

func TestClient_BulkMoveArray(t *testing.T) {
	ts := newAPIServer(t)
	client := NewClient(ts.URL)
	id := createSession(t, client)

	text, _ := callTool(t, client.handleBulkMove, "bulk_move", map[string]interface{}{
		"session_id": id,
		"moves":      []interface{}{"right", "up", "left"},
	})
	if !strings.Contains(text, "Executed 1/3 moves") || !strings.Contains(text, "blocked_wall") {
		t.Errorf("Expected the batch to stop at the wall, got:\n%s", text)
	}
}

func TestClient_ListPuzzlesAndInstructions(t *testing.T) {
	ts := newAPIServer(t)
	client := NewClient(ts.URL)

	text, _ := callTool(t, client.handleListPuzzles, "list_puzzles", map[string]interface{}{})
	if !strings.Contains(text, "pincer (Pincer)") || !strings.Contains(text, "Grid: 3x3, Enemies: 2, Hazards: 1") {
		t.Errorf("Unexpected list_puzzles output:\n%s", text)
	}

	text, _ = callTool(t, client.handleGameInstructions, "game_instructions", map[string]interface{}{})
	if !strings.Contains(text, "TURN ORDER") || !strings.Contains(text, "big enemy") {
		t.Errorf("Unexpected instructions:\n%s", text)
	}
}

func TestFormatBoard(t *testing.T) {
	t.Run("nil state", func(t *testing.T) {
		if got := formatBoard(nil, nil); got != "No game state available" {
			t.Errorf("Unexpected output %q", got)
		}
	})

	t.Run("lost game", func(t *testing.T) {
		state := &engine.GameState{
			Player:   engine.Position{R: 1, C: 1},
			Enemies:  []engine.Enemy{{Pos: engine.Position{R: 1, C: 1}, Big: true, Cooldown: 2}},
			WinState: engine.Lose,
		}
		got := formatBoard(state, nil)
		for _, want := range []string{"Enemy 1: (1,1) big waiting 2", "CAUGHT", service.MessageLose} {
			if !strings.Contains(got, want) {
				t.Errorf("Expected %q in %q", want, got)
			}
		}
	})
}

func TestClient_BulkMoveSolutionString(t *testing.T) {
	ts := newAPIServer(t)
	client := NewClient(ts.URL)
	id := createSession(t, client)

	text, isErr := callTool(t, client.handleBulkMove, "bulk_move", map[string]interface{}{
		"session_id": id,
		"solution":   "RZ",
	})
	if !isErr || !strings.Contains(text, "invalid solution") {
		t.Errorf("Expected an invalid solution error, got:\n%s", text)
	}

	text, isErr = callTool(t, client.handleBulkMove, "bulk_move", map[string]interface{}{
		"session_id": id,
		"solution":   "r l",
	})
	if isErr || !strings.Contains(text, "Executed 2/2 moves") {
		t.Errorf("Expected both moves to run, got:\n%s", text)
	}
}
