// Package mcp exposes the Wappo REST API as Model Context Protocol tools.
//
// The client holds no game state of its own. Every tool call is forwarded to
// a running API server and the JSON response is turned into plain text an
// agent can read, including the rendered board and threat level.
//
// MCP Tools:
//   - create_session, list_sessions, get_session: session management
//   - game_state: board, enemies and threat level
//   - move, bulk_move: play moves (bulk_move also takes a "solution" string)
//   - reset_game, move_history: restart and inspect past turns
//   - list_puzzles: available puzzle definitions
//   - solve: shortest winning sequence for a session or a puzzle
//   - game_instructions: rules text
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := client.ServeStdio(); err != nil {
//		log.Fatal(err)
//	}
package mcp
