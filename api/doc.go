// Package api provides the HTTP REST API for the Wappo game server.
//
// Endpoints:
//
// Sessions:
//   - POST /api/sessions - Create a session ({"puzzle_id": "classic"}, empty for the default)
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N&puzzle=ID)
//   - GET /api/sessions/{id} - Session info with rendered board
//   - DELETE /api/sessions/{id} - Delete a session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current state, board and banner
//   - POST /api/sessions/{id}/move - {"direction": "left", "reset": false}
//   - POST /api/sessions/{id}/bulk-move - {"moves": ["L","R"]} or {"solution": "LR"}
//   - POST /api/sessions/{id}/reset - Restart the puzzle
//   - GET /api/sessions/{id}/history - Paginated move history (?page&limit&order)
//   - GET /api/sessions/{id}/solve - Shortest solution from the current position
//
// Puzzles:
//   - GET /api/puzzles - List puzzles
//   - POST /api/puzzles - Save a puzzle (optional "id", defaults to the slugged name)
//   - GET /api/puzzles/{name} - Puzzle definition
//   - GET /api/puzzles/{name}/solve - Shortest solution from the puzzle start
//
// Other:
//   - GET /api/health - Liveness probe
//   - GET /ws?session={id} - WebSocket feed of session updates
//
// Errors are returned as {"error": "..."}. Unknown sessions and puzzles map to
// 404, bad directions and invalid puzzles to 400, an exhausted solver state
// budget to 422 and a solve that outlives its deadline to 504.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//
//	server := api.NewServer(gameService, hub)
//	http.ListenAndServe(":8080", server)
package api
