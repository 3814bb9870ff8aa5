// Package service provides the business logic layer for the Wappo game server.
//
// The service package implements:
//   - Multi-session game management
//   - Puzzle listing, loading and saving
//   - Move processing with per-turn events
//   - Solving from a session's current position or a puzzle's start
//   - Move history tracking
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// PuzzleManager manages puzzle loading and validation.
// Solver searches for the shortest winning move sequence.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP/TUI)
// and the game engine, providing session isolation and business logic
// orchestration. Each session maintains its own game engine instance with
// independent state.
//
// Usage:
//
//	puzzleMgr, _ := config.NewManager("puzzles")
//	sessionMgr := session.NewManager()
//	gameService := service.NewGameService(sessionMgr, puzzleMgr, solver.New())
//
//	// Create a new session
//	sessionInfo, err := gameService.CreateSession(ctx, "classic")
//
//	// Ask for the shortest way out
//	hint, err := gameService.Solve(ctx, sessionInfo.ID)
package service
