// Package websocket pushes live Wappo session updates to spectators.
//
// Clients connect to /ws?session=<id> and only receive frames for that
// session. The server never reads game commands from the socket; moves go
// through the REST API and the resulting state is broadcast here.
//
// Every frame is one JSON document:
//
//	{"session_id":"ab12","event":"state_update","game_state":{...},"board":["+-+-+", ...]}
//
// Events are state_update after a move, reset after a reset and solved when
// a solution was computed for the session (with the solve result in data).
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//
//	hub.ServeWS(w, r, sessionID)
//	hub.BroadcastToSession(sessionID, state)
//
// Clients that fall behind by more than 256 frames are disconnected.
package websocket
