// Package session keeps Wappo game sessions in memory and, optionally, on disk.
//
// A session pairs an engine with the puzzle it was built from. Session IDs are
// case-insensitive, at most 32 characters of letters, digits, '-' and '_', and
// double as file names for FilePersistence. An empty ID asks the manager to
// generate a random 4-character one.
//
// Usage:
//
//	persistence, err := session.NewFilePersistence("sessions", puzzles)
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(persistence)
//
//	sess, err := manager.Create("", "classic", puzzle)
//	if err != nil {
//		log.Fatal(err)
//	}
//	sess.Engine.Move("left")
//	manager.Save(sess.ID)
//
// Persisted files embed the puzzle layout, so a session keeps playing the
// board it started on even after the puzzle file changes. Files without an
// embedded puzzle are resolved through the PuzzleManager by puzzle ID.
//
// CleanupExpiredSessions only evicts from memory; Get transparently reloads
// an evicted session from persistence.
package session
