// Command wappo runs the Wappo chase puzzle.
//
// Commands:
//  1. "server" (default) – HTTP server exposing the REST API, WebSocket feed and an /mcp endpoint
//  2. "mcp" – MCP stdio server, backed by an internal HTTP API if none is running
//  3. "solve" – prints the shortest winning move sequence for a puzzle
//  4. "play" – plays a puzzle in the terminal
//
// Flags fall back to environment variables, and a .env file in the working
// directory is loaded first. The server can optionally publish itself through
// an ngrok tunnel.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/DariaMikhailovna/Wappo/api"
	"github.com/DariaMikhailovna/Wappo/game/config"
	"github.com/DariaMikhailovna/Wappo/game/engine"
	"github.com/DariaMikhailovna/Wappo/game/service"
	"github.com/DariaMikhailovna/Wappo/game/session"
	"github.com/DariaMikhailovna/Wappo/game/solver"
	"github.com/DariaMikhailovna/Wappo/transport/mcp"
	"github.com/DariaMikhailovna/Wappo/transport/tui"
	"github.com/DariaMikhailovna/Wappo/transport/websocket"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Wappo"
)

const (
	// defaultPuzzleFile is read by solve and play when no puzzle is named.
	defaultPuzzleFile = "input.txt"

	sessionMaxAge   = 24 * time.Hour
	cleanupInterval = time.Hour
	syncInterval    = 5 * time.Second
)

// serverConfig collects the flags shared by the server and mcp commands.
type serverConfig struct {
	host        string
	port        int
	puzzleDir   string
	sessionsDir string

	ngrokEnabled bool
	ngrokAuth    string
	ngrokDomain  string
}

func serverConfigFrom(cmd *cli.Command) serverConfig {
	return serverConfig{
		host:         cmd.String("host"),
		port:         cmd.Int("port"),
		puzzleDir:    cmd.String("puzzle-dir"),
		sessionsDir:  cmd.String("sessions-dir"),
		ngrokEnabled: cmd.Bool("ngrok"),
		ngrokAuth:    cmd.String("ngrok-auth"),
		ngrokDomain:  cmd.String("ngrok-domain"),
	}
}

func (c serverConfig) addr() string {
	return fmt.Sprintf("%s:%d", c.host, c.port)
}

// newApp builds the command tree.
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "wappo",
		Usage:   "Wappo chase puzzle server, solver and player",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "puzzle-dir",
				Value:   "puzzles",
				Usage:   "Directory containing puzzle files",
				Sources: cli.EnvVars("PUZZLE_DIR"),
			},
			&cli.StringFlag{
				Name:    "sessions-dir",
				Value:   "sessions",
				Usage:   "Directory where sessions are persisted",
				Sources: cli.EnvVars("SESSIONS_DIR"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "Enable ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "Ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "Custom ngrok domain (optional)",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				log.SetFlags(log.LstdFlags | log.Lshortfile)
			} else {
				log.SetFlags(log.LstdFlags)
			}
			return ctx, nil
		},
		Action: runServerCommand,
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run the HTTP server with REST API, WebSocket and MCP endpoint",
				Action:  runServerCommand,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run an MCP stdio server",
				Action:  runMCPCommand,
			},
			{
				Name:      "solve",
				Usage:     "Print the shortest winning move sequence",
				ArgsUsage: "[puzzle file or name]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "canonical",
						Usage: "Treat states that differ only in enemy order as equal",
					},
					&cli.IntFlag{
						Name:  "max-states",
						Usage: "Give up after discovering this many states (0 for no limit)",
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "Give up after this long (0 for no limit)",
					},
					&cli.BoolFlag{
						Name:  "verbose",
						Usage: "Log search progress and statistics to stderr",
					},
				},
				Action: runSolveCommand,
			},
			{
				Name:      "play",
				Usage:     "Play a puzzle in the terminal",
				ArgsUsage: "[puzzle file or name]",
				Action:    runPlayCommand,
			},
		},
	}
}

// main loads .env, then runs the selected command until it finishes or a
// shutdown signal arrives.
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

// services bundles what initializeServices wires together.
type services struct {
	game        service.GameService
	sessions    *session.Manager
	persistence *session.FilePersistence
}

// initializeServices wires the puzzle and session managers, the solver and
// the game service, and restores persisted sessions.
func initializeServices(cfg serverConfig) (*services, error) {
	puzzleManager, err := config.NewManager(cfg.puzzleDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create puzzle manager: %w", err)
	}

	persistence, err := session.NewFilePersistence(cfg.sessionsDir, puzzleManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	sessionManager := session.NewManagerWithPersistence(persistence)
	if err := sessionManager.LoadPersistedSessions(); err != nil {
		log.Printf("Warning: Failed to load persisted sessions: %v", err)
	}

	s := solver.New(solver.WithMaxStates(solver.DefaultMaxStates))

	return &services{
		game:        service.NewGameService(sessionManager, puzzleManager, s),
		sessions:    sessionManager,
		persistence: persistence,
	}, nil
}

// startMaintenance runs the cleanup and filesystem sync loops until ctx ends.
func (s *services) startMaintenance(ctx context.Context) {
	go sessionCleanupRoutine(ctx, s.sessions, cleanupInterval)
	go filesystemSyncRoutine(ctx, s.sessions, s.persistence, syncInterval)
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within sessionMaxAge.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(sessionMaxAge); removed > 0 {
				log.Printf("Cleaned up %d expired sessions", removed)
			}
		}
	}
}

// filesystemSyncRoutine drops sessions from memory once their files are gone.
func filesystemSyncRoutine(ctx context.Context, manager *session.Manager, persistence session.SessionPersistence, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if pruned := pruneOrphans(manager, persistence); pruned > 0 {
				log.Printf("Filesystem sync: pruned %d orphaned sessions from memory", pruned)
			}
		}
	}
}

func pruneOrphans(manager *session.Manager, persistence session.SessionPersistence) int {
	pruned := 0
	for _, sess := range manager.List() {
		if persistence.Exists(sess.ID) {
			continue
		}
		if err := manager.DeleteFromMemory(sess.ID); err == nil {
			pruned++
			log.Printf("Pruned session %s from memory (file deleted)", sess.ID)
		}
	}
	return pruned
}

// newRouter mounts the REST API at the root and the MCP JSON-RPC endpoint at
// /mcp. The MCP client calls back into the API through baseURL.
func newRouter(apiServer http.Handler, baseURL string) *http.ServeMux {
	mcpClient := mcp.NewClient(baseURL)

	router := http.NewServeMux()
	router.Handle("/", apiServer)
	router.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})
	return router
}

func runServerCommand(ctx context.Context, cmd *cli.Command) error {
	cfg := serverConfigFrom(cmd)
	log.Printf("Starting %s v%s (mode: server)", AppName, Version)

	svc, err := initializeServices(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	return runHTTPServer(ctx, cfg, svc)
}

// runHTTPServer serves the API until ctx is cancelled, then shuts down
// gracefully. With ngrok enabled the same router is also served through a
// public tunnel.
func runHTTPServer(ctx context.Context, cfg serverConfig, svc *services) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	svc.startMaintenance(ctx)

	hub := websocket.NewHub()
	go hub.Run()

	addr := cfg.addr()
	router := newRouter(api.NewServer(svc.game, hub), "http://"+addr)

	httpServer := &http.Server{
		Addr:        addr,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// Solving may take up to the API's solve timeout
		WriteTimeout: api.DefaultSolveTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	errCh := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("HTTP server listening on %s", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server failed: %w", err)
			cancel()
		}
	}()

	if cfg.ngrokEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, cfg, router)
		}()
	}

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
	if err := svc.sessions.SaveAllSessions(); err != nil {
		log.Printf("Warning: Failed to save sessions: %v", err)
	}

	wg.Wait()
	log.Println("Server stopped")

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}

// runNgrokTunnel serves handler through an ngrok endpoint until ctx ends.
func runNgrokTunnel(ctx context.Context, cfg serverConfig, handler http.Handler) {
	if cfg.ngrokAuth == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	log.Println("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if cfg.ngrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(cfg.ngrokDomain))
		log.Printf("Using custom ngrok domain: %s", cfg.ngrokDomain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(cfg.ngrokAuth))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}

	// Close the tunnel on shutdown so Serve returns
	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	ngrokURL := tun.URL()
	log.Printf("Ngrok tunnel established: %s", ngrokURL)
	log.Printf("  REST API (ngrok): %s/api", ngrokURL)
	log.Printf("  WebSocket (ngrok): %s/ws?session=<session_id>", ngrokURL)
	log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

// runMCPCommand serves MCP over stdio. It reuses an API already listening on
// the configured address, or starts an internal one on a loopback port.
func runMCPCommand(ctx context.Context, cmd *cli.Command) error {
	cfg := serverConfigFrom(cmd)

	// stdout belongs to the protocol
	log.SetOutput(os.Stderr)

	externalURL := "http://" + cfg.addr()
	baseURL := externalURL
	log.Printf("Checking for external API server at %s...", externalURL)

	if !apiAvailable(ctx, externalURL) {
		log.Printf("No external API server found, starting internal HTTP server")

		svc, err := initializeServices(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize services: %w", err)
		}

		internalURL, shutdown, err := startInternalServer(ctx, svc)
		if err != nil {
			return err
		}
		defer shutdown()
		baseURL = internalURL
	} else {
		log.Printf("External API server found at %s, using it for MCP", externalURL)
	}

	log.Printf("MCP stdio server ready (API at %s)", baseURL)
	if err := mcp.NewClient(baseURL).ServeStdio(); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

func apiAvailable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// startInternalServer serves the API on a random loopback port and returns
// its base URL.
func startInternalServer(ctx context.Context, svc *services) (string, func(), error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("failed to get available port: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	svc.startMaintenance(ctx)

	hub := websocket.NewHub()
	go hub.Run()

	httpServer := &http.Server{Handler: api.NewServer(svc.game, hub)}
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Internal HTTP server error: %v", err)
		}
	}()

	baseURL := "http://" + listener.Addr().String()
	log.Printf("Internal HTTP server listening on %s", baseURL)

	shutdown := func() {
		cancel()
		httpServer.Close()
		if err := svc.sessions.SaveAllSessions(); err != nil {
			log.Printf("Warning: Failed to save sessions: %v", err)
		}
	}
	return baseURL, shutdown, nil
}

// resolvePuzzle loads the puzzle named by arg: an existing file path, else
// a name in the puzzle directory. Without an argument input.txt is used if
// present, else the directory's default puzzle.
func resolvePuzzle(arg, puzzleDir string) (*engine.Puzzle, error) {
	if arg == "" {
		if _, err := os.Stat(defaultPuzzleFile); err == nil {
			return engine.LoadPuzzleFile(defaultPuzzleFile)
		}
	} else if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		return engine.LoadPuzzleFile(arg)
	}

	manager, err := config.NewManager(puzzleDir)
	if err != nil {
		if arg == "" {
			return engine.DefaultPuzzle(), nil
		}
		return nil, fmt.Errorf("puzzle %q: %w", arg, err)
	}
	if arg == "" {
		return manager.GetDefault(), nil
	}
	return manager.LoadPuzzle(arg)
}

func solverOptions(cmd *cli.Command) []solver.Option {
	var opts []solver.Option
	if cmd.Bool("canonical") {
		opts = append(opts, solver.WithCanonicalEnemies())
	}
	if n := cmd.Int("max-states"); n > 0 {
		opts = append(opts, solver.WithMaxStates(n))
	}
	if cmd.Bool("verbose") {
		opts = append(opts,
			solver.WithLogger(log.New(cmd.Root().ErrWriter, "", log.LstdFlags)),
			solver.WithProgressEvery(100000),
		)
	}
	return opts
}

// runSolveCommand prints the winning sequence as direction letters, or
// "no solution".
func runSolveCommand(ctx context.Context, cmd *cli.Command) error {
	puzzle, err := resolvePuzzle(cmd.Args().First(), cmd.String("puzzle-dir"))
	if err != nil {
		return err
	}

	_, start, err := puzzle.Build()
	if err != nil {
		return err
	}

	if timeout := cmd.Duration("timeout"); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	res, err := solver.New(solverOptions(cmd)...).Solve(ctx, start)
	if err != nil {
		return fmt.Errorf("solve %s: %w", puzzle.Name, err)
	}

	if cmd.Bool("verbose") {
		fmt.Fprintf(cmd.Root().ErrWriter, "puzzle=%s found=%t moves=%d expanded=%d discovered=%d took=%s\n",
			puzzle.Name, res.Found, len(res.Moves), res.Expanded, res.Discovered, res.Duration.Round(time.Millisecond))
	}

	fmt.Fprintln(cmd.Root().Writer, res.String())
	return nil
}

func runPlayCommand(ctx context.Context, cmd *cli.Command) error {
	puzzle, err := resolvePuzzle(cmd.Args().First(), cmd.String("puzzle-dir"))
	if err != nil {
		return err
	}
	return tui.Run(puzzle, solver.New(solver.WithMaxStates(solver.DefaultMaxStates)))
}
