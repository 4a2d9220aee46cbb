package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/joho/godotenv"
	"github.com/vishguard/defender/pkg/coach"
	"github.com/vishguard/defender/pkg/config"
	"github.com/vishguard/defender/pkg/scenario"
)

const Version = "0.2.0"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		cfg := config.NewDefaultConfig()
		if len(os.Args) > 2 {
			cfg.Port = os.Args[2]
		}
		runHTTPServer(cfg)
	case "analyze":
		if len(os.Args) < 3 {
			fmt.Println("Usage: defender analyze <text>")
			os.Exit(1)
		}
		runCLIAnalyze(strings.Join(os.Args[2:], " "))
	case "scenarios":
		listScenarios(config.NewDefaultConfig())
	case "version":
		fmt.Printf("Defender v%s\n", Version)
		fmt.Println("Social-engineering call trainer - session analysis core")
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf("Defender v%s - social-engineering call trainer core\n\n", Version)
	fmt.Println("Usage:")
	fmt.Println("  defender serve [port]     Start HTTP server (default: 3000)")
	fmt.Println("  defender analyze <text>   Run tactic/near-miss detection on one line")
	fmt.Println("  defender scenarios        List available training scenarios")
	fmt.Println("  defender version          Show version")
	fmt.Println("")
	fmt.Println("Environment Variables:")
	fmt.Println("  DEFENDER_PORT                      HTTP listen port")
	fmt.Println("  DEFENDER_SCENARIO_FILE             YAML scenario pack (default: built-in)")
	fmt.Println("  DEFENDER_ABANDON_TIMEOUT_SECONDS   Idle time before live sessions abandon")
	fmt.Println("  DEFENDER_SWEEP_INTERVAL_SECONDS    Abandon sweep interval")
	fmt.Println("  DEFENDER_MAX_BATCH_SIZE            Maximum events per ingest call")
}

func loadScenarios(cfg *config.Config) (*scenario.YAMLProvider, error) {
	if cfg.ScenarioFile != "" {
		return scenario.LoadFile(cfg.ScenarioFile)
	}
	return scenario.NewBuiltinProvider()
}

// ============================================================================
// HTTP Server Mode
// ============================================================================

func runHTTPServer(cfg *config.Config) {
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[STARTUP] FATAL: %v", err)
	}

	scenarios, err := loadScenarios(cfg)
	if err != nil {
		log.Fatalf("[STARTUP] FATAL: failed to load scenario pack: %v", err)
	}
	log.Printf("[STARTUP] Loaded %d scenario(s)", len(scenarios.IDs()))

	store := coach.NewStore(
		coach.WithAbandonTimeout(cfg.AbandonTimeout),
		coach.WithSweepInterval(cfg.SweepInterval),
	)
	manager := coach.NewManager(
		coach.WithStore(store),
		coach.WithScenarios(scenarios),
	)
	defer manager.Close()

	app := fiber.New(fiber.Config{
		AppName: "Defender",
	})

	// Health check
	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"version": Version,
			"store":   manager.Stats(),
		})
	})

	// Create session
	app.Post("/sessions", func(c fiber.Ctx) error {
		var req struct {
			ScenarioID string            `json:"scenario_id"`
			Metadata   map[string]string `json:"metadata"`
		}
		if err := c.Bind().Body(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
		}

		state, err := manager.CreateSession(req.ScenarioID, req.Metadata)
		if err != nil {
			return errorJSON(c, err, nil)
		}
		return c.Status(201).JSON(fiber.Map{
			"session_id":  state.SessionID,
			"scenario_id": state.ScenarioID,
			"status":      state.Status,
			"created_at":  state.CreatedAt,
		})
	})

	// Ingest events
	app.Post("/sessions/:id/events", func(c fiber.Ctx) error {
		var req struct {
			Events []coach.SubmittedEvent `json:"events"`
		}
		if err := c.Bind().Body(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
		}
		if len(req.Events) == 0 {
			return c.Status(400).JSON(fiber.Map{"error": "events field is required"})
		}
		if len(req.Events) > cfg.MaxBatchSize {
			return errorJSON(c, coach.NewError(coach.CodeRateLimited,
				"batch of %d exceeds the maximum of %d events", len(req.Events), cfg.MaxBatchSize), nil)
		}

		result, err := manager.IngestEvents(c.Params("id"), req.Events)
		if err != nil {
			// Committed prefix stays committed; report how far we got.
			return errorJSON(c, err, fiber.Map{
				"events_processed": result.EventsProcessed,
				"session_status":   result.SessionStatus,
			})
		}
		return c.JSON(fiber.Map{
			"accepted":         true,
			"events_processed": result.EventsProcessed,
			"session_status":   result.SessionStatus,
			"updated_at":       result.UpdatedAt,
		})
	})

	// Poll session state (optional ?since=RFC3339 for cheap polling)
	app.Get("/sessions/:id", func(c fiber.Ctx) error {
		var since time.Time
		if raw := c.Query("since"); raw != "" {
			parsed, err := time.Parse(time.RFC3339Nano, raw)
			if err != nil {
				return c.Status(400).JSON(fiber.Map{"error": "invalid since timestamp, want RFC3339"})
			}
			since = parsed
		}

		snapshot, modified, err := manager.Snapshot(c.Params("id"), since)
		if err != nil {
			return errorJSON(c, err, nil)
		}
		if !modified {
			return c.SendStatus(fiber.StatusNotModified)
		}
		return c.JSON(snapshot)
	})

	// Event log (transcript reconstruction for stateless clients)
	app.Get("/sessions/:id/events", func(c fiber.Ctx) error {
		events, err := manager.EventLog(c.Params("id"))
		if err != nil {
			return errorJSON(c, err, nil)
		}
		return c.JSON(fiber.Map{"events": events})
	})

	// Finalize session and emit the report
	app.Post("/sessions/:id/finalize", func(c fiber.Ctx) error {
		req := struct {
			IncludeReport *bool `json:"include_report"`
		}{}
		if len(c.Body()) > 0 {
			if err := c.Bind().Body(&req); err != nil {
				return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
			}
		}

		result, err := manager.Finalize(c.Params("id"))
		if err != nil {
			return errorJSON(c, err, nil)
		}
		resp := fiber.Map{
			"session_id": result.SessionID,
			"status":     result.Status,
		}
		if req.IncludeReport == nil || *req.IncludeReport {
			resp["report"] = result.Report
		}
		return c.JSON(resp)
	})

	// Scenario collaborator passthrough
	app.Get("/scenarios", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"scenarios": scenarios.IDs()})
	})
	app.Get("/scenarios/:id", func(c fiber.Ctx) error {
		sc, err := scenarios.Get(c.Params("id"))
		if err != nil {
			if errors.Is(err, scenario.ErrNotFound) {
				return errorJSON(c, coach.NewError(coach.CodeScenarioNotFound, "%v", err), nil)
			}
			return errorJSON(c, err, nil)
		}
		return c.JSON(sc)
	})

	log.Printf("[STARTUP] Defender HTTP server starting on :%s", cfg.Port)
	log.Printf("Endpoints:")
	log.Printf("  GET  /health                    - Health check + store stats")
	log.Printf("  POST /sessions                  - Create a training session")
	log.Printf("  POST /sessions/:id/events       - Ingest caller/agent events")
	log.Printf("  GET  /sessions/:id              - Poll session state (?since=)")
	log.Printf("  GET  /sessions/:id/events       - Full event log")
	log.Printf("  POST /sessions/:id/finalize     - Freeze session, emit report")
	log.Printf("  GET  /scenarios[/:id]           - Scripted caller lines")

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}

// ============================================================================
// CLI Mode
// ============================================================================

// runCLIAnalyze treats the line as both a caller turn and an agent reply so
// trainers can probe either table from the shell.
func runCLIAnalyze(text string) {
	tactics := coach.DetectTactics(text)
	misses := coach.DetectNearMisses(text, 0, "cli")

	counts := make(map[coach.Tactic]int, len(tactics))
	for _, t := range tactics {
		counts[t] = 1
	}
	risk := coach.AssessRisk(tactics, counts, misses)

	out, _ := json.MarshalIndent(map[string]any{
		"text":        text,
		"tactics":     tactics,
		"near_misses": misses,
		"risk":        risk,
		"suggestions": coach.GenerateSuggestions(tactics, text),
	}, "", "  ")
	fmt.Println(string(out))
}

func listScenarios(cfg *config.Config) {
	scenarios, err := loadScenarios(cfg)
	if err != nil {
		log.Fatalf("failed to load scenario pack: %v", err)
	}

	fmt.Println("Available scenarios:")
	fmt.Println("")
	for _, id := range scenarios.IDs() {
		sc, err := scenarios.Get(id)
		if err != nil {
			continue
		}
		fmt.Printf("  %s\n", sc.ID)
		fmt.Printf("    Title: %s\n", sc.Title)
		fmt.Printf("    Difficulty: %s\n", sc.Difficulty)
		fmt.Printf("    Lines: %d\n", len(sc.Lines))
		fmt.Println()
	}
}

// errorJSON serializes a typed core error with its fixed HTTP status.
func errorJSON(c fiber.Ctx, err error, extra fiber.Map) error {
	ce := coach.AsError(err)
	payload := fiber.Map{
		"code":  ce.Code,
		"error": ce.Message,
	}
	for k, v := range extra {
		payload[k] = v
	}
	return c.Status(ce.HTTPStatus()).JSON(payload)
}
