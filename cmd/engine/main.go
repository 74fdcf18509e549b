package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"autoapply-engine/internal/browser"
	"autoapply-engine/internal/config"
	"autoapply-engine/internal/diag"
	"autoapply-engine/internal/events"
	"autoapply-engine/internal/httpapi"
	"autoapply-engine/internal/ledger"
	"autoapply-engine/internal/llm"
	"autoapply-engine/internal/logging"
	"autoapply-engine/internal/notify"
	"autoapply-engine/internal/scheduler"
	"autoapply-engine/internal/secrets"
	"autoapply-engine/internal/store"
	"autoapply-engine/internal/tailor"
	"autoapply-engine/internal/workflow"
)

// lastPass holds the most recent finished pass for /status.
type lastPass struct {
	mu  sync.Mutex
	res *workflow.Result
}

func (l *lastPass) Last() *workflow.Result {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.res
}

func (l *lastPass) set(r *workflow.Result) {
	l.mu.Lock()
	l.res = r
	l.mu.Unlock()
}

func main() {
	once := flag.Bool("once", false, "run a single pass and exit")
	serve := flag.Bool("serve", true, "serve the local control API")
	cfgFlag := flag.String("config", "", "config file (default <data dir>/config.yml)")
	importPath := flag.String("import-ledger", "", "merge listing IDs from a JSON array file into the ledger and exit")
	flag.Parse()

	// Missing .env should not kill startup
	_ = godotenv.Load()

	// Engine data dir: use env if provided, else local folder.
	dataDir := os.Getenv("AUTOAPPLY_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	userCfgPath := *cfgFlag
	if userCfgPath == "" {
		p, err := config.EnsureUserConfig(dataDir, filepath.Join("config", "config.yml"))
		if err != nil {
			log.Fatalf("config bootstrap failed: %v", err)
		}
		userCfgPath = p
	}

	// Load config and keep it reloadable
	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		cfg, err := config.Load(userCfgPath)
		if err != nil {
			return cfg, err
		}
		if cfg.App.DataDir == "" || cfg.App.DataDir == "." {
			cfg.App.DataDir = dataDir
		}
		config.OverlayEnv(&cfg)
		secrets.Fill(&cfg)
		config.ResolvePaths(&cfg)
		cfg, vr := config.NormalizeAndValidate(cfg)
		for _, w := range vr.Warnings {
			log.Printf("[config] warning: %s", w)
		}
		if !vr.OK() {
			return cfg, errors.New("invalid config: " + vr.Errors[0])
		}
		return cfg, nil
	}
	cfg, err := loadCfg()
	if err != nil {
		log.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}
	cfgVal.Store(cfg)

	if cfg.App.LogFile != "" {
		lf, err := logging.Tee(cfg.App.LogFile, os.Stderr)
		if err != nil {
			log.Printf("[log] file disabled: %v", err)
		} else {
			defer lf.Close()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPath := filepath.Join(dataDir, "autoapply.db")
	db, err := store.OpenMigrated(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if n, err := store.CleanupOldAttempts(ctx, db.Pool, time.Now()); err != nil {
		log.Printf("[store] cleanup: %v", err)
	} else if n > 0 {
		log.Printf("[store] removed %d old attempts", n)
	}

	led, err := ledger.Open(cfg.Ledger, db)
	if err != nil {
		log.Fatalf("ledger: %v", err)
	}
	defer led.Close()

	if *importPath != "" {
		ids, err := ledger.ReadIDs(*importPath)
		if err != nil {
			log.Fatalf("import: %v", err)
		}
		added, err := ledger.Import(ctx, led, ids)
		if err != nil {
			log.Fatalf("import: %v", err)
		}
		log.Printf("[ledger] imported %d of %d ids from %s", added, len(ids), *importPath)
		return
	}

	var gen llm.Generator
	if client, err := llm.New(ctx, cfg.LLM); err != nil {
		log.Printf("[tailor] text generation unavailable, using base document: %v", err)
	} else {
		gen = client
		log.Printf("[tailor] provider=%s", client.Name())
	}

	notifier, closeNotify, err := notify.FromConfig(cfg.Notify)
	if err != nil {
		log.Printf("[notify] disabled: %v", err)
		notifier, closeNotify = notify.Nop{}, func() error { return nil }
	}
	defer closeNotify()

	shots, err := diag.New(ctx, cfg.Diag)
	if err != nil {
		log.Fatalf("diag: %v", err)
	}

	hub := events.NewHub()
	last := &lastPass{}

	runPass := func(ctx context.Context) error {
		cur := cfgVal.Load().(config.Config)

		r := workflow.New(cur, browser.NewLauncher(cur.Browser), led, shots)
		if cur.Tailoring.Enabled && gen != nil {
			r.Tailor = tailor.New(cur.Tailoring, gen)
		}
		if cur.Tailoring.Pitch && gen != nil {
			r.Pitch = tailor.NewPitcher(gen, cur.Tailoring.CandidateName)
		}
		r.Notifier = notifier
		r.History = func(ctx context.Context, a store.Attempt) error {
			return store.InsertAttempt(ctx, db.Pool, a)
		}
		r.Events = hub

		res, err := r.RunPass(ctx)
		if res != nil {
			last.set(res)
		}
		return err
	}

	sched, err := scheduler.New("pass", cfg.Pass.Schedule, filepath.Join(dataDir, "pass.lock"), runPass)
	if err != nil {
		log.Fatalf("scheduler: %v", err)
	}

	if *once {
		if err := sched.RunOnce(ctx); err != nil {
			log.Fatalf("pass: %v", err)
		}
		return
	}
	if !*serve {
		sched.Start(ctx, cfg.Pass.RunOnStartup)
		<-ctx.Done()
		return
	}

	token := os.Getenv("AUTOAPPLY_SHUTDOWN_TOKEN")
	if token == "" {
		token, err = randomToken(16)
		if err != nil {
			log.Fatal(err)
		}
	}
	tokenPath := filepath.Join(dataDir, "shutdown.token")
	if err := os.WriteFile(tokenPath, []byte(token), 0o600); err != nil {
		log.Printf("[http] cannot write %s: %v", tokenPath, err)
	}

	mux := httpapi.NewMux(httpapi.Deps{
		DB:          db.Pool,
		Hub:         hub,
		CfgVal:      &cfgVal,
		UserCfgPath: userCfgPath,
		LoadCfg:     loadCfg,
		Ledger:      led,
		Passes:      sched,
		Runner:      last,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	mux.HandleFunc("/shutdown", shutdownHandler(token, cancel))

	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(cfg.App.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("engine listening on http://%s (db=%s)", addr, dbPath)

	srv := &http.Server{
		Handler:           httpapi.Handler(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	var g errgroup.Group
	g.Go(func() error {
		sched.Start(ctx, cfg.Pass.RunOnStartup)
		<-ctx.Done()
		return nil
	})
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			cancel()
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		log.Printf("engine stopped: %v", err)
	}
	log.Printf("engine stopped")
}
