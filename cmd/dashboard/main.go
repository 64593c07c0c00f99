package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/jrsteele09/solar-dashboard/api"
	"github.com/jrsteele09/solar-dashboard/auth"
	"github.com/jrsteele09/solar-dashboard/authorizer"
	"github.com/jrsteele09/solar-dashboard/dashboard"
	"github.com/jrsteele09/solar-dashboard/guard"
	"github.com/jrsteele09/solar-dashboard/internal/config"
	"github.com/jrsteele09/solar-dashboard/internal/logging"
	"github.com/jrsteele09/solar-dashboard/server"
	"github.com/jrsteele09/solar-dashboard/session"
	"github.com/rs/zerolog/log"
)

func main() {
	// A missing .env is normal outside development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %s\n", err)
	}

	for {
		if err := run(); err != nil {
			log.Fatal().Err(err).Msg("Error running dashboard")
		} else {
			break
		}
	}
	log.Info().Msg("Dashboard stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	logging.Init(c.GetEnv(), c.GetLogLevel())
	displayAppname(c.GetAppName())

	ctx := context.Background()
	store, closeStore, err := openStore(ctx, c)
	if err != nil {
		return err
	}
	defer closeStore()

	state, publish, err := session.NewState(ctx, store)
	if err != nil {
		return err
	}
	gateway, err := auth.NewGateway(c, store, state, publish)
	if err != nil {
		return err
	}
	client, err := api.NewClient(c.GetAPIBaseURL(), authorizer.New(gateway).Client(c.GetHTTPTimeout()))
	if err != nil {
		return err
	}
	dash, err := dashboard.New(client)
	if err != nil {
		return err
	}
	handler, err := server.New(c, gateway, guard.New(gateway, auth.LoginRoute), client, dash)
	if err != nil {
		return err
	}

	updates, unsubscribe := state.Subscribe()
	defer unsubscribe()
	go logSessionChanges(updates)

	httpServer := &http.Server{Addr: c.GetPort(), Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- listenAndServe(httpServer)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

// openStore picks the session backend from SESSION_BACKEND.
func openStore(ctx context.Context, c config.Config) (session.Store, func(), error) {
	noop := func() {}

	switch backend := c.GetSessionBackend(); backend {
	case config.SessionBackendMemory:
		log.Warn().Msg("Session is kept in memory and will not survive a restart")
		return session.NewMemoryStore(), noop, nil

	case config.SessionBackendNone:
		log.Warn().Msg("Session storage disabled, every request will need a fresh login")
		return session.Detached{}, noop, nil

	case config.SessionBackendRedis:
		rdb, err := session.DialRedis(ctx, c.GetRedisAddr(), c.GetRedisPassword())
		if err != nil {
			return nil, noop, err
		}
		log.Info().Str("addr", c.GetRedisAddr()).Msg("Session stored in redis")
		return session.NewRedisStore(rdb, c.GetRedisPrefix()), func() { _ = rdb.Close() }, nil

	case config.SessionBackendFile:
		var opts []session.FileStoreOption
		if hexKey := c.GetSessionKey(); hexKey != "" {
			key, err := session.ParseSealKey(hexKey)
			if err != nil {
				return nil, noop, err
			}
			opts = append(opts, session.WithSealKey(key))
		}
		store, err := session.NewFileStore(c.GetSessionFile(), opts...)
		if err != nil {
			return nil, noop, err
		}
		log.Info().Str("path", c.GetSessionFile()).Bool("sealed", len(opts) > 0).Msg("Session stored on disk")
		return store, noop, nil

	default:
		return nil, noop, fmt.Errorf("unknown SESSION_BACKEND %q", backend)
	}
}

func logSessionChanges(updates <-chan session.Snapshot) {
	for snap := range updates {
		log.Info().Bool("authenticated", snap.Authenticated).Str("username", snap.Username).Msg("Session state")
	}
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Dashboard listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
