package cli

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"time"

	"corkboard/internal/logs"
	"corkboard/internal/server"

	log "github.com/sirupsen/logrus"
)

func runServe(ctx context.Context, args []string, env Env) int {
	fset := flag.NewFlagSet("serve", flag.ContinueOnError)
	fset.SetOutput(env.Err)
	addr := fset.String("addr", ":5001", "Listen address")
	seedPath := fset.String("seed", "", "YAML file to seed boards and members from")
	empty := fset.Bool("empty", false, "Start without the demo boards")

	if err := fset.Parse(args); err != nil {
		return 1
	}

	repo := server.NewRepository()
	switch {
	case *seedPath != "":
		seed, err := server.LoadSeed(*seedPath)
		if err != nil {
			return env.errorf("reading seed: %v", err)
		}
		if err := repo.Load(seed); err != nil {
			return env.errorf("loading seed: %v", err)
		}
	case !*empty:
		if err := repo.Load(server.DemoSeed()); err != nil {
			return env.errorf("loading demo boards: %v", err)
		}
	}

	// Request logs go to stderr
	logger := log.New()
	logger.SetOutput(env.Err)
	logger.SetFormatter(logs.Logger.Formatter)

	e := server.New(repo, logger)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			logs.Logger.WithError(err).Warn("server shutdown")
		}
	}()

	logger.Infof("listening on %s", *addr)
	if err := e.Start(*addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return env.errorf("server: %v", err)
	}
	return 0
}
