package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/bacheca/internal/admincli"
	"github.com/dmitrijs2005/bacheca/internal/logging"
	"github.com/dmitrijs2005/bacheca/internal/server/config"
	"github.com/dmitrijs2005/bacheca/internal/server/password"
	"github.com/dmitrijs2005/bacheca/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/bacheca/internal/server/services"
)

func main() {
	ctx := context.Background()
	logger := logging.NewJSONLogger(os.Stderr, slog.LevelWarn)
	cfg := config.LoadConfig()

	repos, err := repomanager.Open(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer repos.Close()

	as := services.NewAuthService(repos, password.NewBcrypt(cfg.BcryptCost), logger, nil)
	app := admincli.NewApp(as, repos.Users(), os.Stdin, os.Stdout)

	if err := app.Run(ctx, admincli.Positional(os.Args[1:])); err != nil {
		if !errors.Is(err, admincli.ErrUsage) {
			fmt.Fprintln(os.Stderr, err)
		}
		repos.Close()
		os.Exit(2)
	}
}
