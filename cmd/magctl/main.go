package main

import (
	"context"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	appRepos "github.com/yigit/unimag/internal/app/repositories"
	appServices "github.com/yigit/unimag/internal/app/services"
	"github.com/yigit/unimag/internal/bootstrap"
	"github.com/yigit/unimag/internal/pkg/cache"
)

// consoleActivity writes audit entries to the log; console actions have no
// acting user to attribute them to.
type consoleActivity struct {
	logger zerolog.Logger
}

func (a consoleActivity) Log(_ context.Context, _ *int64, actionType, details string) int64 {
	a.logger.Info().Str("action", actionType).Str("details", details).Msg("magctl")
	return 0
}

func main() {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger()
	errAndDie(err)

	database, err := bootstrap.ConnectDatabase(cfg, lgr)
	errAndDie(err)
	defer database.Close()

	repos := appRepos.NewRepositories(database.Pool)
	activity := consoleActivity{logger: lgr}

	cli := commandLine{
		users:     appServices.NewUserService(repos.UserRepository, repos.FacultyRepository, database, nil, activity, lgr),
		passwords: repos.UserRepository,
		stats:     appServices.NewStatsService(repos.StatsRepository, repos.FacultyRepository, cache.Noop{}, time.Minute, lgr),
		migrate: func(ctx context.Context) error {
			return bootstrap.Migrate(ctx, cfg, database, lgr)
		},
		seed: func(ctx context.Context) error {
			return bootstrap.Seed(ctx, cfg, database, lgr)
		},
		out: os.Stdout,
	}

	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			color.Red("error: %s", err)
		}
		database.Close()
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		color.Red("error: %s", err)
		os.Exit(1)
	}
}
