package start

import (
	"context"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"
	"time"

	"github.com/opsdesk-cloud/opsdesk/api"
	"github.com/opsdesk-cloud/opsdesk/internal/metrics"
	"github.com/opsdesk-cloud/opsdesk/internal/reminder"
	"github.com/opsdesk-cloud/opsdesk/pkg/db"
	"github.com/opsdesk-cloud/opsdesk/pkg/env"
	"github.com/opsdesk-cloud/opsdesk/pkg/log"
	"github.com/spf13/cobra"
)

const (
	usage   = "start"
	short   = "Start an opsdesk instance"
	long    = "This command starts an opsdesk task lifecycle and routing instance"
	example = "opsdesk start"
)

var (
	// Cmd is the start command.
	Cmd = &cobra.Command{
		Use:        usage,
		Short:      short,
		Long:       long,
		Aliases:    []string{"s"},
		SuggestFor: []string{"launch", "boot", "up", "run", "begin"},
		Example:    example,
		RunE:       start,
	}
)

var cancel context.CancelFunc

func start(cmd *cobra.Command, args []string) error {
	signalChan := make(chan os.Signal, 1)

	go func() {
		for s := range signalChan {
			switch s {
			case syscall.SIGUSR1:
				log.Info("dumping stack traces due to SIGUSR1 signal")
				if profile := pprof.Lookup("goroutine"); profile != nil {
					if err := profile.WriteTo(os.Stdout, 1); err != nil {
						log.Error("write goroutine profile", "error", err)
					}
				}
			case syscall.SIGINT:
				log.Info("gracefully shutting down due to SIGINT signal")
				shutdown()
				os.Exit(0)
			}
		}
	}()

	signal.Notify(signalChan, syscall.SIGUSR1, syscall.SIGINT)

	var errs = make(chan error)
	ctx, cancelFunc := context.WithCancel(context.Background())
	cancel = cancelFunc

	log.Info("migrating database")
	if err := db.Migrate(); err != nil {
		log.Fatal("database migration failure", "error", err)
	}

	vars := env.Variables()

	if vars.ReferenceSeedPath != "" {
		log.Info("seeding reference data", "path", vars.ReferenceSeedPath)
		if err := db.Seed(db.Connection(), vars.ReferenceSeedPath); err != nil {
			log.Fatal("reference data seed failure", "error", err)
		}
	}

	metrics.Register()

	sweeper, err := reminder.New(db.Connection(), vars.ReminderSchedule, vars.ReminderAge)
	if err != nil {
		log.Fatal("reminder sweeper configuration failure", "error", err)
	}

	go func() {
		log.Info("launching reminder sweeper", "schedule", vars.ReminderSchedule)
		sweeper.Run(ctx)
	}()

	go func() {
		log.Info("spinning up api")
		errs <- api.Start()
	}()

	defer shutdown()

	return <-errs
}

func shutdown() {
	if cancel != nil {
		cancel()
	}

	ctx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()

	if err := api.Shutdown(ctx); err != nil {
		log.Error("api shutdown failure", "error", err)
	}
}
