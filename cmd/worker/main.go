package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/vigilo-bot/vigilo/internal/setup"
	"github.com/vigilo-bot/vigilo/internal/worker/alert"
	"github.com/vigilo-bot/vigilo/internal/worker/maintenance"
	"go.uber.org/zap"
)

const (
	// WorkerLogDir specifies where worker log files are stored.
	WorkerLogDir = "logs/worker_logs"

	// AlertWorker runs the daily inactivity scan and posts guild reports.
	AlertWorker = "alert"

	// MaintenanceWorker purges activity rows past the retention window.
	MaintenanceWorker = "maintenance"
)

func main() {
	if err := run(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	app := &cli.Command{
		Name:  "worker",
		Usage: "Start a vigilo worker",
		Commands: []*cli.Command{
			{
				Name:  AlertWorker,
				Usage: "Start the daily inactivity alert worker",
				Action: func(ctx context.Context, _ *cli.Command) error {
					runWorkers(ctx, AlertWorker)
					return nil
				},
			},
			{
				Name:  MaintenanceWorker,
				Usage: "Start the retention maintenance worker",
				Action: func(ctx context.Context, _ *cli.Command) error {
					runWorkers(ctx, MaintenanceWorker)
					return nil
				},
			},
		},
	}

	return app.Run(context.Background(), os.Args)
}

// runWorkers boots the shared dependencies and runs the requested worker
// until the process receives an interrupt.
func runWorkers(ctx context.Context, workerType string) {
	app, err := setup.InitializeApp(ctx, WorkerLogDir)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.Cleanup(ctx)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		sc := make(chan os.Signal, 1)
		signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
		<-sc
		cancel()
	}()

	workerLogger := app.Logger.Named(fmt.Sprintf("%s_worker", workerType))

	var w interface{ Start(ctx context.Context) }

	switch workerType {
	case AlertWorker:
		w = alert.New(app, workerLogger)
	case MaintenanceWorker:
		w = maintenance.New(app, workerLogger)
	default:
		log.Fatalf("Invalid worker type: %s", workerType)
	}

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()

		runWorker(ctx, w, workerLogger)
	}()

	log.Printf("Started %s worker", workerType)
	wg.Wait()
	log.Println("Worker has finished. Exiting.")
}

// runWorker runs a single worker in a loop with panic recovery.
func runWorker(ctx context.Context, w interface{ Start(ctx context.Context) }, logger *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("Context cancelled, stopping worker")
			return
		default:
			func() {
				defer func() {
					if r := recover(); r != nil {
						logger.Error("Worker execution failed",
							zap.String("worker_type", fmt.Sprintf("%T", w)),
							zap.Any("panic", r),
						)
						logger.Info("Restarting worker in 5 seconds...")
						time.Sleep(5 * time.Second)
					}
				}()

				logger.Info("Starting worker")
				w.Start(ctx)
			}()
		}
	}
}
