package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	csvimport "github.com/taskmaster/tasks/internal/adapters/csv"
	"github.com/taskmaster/tasks/internal/adapters/repository"
	"github.com/taskmaster/tasks/internal/application/services"
	"github.com/taskmaster/tasks/internal/infrastructure/config"
	"github.com/taskmaster/tasks/internal/infrastructure/database"
	"github.com/taskmaster/tasks/internal/infrastructure/logger"
	"github.com/taskmaster/tasks/internal/infrastructure/server"
)

// Version is set at build time
var Version = "1.0.0"

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the Tasks API server",
		Long:  "Start the Tasks API server with all configured routes and middleware",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

// NewImportCommand creates the import command
func NewImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import tasks from a CSV file",
		Long:  "Create one task per data row of a CSV file with title and description columns. Use - to read stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), args[0], cmd.OutOrStdout())
		},
	}
}

// NewTasksCommand creates the command printing the stored tasks
func NewTasksCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "Print all stored tasks as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print Tasks version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Tasks v%s\n", Version)
		},
	}
}

// bootstrap loads configuration, the logger and the store.
func bootstrap() (*config.Config, *logger.Logger, *database.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.New(cfg.Database, appLogger)
	if err != nil {
		_ = appLogger.Close()
		return nil, nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	return cfg, appLogger, db, nil
}

func runServer(ctx context.Context) error {
	cfg, appLogger, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer appLogger.Close()
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Errorw("Failed to flush database", "error", err)
		}
	}()

	srv, err := server.New(cfg, db, appLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	appLogger.Infow("Starting Tasks API server",
		"port", cfg.Server.Port,
		"environment", cfg.App.Environment,
		"database", cfg.Database.Path,
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(cfg.Server.GetAddr())
	}()

	select {
	case err := <-errCh:
		if err != nil {
			appLogger.Errorw("Server failed to start", "error", err)
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return <-errCh
}

func runImport(ctx context.Context, path string, out io.Writer) error {
	_, appLogger, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer appLogger.Close()
	defer db.Close()

	var in io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		in = f
	}

	rows, err := csvimport.ParseTasks(in)
	if err != nil {
		return err
	}

	taskService := services.NewTaskService(repository.NewTaskRepository(db, appLogger.WithComponent("repository")), appLogger.WithComponent("tasks"))
	tasks, err := taskService.ImportTasks(ctx, rows)
	if err != nil {
		return err
	}

	if err := db.Flush(); err != nil {
		return fmt.Errorf("failed to persist imported tasks: %w", err)
	}

	fmt.Fprintf(out, "%d tasks imported successfully!\n", len(tasks))
	return nil
}

func runList(ctx context.Context, out io.Writer) error {
	_, appLogger, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer appLogger.Close()
	defer db.Close()

	taskService := services.NewTaskService(repository.NewTaskRepository(db, appLogger.WithComponent("repository")), appLogger.WithComponent("tasks"))
	tasks, err := taskService.ListTasks(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(tasks)
}
