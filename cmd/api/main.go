package main

import (
	"context"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/taskmaster/tasks/cmd/api/commands"
)

// @title Tasks API
// @version 1.0
// @description Task list service backed by a flat JSON file

// @host localhost:3000
// @BasePath /

func main() {
	rootCmd := &cobra.Command{
		Use:   "tasks",
		Short: "Tasks API Server",
		Long:  `Tasks is a small task list service that keeps its data in a single JSON file.`,
	}

	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewImportCommand())
	rootCmd.AddCommand(commands.NewTasksCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
