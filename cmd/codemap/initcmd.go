package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"codemap/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize codemap configuration",
	Long:  "Creates a .codemap/ directory with default configuration in the repository root",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing configuration")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	cfgPath := filepath.Join(repoFlag, ".codemap", "config.json")
	if _, err := os.Stat(cfgPath); err == nil && !initForce {
		// Already initialized is success, so repeated init stays CI-friendly.
		fmt.Printf("codemap already initialized.\nConfiguration at: %s\n", cfgPath)
		fmt.Println("\nRun 'codemap init --force' to reset it.")
		return nil
	}

	cfg := config.DefaultConfig()
	cfg.RepoRoot = "."
	if err := cfg.Save(repoFlag); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}
	fmt.Printf("Initialized codemap.\nConfiguration at: %s\n", cfgPath)
	return nil
}
