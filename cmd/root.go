package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the aether application
var rootCmd = &cobra.Command{
	Use:   "aether",
	Short: "Calendar assistant with natural-language chat and private metadata",
	Long: `aether is a calendar assistant core. It interprets natural-language
requests against a calendar provider and layers private per-owner
metadata (importance, tags, nag dates) on top of provider events.

It can run as:
  - An MCP (Model Context Protocol) server for AI assistants (default)
  - A one-shot chat command for local experimentation`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "aether version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newVersionCmd())
}
