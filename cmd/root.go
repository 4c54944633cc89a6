package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the inboxgroups application
var rootCmd = &cobra.Command{
	Use:   "inboxgroups",
	Short: "Groups your Gmail inbox into labeled clusters",
	Long: `inboxgroups fetches your recent Gmail inbox, groups similar emails into
labeled clusters and lets you archive whole groups at once.

It can run as:
  - A standalone CLI tool (default)
  - An MCP (Model Context Protocol) server for AI assistants`,
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
	rootCmd.SetVersionTemplate(`{{printf "inboxgroups version %s\n" .Version}}`)

	// If no subcommand is provided, run the cluster command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "cluster")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newClusterCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}
