// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lostandfound-admin",
	Short: "lostandfound-admin is a web-based lost-and-found tracking tool",
	Long: `lostandfound-admin is a web-based internal tool for tracking lost-and-found
items with role-gated access, Active Directory user synchronization,
announcements, and a full activity audit trail.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
