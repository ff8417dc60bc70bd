package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	apiFlag       string
	workspaceFlag string
	rootCmd       = &cobra.Command{
		Use:   "timelinectl",
		Short: "CLI client for the timeline service REST API",
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:8080", "Timeline service base URL")
	rootCmd.PersistentFlags().StringVarP(&workspaceFlag, "workspace", "w", "default", "Workspace ID")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func wsPath(format string, args ...interface{}) string {
	return fmt.Sprintf("%s/api/workspaces/%s%s", apiFlag, workspaceFlag, fmt.Sprintf(format, args...))
}
