package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	timelinesCmd := &cobra.Command{Use: "timelines", Short: "Timeline operations"}

	var name string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a timeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doPostJSON(wsPath("/timelines"), map[string]string{"name": name})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	createCmd.Flags().StringVarP(&name, "name", "n", "", "Timeline name (defaults to a placeholder)")
	timelinesCmd.AddCommand(createCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List timelines in the workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(wsPath("/timelines"))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	timelinesCmd.AddCommand(listCmd)

	getCmd := &cobra.Command{
		Use:   "get TIMELINE_ID",
		Short: "Get the full timeline aggregate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(wsPath("/timelines/%s", args[0]))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	timelinesCmd.AddCommand(getCmd)

	var newName string
	renameCmd := &cobra.Command{
		Use:   "rename TIMELINE_ID",
		Short: "Rename a timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doPatchJSON(wsPath("/timelines/%s", args[0]), map[string]string{"name": newName})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	renameCmd.Flags().StringVarP(&newName, "name", "n", "", "New name (required)")
	_ = renameCmd.MarkFlagRequired("name")
	timelinesCmd.AddCommand(renameCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete TIMELINE_ID",
		Short: "Delete a timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := doDelete(wsPath("/timelines/%s", args[0]))
			return err
		},
	}
	timelinesCmd.AddCommand(deleteCmd)

	duplicateCmd := &cobra.Command{
		Use:   "duplicate TIMELINE_ID",
		Short: "Duplicate a timeline under a new id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doPostJSON(wsPath("/timelines/%s/duplicate", args[0]), nil)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	timelinesCmd.AddCommand(duplicateCmd)

	exportCmd := &cobra.Command{
		Use:   "export TIMELINE_ID",
		Short: "Export the active-day configuration document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(wsPath("/timelines/%s/export", args[0]))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	timelinesCmd.AddCommand(exportCmd)

	toggleCmd := &cobra.Command{
		Use:   "toggle-day TIMELINE_ID DAY_ID",
		Short: "Toggle a day's active flag",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doPostJSON(wsPath("/timelines/%s/days/%s/toggle", args[0], args[1]), nil)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	timelinesCmd.AddCommand(toggleCmd)

	flushCmd := &cobra.Command{
		Use:   "flush TIMELINE_ID",
		Short: "Retry a failed aggregate write",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := doPostJSON(wsPath("/timelines/%s/flush", args[0]), nil)
			return err
		},
	}
	timelinesCmd.AddCommand(flushCmd)

	rootCmd.AddCommand(timelinesCmd)
}
