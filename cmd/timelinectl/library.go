package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	libraryCmd := &cobra.Command{Use: "library", Short: "Library action operations"}

	var actionType, name, subject, message, sendTime string
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add an action to the workspace library",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]string{
				"type": actionType, "name": name,
				"subject": subject, "message": message,
			}
			if sendTime != "" {
				payload["sendTime"] = sendTime
			}
			data, err := doPostJSON(wsPath("/library/actions"), payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	addCmd.Flags().StringVarP(&actionType, "type", "t", "", "Action type: email, whatsapp, sms, negativar (required)")
	addCmd.Flags().StringVarP(&name, "name", "n", "", "Action name (required)")
	addCmd.Flags().StringVarP(&subject, "subject", "s", "", "Message subject")
	addCmd.Flags().StringVarP(&message, "message", "m", "", "Message body")
	addCmd.Flags().StringVar(&sendTime, "send-time", "", "Send time (HH:mm)")
	_ = addCmd.MarkFlagRequired("type")
	_ = addCmd.MarkFlagRequired("name")
	libraryCmd.AddCommand(addCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List library actions",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(wsPath("/library/actions"))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	libraryCmd.AddCommand(listCmd)

	getCmd := &cobra.Command{
		Use:   "get ACTION_ID",
		Short: "Get one library action",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(wsPath("/library/actions/%s", args[0]))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	libraryCmd.AddCommand(getCmd)

	cloneCmd := &cobra.Command{
		Use:   "clone ACTION_ID",
		Short: "Clone a library action",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doPostJSON(wsPath("/library/actions/%s/clone", args[0]), nil)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	libraryCmd.AddCommand(cloneCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete ACTION_ID",
		Short: "Delete a library action (blocked while referenced)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := doDelete(wsPath("/library/actions/%s", args[0]))
			return err
		},
	}
	libraryCmd.AddCommand(deleteCmd)

	rootCmd.AddCommand(libraryCmd)
}
