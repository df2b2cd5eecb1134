package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(chatsCmd)
}

var chatsCmd = &cobra.Command{
	Use:   "chats",
	Short: "List conversations, most recent first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.engine.RefreshConversations(ctx); err != nil {
			return fmt.Errorf("%s", a.engine.LastError())
		}

		convs := a.engine.Conversations()
		if len(convs) == 0 {
			fmt.Println("No conversations yet.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tKIND\tTITLE\tUNREAD\tLAST MESSAGE")
		for _, c := range convs {
			if c.Archived {
				continue
			}
			unread := ""
			if c.UnreadCount > 0 {
				unread = fmt.Sprintf("%d", c.UnreadCount)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.Kind, c.Title(), unread, c.LastMessage)
		}
		return w.Flush()
	},
}
