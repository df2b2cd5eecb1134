package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(openCmd)
}

var openCmd = &cobra.Command{
	Use:   "open <conversation-id>",
	Short: "Open a conversation: print history, stream new messages, send typed lines",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid conversation id: %w", err)
		}

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.engine.RefreshConversations(ctx); err != nil {
			return fmt.Errorf("%s", a.engine.LastError())
		}
		if err := a.engine.OpenConversation(ctx, id); err != nil {
			return fmt.Errorf("%s", a.engine.LastError())
		}

		conv := a.engine.Current()
		fmt.Printf("== %s ==\n", conv.Title())

		// History is held newest-first; print it oldest-first.
		msgs := a.engine.Messages()
		for i := len(msgs) - 1; i >= 0; i-- {
			printMessage(&msgs[i])
		}

		// Stream inbound messages. The observer fires on every state change;
		// remember what we already printed and emit only the new head.
		printed := len(msgs)
		a.engine.SetObserver(func() {
			current := a.engine.Messages()
			for i := len(current) - printed - 1; i >= 0; i-- {
				printMessage(&current[i])
			}
			printed = len(current)
		})

		if err := a.engine.Attach(ctx, id); err != nil {
			return fmt.Errorf("%s", a.engine.LastError())
		}
		defer a.engine.Detach()

		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := scanner.Text()
			if line == "/quit" {
				break
			}
			if err := a.engine.SendText(ctx, line); err != nil {
				fmt.Fprintln(os.Stderr, a.engine.LastError())
			}
		}
		return scanner.Err()
	},
}
