package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/AbdullaE100/medico-chat/internal/domain"
	"github.com/AbdullaE100/medico-chat/internal/upload"
)

var sendFile string

func init() {
	sendCmd.Flags().StringVar(&sendFile, "file", "", "attach a file (uploaded before sending)")
	rootCmd.AddCommand(sendCmd)
}

var sendCmd = &cobra.Command{
	Use:   "send <conversation-id> [text]",
	Short: "Send a message to a conversation",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid conversation id: %w", err)
		}
		text := ""
		if len(args) == 2 {
			text = args[1]
		}
		if text == "" && sendFile == "" {
			return fmt.Errorf("nothing to send")
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

		if sendFile == "" {
			if err := a.engine.SendText(ctx, text); err != nil {
				return fmt.Errorf("%s", a.engine.LastError())
			}
			fmt.Println("Sent.")
			return nil
		}

		data, err := os.ReadFile(sendFile)
		if err != nil {
			return err
		}
		filename := filepath.Base(sendFile)
		contentType := mime.TypeByExtension(filepath.Ext(filename))
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		store := upload.NewHTTPStore(a.cfg.UploadURL, func() string { return a.token }, nil)
		att, err := store.Upload(ctx, data, filename, contentType)
		if err != nil {
			return err
		}

		kind := domain.MessageFile
		if strings.HasPrefix(contentType, "image/") {
			kind = domain.MessageImage
		}
		if err := a.engine.SendAttachment(ctx, kind, *att, text); err != nil {
			return fmt.Errorf("%s", a.engine.LastError())
		}
		fmt.Println("Sent.")
		return nil
	},
}
