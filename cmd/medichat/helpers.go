package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/AbdullaE100/medico-chat/internal/chat"
	"github.com/AbdullaE100/medico-chat/internal/config"
	"github.com/AbdullaE100/medico-chat/internal/database"
	"github.com/AbdullaE100/medico-chat/internal/domain"
	"github.com/AbdullaE100/medico-chat/internal/realtime/wsfeed"
	postgresrepo "github.com/AbdullaE100/medico-chat/internal/repository/postgres"
	"github.com/AbdullaE100/medico-chat/internal/session"
)

// app bundles everything a command needs.
type app struct {
	cfg    *config.Config
	engine *chat.Engine
	token  string
	close  func()
}

func newApp(ctx context.Context) (*app, error) {
	cliCfg, err := loadCLIConfig()
	if err != nil {
		return nil, err
	}
	if cliCfg.Auth.AccessToken == "" {
		return nil, errors.New("not logged in; run 'medichat login <token>' first")
	}
	token := cliCfg.Auth.AccessToken

	cfg := config.Load()

	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	feed, err := wsfeed.Dial(ctx, cfg.FeedURL, token)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to realtime feed: %w", err)
	}

	sess := session.NewJWTProvider(func() string { return token })

	engine := chat.NewEngine(
		postgresrepo.NewDirectChatRepo(pool),
		postgresrepo.NewGroupRepo(pool),
		postgresrepo.NewMessageRepo(pool),
		postgresrepo.NewProfileRepo(pool),
		feed,
		sess,
	)

	return &app{
		cfg:    cfg,
		engine: engine,
		token:  token,
		close: func() {
			feed.Close()
			pool.Close()
		},
	}, nil
}

func printMessage(m *domain.Message) {
	name := m.SenderName
	if name == "" {
		name = "?"
	}
	when := m.CreatedAt.Local().Format("15:04")
	body := m.Body
	if m.Attachment != nil {
		body = m.Preview()
	}
	fmt.Printf("[%s] %s: %s\n", when, name, body)
}
