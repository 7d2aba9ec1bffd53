package cli

import (
	"bufio"
	"context"
	"os"

	"github.com/avoronins/inkpost/internal/client/api"
	"github.com/avoronins/inkpost/internal/client/config"
	"github.com/avoronins/inkpost/internal/client/session"
)

type App struct {
	config *config.Config
	api    *api.Client
	store  *session.Store
	reader *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {
	store := session.NewStore()

	apiClient, err := api.New(c.ServerEndpointAddr, store, c.RequestTimeout)
	if err != nil {
		return nil, err
	}

	return &App{
		config: c,
		api:    apiClient,
		store:  store,
		reader: bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) Run(ctx context.Context) {
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.store.Snapshot().Active()
}
