package cli

import (
	"context"
	"errors"
	"log"

	"github.com/avoronins/inkpost/internal/client/api"
)

// WhoAmI asks the server for the current identity. A stale access token is
// refreshed transparently by the API client's transport.
func (a *App) WhoAmI(ctx context.Context) error {
	user, err := a.api.Me(ctx)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			log.Printf("Not logged in")
		} else {
			log.Printf("error: %v", err)
		}
		return err
	}

	log.Printf("Logged in as %s (id %s)", user.UserName, user.ID)
	return nil
}
