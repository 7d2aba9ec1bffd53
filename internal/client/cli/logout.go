package cli

import (
	"context"
	"log"
)

// Logout revokes every token for the account server-side; the local session
// is dropped even when the server call fails.
func (a *App) Logout(ctx context.Context) error {
	if err := a.api.Logout(ctx); err != nil {
		log.Printf("Logout error: %s", err.Error())
		return err
	}
	log.Printf("Logged out")
	return nil
}
