package cli

import (
	"context"
	"errors"
	"log"

	"github.com/avoronins/inkpost/internal/common"
)

func (a *App) Delete(ctx context.Context, slug string) error {
	if err := a.api.DeleteArticle(ctx, slug); err != nil {
		switch {
		case errors.Is(err, common.ErrForbidden):
			log.Printf("Only the author can delete an article")
		case errors.Is(err, common.ErrNotFound):
			log.Printf("No article with slug %q", slug)
		default:
			log.Printf("error: %v", err)
		}
		return err
	}

	log.Printf("Deleted %s", slug)
	return nil
}
