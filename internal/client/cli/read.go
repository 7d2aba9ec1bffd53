package cli

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/avoronins/inkpost/internal/common"
)

func (a *App) Read(ctx context.Context, slug string) error {
	article, err := a.api.GetArticle(ctx, slug)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			log.Printf("No article with slug %q", slug)
		} else {
			log.Printf("error: %v", err)
		}
		return err
	}

	fmt.Printf("# %s\n\n%s\n", article.Title, article.Body)
	return nil
}
