package cli

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/avoronins/inkpost/internal/common"
)

// Post interactively creates a new article.
func (a *App) Post(ctx context.Context) error {
	title, err := GetSimpleText(a.reader, "Enter title", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	body, err := GetMultiline(a.reader, "Enter body", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	article, err := a.api.CreateArticle(ctx, title, body, "")
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			log.Printf("Invalid article: %s", err.Error())
		} else {
			log.Printf("error: %v", err)
		}
		return err
	}

	log.Printf("Published as %s", article.Slug)
	return nil
}
