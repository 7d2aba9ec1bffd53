package cli

import (
	"context"
	"fmt"
	"log"
)

func (a *App) List(ctx context.Context) error {
	articles, err := a.api.ListArticles(ctx)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	if len(articles) == 0 {
		fmt.Println("No articles yet")
		return nil
	}

	for _, article := range articles {
		fmt.Printf("%s  %s  (%s)\n",
			article.CreatedAt.Format("2006-01-02"), article.Title, article.Slug)
	}
	return nil
}
