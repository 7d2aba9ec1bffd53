package models

import "time"

type Article struct {
	ID        string
	AuthorID  string
	Slug      string
	Title     string
	Body      string
	ImageKey  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
