package sqlite

import (
	"github.com/jmoiron/sqlx"

	"github.com/mchasew/newsroom/internal/newsroom"
)

// Ensure Repo implements the Repository interface
var _ newsroom.Repository = (*Repo)(nil)

type Repo struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) Repo {
	return Repo{db: db}
}
