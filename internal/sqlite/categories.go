package sqlite

import (
	"context"
	"fmt"

	"github.com/mchasew/newsroom/internal/newsroom"
)

// Categories retrieves _all_ categories from the database.
func (r Repo) Categories(ctx context.Context) ([]newsroom.Category, error) {
	const q = `SELECT * FROM categories;`

	var cats []newsroom.Category
	if err := r.db.SelectContext(ctx, &cats, q); err != nil {
		return nil, fmt.Errorf("error selecting categories: %s", err)
	}

	return cats, nil
}
