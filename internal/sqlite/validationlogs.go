package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mchasew/newsroom/internal/newsroom"
)

const validationLogNamespace = "-svl"

func (r Repo) InsertValidationLog(ctx context.Context, log newsroom.SourceValidationLog) error {
	const q = `INSERT INTO source_validation_logs (id, post_id, ok, reason, checked_at, checked_by)
	VALUES (:id, :post_id, :ok, :reason, :checked_at, :checked_by);`

	log.ID = fmt.Sprintf("%s%s", uuid.NewString(), validationLogNamespace)
	if _, err := r.db.NamedExecContext(ctx, q, log); err != nil {
		return fmt.Errorf("error inserting validation log: %s", err)
	}

	return nil
}

func (r Repo) ValidationLogs(ctx context.Context, postID string) ([]newsroom.SourceValidationLog, error) {
	const q = `SELECT * FROM source_validation_logs WHERE post_id = ? ORDER BY checked_at DESC;`

	var logs []newsroom.SourceValidationLog
	if err := r.db.SelectContext(ctx, &logs, q, postID); err != nil {
		return nil, fmt.Errorf("error selecting validation logs: %s", err)
	}

	return logs, nil
}
