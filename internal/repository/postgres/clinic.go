package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-schedule/internal/model"
)

func (r *clinicRepository) Get(ctx context.Context, id uuid.UUID) (_ *model.Clinic, err error) {
	defer r.observe("clinic_get")(&err)

	query := `
		SELECT id, name, ops_email, timezone, created_at, updated_at
		FROM clinics
		WHERE id = $1
	`
	var clinic model.Clinic
	if err = r.db.GetContext(ctx, &clinic, query, id); err != nil {
		err = notFound(err)
		return nil, fmt.Errorf("failed to get clinic: %w", err)
	}
	return &clinic, nil
}
