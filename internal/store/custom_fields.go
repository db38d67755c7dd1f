package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

func (s *Store) CreateCustomField(ctx context.Context, cf *CustomField) error {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO custom_fields (
			id, workspace_id, key, name, datatype, is_required, is_unique, sort_order, use_for_categories
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`,
		cf.ID, cf.WorkspaceID, cf.Key, cf.Name, cf.Datatype,
		cf.IsRequired, cf.IsUnique, cf.SortOrder, cf.UseForCategories,
	)
	if err := row.Scan(&cf.CreatedAt); err != nil {
		return fmt.Errorf("insert custom field: %w", err)
	}
	return nil
}

func (s *Store) CustomFieldByID(ctx context.Context, workspaceID, fieldID uuid.UUID) (CustomField, error) {
	var cf CustomField
	row := s.pool.QueryRow(ctx, `
		SELECT id, workspace_id, key, name, datatype, is_required, is_unique, sort_order, use_for_categories, created_at
		FROM custom_fields
		WHERE workspace_id = $1 AND id = $2`,
		workspaceID, fieldID,
	)
	err := row.Scan(&cf.ID, &cf.WorkspaceID, &cf.Key, &cf.Name, &cf.Datatype,
		&cf.IsRequired, &cf.IsUnique, &cf.SortOrder, &cf.UseForCategories, &cf.CreatedAt)
	if err != nil {
		return CustomField{}, err
	}
	return cf, nil
}

func (s *Store) ListCustomFields(ctx context.Context, workspaceID uuid.UUID) ([]CustomField, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, workspace_id, key, name, datatype, is_required, is_unique, sort_order, use_for_categories, created_at
		FROM custom_fields
		WHERE workspace_id = $1
		ORDER BY sort_order, key`,
		workspaceID,
	)
	if err != nil {
		return nil, fmt.Errorf("list custom fields: %w", err)
	}
	defer rows.Close()

	var fields []CustomField
	for rows.Next() {
		var cf CustomField
		if err := rows.Scan(&cf.ID, &cf.WorkspaceID, &cf.Key, &cf.Name, &cf.Datatype,
			&cf.IsRequired, &cf.IsUnique, &cf.SortOrder, &cf.UseForCategories, &cf.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan custom field: %w", err)
		}
		fields = append(fields, cf)
	}
	return fields, rows.Err()
}

// UpdateCustomField never touches key: the machine name is stable once created.
func (s *Store) UpdateCustomField(ctx context.Context, cf *CustomField) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE custom_fields SET
			name = $3, datatype = $4, is_required = $5, is_unique = $6,
			sort_order = $7, use_for_categories = $8
		WHERE workspace_id = $1 AND id = $2`,
		cf.WorkspaceID, cf.ID, cf.Name, cf.Datatype,
		cf.IsRequired, cf.IsUnique, cf.SortOrder, cf.UseForCategories,
	)
	if err != nil {
		return fmt.Errorf("update custom field: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteCustomField(ctx context.Context, workspaceID, fieldID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM custom_fields WHERE workspace_id = $1 AND id = $2`,
		workspaceID, fieldID,
	)
	if err != nil {
		return fmt.Errorf("delete custom field: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
