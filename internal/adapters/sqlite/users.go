package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tradejournal/internal/domain"
	"tradejournal/internal/ports"
)

// --- CapitalStore Implementation ---

// GetCapital returns the configured user's capital, or "" when none was saved.
func (r *Repository) GetCapital(ctx context.Context) (string, error) {
	var capital sql.NullString
	err := r.db.QueryRowContext(ctx, `SELECT capital FROM users WHERE id = ?`, r.userID).Scan(&capital)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to query capital for user %s: %w: %w", r.userID, dbError(err, ports.ErrQueryFailed), err)
	}
	return capital.String, nil
}

// SetCapital upserts the capital on the user row.
func (r *Repository) SetCapital(ctx context.Context, capital string) error {
	const query = `
	INSERT INTO users (id, capital) VALUES (?, ?)
	ON CONFLICT(id) DO UPDATE SET capital = excluded.capital`

	if _, err := r.db.ExecContext(ctx, query, r.userID, capital); err != nil {
		return fmt.Errorf("failed to save capital for user %s: %w: %w", r.userID, dbError(err, ports.ErrUpdateFailed), err)
	}
	r.logger.Debug(ctx, "Capital saved", map[string]interface{}{"userID": r.userID})
	return nil
}

// --- CustomFieldRegistry Implementation ---

// GetCustomFieldNames returns both custom field dictionaries of the user.
func (r *Repository) GetCustomFieldNames(ctx context.Context) (domain.CustomFieldNames, error) {
	names, err := loadFieldNames(ctx, r.db, r.userID)
	if err != nil {
		return domain.CustomFieldNames{}, err
	}
	return names, nil
}

// AddCustomFieldName appends name to the kind's dictionary unless already present.
func (r *Repository) AddCustomFieldName(ctx context.Context, kind domain.FieldKind, name string) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		names, err := loadFieldNames(ctx, tx, r.userID)
		if err != nil {
			return err
		}
		list := names.For(kind)
		for _, existing := range list {
			if existing == name {
				return nil
			}
		}
		names.Set(kind, append(list, name))
		if err := saveFieldNames(ctx, tx, r.userID, names); err != nil {
			return err
		}
		r.logger.Debug(ctx, "Custom field added", map[string]interface{}{"kind": string(kind), "name": name})
		return nil
	})
}

// RemoveCustomFieldName drops name from the kind's dictionary.
// Returns ErrNotFound if the name is not registered.
func (r *Repository) RemoveCustomFieldName(ctx context.Context, kind domain.FieldKind, name string) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		names, err := loadFieldNames(ctx, tx, r.userID)
		if err != nil {
			return err
		}
		list := names.For(kind)
		kept := make([]string, 0, len(list))
		for _, existing := range list {
			if existing != name {
				kept = append(kept, existing)
			}
		}
		if len(kept) == len(list) {
			return fmt.Errorf("custom field %s/%s: %w", kind, name, ports.ErrNotFound)
		}
		names.Set(kind, kept)
		return saveFieldNames(ctx, tx, r.userID, names)
	})
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func loadFieldNames(ctx context.Context, q queryRower, userID string) (domain.CustomFieldNames, error) {
	var open, closing string
	err := q.QueryRowContext(ctx,
		`SELECT open_custom_field_names, close_custom_field_names FROM users WHERE id = ?`, userID).
		Scan(&open, &closing)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return domain.CustomFieldNames{}, fmt.Errorf("failed to query custom fields for user %s: %w: %w", userID, dbError(err, ports.ErrQueryFailed), err)
	}

	names := domain.CustomFieldNames{OpenFields: []string{}, CloseFields: []string{}}
	if err := decodeJSON(open, &names.OpenFields); err != nil {
		return domain.CustomFieldNames{}, fmt.Errorf("decode open_custom_field_names: %w", err)
	}
	if err := decodeJSON(closing, &names.CloseFields); err != nil {
		return domain.CustomFieldNames{}, fmt.Errorf("decode close_custom_field_names: %w", err)
	}
	return names, nil
}

func saveFieldNames(ctx context.Context, tx *sql.Tx, userID string, names domain.CustomFieldNames) error {
	open, err := encodeJSON(names.OpenFields)
	if err != nil {
		return err
	}
	closing, err := encodeJSON(names.CloseFields)
	if err != nil {
		return err
	}

	const query = `
	INSERT INTO users (id, open_custom_field_names, close_custom_field_names) VALUES (?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		open_custom_field_names = excluded.open_custom_field_names,
		close_custom_field_names = excluded.close_custom_field_names`

	if _, err := tx.ExecContext(ctx, query, userID, open, closing); err != nil {
		return fmt.Errorf("failed to save custom fields for user %s: %w: %w", userID, dbError(err, ports.ErrUpdateFailed), err)
	}
	return nil
}
