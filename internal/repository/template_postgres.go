package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/mailpilot/mailpilot/internal/domain"
)

type templateRepository struct {
	db *sql.DB
}

// NewTemplateRepository creates a new PostgreSQL template repository.
func NewTemplateRepository(db *sql.DB) domain.TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) CreateTemplate(ctx context.Context, workspaceID string, template *domain.Template) error {
	now := time.Now().UTC()
	if template.CreatedAt.IsZero() {
		template.CreatedAt = now
	}
	template.UpdatedAt = now
	if template.Version == 0 {
		template.Version = 1
	}

	query := `
		INSERT INTO templates (
			id,
			workspace_id,
			name,
			subject,
			schema,
			html_key,
			version,
			created_at,
			updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		template.ID,
		workspaceID,
		template.Name,
		template.Subject,
		template.Schema,
		template.HTMLKey,
		template.Version,
		template.CreatedAt,
		template.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}
	return nil
}

func (r *templateRepository) GetTemplateByID(ctx context.Context, workspaceID string, id string) (*domain.Template, error) {
	query := `
		SELECT
			id,
			name,
			subject,
			schema,
			html_key,
			version,
			created_at,
			updated_at
		FROM templates
		WHERE workspace_id = $1 AND id = $2
	`
	row := r.db.QueryRowContext(ctx, query, workspaceID, id)

	template, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, &domain.ErrTemplateNotFound{Message: fmt.Sprintf("template %s not found", id)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return template, nil
}

func (r *templateRepository) GetTemplates(ctx context.Context, workspaceID string, search string) ([]*domain.Template, error) {
	builder := sq.Select("id", "name", "subject", "schema", "html_key", "version", "created_at", "updated_at").
		From("templates").
		Where(sq.Eq{"workspace_id": workspaceID}).
		OrderBy("updated_at DESC").
		PlaceholderFormat(sq.Dollar)

	if search != "" {
		builder = builder.Where(sq.ILike{"name": "%" + search + "%"})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build templates query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get templates: %w", err)
	}
	defer rows.Close()

	var templates []*domain.Template
	for rows.Next() {
		template, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, template)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate templates: %w", err)
	}
	return templates, nil
}

func (r *templateRepository) UpdateTemplate(ctx context.Context, workspaceID string, template *domain.Template) error {
	template.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE templates
		SET
			name = $3,
			subject = $4,
			schema = $5,
			html_key = $6,
			version = $7,
			updated_at = $8
		WHERE workspace_id = $1 AND id = $2
	`
	result, err := r.db.ExecContext(ctx, query,
		workspaceID,
		template.ID,
		template.Name,
		template.Subject,
		template.Schema,
		template.HTMLKey,
		template.Version,
		template.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return &domain.ErrTemplateNotFound{Message: fmt.Sprintf("template %s not found", template.ID)}
	}
	return nil
}

func (r *templateRepository) DeleteTemplate(ctx context.Context, workspaceID string, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM templates WHERE workspace_id = $1 AND id = $2`, workspaceID, id)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return &domain.ErrTemplateNotFound{Message: fmt.Sprintf("template %s not found", id)}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTemplate(row rowScanner) (*domain.Template, error) {
	var t domain.Template
	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Subject,
		&t.Schema,
		&t.HTMLKey,
		&t.Version,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
