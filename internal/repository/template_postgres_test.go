package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailpilot/mailpilot/internal/domain"
	"github.com/mailpilot/mailpilot/pkg/blocks"
)

func setupMockDB(t *testing.T) (domain.TemplateRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewTemplateRepository(db), mock
}

func repoTemplate() *domain.Template {
	return &domain.Template{
		ID:      "tpl-1",
		Name:    "Welcome",
		Subject: "Welcome aboard",
		Schema:  domain.TemplateSchema{Blocks: []blocks.Block{{ID: "b1", Type: blocks.BlockText, Content: "<p>hi</p>", Text: &blocks.TextAttrs{}}}},
		Version: 1,
	}
}

func templateRows(tpl *domain.Template) *sqlmock.Rows {
	schema, _ := tpl.Schema.Value()
	return sqlmock.NewRows([]string{
		"id", "name", "subject", "schema", "html_key", "version", "created_at", "updated_at",
	}).AddRow(tpl.ID, tpl.Name, tpl.Subject, schema, tpl.HTMLKey, tpl.Version, tpl.CreatedAt, tpl.UpdatedAt)
}

func TestCreateTemplate(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo, mock := setupMockDB(t)
		tpl := repoTemplate()

		mock.ExpectExec("INSERT INTO templates").
			WithArgs(tpl.ID, "ws-1", tpl.Name, tpl.Subject, sqlmock.AnyArg(), tpl.HTMLKey,
				tpl.Version, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.CreateTemplate(context.Background(), "ws-1", tpl))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		repo, mock := setupMockDB(t)

		mock.ExpectExec("INSERT INTO templates").
			WillReturnError(fmt.Errorf("connection lost"))

		err := repo.CreateTemplate(context.Background(), "ws-1", repoTemplate())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create template")
	})
}

func TestGetTemplateByID(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo, mock := setupMockDB(t)
		want := repoTemplate()
		want.CreatedAt = time.Now().UTC().Truncate(time.Second)
		want.UpdatedAt = want.CreatedAt

		mock.ExpectQuery("SELECT(.|\n)+FROM templates").
			WithArgs("ws-1", "tpl-1").
			WillReturnRows(templateRows(want))

		got, err := repo.GetTemplateByID(context.Background(), "ws-1", "tpl-1")
		require.NoError(t, err)
		assert.Equal(t, "tpl-1", got.ID)
		assert.Len(t, got.Schema.Blocks, 1)
		assert.Equal(t, "<p>hi</p>", got.Schema.Blocks[0].Content)
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := setupMockDB(t)

		mock.ExpectQuery("SELECT(.|\n)+FROM templates").
			WithArgs("ws-1", "missing").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.GetTemplateByID(context.Background(), "ws-1", "missing")
		var notFound *domain.ErrTemplateNotFound
		assert.ErrorAs(t, err, &notFound)
	})
}

func TestGetTemplates(t *testing.T) {
	t.Run("lists a workspace's templates", func(t *testing.T) {
		repo, mock := setupMockDB(t)
		tpl := repoTemplate()

		mock.ExpectQuery("SELECT(.|\n)+FROM templates").
			WithArgs("ws-1").
			WillReturnRows(templateRows(tpl))

		got, err := repo.GetTemplates(context.Background(), "ws-1", "")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "tpl-1", got[0].ID)
	})

	t.Run("search filters by name", func(t *testing.T) {
		repo, mock := setupMockDB(t)

		mock.ExpectQuery("SELECT(.|\n)+FROM templates(.|\n)+ILIKE").
			WithArgs("ws-1", "%welcome%").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		got, err := repo.GetTemplates(context.Background(), "ws-1", "welcome")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestUpdateTemplate(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo, mock := setupMockDB(t)
		tpl := repoTemplate()
		tpl.Version = 2

		mock.ExpectExec("UPDATE templates").
			WithArgs("ws-1", tpl.ID, tpl.Name, tpl.Subject, sqlmock.AnyArg(),
				tpl.HTMLKey, tpl.Version, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.UpdateTemplate(context.Background(), "ws-1", tpl))
	})

	t.Run("no rows means not found", func(t *testing.T) {
		repo, mock := setupMockDB(t)

		mock.ExpectExec("UPDATE templates").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateTemplate(context.Background(), "ws-1", repoTemplate())
		var notFound *domain.ErrTemplateNotFound
		assert.ErrorAs(t, err, &notFound)
	})
}

func TestDeleteTemplate(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo, mock := setupMockDB(t)

		mock.ExpectExec("DELETE FROM templates").
			WithArgs("ws-1", "tpl-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.DeleteTemplate(context.Background(), "ws-1", "tpl-1"))
	})

	t.Run("no rows means not found", func(t *testing.T) {
		repo, mock := setupMockDB(t)

		mock.ExpectExec("DELETE FROM templates").
			WithArgs("ws-1", "missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.DeleteTemplate(context.Background(), "ws-1", "missing")
		var notFound *domain.ErrTemplateNotFound
		assert.ErrorAs(t, err, &notFound)
	})
}
