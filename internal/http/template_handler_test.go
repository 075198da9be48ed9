package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailpilot/mailpilot/internal/domain"
	"github.com/mailpilot/mailpilot/internal/domain/mocks"
	"github.com/mailpilot/mailpilot/pkg/blocks"
	"github.com/mailpilot/mailpilot/pkg/logger"
)

func setupHandler(t *testing.T) (*mocks.MockTemplateService, *http.ServeMux) {
	t.Helper()
	ctrl := gomock.NewController(t)
	service := mocks.NewMockTemplateService(ctrl)
	mux := http.NewServeMux()
	NewTemplateHandler(service, logger.NewRecorder()).RegisterRoutes(mux)
	return service, mux
}

func handlerTemplate() *domain.Template {
	return &domain.Template{
		ID:      "tpl-1",
		Name:    "Welcome",
		Subject: "Welcome aboard",
		Schema:  domain.TemplateSchema{Blocks: []blocks.Block{blocks.New(blocks.BlockText)}},
		Version: 1,
	}
}

func postJSON(mux *http.ServeMux, path string, body interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestHandleList(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		service, mux := setupHandler(t)
		service.EXPECT().
			GetTemplates(gomock.Any(), "ws-1", "welcome").
			Return([]*domain.Template{handlerTemplate()}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/templates.list?workspace_id=ws-1&search=welcome", nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Templates []*domain.Template `json:"templates"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Templates, 1)
		assert.Equal(t, "tpl-1", resp.Templates[0].ID)
	})

	t.Run("missing workspace", func(t *testing.T) {
		_, mux := setupHandler(t)
		req := httptest.NewRequest(http.MethodGet, "/api/templates.list", nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		var resp struct {
			Error string `json:"error"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Error)
	})

	t.Run("wrong method", func(t *testing.T) {
		_, mux := setupHandler(t)
		w := postJSON(mux, "/api/templates.list", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}

func TestHandleGet(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		service, mux := setupHandler(t)
		service.EXPECT().
			GetTemplateByID(gomock.Any(), "ws-1", "tpl-1").
			Return(handlerTemplate(), nil)

		req := httptest.NewRequest(http.MethodGet, "/api/templates.get?workspace_id=ws-1&id=tpl-1", nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		service, mux := setupHandler(t)
		service.EXPECT().
			GetTemplateByID(gomock.Any(), "ws-1", "missing").
			Return(nil, &domain.ErrTemplateNotFound{Message: "template missing not found"})

		req := httptest.NewRequest(http.MethodGet, "/api/templates.get?workspace_id=ws-1&id=missing", nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandleCreate(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		service, mux := setupHandler(t)
		service.EXPECT().
			CreateTemplate(gomock.Any(), "ws-1", gomock.Any()).
			Return(nil)

		w := postJSON(mux, "/api/templates.create", domain.CreateTemplateRequest{
			WorkspaceID: "ws-1",
			ID:          "tpl-1",
			Name:        "Welcome",
			Subject:     "Hello",
			Schema:      domain.TemplateSchema{Blocks: []blocks.Block{blocks.New(blocks.BlockText)}},
		})
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("invalid body", func(t *testing.T) {
		_, mux := setupHandler(t)
		req := httptest.NewRequest(http.MethodPost, "/api/templates.create", bytes.NewReader([]byte("{")))
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid request", func(t *testing.T) {
		_, mux := setupHandler(t)
		w := postJSON(mux, "/api/templates.create", domain.CreateTemplateRequest{ID: "tpl-1"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("service failure", func(t *testing.T) {
		service, mux := setupHandler(t)
		service.EXPECT().
			CreateTemplate(gomock.Any(), "ws-1", gomock.Any()).
			Return(fmt.Errorf("connection lost"))

		w := postJSON(mux, "/api/templates.create", domain.CreateTemplateRequest{
			WorkspaceID: "ws-1",
			ID:          "tpl-1",
			Name:        "Welcome",
			Subject:     "Hello",
			Schema:      domain.TemplateSchema{Blocks: []blocks.Block{blocks.New(blocks.BlockText)}},
		})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestHandleDelete(t *testing.T) {
	service, mux := setupHandler(t)
	service.EXPECT().
		DeleteTemplate(gomock.Any(), "ws-1", "tpl-1").
		Return(nil)

	w := postJSON(mux, "/api/templates.delete", domain.DeleteTemplateRequest{
		WorkspaceID: "ws-1",
		ID:          "tpl-1",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandleSave(t *testing.T) {
	t.Run("reports stages in order", func(t *testing.T) {
		service, mux := setupHandler(t)
		service.EXPECT().
			SaveTemplate(gomock.Any(), "ws-1", gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, tpl *domain.Template, progress domain.SaveProgress) (*domain.Template, error) {
				progress(domain.StageResolvingImages)
				progress(domain.StageUploadingHTML)
				progress(domain.StageSaving)
				return tpl, nil
			})

		w := postJSON(mux, "/api/templates.save", domain.SaveTemplateRequest{
			WorkspaceID: "ws-1",
			ID:          "tpl-1",
			Name:        "Welcome",
			Subject:     "Hello",
			Schema:      domain.TemplateSchema{Blocks: []blocks.Block{blocks.New(blocks.BlockText)}},
		})
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Stages []string `json:"stages"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, []string{"resolving images", "uploading HTML", "saving"}, resp.Stages)
	})

	t.Run("save failure", func(t *testing.T) {
		service, mux := setupHandler(t)
		service.EXPECT().
			SaveTemplate(gomock.Any(), "ws-1", gomock.Any(), gomock.Any()).
			Return(nil, fmt.Errorf("connection lost"))

		w := postJSON(mux, "/api/templates.save", domain.SaveTemplateRequest{
			WorkspaceID: "ws-1",
			ID:          "tpl-1",
			Name:        "Welcome",
			Subject:     "Hello",
			Schema:      domain.TemplateSchema{Blocks: []blocks.Block{blocks.New(blocks.BlockText)}},
		})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestHandleHTML(t *testing.T) {
	t.Run("returns the raw document", func(t *testing.T) {
		service, mux := setupHandler(t)
		service.EXPECT().
			RenderTemplate(gomock.Any(), "ws-1", "tpl-1").
			Return("<!DOCTYPE html>\n<html></html>\n", nil)

		req := httptest.NewRequest(http.MethodGet, "/api/templates.html?workspace_id=ws-1&id=tpl-1", nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Body.String(), "<!DOCTYPE html>")
	})

	t.Run("not found", func(t *testing.T) {
		service, mux := setupHandler(t)
		service.EXPECT().
			RenderTemplate(gomock.Any(), "ws-1", "missing").
			Return("", &domain.ErrTemplateNotFound{Message: "template missing not found"})

		req := httptest.NewRequest(http.MethodGet, "/api/templates.html?workspace_id=ws-1&id=missing", nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandleTest(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		service, mux := setupHandler(t)
		service.EXPECT().
			SendTestEmail(gomock.Any(), "ws-1", "tpl-1", "dev@mailpilot.io").
			Return(nil)

		w := postJSON(mux, "/api/templates.test", domain.TestTemplateRequest{
			WorkspaceID: "ws-1",
			ID:          "tpl-1",
			Recipient:   "dev@mailpilot.io",
		})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("bad recipient", func(t *testing.T) {
		_, mux := setupHandler(t)
		w := postJSON(mux, "/api/templates.test", domain.TestTemplateRequest{
			WorkspaceID: "ws-1",
			ID:          "tpl-1",
			Recipient:   "nope",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
