package domain

import (
	"bytes"
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/asaskevich/govalidator"

	"github.com/mailpilot/mailpilot/pkg/blocks"
)

//go:generate mockgen -destination mocks/mock_template_repository.go -package mocks github.com/mailpilot/mailpilot/internal/domain TemplateRepository
//go:generate mockgen -destination mocks/mock_template_service.go -package mocks github.com/mailpilot/mailpilot/internal/domain TemplateService

// TemplateSchema is the persisted body of a template: the ordered block tree
// the builder edits and both renderers consume.
type TemplateSchema struct {
	Blocks []blocks.Block `json:"blocks"`
}

// Scan implements sql.Scanner for the JSONB schema column.
func (s *TemplateSchema) Scan(val interface{}) error {
	var data []byte

	switch v := val.(type) {
	case []byte:
		// The driver reuses the backing array between rows; keep our own copy.
		data = bytes.Clone(v)
	case string:
		data = []byte(v)
	case nil:
		return nil
	default:
		return fmt.Errorf("unsupported type %T for TemplateSchema", val)
	}

	return json.Unmarshal(data, s)
}

// Value implements driver.Valuer for the JSONB schema column.
func (s TemplateSchema) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Template is an email template owned by a workspace. The builder core owns
// Schema construction and HTMLKey production; name, subject and persistence
// identity come from the host.
type Template struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Subject   string         `json:"subject"`
	Schema    TemplateSchema `json:"schema"`
	HTMLKey   string         `json:"htmlKey,omitempty"`
	Version   int64          `json:"version"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Validate checks template fields and every block of the schema.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("invalid template: id is required")
	}
	if len(t.ID) > 64 {
		return fmt.Errorf("invalid template: id length must be between 1 and 64")
	}
	if t.Name == "" {
		return fmt.Errorf("invalid template: name is required")
	}
	if len(t.Name) > 64 {
		return fmt.Errorf("invalid template: name length must be between 1 and 64")
	}
	if t.Subject == "" {
		return fmt.Errorf("invalid template: subject is required")
	}
	if len(t.Subject) > 255 {
		return fmt.Errorf("invalid template: subject length must be between 1 and 255")
	}
	if err := blocks.ValidateTree(t.Schema.Blocks); err != nil {
		return fmt.Errorf("invalid template: %w", err)
	}
	return nil
}

// ErrTemplateNotFound is returned when a template does not exist.
type ErrTemplateNotFound struct {
	Message string
}

func (e *ErrTemplateNotFound) Error() string {
	return e.Message
}

// SaveStage labels one sequential phase of the save protocol for progress
// display.
type SaveStage string

const (
	StageResolvingImages SaveStage = "resolving images"
	StageUploadingHTML   SaveStage = "uploading HTML"
	StageSaving          SaveStage = "saving"
)

// SaveProgress receives the label of each stage as it starts. A nil callback
// is allowed.
type SaveProgress func(stage SaveStage)

// TemplateService provides operations for managing templates and running the
// multi-stage save protocol.
type TemplateService interface {
	CreateTemplate(ctx context.Context, workspaceID string, template *Template) error
	GetTemplateByID(ctx context.Context, workspaceID string, id string) (*Template, error)
	GetTemplates(ctx context.Context, workspaceID string, search string) ([]*Template, error)
	UpdateTemplate(ctx context.Context, workspaceID string, template *Template) error
	DeleteTemplate(ctx context.Context, workspaceID string, id string) error

	// SaveTemplate resolves embedded images, regenerates and uploads the
	// HTML document, then persists the template (create or update).
	SaveTemplate(ctx context.Context, workspaceID string, template *Template, progress SaveProgress) (*Template, error)

	// RenderTemplate returns the generated HTML document for a stored
	// template, as shown by the "view code" action.
	RenderTemplate(ctx context.Context, workspaceID string, id string) (string, error)

	// SendTestEmail delivers the rendered template to a single recipient.
	SendTestEmail(ctx context.Context, workspaceID string, id string, recipient string) error
}

// TemplateRepository provides database operations for templates.
type TemplateRepository interface {
	CreateTemplate(ctx context.Context, workspaceID string, template *Template) error
	GetTemplateByID(ctx context.Context, workspaceID string, id string) (*Template, error)
	GetTemplates(ctx context.Context, workspaceID string, search string) ([]*Template, error)
	UpdateTemplate(ctx context.Context, workspaceID string, template *Template) error
	DeleteTemplate(ctx context.Context, workspaceID string, id string) error
}

// Request/Response types

type CreateTemplateRequest struct {
	WorkspaceID string         `json:"workspace_id"`
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Subject     string         `json:"subject"`
	Schema      TemplateSchema `json:"schema"`
}

func (r *CreateTemplateRequest) Validate() (*Template, string, error) {
	if r.WorkspaceID == "" {
		return nil, "", fmt.Errorf("invalid create template request: workspace_id is required")
	}
	t := &Template{
		ID:      r.ID,
		Name:    r.Name,
		Subject: r.Subject,
		Schema:  r.Schema,
		Version: 1,
	}
	if err := t.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid create template request: %w", err)
	}
	return t, r.WorkspaceID, nil
}

type UpdateTemplateRequest struct {
	WorkspaceID string         `json:"workspace_id"`
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Subject     string         `json:"subject"`
	Schema      TemplateSchema `json:"schema"`
}

func (r *UpdateTemplateRequest) Validate() (*Template, string, error) {
	if r.WorkspaceID == "" {
		return nil, "", fmt.Errorf("invalid update template request: workspace_id is required")
	}
	t := &Template{
		ID:      r.ID,
		Name:    r.Name,
		Subject: r.Subject,
		Schema:  r.Schema,
		Version: 1,
	}
	if err := t.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid update template request: %w", err)
	}
	return t, r.WorkspaceID, nil
}

type GetTemplatesRequest struct {
	WorkspaceID string `json:"workspace_id"`
	Search      string `json:"search,omitempty"`
}

func (r *GetTemplatesRequest) FromURLParams(queryParams url.Values) error {
	r.WorkspaceID = queryParams.Get("workspace_id")
	r.Search = queryParams.Get("search")

	if r.WorkspaceID == "" {
		return fmt.Errorf("invalid get templates request: workspace_id is required")
	}
	return nil
}

type GetTemplateRequest struct {
	WorkspaceID string `json:"workspace_id"`
	ID          string `json:"id"`
}

func (r *GetTemplateRequest) FromURLParams(queryParams url.Values) error {
	r.WorkspaceID = queryParams.Get("workspace_id")
	r.ID = queryParams.Get("id")

	if r.WorkspaceID == "" {
		return fmt.Errorf("invalid get template request: workspace_id is required")
	}
	if r.ID == "" {
		return fmt.Errorf("invalid get template request: id is required")
	}
	return nil
}

type DeleteTemplateRequest struct {
	WorkspaceID string `json:"workspace_id"`
	ID          string `json:"id"`
}

func (r *DeleteTemplateRequest) Validate() (string, string, error) {
	if r.WorkspaceID == "" {
		return "", "", fmt.Errorf("invalid delete template request: workspace_id is required")
	}
	if r.ID == "" {
		return "", "", fmt.Errorf("invalid delete template request: id is required")
	}
	return r.WorkspaceID, r.ID, nil
}

type TestTemplateRequest struct {
	WorkspaceID string `json:"workspace_id"`
	ID          string `json:"id"`
	Recipient   string `json:"recipient"`
}

func (r *TestTemplateRequest) Validate() error {
	if r.WorkspaceID == "" {
		return fmt.Errorf("invalid test template request: workspace_id is required")
	}
	if r.ID == "" {
		return fmt.Errorf("invalid test template request: id is required")
	}
	if !govalidator.IsEmail(r.Recipient) {
		return fmt.Errorf("invalid test template request: recipient must be a valid email")
	}
	return nil
}

type SaveTemplateRequest struct {
	WorkspaceID string         `json:"workspace_id"`
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Subject     string         `json:"subject"`
	Schema      TemplateSchema `json:"schema"`
	Version     int64          `json:"version,omitempty"`
}

func (r *SaveTemplateRequest) Validate() (*Template, string, error) {
	if r.WorkspaceID == "" {
		return nil, "", fmt.Errorf("invalid save template request: workspace_id is required")
	}
	t := &Template{
		ID:      r.ID,
		Name:    r.Name,
		Subject: r.Subject,
		Schema:  r.Schema,
		Version: r.Version,
	}
	// Version 0 means "not yet persisted" and decides create vs update.
	if err := t.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid save template request: %w", err)
	}
	return t, r.WorkspaceID, nil
}
