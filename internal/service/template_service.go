package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mailpilot/mailpilot/internal/domain"
	"github.com/mailpilot/mailpilot/pkg/blocks"
	"github.com/mailpilot/mailpilot/pkg/logger"
	"github.com/mailpilot/mailpilot/pkg/mailer"
)

// TemplateService implements template CRUD and the multi-stage save protocol
// on top of the repository and asset storage collaborators.
type TemplateService struct {
	repo     domain.TemplateRepository
	assets   domain.AssetStorage
	mailer   mailer.Mailer
	resolver *blocks.AssetResolver
	logger   logger.Logger
}

// NewTemplateService wires a template service.
func NewTemplateService(repo domain.TemplateRepository, assets domain.AssetStorage, m mailer.Mailer, log logger.Logger) *TemplateService {
	return &TemplateService{
		repo:     repo,
		assets:   assets,
		mailer:   m,
		resolver: blocks.NewAssetResolver(assets, log),
		logger:   log,
	}
}

func (s *TemplateService) CreateTemplate(ctx context.Context, workspaceID string, template *domain.Template) error {
	template.Version = 1
	now := time.Now().UTC()
	template.CreatedAt = now
	template.UpdatedAt = now

	if err := template.Validate(); err != nil {
		return fmt.Errorf("invalid template: %w", err)
	}

	if err := s.repo.CreateTemplate(ctx, workspaceID, template); err != nil {
		s.logger.WithField("template_id", template.ID).Error(fmt.Sprintf("Failed to create template: %v", err))
		return fmt.Errorf("failed to create template: %w", err)
	}
	return nil
}

func (s *TemplateService) GetTemplateByID(ctx context.Context, workspaceID string, id string) (*domain.Template, error) {
	template, err := s.repo.GetTemplateByID(ctx, workspaceID, id)
	if err != nil {
		if _, ok := err.(*domain.ErrTemplateNotFound); ok {
			return nil, err
		}
		s.logger.WithField("template_id", id).Error(fmt.Sprintf("Failed to get template: %v", err))
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return template, nil
}

func (s *TemplateService) GetTemplates(ctx context.Context, workspaceID string, search string) ([]*domain.Template, error) {
	templates, err := s.repo.GetTemplates(ctx, workspaceID, search)
	if err != nil {
		s.logger.Error(fmt.Sprintf("Failed to get templates: %v", err))
		return nil, fmt.Errorf("failed to get templates: %w", err)
	}
	return templates, nil
}

func (s *TemplateService) UpdateTemplate(ctx context.Context, workspaceID string, template *domain.Template) error {
	existing, err := s.repo.GetTemplateByID(ctx, workspaceID, template.ID)
	if err != nil {
		if _, ok := err.(*domain.ErrTemplateNotFound); ok {
			return err
		}
		s.logger.WithField("template_id", template.ID).Error(fmt.Sprintf("Failed to check if template exists: %v", err))
		return fmt.Errorf("failed to check if template exists: %w", err)
	}

	template.Version = existing.Version + 1
	template.CreatedAt = existing.CreatedAt
	template.UpdatedAt = time.Now().UTC()
	if template.HTMLKey == "" {
		template.HTMLKey = existing.HTMLKey
	}

	if err := template.Validate(); err != nil {
		return fmt.Errorf("invalid template: %w", err)
	}

	if err := s.repo.UpdateTemplate(ctx, workspaceID, template); err != nil {
		s.logger.WithField("template_id", template.ID).Error(fmt.Sprintf("Failed to update template: %v", err))
		return fmt.Errorf("failed to update template: %w", err)
	}
	return nil
}

func (s *TemplateService) DeleteTemplate(ctx context.Context, workspaceID string, id string) error {
	if err := s.repo.DeleteTemplate(ctx, workspaceID, id); err != nil {
		if _, ok := err.(*domain.ErrTemplateNotFound); ok {
			return err
		}
		s.logger.WithField("template_id", id).Error(fmt.Sprintf("Failed to delete template: %v", err))
		return fmt.Errorf("failed to delete template: %w", err)
	}
	return nil
}

// SaveTemplate runs the three-stage save protocol:
//
//  1. "resolving images": promote embedded data-URL images to hosted URLs.
//     Individual upload failures keep the embedded content and never abort.
//  2. "uploading HTML": regenerate the HTML document from the resolved tree
//     and upload it. On failure the previous HTMLKey is retained; the stage
//     is best-effort.
//  3. "saving": persist the template, creating it when Version is zero.
//     Errors here are fatal and surface to the caller.
//
// The stages run strictly in order; stage 2 starts only after every image
// upload of stage 1 has settled.
func (s *TemplateService) SaveTemplate(ctx context.Context, workspaceID string, template *domain.Template, progress domain.SaveProgress) (*domain.Template, error) {
	report := func(stage domain.SaveStage) {
		if progress != nil {
			progress(stage)
		}
	}

	report(domain.StageResolvingImages)
	resolved, unresolved := s.resolver.Resolve(ctx, template.Schema.Blocks, template.ID)
	if unresolved > 0 {
		s.logger.WithField("template_id", template.ID).
			WithField("unresolved_images", unresolved).
			Warn("Template saved with embedded images that could not be uploaded")
	}
	template.Schema.Blocks = resolved

	report(domain.StageUploadingHTML)
	html := blocks.GenerateHTML(resolved, template.Subject)
	if key, err := s.assets.UploadHTML(ctx, html, template.ID); err != nil {
		s.logger.WithField("template_id", template.ID).
			Warn(fmt.Sprintf("HTML upload failed, keeping previous html key: %v", err))
	} else {
		template.HTMLKey = key
	}

	report(domain.StageSaving)
	if template.Version == 0 {
		if err := s.CreateTemplate(ctx, workspaceID, template); err != nil {
			return nil, err
		}
	} else {
		if err := s.UpdateTemplate(ctx, workspaceID, template); err != nil {
			return nil, err
		}
	}
	return template, nil
}

// RenderTemplate regenerates the HTML document for a stored template. This is
// what the "view code" action displays, byte for byte.
func (s *TemplateService) RenderTemplate(ctx context.Context, workspaceID string, id string) (string, error) {
	template, err := s.GetTemplateByID(ctx, workspaceID, id)
	if err != nil {
		return "", err
	}
	return blocks.GenerateHTML(template.Schema.Blocks, template.Subject), nil
}

// SendTestEmail renders a stored template and delivers it to one recipient.
func (s *TemplateService) SendTestEmail(ctx context.Context, workspaceID string, id string, recipient string) error {
	template, err := s.GetTemplateByID(ctx, workspaceID, id)
	if err != nil {
		return err
	}

	html := blocks.GenerateHTML(template.Schema.Blocks, template.Subject)
	if err := s.mailer.SendTemplateTest(recipient, template.Subject, html); err != nil {
		s.logger.WithField("template_id", id).Error(fmt.Sprintf("Failed to send test email: %v", err))
		return fmt.Errorf("failed to send test email: %w", err)
	}
	return nil
}
