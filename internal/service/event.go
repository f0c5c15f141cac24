package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation"
	"go.uber.org/zap"

	"github.com/vietanh2810/event-ticketing-api/internal/config"
	"github.com/vietanh2810/event-ticketing-api/internal/domain"
	"github.com/vietanh2810/event-ticketing-api/internal/pkg/assetstore"
	"github.com/vietanh2810/event-ticketing-api/internal/repository"
)

var (
	ErrEventNotFound       = repository.ErrEventNotFound
	ErrSlugConflict        = repository.ErrEventSlugExists
	ErrStorageConnectivity = repository.ErrStorageConnectivity
	ErrValidation          = domain.ErrValidation
	ErrInvalidField        = domain.ErrInvalidField
	ErrAssetPersistence    = domain.ErrAssetPersistence
)

type EventRepository interface {
	Ping(ctx context.Context) error
	Create(ctx context.Context, event domain.Event) (domain.Event, error)
	Update(ctx context.Context, event domain.Event) (domain.Event, error)
	FindByID(ctx context.Context, id uint) (domain.Event, error)
	SlugExists(ctx context.Context, slug string, excludeID *uint) (bool, error)
	Delete(ctx context.Context, id uint) error
	ListWithStats(ctx context.Context) ([]domain.EventSummary, error)
	FindWithStats(ctx context.Context, id uint) (domain.EventSummary, error)
	ListParticipants(ctx context.Context, eventID uint) ([]domain.Participant, error)
}

type FileAssetRepository interface {
	Record(ctx context.Context, record domain.FileAssetRecord) (domain.FileAssetRecord, error)
}

type TokenLister interface {
	ListTokensByEvent(ctx context.Context, eventID uint) ([]string, error)
}

type AssetStore interface {
	EnsureDir(dir string) error
	Store(dir, suggestedName string, data []byte) (assetstore.StoredAsset, error)
	Delete(publicPath string) error
}

type Provisioner interface {
	Provision(ctx context.Context, eventID uint, quota int, baseURL string) (domain.ProvisioningReport, error)
}

type EventService struct {
	repo            EventRepository
	fileAssets      FileAssetRepository
	tickets         TokenLister
	store           AssetStore
	provisioner     Provisioner
	assets          *config.AssetsConfig
	maxQuota        int
	registrationURL string
}

func NewEventService(
	repo EventRepository,
	fileAssets FileAssetRepository,
	tickets TokenLister,
	store AssetStore,
	provisioner Provisioner,
	conf *config.AppConfig,
) *EventService {
	return &EventService{
		repo:            repo,
		fileAssets:      fileAssets,
		tickets:         tickets,
		store:           store,
		provisioner:     provisioner,
		assets:          conf.Assets,
		maxQuota:        conf.Provisioning.MaxQuota,
		registrationURL: conf.API.RegistrationURL,
	}
}

// ValidateSlugAvailable reports whether slug is free. excludeID lets an
// event keep its own slug.
func (s *EventService) ValidateSlugAvailable(ctx context.Context, slug string, excludeID *uint) (bool, error) {
	exists, err := s.repo.SlugExists(ctx, slug, excludeID)
	if err != nil {
		return false, fmt.Errorf("s.repo.SlugExists -> %w", err)
	}

	return !exists, nil
}

func (s *EventService) CreateEvent(ctx context.Context, input domain.EventInput, design *domain.Upload) (domain.Event, error) {
	if err := s.validateInput(input); err != nil {
		return domain.Event{}, err
	}

	if err := s.repo.Ping(ctx); err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.Ping -> %w", err)
	}

	available, err := s.ValidateSlugAvailable(ctx, input.Slug, nil)
	if err != nil {
		return domain.Event{}, err
	}
	if !available {
		return domain.Event{}, ErrSlugConflict
	}

	event := eventFromInput(input)

	var stored *assetstore.StoredAsset
	if !design.Empty() {
		asset, err := s.storeDesign(design)
		if err != nil {
			return domain.Event{}, err
		}
		stored = &asset
		event.Design = &domain.DesignAsset{
			Path:      asset.PublicPath,
			Size:      asset.Size,
			MediaType: design.MediaType,
		}
	}

	created, err := s.repo.Create(ctx, event)
	if err != nil {
		if stored != nil {
			s.releaseAsset(stored.PublicPath, zap.String("reason", "event insert failed"))
		}

		return domain.Event{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	if stored != nil {
		s.recordProvenance(ctx, created.ID, design, *stored)
	}

	return created, nil
}

// CreateAndProvision creates the event and then mints its tickets exactly
// once. The report carries the number of tickets actually produced.
func (s *EventService) CreateAndProvision(ctx context.Context, input domain.EventInput, design *domain.Upload) (domain.CreateEventResult, error) {
	event, err := s.CreateEvent(ctx, input, design)
	if err != nil {
		return domain.CreateEventResult{}, err
	}

	report, err := s.provisioner.Provision(ctx, event.ID, event.Quota, s.registrationURL)
	if err != nil {
		return domain.CreateEventResult{Event: event}, fmt.Errorf("s.provisioner.Provision -> %w", err)
	}

	return domain.CreateEventResult{
		Event:  event,
		Report: report,
	}, nil
}

func (s *EventService) UpdateEvent(ctx context.Context, id uint, input domain.EventInput, design *domain.Upload) (domain.Event, error) {
	if err := s.validateInput(input); err != nil {
		return domain.Event{}, err
	}

	if err := s.repo.Ping(ctx); err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.Ping -> %w", err)
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	available, err := s.ValidateSlugAvailable(ctx, input.Slug, &id)
	if err != nil {
		return domain.Event{}, err
	}
	if !available {
		return domain.Event{}, ErrSlugConflict
	}

	event := eventFromInput(input)
	event.ID = current.ID
	event.CreatedAt = current.CreatedAt
	event.Design = current.Design

	var stored *assetstore.StoredAsset
	if !design.Empty() {
		asset, err := s.storeDesign(design)
		if err != nil {
			return domain.Event{}, err
		}
		stored = &asset
		event.Design = &domain.DesignAsset{
			Path:      asset.PublicPath,
			Size:      asset.Size,
			MediaType: design.MediaType,
		}
	}

	updated, err := s.repo.Update(ctx, event)
	if err != nil {
		if stored != nil {
			s.releaseAsset(stored.PublicPath, zap.String("reason", "event update failed"))
		}

		return domain.Event{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	if stored != nil {
		s.recordProvenance(ctx, updated.ID, design, *stored)

		// The replaced design stays on disk unless cleanup is enabled.
		if current.Design != nil && s.assets.CleanupOrphanedAssets {
			s.releaseAsset(current.Design.Path, zap.Uint("event_id", id), zap.String("reason", "design replaced"))
		}
	}

	return updated, nil
}

func (s *EventService) DeleteEvent(ctx context.Context, id uint) error {
	if err := s.repo.Ping(ctx); err != nil {
		return fmt.Errorf("s.repo.Ping -> %w", err)
	}

	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	// Artifact paths derive from tokens, so they are read before the
	// cascade removes the ticket rows.
	var artifacts []string
	if s.assets.CleanupOrphanedAssets {
		tokens, err := s.tickets.ListTokensByEvent(ctx, id)
		if err != nil {
			zap.L().Warn("failed to list ticket tokens for artifact cleanup",
				zap.Uint("event_id", id), zap.Error(err))
		}
		for _, token := range tokens {
			artifacts = append(artifacts, assetstore.ArtifactPath(s.assets.TicketsDir, token))
		}
	}

	if event.Design != nil {
		s.releaseAsset(event.Design.Path, zap.Uint("event_id", id), zap.String("reason", "event deleted"))
	}

	if err = s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	for _, artifact := range artifacts {
		s.releaseAsset(artifact, zap.Uint("event_id", id), zap.String("reason", "event deleted"))
	}

	return nil
}

func (s *EventService) ListEvents(ctx context.Context) ([]domain.EventSummary, error) {
	events, err := s.repo.ListWithStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListWithStats -> %w", err)
	}

	return events, nil
}

func (s *EventService) GetEventDetail(ctx context.Context, id uint) (domain.EventDetail, error) {
	summary, err := s.repo.FindWithStats(ctx, id)
	if err != nil {
		return domain.EventDetail{}, fmt.Errorf("s.repo.FindWithStats -> %w", err)
	}

	participants, err := s.repo.ListParticipants(ctx, id)
	if err != nil {
		return domain.EventDetail{}, fmt.Errorf("s.repo.ListParticipants -> %w", err)
	}

	return domain.EventDetail{
		Event:        summary,
		Participants: participants,
	}, nil
}

func (s *EventService) validateInput(input domain.EventInput) error {
	missing := validation.Errors{
		"name":      validation.Validate(input.Name, validation.Required),
		"slug":      validation.Validate(input.Slug, validation.Required),
		"type":      validation.Validate(string(input.Category), validation.Required),
		"location":  validation.Validate(input.Location, validation.Required),
		"startTime": validation.Validate(input.StartTime, validation.Required),
		"endTime":   validation.Validate(input.EndTime, validation.Required),
		"quota":     validation.Validate(input.Quota, validation.Required, validation.Min(1)),
	}.Filter()

	if missing != nil {
		var fields []string
		for field := range missing.(validation.Errors) {
			fields = append(fields, field)
		}
		sort.Strings(fields)

		return &domain.MissingFieldError{Fields: fields}
	}

	if !input.Category.Valid() {
		return fmt.Errorf("%w: type must be seminar or workshop", ErrInvalidField)
	}
	if input.EndTime.Before(input.StartTime) {
		return fmt.Errorf("%w: endTime is before startTime", ErrInvalidField)
	}
	if s.maxQuota > 0 && input.Quota > s.maxQuota {
		return fmt.Errorf("%w: quota exceeds %d", ErrInvalidField, s.maxQuota)
	}

	return nil
}

func (s *EventService) storeDesign(design *domain.Upload) (assetstore.StoredAsset, error) {
	if err := s.store.EnsureDir(s.assets.UploadsDir); err != nil {
		return assetstore.StoredAsset{}, errors.Join(ErrAssetPersistence, fmt.Errorf("s.store.EnsureDir -> %w", err))
	}

	asset, err := s.store.Store(s.assets.UploadsDir, design.Filename, design.Data)
	if err != nil {
		return assetstore.StoredAsset{}, errors.Join(ErrAssetPersistence, fmt.Errorf("s.store.Store -> %w", err))
	}

	return asset, nil
}

// recordProvenance logs the stored design. Its failure never fails the
// event operation.
func (s *EventService) recordProvenance(ctx context.Context, eventID uint, design *domain.Upload, asset assetstore.StoredAsset) {
	_, err := s.fileAssets.Record(ctx, domain.FileAssetRecord{
		StoredName:   asset.Filename,
		OriginalName: design.Filename,
		StoredPath:   asset.PublicPath,
		Size:         asset.Size,
		MediaType:    design.MediaType,
		Digest:       asset.Digest,
		Purpose:      domain.PurposeTicketDesign,
		RelatedID:    eventID,
	})
	if err != nil {
		zap.L().Warn("failed to record design asset provenance",
			zap.Uint("event_id", eventID),
			zap.String("path", asset.PublicPath),
			zap.Error(err),
		)
	}
}

func (s *EventService) releaseAsset(publicPath string, fields ...zap.Field) {
	if err := s.store.Delete(publicPath); err != nil {
		fields = append(fields, zap.String("path", publicPath), zap.Error(err))
		zap.L().Warn("failed to delete asset", fields...)
	}
}

func eventFromInput(input domain.EventInput) domain.Event {
	return domain.Event{
		Slug:        input.Slug,
		Name:        input.Name,
		Category:    input.Category,
		Location:    input.Location,
		Description: input.Description,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		Quota:       input.Quota,
	}
}
