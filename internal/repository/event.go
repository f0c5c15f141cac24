package repository

import (
	"context"
	"fmt"

	"github.com/vietanh2810/event-ticketing-api/internal/domain"
	"github.com/vietanh2810/event-ticketing-api/internal/repository/dao"
)

var (
	ErrEventNotFound       = dao.ErrEventNotFound
	ErrEventSlugExists     = dao.ErrEventSlugExists
	ErrStorageConnectivity = dao.ErrStorageConnectivity
)

type EventDAO interface {
	Ping(ctx context.Context) error
	Insert(ctx context.Context, event dao.Event) (dao.Event, error)
	Update(ctx context.Context, event dao.Event) (dao.Event, error)
	FindByID(ctx context.Context, id uint) (dao.Event, error)
	SlugExists(ctx context.Context, slug string, excludeID *uint) (bool, error)
	Delete(ctx context.Context, id uint) error
	ListWithStats(ctx context.Context) ([]dao.EventWithStats, error)
	FindWithStats(ctx context.Context, id uint) (dao.EventWithStats, error)
}

type ParticipantDAO interface {
	ListByEvent(ctx context.Context, eventID uint) ([]dao.ParticipantWithTicket, error)
}

type EventRepository struct {
	dao            EventDAO
	participantDAO ParticipantDAO
}

func NewEventRepository(dao EventDAO, participantDAO ParticipantDAO) *EventRepository {
	return &EventRepository{
		dao:            dao,
		participantDAO: participantDAO,
	}
}

func (r *EventRepository) Ping(ctx context.Context) error {
	return r.dao.Ping(ctx)
}

func (r *EventRepository) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(event))
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *EventRepository) Update(ctx context.Context, event domain.Event) (domain.Event, error) {
	updated, err := r.dao.Update(ctx, r.domainToDao(event))
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *EventRepository) FindByID(ctx context.Context, id uint) (domain.Event, error) {
	event, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(event), nil
}

func (r *EventRepository) SlugExists(ctx context.Context, slug string, excludeID *uint) (bool, error) {
	exists, err := r.dao.SlugExists(ctx, slug, excludeID)
	if err != nil {
		return false, fmt.Errorf("r.dao.SlugExists -> %w", err)
	}

	return exists, nil
}

func (r *EventRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *EventRepository) ListWithStats(ctx context.Context) ([]domain.EventSummary, error) {
	rows, err := r.dao.ListWithStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListWithStats -> %w", err)
	}

	summaries := make([]domain.EventSummary, len(rows))
	for i, row := range rows {
		summaries[i] = r.statsToDomain(row)
	}

	return summaries, nil
}

func (r *EventRepository) FindWithStats(ctx context.Context, id uint) (domain.EventSummary, error) {
	row, err := r.dao.FindWithStats(ctx, id)
	if err != nil {
		return domain.EventSummary{}, fmt.Errorf("r.dao.FindWithStats -> %w", err)
	}

	return r.statsToDomain(row), nil
}

func (r *EventRepository) ListParticipants(ctx context.Context, eventID uint) ([]domain.Participant, error) {
	rows, err := r.participantDAO.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("r.participantDAO.ListByEvent -> %w", err)
	}

	participants := make([]domain.Participant, len(rows))
	for i, p := range rows {
		participants[i] = domain.Participant{
			ID:           p.ID,
			TicketID:     p.TicketID,
			Name:         p.Name,
			Email:        p.Email,
			Phone:        p.Phone,
			Institution:  p.Institution,
			RegisteredAt: p.RegisteredAt,
			Token:        p.Token,
			IsVerified:   p.IsVerified,
		}
	}

	return participants, nil
}

func (r *EventRepository) domainToDao(e domain.Event) dao.Event {
	event := dao.Event{
		ID:          e.ID,
		Slug:        e.Slug,
		Name:        e.Name,
		Type:        string(e.Category),
		Location:    e.Location,
		Description: e.Description,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		Quota:       e.Quota,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}

	if e.Design != nil {
		path, size, mediaType := e.Design.Path, e.Design.Size, e.Design.MediaType
		event.TicketDesign = &path
		event.TicketDesignSize = &size
		event.TicketDesignType = &mediaType
	}

	return event
}

func (r *EventRepository) daoToDomain(e dao.Event) domain.Event {
	event := domain.Event{
		ID:          e.ID,
		Slug:        e.Slug,
		Name:        e.Name,
		Category:    domain.Category(e.Type),
		Location:    e.Location,
		Description: e.Description,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		Quota:       e.Quota,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}

	if e.TicketDesign != nil {
		event.Design = &domain.DesignAsset{Path: *e.TicketDesign}
		if e.TicketDesignSize != nil {
			event.Design.Size = *e.TicketDesignSize
		}
		if e.TicketDesignType != nil {
			event.Design.MediaType = *e.TicketDesignType
		}
	}

	return event
}

func (r *EventRepository) statsToDomain(row dao.EventWithStats) domain.EventSummary {
	return domain.EventSummary{
		Event: r.daoToDomain(row.Event),
		TicketStats: domain.TicketStats{
			Total:     row.TotalTickets,
			Verified:  row.VerifiedTickets,
			Available: row.AvailableTickets,
		},
	}
}
