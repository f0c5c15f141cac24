package repository

import (
	"context"
	"fmt"

	"github.com/vietanh2810/event-ticketing-api/internal/domain"
	"github.com/vietanh2810/event-ticketing-api/internal/repository/dao"
)

var (
	ErrTicketNotFound    = dao.ErrTicketNotFound
	ErrTicketTokenExists = dao.ErrTicketTokenExists
)

type TicketDAO interface {
	Insert(ctx context.Context, ticket dao.Ticket) (dao.Ticket, error)
	FindByToken(ctx context.Context, token string) (dao.Ticket, error)
	ListTokensByEvent(ctx context.Context, eventID uint) ([]string, error)
}

type TicketRepository struct {
	dao TicketDAO
}

func NewTicketRepository(dao TicketDAO) *TicketRepository {
	return &TicketRepository{
		dao: dao,
	}
}

func (r *TicketRepository) Create(ctx context.Context, ticket domain.Ticket) (domain.Ticket, error) {
	created, err := r.dao.Insert(ctx, dao.Ticket{
		EventID:    ticket.EventID,
		Token:      ticket.Token,
		QRCodeURL:  ticket.ArtifactPath,
		IsVerified: ticket.IsVerified,
	})
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return daoToDomainTicket(created), nil
}

func (r *TicketRepository) FindByToken(ctx context.Context, token string) (domain.Ticket, error) {
	ticket, err := r.dao.FindByToken(ctx, token)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("r.dao.FindByToken -> %w", err)
	}

	return daoToDomainTicket(ticket), nil
}

func (r *TicketRepository) ListTokensByEvent(ctx context.Context, eventID uint) ([]string, error) {
	tokens, err := r.dao.ListTokensByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListTokensByEvent -> %w", err)
	}

	return tokens, nil
}

func daoToDomainTicket(t dao.Ticket) domain.Ticket {
	return domain.Ticket{
		ID:           t.ID,
		EventID:      t.EventID,
		Token:        t.Token,
		ArtifactPath: t.QRCodeURL,
		IsVerified:   t.IsVerified,
		CreatedAt:    t.CreatedAt,
	}
}
