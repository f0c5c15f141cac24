package service

import (
	"context"
	"fmt"

	"github.com/vietanh2810/event-ticketing-api/internal/domain"
	"github.com/vietanh2810/event-ticketing-api/internal/pkg/tokengen"
	"github.com/vietanh2810/event-ticketing-api/internal/repository"
)

var ErrTicketNotFound = repository.ErrTicketNotFound

type TicketFinder interface {
	FindByToken(ctx context.Context, token string) (domain.Ticket, error)
}

type TicketService struct {
	repo TicketFinder
}

func NewTicketService(repo TicketFinder) *TicketService {
	return &TicketService{
		repo: repo,
	}
}

// LookupTicket resolves a scanned or typed token. Lower-case input and
// surrounding whitespace are accepted.
func (s *TicketService) LookupTicket(ctx context.Context, token string) (domain.Ticket, error) {
	token = tokengen.Normalize(token)
	if !tokengen.Valid(token) {
		return domain.Ticket{}, fmt.Errorf("%w: malformed ticket token", ErrInvalidField)
	}

	ticket, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("s.repo.FindByToken -> %w", err)
	}

	return ticket, nil
}
