package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Ticket struct {
	ID         uint   `gorm:"primaryKey"`
	EventID    uint   `gorm:"not null;index"`
	Token      string `gorm:"size:12;not null;uniqueIndex:uni_tickets_token"`
	QRCodeURL  string `gorm:"not null"`
	IsVerified bool   `gorm:"not null;default:false"`
	CreatedAt  time.Time
}

type TicketDAO struct {
	db *gorm.DB
}

func NewTicketDAO(db *gorm.DB) *TicketDAO {
	return &TicketDAO{
		db: db,
	}
}

func (d *TicketDAO) Insert(ctx context.Context, ticket Ticket) (Ticket, error) {
	result := d.db.WithContext(ctx).Create(&ticket)
	if result.Error != nil {
		if isUniqueViolation(result.Error, ticketTokenConstraint) {
			return Ticket{}, ErrTicketTokenExists
		}

		return Ticket{}, classify(result.Error)
	}

	return ticket, nil
}

func (d *TicketDAO) FindByToken(ctx context.Context, token string) (Ticket, error) {
	var ticket Ticket

	result := d.db.WithContext(ctx).First(&ticket, "token = ?", token)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Ticket{}, ErrTicketNotFound
		}

		return Ticket{}, classify(result.Error)
	}

	return ticket, nil
}

func (d *TicketDAO) ListTokensByEvent(ctx context.Context, eventID uint) ([]string, error) {
	var tokens []string

	result := d.db.WithContext(ctx).
		Model(&Ticket{}).
		Where("event_id = ?", eventID).
		Order("id").
		Pluck("token", &tokens)
	if result.Error != nil {
		return nil, classify(result.Error)
	}

	return tokens, nil
}

func (d *TicketDAO) CountByEvent(ctx context.Context, eventID uint) (int64, error) {
	var count int64

	if err := d.db.WithContext(ctx).Model(&Ticket{}).Where("event_id = ?", eventID).Count(&count).Error; err != nil {
		return 0, classify(err)
	}

	return count, nil
}
