package dao

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Participant struct {
	ID           uint   `gorm:"primaryKey"`
	TicketID     uint   `gorm:"not null;uniqueIndex"`
	Ticket       Ticket `gorm:"foreignKey:TicketID;constraint:OnDelete:CASCADE"`
	Name         string `gorm:"not null"`
	Email        string `gorm:"not null"`
	Phone        string
	Institution  string
	RegisteredAt time.Time `gorm:"not null;autoCreateTime"`
}

type Certificate struct {
	ID             uint        `gorm:"primaryKey"`
	ParticipantID  uint        `gorm:"not null;index"`
	Participant    Participant `gorm:"foreignKey:ParticipantID;constraint:OnDelete:CASCADE"`
	CertificateURL string
	IssuedAt       time.Time `gorm:"autoCreateTime"`
}

// ParticipantWithTicket is a participants row joined with its ticket.
type ParticipantWithTicket struct {
	Participant
	Token      string
	IsVerified bool
}

type ParticipantDAO struct {
	db *gorm.DB
}

func NewParticipantDAO(db *gorm.DB) *ParticipantDAO {
	return &ParticipantDAO{
		db: db,
	}
}

func (d *ParticipantDAO) ListByEvent(ctx context.Context, eventID uint) ([]ParticipantWithTicket, error) {
	var rows []ParticipantWithTicket

	result := d.db.WithContext(ctx).
		Model(&Participant{}).
		Select("participants.*, tickets.token, tickets.is_verified").
		Joins("JOIN tickets ON tickets.id = participants.ticket_id").
		Where("tickets.event_id = ?", eventID).
		Order("participants.registered_at DESC").
		Scan(&rows)
	if result.Error != nil {
		return nil, classify(result.Error)
	}

	return rows, nil
}
