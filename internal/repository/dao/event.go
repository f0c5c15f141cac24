package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Event struct {
	ID               uint      `gorm:"primaryKey"`
	Slug             string    `gorm:"size:100;not null;uniqueIndex:uni_events_slug"`
	Name             string    `gorm:"not null"`
	Type             string    `gorm:"size:20;not null"` // "seminar" or "workshop"
	Location         string    `gorm:"not null"`
	Description      string    `gorm:"type:text"`
	StartTime        time.Time `gorm:"not null"`
	EndTime          time.Time `gorm:"not null"`
	Quota            int       `gorm:"not null"`
	TicketDesign     *string
	TicketDesignSize *int64
	TicketDesignType *string
	Tickets          []Ticket `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// EventWithStats is an events row plus its aggregated ticket counts.
type EventWithStats struct {
	Event
	TotalTickets     int64
	VerifiedTickets  int64
	AvailableTickets int64
}

const eventStatsSelect = `events.*,
	COUNT(tickets.id) AS total_tickets,
	COUNT(CASE WHEN tickets.is_verified THEN 1 END) AS verified_tickets,
	COUNT(CASE WHEN NOT tickets.is_verified THEN 1 END) AS available_tickets`

// updatableEventColumns are written on every update, including zero values
// such as an emptied description.
var updatableEventColumns = []string{
	"Slug", "Name", "Type", "Location", "Description", "StartTime", "EndTime", "Quota",
	"TicketDesign", "TicketDesignSize", "TicketDesignType", "UpdatedAt",
}

type EventDAO struct {
	db *gorm.DB
}

func NewEventDAO(db *gorm.DB) *EventDAO {
	return &EventDAO{
		db: db,
	}
}

func (d *EventDAO) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return errors.Join(ErrStorageConnectivity, err)
	}
	if err = sqlDB.PingContext(ctx); err != nil {
		return errors.Join(ErrStorageConnectivity, err)
	}

	return nil
}

func (d *EventDAO) Insert(ctx context.Context, event Event) (Event, error) {
	result := d.db.WithContext(ctx).Omit("Tickets").Create(&event)
	if result.Error != nil {
		if isUniqueViolation(result.Error, eventSlugConstraint) {
			return Event{}, ErrEventSlugExists
		}

		return Event{}, classify(result.Error)
	}

	return event, nil
}

func (d *EventDAO) Update(ctx context.Context, event Event) (Event, error) {
	result := d.db.WithContext(ctx).
		Model(&Event{ID: event.ID}).
		Select(updatableEventColumns).
		Updates(&event)
	if result.Error != nil {
		if isUniqueViolation(result.Error, eventSlugConstraint) {
			return Event{}, ErrEventSlugExists
		}

		return Event{}, classify(result.Error)
	}
	if result.RowsAffected == 0 {
		return Event{}, ErrEventNotFound
	}

	return d.FindByID(ctx, event.ID)
}

func (d *EventDAO) FindByID(ctx context.Context, id uint) (Event, error) {
	var event Event

	result := d.db.WithContext(ctx).First(&event, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Event{}, ErrEventNotFound
		}

		return Event{}, classify(result.Error)
	}

	return event, nil
}

// SlugExists reports whether another event already uses slug. excludeID,
// when set, is ignored so an event can keep its own slug on update.
func (d *EventDAO) SlugExists(ctx context.Context, slug string, excludeID *uint) (bool, error) {
	var count int64

	q := d.db.WithContext(ctx).Model(&Event{}).Where("slug = ?", slug)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, classify(err)
	}

	return count > 0, nil
}

// Delete removes the event. Tickets, participants and certificates go with
// it through ON DELETE CASCADE.
func (d *EventDAO) Delete(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Delete(&Event{}, id)
	if result.Error != nil {
		return classify(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrEventNotFound
	}

	return nil
}

func (d *EventDAO) ListWithStats(ctx context.Context) ([]EventWithStats, error) {
	var rows []EventWithStats

	result := d.db.WithContext(ctx).
		Model(&Event{}).
		Select(eventStatsSelect).
		Joins("LEFT JOIN tickets ON tickets.event_id = events.id").
		Group("events.id").
		Order("events.created_at DESC, events.id DESC").
		Scan(&rows)
	if result.Error != nil {
		return nil, classify(result.Error)
	}

	return rows, nil
}

func (d *EventDAO) FindWithStats(ctx context.Context, id uint) (EventWithStats, error) {
	var rows []EventWithStats

	result := d.db.WithContext(ctx).
		Model(&Event{}).
		Select(eventStatsSelect).
		Joins("LEFT JOIN tickets ON tickets.event_id = events.id").
		Where("events.id = ?", id).
		Group("events.id").
		Scan(&rows)
	if result.Error != nil {
		return EventWithStats{}, classify(result.Error)
	}
	if len(rows) == 0 {
		return EventWithStats{}, ErrEventNotFound
	}

	return rows[0], nil
}
