package domain

import "time"

type Category string

const (
	CategorySeminar  Category = "seminar"
	CategoryWorkshop Category = "workshop"
)

func (c Category) Valid() bool {
	return c == CategorySeminar || c == CategoryWorkshop
}

type Event struct {
	ID          uint         `json:"id"`
	Slug        string       `json:"slug"`
	Name        string       `json:"name"`
	Category    Category     `json:"type"`
	Location    string       `json:"location"`
	Description string       `json:"description"`
	StartTime   time.Time    `json:"start_time"`
	EndTime     time.Time    `json:"end_time"`
	Quota       int          `json:"quota"`
	Design      *DesignAsset `json:"ticket_design,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// DesignAsset is the uploaded ticket artwork attached to an event.
type DesignAsset struct {
	Path      string `json:"path"`
	Size      int64  `json:"size"`
	MediaType string `json:"type"`
}

// EventInput is the operator-supplied part of an Event, shared by create and
// update.
type EventInput struct {
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Category    Category  `json:"type"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	Quota       int       `json:"quota"`
}

// Upload is a binary file received from a client.
type Upload struct {
	Filename  string
	MediaType string
	Data      []byte
}

func (u *Upload) Empty() bool {
	return u == nil || len(u.Data) == 0
}

type TicketStats struct {
	Total     int64 `json:"total_tickets"`
	Verified  int64 `json:"verified_tickets"`
	Available int64 `json:"available_tickets"`
}

type EventSummary struct {
	Event
	TicketStats
}

type EventDetail struct {
	Event        EventSummary  `json:"event"`
	Participants []Participant `json:"participants"`
}

type CreateEventResult struct {
	Event  Event
	Report ProvisioningReport
}
