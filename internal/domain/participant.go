package domain

import "time"

// Participant binds a registrant to one ticket. Participants are created by
// the registration flow; this service only reads them.
type Participant struct {
	ID           uint      `json:"id"`
	TicketID     uint      `json:"ticket_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Institution  string    `json:"institution"`
	RegisteredAt time.Time `json:"registered_at"`
	Token        string    `json:"token"`
	IsVerified   bool      `json:"is_verified"`
}

type Certificate struct {
	ID             uint      `json:"id"`
	ParticipantID  uint      `json:"participant_id"`
	CertificateURL string    `json:"certificate_url"`
	IssuedAt       time.Time `json:"issued_at"`
}
