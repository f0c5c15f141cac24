package domain

import "time"

type Ticket struct {
	ID           uint      `json:"id"`
	EventID      uint      `json:"event_id"`
	Token        string    `json:"token"`
	ArtifactPath string    `json:"qr_code_url"`
	IsVerified   bool      `json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
}

// TicketStage names the step of a ticket's unit of work that failed.
type TicketStage string

const (
	StageMint      TicketStage = "mint"
	StageEncode    TicketStage = "encode"
	StageStore     TicketStage = "store"
	StagePersist   TicketStage = "persist"
	StageCancelled TicketStage = "cancelled"
)

// TicketOutcome is the result of minting one ticket. Exactly one of Ticket
// and Err is set.
type TicketOutcome struct {
	Index  int
	Ticket *Ticket
	Stage  TicketStage
	Err    error
}

func (o TicketOutcome) Succeeded() bool {
	return o.Err == nil && o.Ticket != nil
}

type TicketFailure struct {
	Index int         `json:"index"`
	Stage TicketStage `json:"stage"`
	Error string      `json:"error"`
}

type ProvisioningReport struct {
	EventID   uint            `json:"event_id"`
	Requested int             `json:"requested"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Failures  []TicketFailure `json:"failures,omitempty"`
}

// Summarize folds per-ticket outcomes into a report. Outcomes are expected
// in index order; Requested is the number of outcomes.
func Summarize(eventID uint, outcomes []TicketOutcome) ProvisioningReport {
	report := ProvisioningReport{
		EventID:   eventID,
		Requested: len(outcomes),
	}

	for _, o := range outcomes {
		if o.Succeeded() {
			report.Succeeded++
			continue
		}

		report.Failed++
		msg := "no ticket produced"
		if o.Err != nil {
			msg = o.Err.Error()
		}
		report.Failures = append(report.Failures, TicketFailure{
			Index: o.Index,
			Stage: o.Stage,
			Error: msg,
		})
	}

	return report
}
