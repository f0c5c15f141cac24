package response

import "github.com/vietanh2810/event-ticketing-api/internal/domain"

type CreateEventResponse struct {
	Message          string                    `json:"message"`
	EventID          uint                      `json:"eventId"`
	TicketsGenerated int                       `json:"ticketsGenerated"`
	TicketsRequested int                       `json:"ticketsRequested"`
	TicketDesign     *string                   `json:"ticketDesign"`
	Provisioning     domain.ProvisioningReport `json:"provisioning"`
}

func NewCreateEventResponse(result domain.CreateEventResult) CreateEventResponse {
	resp := CreateEventResponse{
		Message:          "Event created successfully",
		EventID:          result.Event.ID,
		TicketsGenerated: result.Report.Succeeded,
		TicketsRequested: result.Report.Requested,
		Provisioning:     result.Report,
	}
	if result.Report.Failed > 0 {
		resp.Message = "Event created; some tickets could not be generated"
	}
	if result.Event.Design != nil {
		path := result.Event.Design.Path
		resp.TicketDesign = &path
	}

	return resp
}

type EventResponse struct {
	Message string       `json:"message"`
	Event   domain.Event `json:"event"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
