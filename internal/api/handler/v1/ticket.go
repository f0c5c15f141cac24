package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/event-ticketing-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/event-ticketing-api/internal/domain"
	"github.com/vietanh2810/event-ticketing-api/internal/service"
)

type TicketService interface {
	LookupTicket(ctx context.Context, token string) (domain.Ticket, error)
}

type TicketHandler struct {
	svc TicketService
}

func NewTicketHandler(svc TicketService) *TicketHandler {
	return &TicketHandler{
		svc: svc,
	}
}

// HandleGetTicket godoc
// @Summary      Look up a ticket
// @Description  Resolves a ticket token, as encoded in its QR code, to the ticket.
// @Tags         tickets
// @Produce      json
// @Param        token  path      string  true  "12-character ticket token"
// @Success      200    {object}  domain.Ticket
// @Failure      400    {object}  response.Err
// @Failure      404    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /tickets/{token} [get]
func (h *TicketHandler) HandleGetTicket(ctx *gin.Context) {
	token := ctx.Param("token")

	ticket, err := h.svc.LookupTicket(ctx.Request.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidField):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrTicketNotFound):
			response.RenderErr(ctx, response.ErrNotFound("ticket", "token", token))
		case errors.Is(err, service.ErrStorageConnectivity):
			response.RenderErr(ctx, response.ErrStorageUnavailable(fmt.Errorf("HandleGetTicket -> h.svc.LookupTicket -> %w", err)))
		default:
			response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("HandleGetTicket -> h.svc.LookupTicket -> %w", err)))
		}
		return
	}

	ctx.JSON(http.StatusOK, ticket)
}
