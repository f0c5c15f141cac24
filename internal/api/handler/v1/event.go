package v1

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/event-ticketing-api/internal/api/handler/v1/request"
	"github.com/vietanh2810/event-ticketing-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/event-ticketing-api/internal/config"
	"github.com/vietanh2810/event-ticketing-api/internal/domain"
	"github.com/vietanh2810/event-ticketing-api/internal/service"
)

const designField = "ticketDesign"

type EventService interface {
	CreateAndProvision(ctx context.Context, input domain.EventInput, design *domain.Upload) (domain.CreateEventResult, error)
	UpdateEvent(ctx context.Context, id uint, input domain.EventInput, design *domain.Upload) (domain.Event, error)
	DeleteEvent(ctx context.Context, id uint) error
	ListEvents(ctx context.Context) ([]domain.EventSummary, error)
	GetEventDetail(ctx context.Context, id uint) (domain.EventDetail, error)
}

type EventHandler struct {
	svc            EventService
	maxDesignBytes int64
}

func NewEventHandler(conf *config.AssetsConfig, svc EventService) *EventHandler {
	return &EventHandler{
		svc:            svc,
		maxDesignBytes: conf.MaxDesignBytes,
	}
}

// HandleCreateEvent godoc
// @Summary      Create an event and mint its tickets
// @Description  Creates the event, stores the optional ticket design and generates one QR ticket per quota unit. ticketsGenerated can be lower than ticketsRequested.
// @Tags         events
// @Accept       multipart/form-data
// @Produce      json
// @Param        name          formData  string  true   "Event name"
// @Param        slug          formData  string  true   "URL-safe unique identifier"
// @Param        type          formData  string  true   "seminar or workshop"
// @Param        location      formData  string  true   "Location"
// @Param        description   formData  string  false  "Description"
// @Param        startTime     formData  string  true   "Start time (RFC3339 or YYYY-MM-DDTHH:MM)"
// @Param        endTime       formData  string  true   "End time (RFC3339 or YYYY-MM-DDTHH:MM)"
// @Param        quota         formData  int     true   "Number of tickets to mint"
// @Param        ticketDesign  formData  file    false  "Ticket design image"
// @Success      201  {object}  response.CreateEventResponse
// @Failure      400  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events [post]
func (h *EventHandler) HandleCreateEvent(ctx *gin.Context) {
	input, design, respErr := h.bindEventForm(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	// Provisioning outlives a client that hangs up; the provisioner bounds it.
	result, err := h.svc.CreateAndProvision(context.WithoutCancel(ctx.Request.Context()), input, design)
	if err != nil {
		response.RenderErr(ctx, eventErr("HandleCreateEvent -> h.svc.CreateAndProvision", err, input.Slug, 0))
		return
	}

	ctx.JSON(http.StatusCreated, response.NewCreateEventResponse(result))
}

// HandleListEvents godoc
// @Summary      List events
// @Description  Lists events, newest first, with total, verified and available ticket counts.
// @Tags         events
// @Produce      json
// @Success      200  {array}   domain.EventSummary
// @Failure      500  {object}  response.Err
// @Router       /events [get]
func (h *EventHandler) HandleListEvents(ctx *gin.Context) {
	events, err := h.svc.ListEvents(ctx.Request.Context())
	if err != nil {
		response.RenderErr(ctx, eventErr("HandleListEvents -> h.svc.ListEvents", err, "", 0))
		return
	}

	ctx.JSON(http.StatusOK, events)
}

// HandleGetEvent godoc
// @Summary      Get event detail
// @Description  Returns the event with its ticket counts and every registered participant.
// @Tags         events
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      200      {object}  domain.EventDetail
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID} [get]
func (h *EventHandler) HandleGetEvent(ctx *gin.Context) {
	eventID, err := strconv.ParseUint(ctx.Param("eventID"), 10, 32)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid event ID: %w", err)))
		return
	}

	detail, err := h.svc.GetEventDetail(ctx.Request.Context(), uint(eventID))
	if err != nil {
		response.RenderErr(ctx, eventErr("HandleGetEvent -> h.svc.GetEventDetail", err, "", uint(eventID)))
		return
	}

	ctx.JSON(http.StatusOK, detail)
}

// HandleUpdateEvent godoc
// @Summary      Update an event
// @Description  Replaces the event fields. A new ticketDesign replaces the stored design; without one the current design is kept.
// @Tags         events
// @Accept       multipart/form-data
// @Produce      json
// @Param        eventID       path      int     true   "Event ID"
// @Param        name          formData  string  true   "Event name"
// @Param        slug          formData  string  true   "URL-safe unique identifier"
// @Param        type          formData  string  true   "seminar or workshop"
// @Param        location      formData  string  true   "Location"
// @Param        description   formData  string  false  "Description"
// @Param        startTime     formData  string  true   "Start time"
// @Param        endTime       formData  string  true   "End time"
// @Param        quota         formData  int     true   "Quota"
// @Param        ticketDesign  formData  file    false  "Ticket design image"
// @Success      200  {object}  response.EventResponse
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{eventID} [put]
func (h *EventHandler) HandleUpdateEvent(ctx *gin.Context) {
	eventID, err := strconv.ParseUint(ctx.Param("eventID"), 10, 32)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid event ID: %w", err)))
		return
	}

	input, design, respErr := h.bindEventForm(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	event, err := h.svc.UpdateEvent(ctx.Request.Context(), uint(eventID), input, design)
	if err != nil {
		response.RenderErr(ctx, eventErr("HandleUpdateEvent -> h.svc.UpdateEvent", err, input.Slug, uint(eventID)))
		return
	}

	ctx.JSON(http.StatusOK, response.EventResponse{
		Message: "Event updated successfully",
		Event:   event,
	})
}

// HandleDeleteEvent godoc
// @Summary      Delete an event
// @Description  Deletes the event together with its tickets, participants and certificates. The ID may also be passed as ?id= on /events.
// @Tags         events
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      200      {object}  response.MessageResponse
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID} [delete]
func (h *EventHandler) HandleDeleteEvent(ctx *gin.Context) {
	raw := ctx.Param("eventID")
	if raw == "" {
		raw = ctx.Query("id")
	}
	if raw == "" {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("event ID is required")))
		return
	}

	eventID, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid event ID: %w", err)))
		return
	}

	if err = h.svc.DeleteEvent(ctx.Request.Context(), uint(eventID)); err != nil {
		response.RenderErr(ctx, eventErr("HandleDeleteEvent -> h.svc.DeleteEvent", err, "", uint(eventID)))
		return
	}

	ctx.JSON(http.StatusOK, response.MessageResponse{Message: "Event deleted successfully"})
}

func (h *EventHandler) bindEventForm(ctx *gin.Context) (domain.EventInput, *domain.Upload, *response.Err) {
	var form request.EventForm
	if err := ctx.ShouldBind(&form); err != nil {
		return domain.EventInput{}, nil, response.ErrBadRequest(err)
	}

	if err := form.Validate(); err != nil {
		return domain.EventInput{}, nil, response.ErrBadRequest(err)
	}

	design, respErr := h.readDesign(ctx)
	if respErr != nil {
		return domain.EventInput{}, nil, respErr
	}

	return form.Input(), design, nil
}

func (h *EventHandler) readDesign(ctx *gin.Context) (*domain.Upload, *response.Err) {
	header, err := ctx.FormFile(designField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, response.ErrBadRequest(fmt.Errorf("invalid %s: %w", designField, err))
	}

	if h.maxDesignBytes > 0 && header.Size > h.maxDesignBytes {
		return nil, response.ErrBadRequest(fmt.Errorf("%s exceeds %d bytes", designField, h.maxDesignBytes))
	}

	f, err := header.Open()
	if err != nil {
		return nil, response.ErrBadRequest(fmt.Errorf("header.Open -> %w", err))
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, response.ErrBadRequest(fmt.Errorf("io.ReadAll -> %w", err))
	}

	mediaType := header.Header.Get("Content-Type")
	if mediaType == "" || mediaType == "application/octet-stream" {
		mediaType = http.DetectContentType(data)
	}

	return &domain.Upload{
		Filename:  header.Filename,
		MediaType: mediaType,
		Data:      data,
	}, nil
}

func eventErr(op string, err error, slug string, eventID uint) *response.Err {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrInvalidField):
		return response.ErrValidation(err)
	case errors.Is(err, service.ErrSlugConflict):
		return response.ErrSlugConflict(slug)
	case errors.Is(err, service.ErrEventNotFound):
		return response.ErrNotFound("event", "ID", eventID)
	case errors.Is(err, service.ErrStorageConnectivity):
		return response.ErrStorageUnavailable(fmt.Errorf("%s -> %w", op, err))
	case errors.Is(err, service.ErrAssetPersistence):
		return response.ErrAssetUpload(fmt.Errorf("%s -> %w", op, err))
	default:
		return response.ErrInternalServerError(fmt.Errorf("%s -> %w", op, err))
	}
}
