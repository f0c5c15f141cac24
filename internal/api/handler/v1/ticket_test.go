package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/vietanh2810/event-ticketing-api/internal/domain"
	"github.com/vietanh2810/event-ticketing-api/internal/service"
)

type fakeTicketService struct {
	gotToken string
	ticket   domain.Ticket
	err      error
}

func (f *fakeTicketService) LookupTicket(_ context.Context, token string) (domain.Ticket, error) {
	f.gotToken = token
	return f.ticket, f.err
}

func newTicketRouter(svc TicketService) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(requestid.New())
	router.GET("/tickets/:token", NewTicketHandler(svc).HandleGetTicket)

	return router
}

func TestTicketHandler_HandleGetTicket(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		svc := &fakeTicketService{ticket: domain.Ticket{
			ID:           7,
			EventID:      3,
			Token:        "ABCDEFGHJKMN",
			ArtifactPath: "/tickets/qr_ABCDEFGHJKMN.png",
		}}

		rec := do(newTicketRouter(svc), http.MethodGet, "/tickets/abcdefghjkmn", nil, "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "abcdefghjkmn", svc.gotToken)
		body := decode(t, rec)
		assert.Equal(t, "ABCDEFGHJKMN", body["token"])
		assert.Equal(t, "/tickets/qr_ABCDEFGHJKMN.png", body["qr_code_url"])
		assert.Equal(t, false, body["is_verified"])
	})

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantApp  string
	}{
		{"malformed token", fmt.Errorf("wrap -> %w", service.ErrInvalidField), http.StatusBadRequest, "bad_request"},
		{"unknown token", service.ErrTicketNotFound, http.StatusNotFound, "not_found"},
		{"database down", service.ErrStorageConnectivity, http.StatusInternalServerError, "storage_unavailable"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeTicketService{err: tt.err}

			rec := do(newTicketRouter(svc), http.MethodGet, "/tickets/ZZZZZZZZZZZZ", nil, "")

			assert.Equal(t, tt.wantCode, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, tt.wantApp, body["code"])
			assert.NotEmpty(t, body["request_id"])
		})
	}
}
