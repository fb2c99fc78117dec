package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CallBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-CallBookingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-CallBookingService/internal/service/bookings"
	"github.com/m04kA/SMC-CallBookingService/internal/service/bookings/models"
	createBookingUC "github.com/m04kA/SMC-CallBookingService/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/SMC-CallBookingService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-CallBookingService/pkg/logger"
	"github.com/m04kA/SMC-CallBookingService/pkg/metrics"
	"github.com/m04kA/SMC-CallBookingService/pkg/txmanager"
)

type okGateway struct{}

func (okGateway) Send(context.Context, string, domain.Notification) <-chan domain.SendResult {
	return ok()
}

func (okGateway) SendAdmin(context.Context, string, string) <-chan domain.SendResult {
	return ok()
}

func ok() <-chan domain.SendResult {
	ch := make(chan domain.SendResult, 1)
	ch <- domain.SendResult{Success: true}
	return ch
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	log := logger.NewWithWriter(io.Discard, logger.LevelError)
	m := metrics.NewWithRegisterer("test", prometheus.NewRegistry())
	repo := bookingRepo.NewMemoryRepository()
	tx := txmanager.NewPassthrough()

	router := NewRouter(Dependencies{
		Bookings:          bookings.NewService(repo, okGateway{}, tx, m, log),
		CreateBooking:     createBookingUC.NewUseCase(repo, okGateway{}, tx, m, log),
		GetAvailableSlots: getAvailableSlotsUC.NewUseCase(repo, log),
		Logger:            log,
		Metrics:           m,
		MetricsPath:       "/metrics",
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, srv *httptest.Server, method, path, body string) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func createBooking(t *testing.T, srv *httptest.Server, start string) models.BookingResponse {
	t.Helper()
	status, body := call(t, srv, http.MethodPost, "/api/v1/bookings",
		`{"startTime":"`+start+`","email":"user@example.com","receiveEmail":true}`)
	require.Equal(t, http.StatusCreated, status, string(body))

	var resp models.BookingResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp
}

func TestRouter_CreateAndGet(t *testing.T) {
	srv := newTestServer(t)

	created := createBooking(t, srv, "10:00")
	assert.Equal(t, "10:15", created.EndTime)
	assert.Equal(t, "QUEUED", created.Status)

	status, body := call(t, srv, http.MethodGet, "/api/v1/bookings/"+created.ID, "")
	require.Equal(t, http.StatusOK, status)
	var got models.BookingResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, created.ID, got.ID)

	status, body = call(t, srv, http.MethodGet, "/api/v1/bookings", "")
	require.Equal(t, http.StatusOK, status)
	var list models.BookingListResponse
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Len(t, list.Bookings, 1)
}

func TestRouter_CreateErrors(t *testing.T) {
	srv := newTestServer(t)
	createBooking(t, srv, "10:00")

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "slot taken", body: `{"startTime":"10:00"}`, status: http.StatusConflict},
		{name: "unaligned", body: `{"startTime":"10:07"}`, status: http.StatusBadRequest},
		{name: "bad format", body: `{"startTime":"10-00"}`, status: http.StatusBadRequest},
		{name: "malformed json", body: `{"startTime":`, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := call(t, srv, http.MethodPost, "/api/v1/bookings", tt.body)
			assert.Equal(t, tt.status, status)
		})
	}
}

func TestRouter_BookingIDValidation(t *testing.T) {
	srv := newTestServer(t)

	status, _ := call(t, srv, http.MethodGet, "/api/v1/bookings/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = call(t, srv, http.MethodGet, "/api/v1/bookings/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRouter_UpdateCancelReject(t *testing.T) {
	srv := newTestServer(t)
	first := createBooking(t, srv, "10:00")
	second := createBooking(t, srv, "11:00")

	status, body := call(t, srv, http.MethodPut, "/api/v1/bookings/"+first.ID, `{"startTime":"10:30","endTime":"23:00"}`)
	require.Equal(t, http.StatusOK, status)
	var updated models.BookingResponse
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, "10:45", updated.EndTime)

	status, _ = call(t, srv, http.MethodPut, "/api/v1/bookings/"+first.ID, `{"startTime":"11:00"}`)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = call(t, srv, http.MethodPost, "/api/v1/bookings/"+second.ID+"/reject", `{}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = call(t, srv, http.MethodPost, "/api/v1/bookings/"+second.ID+"/reject", `{"reason":"duplicate"}`)
	assert.Equal(t, http.StatusOK, status)

	status, _ = call(t, srv, http.MethodPost, "/api/v1/bookings/"+first.ID+"/cancel", "")
	assert.Equal(t, http.StatusOK, status)

	status, _ = call(t, srv, http.MethodPost, "/api/v1/bookings/"+first.ID+"/cancel", "")
	assert.Equal(t, http.StatusConflict, status)

	status, _ = call(t, srv, http.MethodPut, "/api/v1/bookings/"+first.ID, `{"email":"x@example.com"}`)
	assert.Equal(t, http.StatusConflict, status)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	status, _ := call(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, status)

	status, _ = call(t, srv, http.MethodGet, "/api/v1/slots/available", "")
	assert.Equal(t, http.StatusOK, status)

	status, _ = call(t, srv, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, status)
}
