package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// BookingIDFromPath извлекает и проверяет bookingId из URL
func BookingIDFromPath(r *http.Request) (string, error) {
	id, err := uuid.Parse(mux.Vars(r)["bookingId"])
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
