package mailer

import (
	"testing"

	"carenest/models"

	"github.com/stretchr/testify/assert"
)

func TestConfirmationBodySummarizesBooking(t *testing.T) {
	b := &models.Booking{
		UserEmail:     "rahim@example.com",
		UserName:      "Rahim",
		ServiceName:   "Baby Care",
		DurationValue: 4,
		DurationType:  "hourly",
		Area:          "Mirpur-10",
		City:          "Mirpur",
		District:      "Dhaka",
		Division:      "Dhaka",
		Address:       "House 12, Road 3",
		TotalCost:     1200,
		Status:        models.StatusPending,
	}

	body := ConfirmationBody(b)

	assert.Contains(t, body, "Rahim")
	assert.Contains(t, body, "Baby Care")
	assert.Contains(t, body, "4 hourly")
	assert.Contains(t, body, "Mirpur-10, Mirpur, Dhaka, Dhaka")
	assert.Contains(t, body, "House 12, Road 3")
	assert.Contains(t, body, "1200.00")
	assert.Contains(t, body, models.StatusPending)
}

func TestConfirmationBodyFallsBackToEmail(t *testing.T) {
	b := &models.Booking{UserEmail: "karim@example.com", ServiceName: "Elderly Care"}

	body := ConfirmationBody(b)

	assert.Contains(t, body, "karim@example.com")
}

func TestConfirmationBodyEscapesHTML(t *testing.T) {
	b := &models.Booking{
		UserEmail:   "x@example.com",
		UserName:    "<script>alert(1)</script>",
		ServiceName: "Patient Care",
	}

	body := ConfirmationBody(b)

	assert.NotContains(t, body, "<script>")
}
