package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTelegram(srv *httptest.Server) *Telegram {
	return &Telegram{
		botToken: "test-token",
		chatID:   "42",
		baseURL:  srv.URL,
		client:   &http.Client{Timeout: time.Second},
	}
}

func sampleBooking() Booking {
	return Booking{
		PatientName:      "Amina Diallo",
		Phone:            "+15550100",
		DoctorName:       "Dr. Okafor",
		DoctorDepartment: "Neurology",
		AppointmentDate:  "Tuesday, 1 September 2026 09:00 AM",
		Message:          "Recurring migraines",
	}
}

func TestTelegramBookingRequested(t *testing.T) {
	t.Run("posts to the bot sendMessage endpoint", func(t *testing.T) {
		var gotPath string
		var gotBody sendMessageRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		err := testTelegram(srv).BookingRequested(context.Background(), sampleBooking())
		require.NoError(t, err)

		assert.Equal(t, "/bottest-token/sendMessage", gotPath)
		assert.Equal(t, "42", gotBody.ChatID)
		assert.Contains(t, gotBody.Text, "New Appointment Request Received!")
		assert.Contains(t, gotBody.Text, "Name: Amina Diallo")
		assert.Contains(t, gotBody.Text, "Doctor: Dr. Okafor (Neurology)")
		assert.Contains(t, gotBody.Text, "Appointment Date: Tuesday, 1 September 2026 09:00 AM")
	})

	t.Run("non-200 is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"ok":false}`, http.StatusForbidden)
		}))
		defer srv.Close()

		err := testTelegram(srv).BookingRequested(context.Background(), sampleBooking())
		assert.ErrorContains(t, err, "telegram responded 403")
	})

	t.Run("context cancellation aborts the send", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Drain the body so the server watches the connection and
			// cancels r.Context() when the client aborts.
			_, _ = io.Copy(io.Discard, r.Body)
			<-r.Context().Done()
		}))
		defer srv.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		err := testTelegram(srv).BookingRequested(ctx, sampleBooking())
		assert.Error(t, err)
	})
}

func TestNopNotifier(t *testing.T) {
	assert.NoError(t, Nop{}.BookingRequested(context.Background(), sampleBooking()))
}
