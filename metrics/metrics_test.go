package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersIncrement(t *testing.T) {
	Register()
	Register()

	before := testutil.ToFloat64(reservationAttempts.WithLabelValues("conflict"))
	IncReservationAttempt("conflict")
	assert.Equal(t, before+1, testutil.ToFloat64(reservationAttempts.WithLabelValues("conflict")))

	before = testutil.ToFloat64(statusTransitions.WithLabelValues("pending", "confirmed"))
	IncStatusTransition("pending", "confirmed")
	assert.Equal(t, before+1, testutil.ToFloat64(statusTransitions.WithLabelValues("pending", "confirmed")))
}
