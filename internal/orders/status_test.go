package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusPending, StatusPaid},
		{StatusPending, StatusCancelled},
		{StatusPaid, StatusShipped},
		{StatusPaid, StatusCancelled},
		{StatusShipped, StatusDelivered},
	}
	for _, tc := range allowed {
		assert.True(t, CanTransition(tc.from, tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}

	denied := []struct{ from, to Status }{
		{StatusPending, StatusShipped},
		{StatusPending, StatusDelivered},
		{StatusPaid, StatusPending},
		{StatusPaid, StatusDelivered},
		{StatusShipped, StatusCancelled},
		{StatusShipped, StatusPaid},
		{StatusDelivered, StatusPending},
		{StatusDelivered, StatusCancelled},
		{StatusCancelled, StatusPending},
		{StatusCancelled, StatusPaid},
		{StatusPending, StatusPending},
	}
	for _, tc := range denied {
		assert.False(t, CanTransition(tc.from, tc.to), "%s -> %s should be rejected", tc.from, tc.to)
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusPaid, StatusShipped, StatusDelivered, StatusCancelled} {
		assert.True(t, ValidStatus(s))
	}
	assert.False(t, ValidStatus(Status("REFUNDED")))
	assert.False(t, ValidStatus(Status("")))
}
