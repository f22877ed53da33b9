package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(n int) time.Time {
	return time.Date(2026, 9, n, 0, 0, 0, 0, time.UTC)
}

func TestBookingStatusTerminal(t *testing.T) {
	assert.False(t, BookingPending.Terminal())
	assert.False(t, BookingActive.Terminal())
	assert.True(t, BookingRejected.Terminal())
	assert.True(t, BookingCancelled.Terminal())
	assert.True(t, BookingAnnulled.Terminal())
}

func TestBookingOverlaps(t *testing.T) {
	b := &Booking{StartDate: day(10), EndDate: day(20)}

	assert.True(t, b.Overlaps(day(15), day(25)), "partial overlap at the end")
	assert.True(t, b.Overlaps(day(5), day(15)), "partial overlap at the start")
	assert.True(t, b.Overlaps(day(12), day(14)), "contained range")
	assert.True(t, b.Overlaps(day(5), day(25)), "containing range")

	// Half-open intervals: checkout day equals checkin day of the next stay.
	assert.False(t, b.Overlaps(day(20), day(25)))
	assert.False(t, b.Overlaps(day(5), day(10)))
	assert.False(t, b.Overlaps(day(1), day(5)))
}

func TestBookingDays(t *testing.T) {
	b := &Booking{StartDate: day(1), EndDate: day(11)}
	assert.Equal(t, 10, b.Days())
}
