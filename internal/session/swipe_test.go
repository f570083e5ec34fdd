package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeRow struct {
	closed int
}

func (r *fakeRow) Close() { r.closed++ }

// TestSwipeOpeningSecondRowClosesFirst verifies the exclusive open slot.
func TestSwipeOpeningSecondRowClosesFirst(t *testing.T) {
	c := NewSwipeCoordinator[int]()
	a, b := &fakeRow{}, &fakeRow{}
	c.Register(1, a)
	c.Register(2, b)

	c.RequestOpen(1)
	open, ok := c.Open()
	assert.True(t, ok)
	assert.Equal(t, 1, open)

	c.RequestOpen(2)
	open, _ = c.Open()
	assert.Equal(t, 2, open)
	assert.Equal(t, 1, a.closed)
	assert.Equal(t, 0, b.closed)

	// Re-opening the holder does not close it.
	c.RequestOpen(2)
	assert.Equal(t, 0, b.closed)
}

// TestSwipeNotifyClosedOnlyClearsHolder verifies a stale close notification
// from a row that lost the slot is ignored.
func TestSwipeNotifyClosedOnlyClearsHolder(t *testing.T) {
	c := NewSwipeCoordinator[string]()
	c.RequestOpen("a")
	c.RequestOpen("b")

	c.NotifyClosed("a")
	open, ok := c.Open()
	assert.True(t, ok)
	assert.Equal(t, "b", open)

	c.NotifyClosed("b")
	_, ok = c.Open()
	assert.False(t, ok)
}

func TestSwipeUnregisterAndCloseAll(t *testing.T) {
	c := NewSwipeCoordinator[int]()
	a := &fakeRow{}
	c.Register(1, a)

	c.RequestOpen(1)
	c.CloseAll()
	assert.Equal(t, 1, a.closed)
	_, ok := c.Open()
	assert.False(t, ok)

	c.RequestOpen(1)
	c.Unregister(1)
	_, ok = c.Open()
	assert.False(t, ok)
	assert.Equal(t, 1, a.closed, "unregister must not close a removed row")

	// Opening after the previous holder was removed closes nothing.
	c.RequestOpen(5)
	c.RequestOpen(6)
	open, _ := c.Open()
	assert.Equal(t, 6, open)
}

// TestSwipeCoordinatorsAreIndependent verifies two lists never interfere.
func TestSwipeCoordinatorsAreIndependent(t *testing.T) {
	modal, active := NewSwipeCoordinator[int](), NewSwipeCoordinator[int]()
	a, b := &fakeRow{}, &fakeRow{}
	modal.Register(1, a)
	active.Register(1, b)

	modal.RequestOpen(1)
	active.RequestOpen(1)

	_, ok := modal.Open()
	assert.True(t, ok)
	assert.Zero(t, a.closed)
	assert.Zero(t, b.closed)
}
