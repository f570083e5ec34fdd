package session

// Closer is a row that can be told to close its revealed actions.
type Closer interface {
	Close()
}

// SwipeCoordinator tracks the one row of a list that is swiped open.
// Every row of the list shares the same coordinator; opening a row closes the
// previous one. Separate lists use separate coordinators.
type SwipeCoordinator[K comparable] struct {
	open   K
	isOpen bool
	rows   map[K]Closer
}

// NewSwipeCoordinator returns a coordinator with no open row.
func NewSwipeCoordinator[K comparable]() *SwipeCoordinator[K] {
	return &SwipeCoordinator[K]{rows: make(map[K]Closer)}
}

// Register attaches the row that owns key.
func (c *SwipeCoordinator[K]) Register(key K, row Closer) {
	c.rows[key] = row
}

// Unregister detaches key. If key held the open slot the slot is cleared
// without issuing a close; the row is gone.
func (c *SwipeCoordinator[K]) Unregister(key K) {
	delete(c.rows, key)
	if c.isOpen && c.open == key {
		c.clear()
	}
}

// RequestOpen makes key the open row. A different row holding the slot is
// closed first. Last requester wins.
func (c *SwipeCoordinator[K]) RequestOpen(key K) {
	if c.isOpen && c.open != key {
		prev := c.open
		c.clear()
		if row, ok := c.rows[prev]; ok {
			row.Close()
		}
	}
	c.open = key
	c.isOpen = true
}

// NotifyClosed clears the slot if key holds it.
func (c *SwipeCoordinator[K]) NotifyClosed(key K) {
	if c.isOpen && c.open == key {
		c.clear()
	}
}

// Open returns the open row's key.
func (c *SwipeCoordinator[K]) Open() (K, bool) {
	return c.open, c.isOpen
}

// CloseAll closes the open row, if any, and clears the slot.
func (c *SwipeCoordinator[K]) CloseAll() {
	if !c.isOpen {
		return
	}
	prev := c.open
	c.clear()
	if row, ok := c.rows[prev]; ok {
		row.Close()
	}
}

func (c *SwipeCoordinator[K]) clear() {
	var zero K
	c.open = zero
	c.isOpen = false
}
