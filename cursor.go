package directory

import "iter"

// cursorState tracks the cursor position lifecycle.
type cursorState int

const (
	cursorBeforeStart cursorState = iota // No entry visited yet
	cursorPositioned                     // Exactly one current entry
	cursorExhausted                      // Past the last entry, or failed
)

// Cursor is a single-pass, forward-only iterator over a ResultSet. Each call
// to Next lazily hydrates one entry through the cursor's HydrateFunc.
//
// A fresh cursor starts before the first entry: Valid reports false until the
// first successful Next. Next past the last entry parks the cursor in an
// exhausted state where further Next calls are no-ops.
//
// Cursors are not safe for concurrent use.
type Cursor[E any] struct {
	set     *ResultSet
	hydrate HydrateFunc[E]

	state   cursorState
	pos     int
	key     string
	current E
	err     error
}

// NewCursor returns a cursor producing generic *Entry values.
func NewCursor(set *ResultSet) *Cursor[*Entry] {
	return NewCursorFunc(set, HydrateEntry)
}

// NewCursorFunc returns a cursor producing entries hydrated by fn.
func NewCursorFunc[E any](set *ResultSet, fn HydrateFunc[E]) *Cursor[E] {
	return &Cursor[E]{
		set:     set,
		hydrate: fn,
	}
}

// position hydrates the entry at i and makes it current. A hydration failure
// exhausts the cursor and is reported through Err.
func (c *Cursor[E]) position(i int) bool {
	raw := c.set.entry(i)

	entry, err := c.hydrate(raw)
	if err != nil {
		c.exhaust()
		c.err = err
		return false
	}

	c.state = cursorPositioned
	c.pos = i
	c.key = raw.DN
	c.current = entry
	return true
}

// exhaust parks the cursor past the end, clearing the current entry.
func (c *Cursor[E]) exhaust() {
	c.state = cursorExhausted
	c.clearCurrent()
}

// Next advances to the following entry and reports whether one is current
// afterwards. The first call from a fresh or rewound cursor positions at the
// first entry. Calling Next on an exhausted cursor stays exhausted.
func (c *Cursor[E]) Next() bool {
	switch c.state {
	case cursorBeforeStart:
		if c.set == nil || c.set.Released() || c.set.Len() == 0 {
			c.exhaust()
			return false
		}
		return c.position(0)
	case cursorPositioned:
		if c.pos+1 >= c.set.Len() {
			c.exhaust()
			return false
		}
		return c.position(c.pos + 1)
	default:
		return false
	}
}

// Rewind restarts iteration over the bound set, transitioning straight to
// the first entry, or to exhausted when the set is empty. It clears any
// hydration error from a previous pass.
func (c *Cursor[E]) Rewind() bool {
	c.state = cursorBeforeStart
	c.err = nil
	return c.Next()
}

// Reset releases the currently bound ResultSet and rebinds the cursor onto
// set, positioned before its first entry. The old set's entries are freed
// before the new one is adopted.
func (c *Cursor[E]) Reset(set *ResultSet) {
	c.set.Release()
	c.set = set
	c.state = cursorBeforeStart
	c.pos = 0
	c.err = nil
	c.clearCurrent()
}

// clearCurrent drops the current entry without changing state.
func (c *Cursor[E]) clearCurrent() {
	var zero E
	c.key = ""
	c.current = zero
}

// Valid reports whether the cursor has a current entry.
func (c *Cursor[E]) Valid() bool {
	return c.state == cursorPositioned
}

// Key returns the current entry's distinguished name, or "" when the cursor
// has no current entry.
func (c *Cursor[E]) Key() string {
	return c.key
}

// Current returns the hydrated current entry. The second return value is
// false when the cursor has no current entry; callers must check it before
// using the entry.
func (c *Cursor[E]) Current() (E, bool) {
	if c.state != cursorPositioned {
		var zero E
		return zero, false
	}
	return c.current, true
}

// Err returns the hydration error that exhausted the cursor, if any.
func (c *Cursor[E]) Err() error {
	return c.err
}

// Close releases the bound ResultSet. The cursor is exhausted afterwards.
func (c *Cursor[E]) Close() {
	c.set.Release()
	c.exhaust()
}

// All returns a DN-keyed iterator over the remaining entries, driving the
// same single-pass state machine. Breaking out of the range loop leaves the
// cursor positioned at the last yielded entry.
func (c *Cursor[E]) All() iter.Seq2[string, E] {
	return func(yield func(string, E) bool) {
		for c.Next() {
			if !yield(c.key, c.current) {
				return
			}
		}
	}
}
