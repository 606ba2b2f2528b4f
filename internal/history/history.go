// Package history keeps a linear log of surface snapshots for undo.
//
// Every mutating action must change the surface first and call Record
// afterwards, as one step. The log holds the state after each action, so
// undoing restores the state recorded by the previous action. Recording after
// an undo discards the undone snapshots; there is no redo.
package history

// Surface is the state holder a Controller snapshots and restores.
type Surface[S any] interface {
	Serialize() (S, error)
	Restore(S) error
	RequestRender()
}

// State is the coarse position of the cursor.
type State int

const (
	// Empty means only the initial snapshot is reachable.
	Empty State = iota
	// Populated means at least one action can be undone.
	Populated
)

func (s State) String() string {
	if s == Populated {
		return "populated"
	}
	return "empty"
}

// Controller is an append-only snapshot log with a cursor.
type Controller[S any] struct {
	surface Surface[S]
	log     []S
	cursor  int
}

// New binds a controller to a freshly created surface and records its
// initial state, so the log always starts with the empty canvas.
func New[S any](surface Surface[S]) (*Controller[S], error) {
	c := &Controller[S]{surface: surface, cursor: -1}
	if err := c.Record(); err != nil {
		return nil, err
	}
	return c, nil
}

// Record snapshots the surface and appends it after the cursor, dropping any
// snapshots beyond it. On error the log is unchanged.
func (c *Controller[S]) Record() error {
	snap, err := c.surface.Serialize()
	if err != nil {
		return err
	}
	c.log = append(c.log[:c.cursor+1], snap)
	c.cursor = len(c.log) - 1
	return nil
}

// Undo steps the cursor back and restores that snapshot. At the oldest
// snapshot it does nothing and reports false.
func (c *Controller[S]) Undo() (bool, error) {
	if c.cursor <= 0 {
		return false, nil
	}
	if err := c.surface.Restore(c.log[c.cursor-1]); err != nil {
		return false, err
	}
	c.cursor--
	c.surface.RequestRender()
	return true, nil
}

// Cursor is the index of the current snapshot, or -1 before the first Record.
func (c *Controller[S]) Cursor() int { return c.cursor }

// Len is the number of snapshots in the log.
func (c *Controller[S]) Len() int { return len(c.log) }

// Current returns the snapshot at the cursor.
func (c *Controller[S]) Current() (S, bool) {
	if c.cursor < 0 {
		var zero S
		return zero, false
	}
	return c.log[c.cursor], true
}

// State reports whether anything can be undone.
func (c *Controller[S]) State() State {
	if c.cursor > 0 {
		return Populated
	}
	return Empty
}
