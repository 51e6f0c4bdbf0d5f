package tuio

import "time"

// Cursor is a TUIO 2Dcur entity: a bare touch point with no orientation.
type Cursor struct {
	SessionID    int32
	Position     Position
	Velocity     Velocity
	Acceleration float32

	// time is the frame timestamp of the most recent update, used to
	// compute deltaT on the next update. It is zero for a never-updated
	// cursor.
	time time.Duration
}

// NewCursor constructs a Cursor at the given position, not yet updated.
func NewCursor(sessionID int32, position Position) *Cursor {
	return &Cursor{SessionID: sessionID, Position: position}
}

// Update applies the kinematics formulas in spec §4.1 for a new sample at
// frame time t. If deltaT (t - previous update time) is zero, the
// position is replaced but velocity/acceleration are left unchanged, per
// the invariant that derivation may be skipped when no observable update
// occurred.
func (c *Cursor) Update(t time.Duration, position Position) {
	deltaT := float32((t - c.time).Seconds())
	if deltaT <= 0 {
		c.Position = position
		c.time = t
		return
	}

	m := motion{position: c.Position, velocity: c.Velocity}
	m.updateLinear(position, deltaT)

	c.Position = m.position
	c.Velocity = m.velocity
	c.Acceleration = m.acceleration
	c.time = t
}

// Time returns the frame timestamp of the most recent update.
func (c *Cursor) Time() time.Duration { return c.time }

// ApplyState overwrites every field directly, without deriving
// velocity/acceleration locally. This is how a received cursor is
// hydrated from a decoded wire message: the sending source already
// computed the kinematics, so the client only replays them, mirroring
// the original implementation's update_from_params (spec §4.5).
func (c *Cursor) ApplyState(t time.Duration, position Position, velocity Velocity, acceleration float32) {
	c.time = t
	c.Position = position
	c.Velocity = velocity
	c.Acceleration = acceleration
}

// Clone returns a deep copy of the cursor, used for the event payload's
// stable-snapshot guarantee.
func (c *Cursor) Clone() *Cursor {
	clone := *c
	return &clone
}
