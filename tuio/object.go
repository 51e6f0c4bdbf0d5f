package tuio

import "time"

// Object is a TUIO 2Dobj entity: a classified, oriented fiducial marker.
type Object struct {
	SessionID            int32
	ClassID              int32
	Position             Position
	Angle                float32
	Velocity             Velocity
	RotationSpeed        float32
	Acceleration         float32
	RotationAcceleration float32

	time time.Duration
}

// NewObject constructs an Object at the given pose, not yet updated.
func NewObject(sessionID, classID int32, position Position, angle float32) *Object {
	return &Object{SessionID: sessionID, ClassID: classID, Position: position, Angle: angle}
}

// Update applies the kinematics formulas in spec §4.1, including the
// rotation-speed and rotation-acceleration derivation. Angle subtraction
// is raw (no wrap handling), per the spec's preserved source behavior.
func (o *Object) Update(t time.Duration, position Position, angle float32) {
	deltaT := float32((t - o.time).Seconds())
	if deltaT <= 0 {
		o.Position = position
		o.Angle = angle
		o.time = t
		return
	}

	m := motion{
		position:      o.Position,
		velocity:      o.Velocity,
		angle:         o.Angle,
		rotationSpeed: o.RotationSpeed,
	}
	m.updateAngular(position, angle, deltaT)

	o.Position = m.position
	o.Velocity = m.velocity
	o.Acceleration = m.acceleration
	o.Angle = m.angle
	o.RotationSpeed = m.rotationSpeed
	o.RotationAcceleration = m.rotationAcceleration
	o.time = t
}

// Time returns the frame timestamp of the most recent update.
func (o *Object) Time() time.Duration { return o.time }

// ApplyState overwrites every field directly from an already-computed
// wire sample, without re-deriving velocity/rotation locally. Mirrors
// the original implementation's Object::update_from_params (spec §4.5).
func (o *Object) ApplyState(t time.Duration, classID int32, position Position, angle float32, velocity Velocity, rotationSpeed, acceleration, rotationAcceleration float32) {
	o.time = t
	o.ClassID = classID
	o.Position = position
	o.Angle = angle
	o.Velocity = velocity
	o.RotationSpeed = rotationSpeed
	o.Acceleration = acceleration
	o.RotationAcceleration = rotationAcceleration
}

// Clone returns a deep copy of the object, used for the event payload's
// stable-snapshot guarantee.
func (o *Object) Clone() *Object {
	clone := *o
	return &clone
}
