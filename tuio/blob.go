package tuio

import "time"

// Blob is a TUIO 2Dblb entity: an unclassified region with extent, in
// place of Object's ClassID.
type Blob struct {
	SessionID            int32
	Position             Position
	Angle                float32
	Width                float32 // normalized [0,1]
	Height               float32 // normalized [0,1]
	Area                 float32 // normalized [0,1]
	Velocity             Velocity
	RotationSpeed        float32
	Acceleration         float32
	RotationAcceleration float32

	time time.Duration
}

// NewBlob constructs a Blob at the given pose and extent, not yet updated.
func NewBlob(sessionID int32, position Position, angle, width, height, area float32) *Blob {
	return &Blob{SessionID: sessionID, Position: position, Angle: angle, Width: width, Height: height, Area: area}
}

// Update applies the kinematics formulas in spec §4.1. Width/height/area
// are replaced outright; they carry no derived motion of their own.
func (b *Blob) Update(t time.Duration, position Position, angle, width, height, area float32) {
	deltaT := float32((t - b.time).Seconds())
	b.Width = width
	b.Height = height
	b.Area = area

	if deltaT <= 0 {
		b.Position = position
		b.Angle = angle
		b.time = t
		return
	}

	m := motion{
		position:      b.Position,
		velocity:      b.Velocity,
		angle:         b.Angle,
		rotationSpeed: b.RotationSpeed,
	}
	m.updateAngular(position, angle, deltaT)

	b.Position = m.position
	b.Velocity = m.velocity
	b.Acceleration = m.acceleration
	b.Angle = m.angle
	b.RotationSpeed = m.rotationSpeed
	b.RotationAcceleration = m.rotationAcceleration
	b.time = t
}

// Time returns the frame timestamp of the most recent update.
func (b *Blob) Time() time.Duration { return b.time }

// ApplyState overwrites every field directly from an already-computed
// wire sample, without re-deriving velocity/rotation locally. Mirrors
// the original implementation's Blob::update_from_params (spec §4.5).
func (b *Blob) ApplyState(t time.Duration, position Position, angle, width, height, area float32, velocity Velocity, rotationSpeed, acceleration, rotationAcceleration float32) {
	b.time = t
	b.Position = position
	b.Angle = angle
	b.Width = width
	b.Height = height
	b.Area = area
	b.Velocity = velocity
	b.RotationSpeed = rotationSpeed
	b.Acceleration = acceleration
	b.RotationAcceleration = rotationAcceleration
}

// Clone returns a deep copy of the blob, used for the event payload's
// stable-snapshot guarantee.
func (b *Blob) Clone() *Blob {
	clone := *b
	return &clone
}

// PixelWidth converts the normalized Width to pixel units given a surface
// width. Supplements the distilled spec; grounded on blob.rs's
// get_pixel_width, dropped from the distillation.
func (b *Blob) PixelWidth(surfaceWidth float32) float32 {
	return b.Width * surfaceWidth
}

// PixelHeight converts the normalized Height to pixel units given a
// surface height. Supplements the distilled spec; grounded on blob.rs's
// get_pixel_height, dropped from the distillation.
func (b *Blob) PixelHeight(surfaceHeight float32) float32 {
	return b.Height * surfaceHeight
}
