package tuio

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const epsilon = 1e-4

func almostEqual(t *testing.T, name string, got, want float32) {
	t.Helper()
	if math.Abs(float64(got-want)) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

// TestCursorLifecycle is literal end-to-end scenario 1 from spec.md §8.
func TestCursorLifecycle(t *testing.T) {
	c := NewCursor(0, Position{X: 0, Y: 0})
	assert.Equal(t, float32(0), c.Acceleration)

	c.Update(time.Second, Position{X: 1, Y: 1})

	almostEqual(t, "x", c.Position.X, 1)
	almostEqual(t, "y", c.Position.Y, 1)
	almostEqual(t, "vx", c.Velocity.X, 1)
	almostEqual(t, "vy", c.Velocity.Y, 1)
	almostEqual(t, "acceleration", c.Acceleration, float32(math.Sqrt2))
}

// TestObjectUpdate is literal end-to-end scenario 2 from spec.md §8,
// matching object.rs's object_update unit test exactly.
func TestObjectUpdate(t *testing.T) {
	o := NewObject(0, 0, Position{X: 0, Y: 0}, 0)

	angle90 := float32(math.Pi / 2)
	o.Update(time.Second, Position{X: 1, Y: 1}, angle90)

	almostEqual(t, "x", o.Position.X, 1)
	almostEqual(t, "y", o.Position.Y, 1)
	almostEqual(t, "vx", o.Velocity.X, 1)
	almostEqual(t, "vy", o.Velocity.Y, 1)
	almostEqual(t, "acceleration", o.Acceleration, float32(math.Sqrt2))
	almostEqual(t, "rotation_speed", o.RotationSpeed, 0.25)
	almostEqual(t, "rotation_acceleration", o.RotationAcceleration, 0.25)
}

// TestBlobUpdate is literal end-to-end scenario 3 from spec.md §8,
// matching blob.rs's blob_update unit test exactly.
func TestBlobUpdate(t *testing.T) {
	b := NewBlob(0, Position{X: 0, Y: 0}, 0, 0.1, 0.1, 0.01)

	angle90 := float32(math.Pi / 2)
	b.Update(time.Second, Position{X: 1, Y: 1}, angle90, 0.2, 0.2, 0.04)

	almostEqual(t, "x", b.Position.X, 1)
	almostEqual(t, "y", b.Position.Y, 1)
	almostEqual(t, "width", b.Width, 0.2)
	almostEqual(t, "height", b.Height, 0.2)
	almostEqual(t, "area", b.Area, 0.04)
	almostEqual(t, "acceleration", b.Acceleration, float32(math.Sqrt2))
	almostEqual(t, "rotation_speed", b.RotationSpeed, 0.25)
	almostEqual(t, "rotation_acceleration", b.RotationAcceleration, 0.25)
}

// TestKinematicsIdempotentIdentity exercises the spec's kinematics
// invariant: updating with the same position/angle twice yields zero
// velocity, acceleration, and rotation terms.
func TestKinematicsIdempotentIdentity(t *testing.T) {
	o := NewObject(0, 0, Position{X: 0.5, Y: 0.5}, 1.0)
	o.Update(time.Second, Position{X: 0.5, Y: 0.5}, 1.0)
	o.Update(2*time.Second, Position{X: 0.5, Y: 0.5}, 1.0)

	almostEqual(t, "vx", o.Velocity.X, 0)
	almostEqual(t, "vy", o.Velocity.Y, 0)
	almostEqual(t, "acceleration", o.Acceleration, 0)
	almostEqual(t, "rotation_speed", o.RotationSpeed, 0)
	almostEqual(t, "rotation_acceleration", o.RotationAcceleration, 0)
}

func TestCursorNeverUpdatedHasZeroAcceleration(t *testing.T) {
	c := NewCursor(5, Position{X: 0.2, Y: 0.3})
	assert.Equal(t, float32(0), c.Acceleration)
	assert.Equal(t, time.Duration(0), c.Time())
}

func TestBlobPixelHelpers(t *testing.T) {
	b := NewBlob(0, Position{X: 0, Y: 0}, 0, 0.5, 0.25, 0.125)
	almostEqual(t, "pixel width", b.PixelWidth(1920), 960)
	almostEqual(t, "pixel height", b.PixelHeight(1080), 270)
}
