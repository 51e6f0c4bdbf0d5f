package client

import (
	"time"

	"github.com/banshee-data/tuio/internal/ordered"
	"github.com/banshee-data/tuio/internal/osc"
	"github.com/banshee-data/tuio/tuio"
)

// removeStale deletes every id currently in m that is absent from
// toKeep, appending a Remove event (carrying the entity's last known
// state) for each, in the map's existing insertion order.
func removeStale[V interface{ Clone() V }](m *ordered.Map[V], toKeep map[int32]bool, emit func(id int32, last V)) {
	var removed []int32
	for _, id := range m.Keys() {
		if !toKeep[id] {
			removed = append(removed, id)
		}
	}
	for _, id := range removed {
		last, _ := m.Get(id)
		emit(id, last.Clone())
		m.Delete(id)
	}
}

func reconcileCursors(m *ordered.Map[*tuio.Cursor], toKeep map[int32]bool, sets []osc.CursorParams, source string, t time.Duration, events *tuio.Events) {
	removeStale(m, toKeep, func(id int32, last *tuio.Cursor) {
		events.CursorEvents = append(events.CursorEvents, tuio.CursorEvent{Kind: tuio.EventRemove, SourceName: source, Cursor: last})
	})

	for _, p := range sets {
		velocity := tuio.Velocity{X: p.VX, Y: p.VY}
		position := tuio.Position{X: p.X, Y: p.Y}
		if existing, ok := m.Get(p.SessionID); ok {
			existing.ApplyState(t, position, velocity, p.Accel)
			events.CursorEvents = append(events.CursorEvents, tuio.CursorEvent{Kind: tuio.EventUpdate, SourceName: source, Cursor: existing.Clone()})
			continue
		}
		c := tuio.NewCursor(p.SessionID, position)
		c.ApplyState(t, position, velocity, p.Accel)
		m.Set(p.SessionID, c)
		events.CursorEvents = append(events.CursorEvents, tuio.CursorEvent{Kind: tuio.EventNew, SourceName: source, Cursor: c.Clone()})
	}
}

func reconcileObjects(m *ordered.Map[*tuio.Object], toKeep map[int32]bool, sets []osc.ObjectParams, source string, t time.Duration, events *tuio.Events) {
	removeStale(m, toKeep, func(id int32, last *tuio.Object) {
		events.ObjectEvents = append(events.ObjectEvents, tuio.ObjectEvent{Kind: tuio.EventRemove, SourceName: source, Object: last})
	})

	for _, p := range sets {
		velocity := tuio.Velocity{X: p.VX, Y: p.VY}
		position := tuio.Position{X: p.X, Y: p.Y}
		if existing, ok := m.Get(p.SessionID); ok {
			existing.ApplyState(t, p.ClassID, position, p.Angle, velocity, p.RotationSpeed, p.Accel, p.RotationAccel)
			events.ObjectEvents = append(events.ObjectEvents, tuio.ObjectEvent{Kind: tuio.EventUpdate, SourceName: source, Object: existing.Clone()})
			continue
		}
		o := tuio.NewObject(p.SessionID, p.ClassID, position, p.Angle)
		o.ApplyState(t, p.ClassID, position, p.Angle, velocity, p.RotationSpeed, p.Accel, p.RotationAccel)
		m.Set(p.SessionID, o)
		events.ObjectEvents = append(events.ObjectEvents, tuio.ObjectEvent{Kind: tuio.EventNew, SourceName: source, Object: o.Clone()})
	}
}

func reconcileBlobs(m *ordered.Map[*tuio.Blob], toKeep map[int32]bool, sets []osc.BlobParams, source string, t time.Duration, events *tuio.Events) {
	removeStale(m, toKeep, func(id int32, last *tuio.Blob) {
		events.BlobEvents = append(events.BlobEvents, tuio.BlobEvent{Kind: tuio.EventRemove, SourceName: source, Blob: last})
	})

	for _, p := range sets {
		velocity := tuio.Velocity{X: p.VX, Y: p.VY}
		position := tuio.Position{X: p.X, Y: p.Y}
		if existing, ok := m.Get(p.SessionID); ok {
			existing.ApplyState(t, position, p.Angle, p.Width, p.Height, p.Area, velocity, p.RotationSpeed, p.Accel, p.RotationAccel)
			events.BlobEvents = append(events.BlobEvents, tuio.BlobEvent{Kind: tuio.EventUpdate, SourceName: source, Blob: existing.Clone()})
			continue
		}
		b := tuio.NewBlob(p.SessionID, position, p.Angle, p.Width, p.Height, p.Area)
		b.ApplyState(t, position, p.Angle, p.Width, p.Height, p.Area, velocity, p.RotationSpeed, p.Accel, p.RotationAccel)
		m.Set(p.SessionID, b)
		events.BlobEvents = append(events.BlobEvents, tuio.BlobEvent{Kind: tuio.EventNew, SourceName: source, Blob: b.Clone()})
	}
}
