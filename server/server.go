// Package server implements the TUIO message source (spec §4.4): it
// tracks live cursors, objects, and blobs, derives their kinematics on
// each update, and emits OSC bundles over one or more transport.Senders.
//
// Grounded on the teacher's single-threaded-owner style (methods assume
// the caller serializes access, as the teacher's lidar pipeline stages
// do) and its injectable clock.Clock pattern (internal/_clock_src,
// adapted into internal/clock) for deterministic tests.
package server

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/banshee-data/tuio/internal/clock"
	"github.com/banshee-data/tuio/internal/logging"
	"github.com/banshee-data/tuio/internal/ordered"
	"github.com/banshee-data/tuio/internal/osc"
	"github.com/banshee-data/tuio/transport"
	"github.com/banshee-data/tuio/tuio"
)

// defaultPeriodicInterval is the default periodic re-send interval when
// EnablePeriodicMessage is called with a nil interval (spec §4.4).
const defaultPeriodicInterval = 1 * time.Second

// minPeriodicInterval is the floor EnablePeriodicMessage clamps to.
const minPeriodicInterval = 10 * time.Millisecond

var logf = logging.For("server")

// Stats reports a snapshot of server activity, surfaced for diagnostics.
type Stats struct {
	CursorCount   int
	ObjectCount   int
	BlobCount     int
	FrameSequence int32
	SendErrors    int
}

// Server owns the live entity tables for one TUIO source and emits OSC
// bundles describing them. All methods are intended to be called from a
// single owning goroutine, mirroring the concurrency model in spec §5.
type Server struct {
	clock clock.Clock

	baseName   string
	sourceName string
	origin     string
	originSet  bool

	senders []transport.Sender

	cursors *ordered.Map[*tuio.Cursor]
	objects *ordered.Map[*tuio.Object]
	blobs   *ordered.Map[*tuio.Blob]

	dirtyCursor bool
	dirtyObject bool
	dirtyBlob   bool

	touchedCursor map[int32]bool
	touchedObject map[int32]bool
	touchedBlob   map[int32]bool

	nextSessionID int32

	fseq             int32
	lastFrameInstant time.Time
	frameElapsed     time.Duration

	fullUpdate bool

	periodicMessaging bool
	periodicInterval  time.Duration
	cursorProfiling   bool
	objectProfiling   bool
	blobProfiling     bool
	lastCursorEmit    time.Time
	lastObjectEmit    time.Time
	lastBlobEmit      time.Time

	sendErrors int
}

// Option configures a Server at construction time.
type Option func(*Server)

// WithClock injects a clock.Clock, overriding the default RealClock.
// Tests use this to control frame timing deterministically.
func WithClock(c clock.Clock) Option {
	return func(s *Server) { s.clock = c }
}

// WithFullUpdate enables full_update mode: every commit re-emits every
// live entity regardless of whether it was touched this frame.
func WithFullUpdate(full bool) Option {
	return func(s *Server) { s.fullUpdate = full }
}

// New constructs a Server identified by baseName. The source name sent
// on the wire is "<baseName>@<origin>", where origin is resolved lazily
// from the first sender added (spec §4.4).
func New(baseName string, opts ...Option) *Server {
	s := &Server{
		clock:            clock.RealClock{},
		baseName:         baseName,
		cursors:          ordered.NewMap[*tuio.Cursor](),
		objects:          ordered.NewMap[*tuio.Object](),
		blobs:            ordered.NewMap[*tuio.Blob](),
		touchedCursor:    make(map[int32]bool),
		touchedObject:    make(map[int32]bool),
		touchedBlob:      make(map[int32]bool),
		periodicInterval: defaultPeriodicInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.lastFrameInstant = s.clock.Now()
	return s
}

// AddSender registers a destination the server will broadcast bundles
// to. The first sender added determines the source origin: "local" if
// it reports IsLocal, otherwise the best-effort local host IP.
func (s *Server) AddSender(sender transport.Sender) {
	s.senders = append(s.senders, sender)
	if !s.originSet {
		s.origin = resolveOrigin(sender)
		s.originSet = true
		s.sourceName = s.baseName + "@" + s.origin
	}
}

// SetSourceName overrides the base name used to compose the wire source
// identifier.
func (s *Server) SetSourceName(name string) {
	s.baseName = name
	if s.originSet {
		s.sourceName = s.baseName + "@" + s.origin
	}
}

func resolveOrigin(sender transport.Sender) string {
	if sender.IsLocal() {
		return "local"
	}
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "unknown"
	}
	for _, a := range addrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipNet.IP.To4(); ip4 != nil {
			return ip4.String()
		}
	}
	return "unknown"
}

func (s *Server) resolvedSourceName() string {
	if s.sourceName != "" {
		return s.sourceName
	}
	return s.baseName + "@local"
}

func (s *Server) allocateID() int32 {
	id := s.nextSessionID
	s.nextSessionID++
	return id
}

// CreateCursor adds a new cursor at position and returns its session id.
func (s *Server) CreateCursor(position tuio.Position) int32 {
	id := s.allocateID()
	s.cursors.Set(id, tuio.NewCursor(id, position))
	s.touchedCursor[id] = true
	s.dirtyCursor = true
	return id
}

// UpdateCursor moves the cursor identified by id, recomputing its
// kinematics over the current frame's elapsed time. A no-op if id is not
// currently live.
func (s *Server) UpdateCursor(id int32, position tuio.Position) {
	c, ok := s.cursors.Get(id)
	if !ok {
		return
	}
	c.Update(c.Time()+s.frameElapsed, position)
	s.touchedCursor[id] = true
	s.dirtyCursor = true
}

// RemoveCursor drops the cursor identified by id. A no-op if absent.
func (s *Server) RemoveCursor(id int32) {
	if s.cursors.Delete(id) {
		delete(s.touchedCursor, id)
		s.dirtyCursor = true
	}
}

// CreateObject adds a new tagged object and returns its session id.
func (s *Server) CreateObject(classID int32, position tuio.Position, angle float32) int32 {
	id := s.allocateID()
	s.objects.Set(id, tuio.NewObject(id, classID, position, angle))
	s.touchedObject[id] = true
	s.dirtyObject = true
	return id
}

// UpdateObject moves/rotates the object identified by id. A no-op if
// absent.
func (s *Server) UpdateObject(id int32, position tuio.Position, angle float32) {
	o, ok := s.objects.Get(id)
	if !ok {
		return
	}
	o.Update(o.Time()+s.frameElapsed, position, angle)
	s.touchedObject[id] = true
	s.dirtyObject = true
}

// RemoveObject drops the object identified by id. A no-op if absent.
func (s *Server) RemoveObject(id int32) {
	if s.objects.Delete(id) {
		delete(s.touchedObject, id)
		s.dirtyObject = true
	}
}

// CreateBlob adds a new blob and returns its session id.
func (s *Server) CreateBlob(position tuio.Position, angle, width, height, area float32) int32 {
	id := s.allocateID()
	s.blobs.Set(id, tuio.NewBlob(id, position, angle, width, height, area))
	s.touchedBlob[id] = true
	s.dirtyBlob = true
	return id
}

// UpdateBlob moves/reshapes the blob identified by id. A no-op if
// absent.
func (s *Server) UpdateBlob(id int32, position tuio.Position, angle, width, height, area float32) {
	b, ok := s.blobs.Get(id)
	if !ok {
		return
	}
	b.Update(b.Time()+s.frameElapsed, position, angle, width, height, area)
	s.touchedBlob[id] = true
	s.dirtyBlob = true
}

// RemoveBlob drops the blob identified by id. A no-op if absent.
func (s *Server) RemoveBlob(id int32) {
	if s.blobs.Delete(id) {
		delete(s.touchedBlob, id)
		s.dirtyBlob = true
	}
}

// InitFrame captures the elapsed time since the previous frame and
// advances the frame sequence counter. Call once per application frame
// before issuing Update* calls.
func (s *Server) InitFrame() {
	now := s.clock.Now()
	s.frameElapsed = now.Sub(s.lastFrameInstant)
	s.lastFrameInstant = now
	s.fseq++
}

// CommitFrame emits an OSC bundle per profile that is dirty, or whose
// periodic-messaging interval has elapsed while its profiling flag is
// enabled. Dirty flags are cleared for any profile emitted.
func (s *Server) CommitFrame() error {
	now := s.clock.Now()
	var errs []error

	if s.dirtyCursor || s.periodicDue(ProfileCursorKind, now) {
		if err := s.emitCursors(false); err != nil {
			errs = append(errs, err)
		}
		s.dirtyCursor = false
		s.lastCursorEmit = now
	}
	if s.dirtyObject || s.periodicDue(ProfileObjectKind, now) {
		if err := s.emitObjects(false); err != nil {
			errs = append(errs, err)
		}
		s.dirtyObject = false
		s.lastObjectEmit = now
	}
	if s.dirtyBlob || s.periodicDue(ProfileBlobKind, now) {
		if err := s.emitBlobs(false); err != nil {
			errs = append(errs, err)
		}
		s.dirtyBlob = false
		s.lastBlobEmit = now
	}

	return errors.Join(errs...)
}

// profileKind distinguishes the three TUIO profiles for periodic-timer
// bookkeeping.
type profileKind int

const (
	ProfileCursorKind profileKind = iota
	ProfileObjectKind
	ProfileBlobKind
)

func (s *Server) periodicDue(kind profileKind, now time.Time) bool {
	if !s.periodicMessaging {
		return false
	}
	switch kind {
	case ProfileCursorKind:
		return s.cursorProfiling && now.Sub(s.lastCursorEmit) >= s.periodicInterval
	case ProfileObjectKind:
		return s.objectProfiling && now.Sub(s.lastObjectEmit) >= s.periodicInterval
	case ProfileBlobKind:
		return s.blobProfiling && now.Sub(s.lastBlobEmit) >= s.periodicInterval
	default:
		return false
	}
}

// SendFullMessages force-emits a bundle for all three profiles
// regardless of dirty or periodic state.
func (s *Server) SendFullMessages() error {
	errs := []error{
		s.emitCursors(true),
		s.emitObjects(true),
		s.emitBlobs(true),
	}
	s.dirtyCursor, s.dirtyObject, s.dirtyBlob = false, false, false
	return errors.Join(errs...)
}

// EnablePeriodicMessage turns on periodic re-sending. A nil interval
// uses defaultPeriodicInterval; any interval below minPeriodicInterval
// is clamped up to it.
func (s *Server) EnablePeriodicMessage(interval *time.Duration) {
	s.periodicMessaging = true
	s.cursorProfiling, s.objectProfiling, s.blobProfiling = true, true, true
	if interval == nil {
		s.periodicInterval = defaultPeriodicInterval
		return
	}
	if *interval < minPeriodicInterval {
		s.periodicInterval = minPeriodicInterval
		return
	}
	s.periodicInterval = *interval
}

// DisablePeriodicMessage turns off periodic re-sending; only dirty
// profiles will be emitted on CommitFrame thereafter.
func (s *Server) DisablePeriodicMessage() {
	s.periodicMessaging = false
}

func (s *Server) aliveCursorIDs() []int32 { return s.cursors.Keys() }
func (s *Server) aliveObjectIDs() []int32 { return s.objects.Keys() }
func (s *Server) aliveBlobIDs() []int32   { return s.blobs.Keys() }

// includeCursor reports whether id's set record belongs in this emit,
// per the full_update selection mode (spec §4.4): full_update emits
// every live entity every time, otherwise only entities touched since
// the last emit of this profile.
func (s *Server) includeCursor(id int32, forceAll bool) bool {
	return forceAll || s.fullUpdate || s.touchedCursor[id]
}
func (s *Server) includeObject(id int32, forceAll bool) bool {
	return forceAll || s.fullUpdate || s.touchedObject[id]
}
func (s *Server) includeBlob(id int32, forceAll bool) bool {
	return forceAll || s.fullUpdate || s.touchedBlob[id]
}

func (s *Server) emitCursors(forceAll bool) error {
	sets := make([]osc.CursorParams, 0, s.cursors.Len())
	for _, c := range s.cursors.Values() {
		if !s.includeCursor(c.SessionID, forceAll) {
			continue
		}
		sets = append(sets, osc.CursorParams{
			SessionID: c.SessionID, X: c.Position.X, Y: c.Position.Y,
			VX: c.Velocity.X, VY: c.Velocity.Y, Accel: c.Acceleration,
		})
	}
	bundle := osc.EncodeCursorBundle(s.resolvedSourceName(), s.aliveCursorIDs(), sets, s.fseq)
	s.touchedCursor = make(map[int32]bool)
	return s.broadcast(bundle)
}

func (s *Server) emitObjects(forceAll bool) error {
	sets := make([]osc.ObjectParams, 0, s.objects.Len())
	for _, o := range s.objects.Values() {
		if !s.includeObject(o.SessionID, forceAll) {
			continue
		}
		sets = append(sets, osc.ObjectParams{
			SessionID: o.SessionID, ClassID: o.ClassID, X: o.Position.X, Y: o.Position.Y, Angle: o.Angle,
			VX: o.Velocity.X, VY: o.Velocity.Y, RotationSpeed: o.RotationSpeed,
			Accel: o.Acceleration, RotationAccel: o.RotationAcceleration,
		})
	}
	bundle := osc.EncodeObjectBundle(s.resolvedSourceName(), s.aliveObjectIDs(), sets, s.fseq)
	s.touchedObject = make(map[int32]bool)
	return s.broadcast(bundle)
}

func (s *Server) emitBlobs(forceAll bool) error {
	sets := make([]osc.BlobParams, 0, s.blobs.Len())
	for _, b := range s.blobs.Values() {
		if !s.includeBlob(b.SessionID, forceAll) {
			continue
		}
		sets = append(sets, osc.BlobParams{
			SessionID: b.SessionID, X: b.Position.X, Y: b.Position.Y, Angle: b.Angle,
			Width: b.Width, Height: b.Height, Area: b.Area,
			VX: b.Velocity.X, VY: b.Velocity.Y, RotationSpeed: b.RotationSpeed,
			Accel: b.Acceleration, RotationAccel: b.RotationAcceleration,
		})
	}
	bundle := osc.EncodeBlobBundle(s.resolvedSourceName(), s.aliveBlobIDs(), sets, s.fseq)
	s.touchedBlob = make(map[int32]bool)
	return s.broadcast(bundle)
}

func (s *Server) broadcast(bundle osc.Bundle) error {
	wire, err := bundle.Marshal()
	if err != nil {
		return fmt.Errorf("server: marshal bundle: %w", err)
	}
	var errs []error
	for _, sender := range s.senders {
		if err := sender.Send(wire); err != nil {
			s.sendErrors++
			errs = append(errs, fmt.Errorf("server: send: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Shutdown emits goodbye bundles (empty alive set, fseq -1) for every
// profile, in the order 2Dobj, 2Dcur, 2Dblb, then drops the entity
// tables. Send failures during shutdown are logged and ignored rather
// than returned, since there is no way to act on them once the process
// is tearing down (spec §7 deviates here from the original's
// panic-on-send-error behavior).
func (s *Server) Shutdown() {
	goodbye := []func() error{
		func() error {
			return s.broadcast(osc.EncodeObjectBundle(s.resolvedSourceName(), nil, nil, -1))
		},
		func() error {
			return s.broadcast(osc.EncodeCursorBundle(s.resolvedSourceName(), nil, nil, -1))
		},
		func() error {
			return s.broadcast(osc.EncodeBlobBundle(s.resolvedSourceName(), nil, nil, -1))
		},
	}
	for _, emit := range goodbye {
		if err := emit(); err != nil {
			logf("shutdown bundle send failed, ignoring: %v", err)
		}
	}
	s.cursors = ordered.NewMap[*tuio.Cursor]()
	s.objects = ordered.NewMap[*tuio.Object]()
	s.blobs = ordered.NewMap[*tuio.Blob]()
}

// Stats returns a snapshot of current server activity.
func (s *Server) Stats() Stats {
	return Stats{
		CursorCount:   s.cursors.Len(),
		ObjectCount:   s.objects.Len(),
		BlobCount:     s.blobs.Len(),
		FrameSequence: s.fseq,
		SendErrors:    s.sendErrors,
	}
}
