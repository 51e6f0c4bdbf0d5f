package tuio

// EventKind distinguishes a New, Update, or Remove event.
type EventKind int

const (
	// EventNew is emitted the first time an id is seen in a committed
	// "set" record.
	EventNew EventKind = iota
	// EventUpdate is emitted when a subsequent "set" record replaces an
	// already-known entity.
	EventUpdate
	// EventRemove is emitted when an id present in the map is absent
	// from a newly-accepted "alive" set.
	EventRemove
)

func (k EventKind) String() string {
	switch k {
	case EventNew:
		return "New"
	case EventUpdate:
		return "Update"
	case EventRemove:
		return "Remove"
	default:
		return "Unknown"
	}
}

// CursorEvent carries a New/Update/Remove transition for one cursor,
// tagged with the source it arrived from.
type CursorEvent struct {
	Kind       EventKind
	SourceName string
	Cursor     *Cursor
}

// ObjectEvent carries a New/Update/Remove transition for one object,
// tagged with the source it arrived from.
type ObjectEvent struct {
	Kind       EventKind
	SourceName string
	Object     *Object
}

// BlobEvent carries a New/Update/Remove transition for one blob, tagged
// with the source it arrived from.
type BlobEvent struct {
	Kind       EventKind
	SourceName string
	Blob       *Blob
}

// Events aggregates every event produced by a single Client.Refresh call.
// Within each slice, events are ordered per spec §5: all Removes first (in
// the insertion order of the displaced map entries), then New/Update
// events in the order they appeared in the incoming bundle's set records.
type Events struct {
	CursorEvents []CursorEvent
	ObjectEvents []ObjectEvent
	BlobEvents   []BlobEvent
}

// Empty reports whether no events were produced.
func (e *Events) Empty() bool {
	return e == nil || (len(e.CursorEvents) == 0 && len(e.ObjectEvents) == 0 && len(e.BlobEvents) == 0)
}
