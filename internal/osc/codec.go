package osc

// Profile identifies which TUIO 2D profile a bundle belongs to.
type Profile int

const (
	ProfileUnknown Profile = iota
	ProfileCursor
	ProfileObject
	ProfileBlob
)

// Address returns the OSC address pattern for the profile.
func (p Profile) Address() string {
	switch p {
	case ProfileCursor:
		return "/tuio/2Dcur"
	case ProfileObject:
		return "/tuio/2Dobj"
	case ProfileBlob:
		return "/tuio/2Dblb"
	default:
		return ""
	}
}

// profileForAddress maps an OSC address to its Profile, ProfileUnknown if
// it does not match one of the three TUIO 2D patterns.
func profileForAddress(addr string) Profile {
	switch addr {
	case "/tuio/2Dcur":
		return ProfileCursor
	case "/tuio/2Dobj":
		return ProfileObject
	case "/tuio/2Dblb":
		return ProfileBlob
	default:
		return ProfileUnknown
	}
}

// CursorParams is the 2Dcur "set" record: session id plus position,
// velocity, and acceleration.
type CursorParams struct {
	SessionID int32
	X, Y      float32
	VX, VY    float32
	Accel     float32
}

// ObjectParams is the 2Dobj "set" record: session id, class id, pose, and
// derived motion.
type ObjectParams struct {
	SessionID, ClassID int32
	X, Y, Angle        float32
	VX, VY             float32
	RotationSpeed      float32
	Accel              float32
	RotationAccel      float32
}

// BlobParams is the 2Dblb "set" record: session id, pose, extent, and
// derived motion.
type BlobParams struct {
	SessionID           int32
	X, Y, Angle         float32
	Width, Height, Area float32
	VX, VY              float32
	RotationSpeed       float32
	Accel               float32
	RotationAccel       float32
}

// DecodedBundle is the decoder's output, per spec §4.3.
type DecodedBundle struct {
	Profile Profile
	Source  string
	Alive   []int32
	HasSet  bool
	Cursors []CursorParams
	Objects []ObjectParams
	Blobs   []BlobParams
	FSeq    int32
}

func buildMessage(addr, tag string, args ...Argument) Message {
	return Message{Address: addr, Args: append([]Argument{String(tag)}, args...)}
}

// EncodeCursorBundle builds an OSC bundle for the 2Dcur profile: source,
// alive, one set message per entry in sets (in order), then fseq.
func EncodeCursorBundle(source string, alive []int32, sets []CursorParams, fseq int32) Bundle {
	addr := ProfileCursor.Address()
	msgs := []Message{
		buildMessage(addr, "source", String(source)),
		buildMessage(addr, "alive", intArgs(alive)...),
	}
	for _, s := range sets {
		msgs = append(msgs, buildMessage(addr, "set",
			Int(s.SessionID), Float(s.X), Float(s.Y), Float(s.VX), Float(s.VY), Float(s.Accel)))
	}
	msgs = append(msgs, buildMessage(addr, "fseq", Int(fseq)))
	return Bundle{Timetag: Now(), Messages: msgs}
}

// EncodeObjectBundle builds an OSC bundle for the 2Dobj profile.
func EncodeObjectBundle(source string, alive []int32, sets []ObjectParams, fseq int32) Bundle {
	addr := ProfileObject.Address()
	msgs := []Message{
		buildMessage(addr, "source", String(source)),
		buildMessage(addr, "alive", intArgs(alive)...),
	}
	for _, s := range sets {
		msgs = append(msgs, buildMessage(addr, "set",
			Int(s.SessionID), Int(s.ClassID), Float(s.X), Float(s.Y), Float(s.Angle),
			Float(s.VX), Float(s.VY), Float(s.RotationSpeed), Float(s.Accel), Float(s.RotationAccel)))
	}
	msgs = append(msgs, buildMessage(addr, "fseq", Int(fseq)))
	return Bundle{Timetag: Now(), Messages: msgs}
}

// EncodeBlobBundle builds an OSC bundle for the 2Dblb profile.
func EncodeBlobBundle(source string, alive []int32, sets []BlobParams, fseq int32) Bundle {
	addr := ProfileBlob.Address()
	msgs := []Message{
		buildMessage(addr, "source", String(source)),
		buildMessage(addr, "alive", intArgs(alive)...),
	}
	for _, s := range sets {
		msgs = append(msgs, buildMessage(addr, "set",
			Int(s.SessionID), Float(s.X), Float(s.Y), Float(s.Angle), Float(s.Width), Float(s.Height), Float(s.Area),
			Float(s.VX), Float(s.VY), Float(s.RotationSpeed), Float(s.Accel), Float(s.RotationAccel)))
	}
	msgs = append(msgs, buildMessage(addr, "fseq", Int(fseq)))
	return Bundle{Timetag: Now(), Messages: msgs}
}

func intArgs(ids []int32) []Argument {
	args := make([]Argument, len(ids))
	for i, id := range ids {
		args[i] = Int(id)
	}
	return args
}

// DecodeBundle implements the §4.3 decode algorithm: order-tolerant
// dispatch on each message's first argument.
func DecodeBundle(b Bundle) (*DecodedBundle, error) {
	out := &DecodedBundle{Profile: ProfileUnknown}

	for _, msg := range b.Messages {
		if len(msg.Args) == 0 {
			return nil, &DecodeError{Kind: ErrEmptyMessage, Address: msg.Address}
		}
		if msg.Args[0].Type != TypeString {
			return nil, &DecodeError{Kind: ErrUnknownMessageType, Address: msg.Address}
		}

		switch msg.Args[0].Str {
		case "source":
			profile := profileForAddress(msg.Address)
			if profile == ProfileUnknown {
				return nil, &DecodeError{Kind: ErrUnknownAddress, Address: msg.Address}
			}
			if len(msg.Args) < 2 || msg.Args[1].Type != TypeString {
				return nil, &DecodeError{Kind: ErrMissingSource, Address: msg.Address}
			}
			out.Profile = profile
			out.Source = msg.Args[1].Str

		case "alive":
			alive := make([]int32, 0, len(msg.Args)-1)
			for i, a := range msg.Args[1:] {
				if a.Type != TypeInt32 {
					return nil, &DecodeError{Kind: ErrWrongArgumentType, Address: msg.Address, Index: i + 1}
				}
				alive = append(alive, a.Int)
			}
			out.Alive = alive

		case "set":
			if err := decodeSet(out, msg); err != nil {
				return nil, err
			}

		case "fseq":
			if len(msg.Args) != 2 || msg.Args[1].Type != TypeInt32 {
				return nil, &DecodeError{Kind: ErrMissingArguments, Address: msg.Address}
			}
			out.FSeq = msg.Args[1].Int

		default:
			return nil, &DecodeError{Kind: ErrUnknownMessageType, Address: msg.Address}
		}
	}

	if out.HasSet {
		if out.Profile == ProfileUnknown {
			return nil, &DecodeError{Kind: ErrIncompleteBundle}
		}
		if setProfile(out) != out.Profile {
			return nil, &DecodeError{Kind: ErrMissingArguments}
		}
	}
	return out, nil
}

// setProfile reports which profile's set schema actually got decoded
// into out, or ProfileUnknown if none did, or a mix of more than one
// (both cases are callers' cue that a "set" message's field count
// didn't match the profile the bundle's "source" message declared).
func setProfile(out *DecodedBundle) Profile {
	kinds := 0
	profile := ProfileUnknown
	if len(out.Cursors) > 0 {
		kinds++
		profile = ProfileCursor
	}
	if len(out.Objects) > 0 {
		kinds++
		profile = ProfileObject
	}
	if len(out.Blobs) > 0 {
		kinds++
		profile = ProfileBlob
	}
	if kinds != 1 {
		return ProfileUnknown
	}
	return profile
}

func decodeSet(out *DecodedBundle, msg Message) error {
	fields := msg.Args[1:]
	switch len(fields) {
	case 6:
		p, err := decodeCursorSet(msg.Address, fields)
		if err != nil {
			return err
		}
		out.HasSet = true
		out.Cursors = append(out.Cursors, p)
	case 10:
		p, err := decodeObjectSet(msg.Address, fields)
		if err != nil {
			return err
		}
		out.HasSet = true
		out.Objects = append(out.Objects, p)
	case 12:
		p, err := decodeBlobSet(msg.Address, fields)
		if err != nil {
			return err
		}
		out.HasSet = true
		out.Blobs = append(out.Blobs, p)
	default:
		return &DecodeError{Kind: ErrMissingArguments, Address: msg.Address}
	}
	return nil
}

func wantInt32(addr string, fields []Argument, i int) (int32, error) {
	if fields[i].Type != TypeInt32 {
		return 0, &DecodeError{Kind: ErrWrongArgumentType, Address: addr, Index: i + 1}
	}
	return fields[i].Int, nil
}

func wantFloat32(addr string, fields []Argument, i int) (float32, error) {
	if fields[i].Type != TypeFloat32 {
		return 0, &DecodeError{Kind: ErrWrongArgumentType, Address: addr, Index: i + 1}
	}
	return fields[i].Float, nil
}

func decodeCursorSet(addr string, f []Argument) (CursorParams, error) {
	var p CursorParams
	var err error
	if p.SessionID, err = wantInt32(addr, f, 0); err != nil {
		return p, err
	}
	vals := make([]float32, 5)
	for i := range vals {
		if vals[i], err = wantFloat32(addr, f, i+1); err != nil {
			return p, err
		}
	}
	p.X, p.Y, p.VX, p.VY, p.Accel = vals[0], vals[1], vals[2], vals[3], vals[4]
	return p, nil
}

func decodeObjectSet(addr string, f []Argument) (ObjectParams, error) {
	var p ObjectParams
	var err error
	if p.SessionID, err = wantInt32(addr, f, 0); err != nil {
		return p, err
	}
	if p.ClassID, err = wantInt32(addr, f, 1); err != nil {
		return p, err
	}
	vals := make([]float32, 8)
	for i := range vals {
		if vals[i], err = wantFloat32(addr, f, i+2); err != nil {
			return p, err
		}
	}
	p.X, p.Y, p.Angle = vals[0], vals[1], vals[2]
	p.VX, p.VY = vals[3], vals[4]
	p.RotationSpeed, p.Accel, p.RotationAccel = vals[5], vals[6], vals[7]
	return p, nil
}

func decodeBlobSet(addr string, f []Argument) (BlobParams, error) {
	var p BlobParams
	var err error
	if p.SessionID, err = wantInt32(addr, f, 0); err != nil {
		return p, err
	}
	vals := make([]float32, 11)
	for i := range vals {
		if vals[i], err = wantFloat32(addr, f, i+1); err != nil {
			return p, err
		}
	}
	p.X, p.Y, p.Angle = vals[0], vals[1], vals[2]
	p.Width, p.Height, p.Area = vals[3], vals[4], vals[5]
	p.VX, p.VY = vals[6], vals[7]
	p.RotationSpeed, p.Accel, p.RotationAccel = vals[8], vals[9], vals[10]
	return p, nil
}
