// Package recorder captures and replays TUIO/OSC bundles to a chunked
// binary log, for offline analysis or deterministic playback in tests.
// Unlike a generic byte-blob log, each recorded packet is decoded far
// enough to tag its index entry with the TUIO profile and frame
// sequence it carries, since a capture on one socket can interleave
// the 2Dcur, 2Dobj and 2Dblb streams; a Player can use that to scrub
// or replay a single profile's stream in isolation. Grounded on the
// teacher's internal/lidar/recorder chunk-rotation and JSON-header
// design, adapted from serialized FrameBundles to raw already-encoded
// OSC packet bytes (no re-serialization step is needed, since a TUIO
// packet is already wire-ready) and from an in-memory, write-at-Close
// index to one streamed to disk as each packet arrives, so a capture
// killed mid-session still leaves a readable index for everything
// recorded up to that point.
package recorder

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/tuio/internal/osc"
)

// FileExtension is a suffix for naming recording directories. Recorder
// does not append it: the log is written to basePath exactly as given,
// with chunk/index files inside the directory itself.
const FileExtension = ".tuiolog"

// ChunkSize is the number of packets per chunk file.
const ChunkSize = 1000

// LogHeader describes a recorded session.
type LogHeader struct {
	Version      string `json:"version"`
	CreatedNs    int64  `json:"created_ns"`
	SessionID    string `json:"session_id"`
	TotalPackets uint64 `json:"total_packets"`
	StartNs      int64  `json:"start_ns"`
	EndNs        int64  `json:"end_ns"`
}

// IndexEntry locates one recorded packet within its chunk file and
// carries the TUIO metadata peekTUIO could recover from it, so a
// Player can filter or scrub a capture without re-decoding every
// packet's chunk.
type IndexEntry struct {
	PacketID    uint64
	TimestampNs int64
	FSeq        int32
	ChunkID     uint32
	Offset      uint32
	Profile     osc.Profile
}

// indexEntrySize is the fixed on-disk width of one IndexEntry record:
// PacketID(8) + TimestampNs(8) + FSeq(4) + ChunkID(4) + Offset(4) + Profile(1).
const indexEntrySize = 8 + 8 + 4 + 4 + 4 + 1

func putIndexEntry(buf []byte, e IndexEntry) {
	binary.LittleEndian.PutUint64(buf[0:8], e.PacketID)
	binary.LittleEndian.PutUint64(buf[8:16], uint64(e.TimestampNs))
	binary.LittleEndian.PutUint32(buf[16:20], uint32(e.FSeq))
	binary.LittleEndian.PutUint32(buf[20:24], e.ChunkID)
	binary.LittleEndian.PutUint32(buf[24:28], e.Offset)
	buf[28] = byte(e.Profile)
}

func getIndexEntry(buf []byte) IndexEntry {
	return IndexEntry{
		PacketID:    binary.LittleEndian.Uint64(buf[0:8]),
		TimestampNs: int64(binary.LittleEndian.Uint64(buf[8:16])),
		FSeq:        int32(binary.LittleEndian.Uint32(buf[16:20])),
		ChunkID:     binary.LittleEndian.Uint32(buf[20:24]),
		Offset:      binary.LittleEndian.Uint32(buf[24:28]),
		Profile:     osc.Profile(buf[28]),
	}
}

// peekTUIO decodes packet only far enough to recover the profile and
// frame sequence it carries. A packet that isn't a well-formed TUIO
// bundle is still recorded, just without that metadata — a capture
// should never lose data because one packet didn't parse.
func peekTUIO(packet []byte) (profile osc.Profile, fseq int32, ok bool) {
	if !osc.IsBundle(packet) {
		return osc.ProfileUnknown, 0, false
	}
	bundle, err := osc.UnmarshalBundle(packet)
	if err != nil {
		return osc.ProfileUnknown, 0, false
	}
	decoded, err := osc.DecodeBundle(bundle)
	if err != nil {
		return osc.ProfileUnknown, 0, false
	}
	return decoded.Profile, decoded.FSeq, true
}

// Recorder writes received OSC packets, with their arrival timestamps,
// to a log directory.
type Recorder struct {
	basePath string

	header LogHeader

	indexFile    *os.File
	chunkFile    *os.File
	currentChunk int
	chunkOffset  uint32

	packetCount uint64
	startNs     int64
	endNs       int64

	mu     sync.Mutex
	closed bool
}

// NewRecorder creates a Recorder writing to basePath. If sessionID is
// empty, a random one is generated via uuid.NewString. If basePath is
// empty, a directory named "tuio_<sessionID>" is created under os.TempDir.
func NewRecorder(basePath, sessionID string) (*Recorder, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	if basePath == "" {
		basePath = filepath.Join(os.TempDir(), fmt.Sprintf("tuio_%s", sessionID))
	}

	if err := os.MkdirAll(filepath.Join(basePath, "chunks"), 0o755); err != nil {
		return nil, fmt.Errorf("recorder: create log directory: %w", err)
	}

	indexFile, err := os.Create(filepath.Join(basePath, "index.bin"))
	if err != nil {
		return nil, fmt.Errorf("recorder: create index file: %w", err)
	}

	return &Recorder{
		basePath:     basePath,
		currentChunk: -1,
		indexFile:    indexFile,
		header: LogHeader{
			Version:   "1.0",
			CreatedNs: time.Now().UnixNano(),
			SessionID: sessionID,
		},
	}, nil
}

// Record appends one raw packet, captured at timestampNs, to the log.
// The packet's TUIO profile and frame sequence are recovered and
// stored alongside its location so Player can filter or scrub by them
// later without touching the chunk files.
func (r *Recorder) Record(timestampNs int64, packet []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return fmt.Errorf("recorder: already closed")
	}

	if r.startNs == 0 {
		r.startNs = timestampNs
	}
	r.endNs = timestampNs

	chunkIdx := int(r.packetCount / ChunkSize)
	if chunkIdx != r.currentChunk {
		if err := r.rotateChunk(chunkIdx); err != nil {
			return err
		}
	}

	lenBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(lenBuf, uint32(len(packet)))
	if _, err := r.chunkFile.Write(lenBuf); err != nil {
		return fmt.Errorf("recorder: write packet length: %w", err)
	}
	if _, err := r.chunkFile.Write(packet); err != nil {
		return fmt.Errorf("recorder: write packet data: %w", err)
	}

	entry := IndexEntry{
		PacketID:    r.packetCount,
		TimestampNs: timestampNs,
		ChunkID:     uint32(chunkIdx),
		Offset:      r.chunkOffset,
		Profile:     osc.ProfileUnknown,
	}
	if profile, fseq, ok := peekTUIO(packet); ok {
		entry.Profile = profile
		entry.FSeq = fseq
	}

	entryBuf := make([]byte, indexEntrySize)
	putIndexEntry(entryBuf, entry)
	if _, err := r.indexFile.Write(entryBuf); err != nil {
		return fmt.Errorf("recorder: append index entry: %w", err)
	}

	r.chunkOffset += uint32(4 + len(packet))
	r.packetCount++
	return nil
}

func (r *Recorder) rotateChunk(chunkIdx int) error {
	if r.chunkFile != nil {
		if err := r.chunkFile.Close(); err != nil {
			return err
		}
	}

	chunkPath := filepath.Join(r.basePath, "chunks", fmt.Sprintf("chunk_%04d.bin", chunkIdx))
	f, err := os.Create(chunkPath)
	if err != nil {
		return fmt.Errorf("recorder: create chunk file: %w", err)
	}

	r.chunkFile = f
	r.currentChunk = chunkIdx
	r.chunkOffset = 0
	return nil
}

// Close finalizes the log, flushing the header. The seek index was
// already streamed to disk as each packet was recorded, so Close has
// nothing left to do for it.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	if r.chunkFile != nil {
		r.chunkFile.Close()
	}
	if err := r.indexFile.Close(); err != nil {
		return fmt.Errorf("recorder: close index file: %w", err)
	}

	r.header.TotalPackets = r.packetCount
	r.header.StartNs = r.startNs
	r.header.EndNs = r.endNs

	headerData, err := json.MarshalIndent(r.header, "", "  ")
	if err != nil {
		return fmt.Errorf("recorder: marshal header: %w", err)
	}
	if err := os.WriteFile(filepath.Join(r.basePath, "header.json"), headerData, 0o644); err != nil {
		return fmt.Errorf("recorder: write header: %w", err)
	}
	return nil
}

// Path returns the base directory of the log.
func (r *Recorder) Path() string { return r.basePath }

// PacketCount returns the number of packets recorded so far.
func (r *Recorder) PacketCount() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.packetCount
}

// Player reads packets back from a recorded log, in order, by seek, or
// filtered to a single TUIO profile.
type Player struct {
	basePath string
	header   LogHeader
	index    []IndexEntry

	currentPacket uint64
	paused        bool
	rate          float32

	currentChunk int
	chunkData    []byte
	chunkFile    *os.File

	mu sync.Mutex
}

// NewPlayer opens a log directory written by Recorder for playback.
func NewPlayer(basePath string) (*Player, error) {
	p := &Player{basePath: basePath, currentChunk: -1, rate: 1.0}

	headerData, err := os.ReadFile(filepath.Join(basePath, "header.json"))
	if err != nil {
		return nil, fmt.Errorf("recorder: read header: %w", err)
	}
	if err := json.Unmarshal(headerData, &p.header); err != nil {
		return nil, fmt.Errorf("recorder: parse header: %w", err)
	}

	indexFile, err := os.Open(filepath.Join(basePath, "index.bin"))
	if err != nil {
		return nil, fmt.Errorf("recorder: open index: %w", err)
	}
	defer indexFile.Close()

	p.index = make([]IndexEntry, 0, p.header.TotalPackets)
	br := bufio.NewReaderSize(indexFile, indexEntrySize*64)
	entryBuf := make([]byte, indexEntrySize)
	for {
		if _, err := io.ReadFull(br, entryBuf); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("recorder: read index entry: %w", err)
		}
		p.index = append(p.index, getIndexEntry(entryBuf))
	}
	return p, nil
}

// Header returns the recorded session's header.
func (p *Player) Header() LogHeader { return p.header }

// TotalPackets returns the number of packets in the log.
func (p *Player) TotalPackets() uint64 { return p.header.TotalPackets }

// CurrentPacket returns the index of the next packet ReadPacket will
// return.
func (p *Player) CurrentPacket() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentPacket
}

// Seek moves playback to packetIdx.
func (p *Player) Seek(packetIdx uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if packetIdx >= uint64(len(p.index)) {
		return fmt.Errorf("recorder: packet index out of range: %d >= %d", packetIdx, len(p.index))
	}
	p.currentPacket = packetIdx
	return nil
}

// SeekToTimestamp moves playback to the first packet at or after
// timestampNs, or the last packet if timestampNs is beyond the log.
// Packets are indexed in the order they were recorded, so their
// timestamps are already non-decreasing and a binary search finds the
// target in O(log n) rather than scanning the whole capture.
func (p *Player) SeekToTimestamp(timestampNs int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.index) == 0 {
		return nil
	}
	i := sort.Search(len(p.index), func(i int) bool {
		return p.index[i].TimestampNs >= timestampNs
	})
	if i == len(p.index) {
		i = len(p.index) - 1
	}
	p.currentPacket = uint64(i)
	return nil
}

// SeekNextProfile advances playback to the next packet, at or after
// the current position, whose decoded TUIO profile matches profile.
// Returns io.EOF if no such packet remains. Useful for replaying a
// single 2Dcur/2Dobj/2Dblb stream out of a capture that interleaved
// more than one.
func (p *Player) SeekNextProfile(profile osc.Profile) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := p.currentPacket; i < uint64(len(p.index)); i++ {
		if p.index[i].Profile == profile {
			p.currentPacket = i
			return nil
		}
	}
	return io.EOF
}

// ReadPacket returns the current packet's raw bytes and timestamp, then
// advances. Returns io.EOF once every packet has been read.
func (p *Player) ReadPacket() ([]byte, int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.currentPacket >= uint64(len(p.index)) {
		return nil, 0, io.EOF
	}

	entry := p.index[p.currentPacket]
	if int(entry.ChunkID) != p.currentChunk {
		if err := p.loadChunk(int(entry.ChunkID)); err != nil {
			return nil, 0, err
		}
	}

	offset := entry.Offset
	if offset+4 > uint32(len(p.chunkData)) {
		return nil, 0, fmt.Errorf("recorder: invalid packet offset")
	}
	packetLen := binary.LittleEndian.Uint32(p.chunkData[offset:])
	offset += 4
	if offset+packetLen > uint32(len(p.chunkData)) {
		return nil, 0, fmt.Errorf("recorder: invalid packet length")
	}

	packet := make([]byte, packetLen)
	copy(packet, p.chunkData[offset:offset+packetLen])

	p.currentPacket++
	return packet, entry.TimestampNs, nil
}

// CurrentProfile returns the TUIO profile of the next packet ReadPacket
// will return, or osc.ProfileUnknown if playback has reached the end.
func (p *Player) CurrentProfile() osc.Profile {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.currentPacket >= uint64(len(p.index)) {
		return osc.ProfileUnknown
	}
	return p.index[p.currentPacket].Profile
}

func (p *Player) loadChunk(chunkIdx int) error {
	if p.chunkFile != nil {
		p.chunkFile.Close()
	}
	chunkPath := filepath.Join(p.basePath, "chunks", fmt.Sprintf("chunk_%04d.bin", chunkIdx))
	data, err := os.ReadFile(chunkPath)
	if err != nil {
		return fmt.Errorf("recorder: read chunk: %w", err)
	}
	p.chunkData = data
	p.currentChunk = chunkIdx
	return nil
}

// SetPaused marks playback paused; callers driving a replay loop should
// check IsPaused themselves, as Player does not run its own clock.
func (p *Player) SetPaused(paused bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = paused
}

// IsPaused reports the paused state set by SetPaused.
func (p *Player) IsPaused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// SetRate sets the playback speed multiplier used by callers pacing
// their own replay loop against packet timestamps.
func (p *Player) SetRate(rate float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rate = rate
}

// Rate returns the playback speed multiplier set by SetRate.
func (p *Player) Rate() float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rate
}

// Close releases the player's open chunk file, if any.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.chunkFile != nil {
		return p.chunkFile.Close()
	}
	return nil
}
