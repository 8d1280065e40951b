// Package engine holds the search-facing pieces of the core: the
// transposition table, the positional evaluation, and a compact
// iterative-deepening alpha-beta searcher.
package engine

import (
	"github.com/greenbean52/stockfish-1/internal/board"
)

// ValueType labels the bound a stored value represents.
type ValueType uint8

const (
	ValueTypeNone  ValueType = 0
	ValueTypeUpper ValueType = 1
	ValueTypeLower ValueType = 2
	ValueTypeExact ValueType = ValueTypeUpper | ValueTypeLower
)

// TTEntry is one 128-bit transposition table entry:
//
//	bits   0-63:  key
//	bits  64-95:  data (move 0-16, value type 20-22, generation 23-31)
//	bits  96-111: value
//	bits 112-127: depth
type TTEntry struct {
	key   board.Key
	data  uint32
	value int16
	depth int16
}

func newTTEntry(key board.Key, v board.Value, t ValueType, depth int, m board.Move, generation uint32) TTEntry {
	return TTEntry{
		key:   key,
		data:  uint32(m)&0x1FFFF | uint32(t)<<20 | generation<<23,
		value: int16(v),
		depth: int16(depth),
	}
}

// Key returns the full position key stored in the entry.
func (e *TTEntry) Key() board.Key { return e.key }

// Move returns the stored best move.
func (e *TTEntry) Move() board.Move { return board.Move(e.data & 0x1FFFF) }

// Type returns the bound type of the stored value.
func (e *TTEntry) Type() ValueType { return ValueType((e.data >> 20) & 7) }

// Generation returns the search generation the entry was written in.
func (e *TTEntry) Generation() uint32 { return e.data >> 23 }

// Value returns the stored value.
func (e *TTEntry) Value() board.Value { return board.Value(e.value) }

// Depth returns the stored search depth.
func (e *TTEntry) Depth() int { return int(e.depth) }

// Cluster size: each logical slot holds this many entries.
const ttClusterSize = 4

// TranspositionTable is a direct-mapped array of entry clusters indexed by
// the low bits of the position key.
//
// Memory model: the table is the one structure shared between concurrent
// searchers, and it is deliberately race-tolerant rather than locked.
// Reads and writes of an entry are not atomic; a torn entry can be
// observed, but the 64-bit key tag filters essentially all of them, and an
// occasional accepted-but-bogus entry cannot corrupt a Position, since the
// searcher validates every move before playing it. Go's race detector will
// flag such accesses when multiple searchers share a table; that is the
// documented trade, exactly as in the original engine.
type TranspositionTable struct {
	// The write counter sees heavy traffic; the pads keep it a cache
	// line away from the read-only fields below.
	padBefore [60]byte
	writes    uint32
	padAfter  [64]byte

	entries    []TTEntry
	buckets    uint32
	generation uint32
}

// NewTranspositionTable creates a table of roughly the given size in MB,
// rounded down to a power-of-two bucket count.
func NewTranspositionTable(sizeMB int) *TranspositionTable {
	tt := &TranspositionTable{}
	tt.Resize(sizeMB)
	return tt
}

// Resize reallocates the table for the given size in MB, dropping all
// stored entries.
func (tt *TranspositionTable) Resize(sizeMB int) {
	const entrySize = 16
	buckets := uint64(sizeMB) * 1024 * 1024 / (entrySize * ttClusterSize)
	buckets = roundDownToPowerOf2(buckets)
	if buckets == 0 {
		buckets = 1
	}
	tt.entries = make([]TTEntry, buckets*ttClusterSize)
	tt.buckets = uint32(buckets)
	tt.generation = 0
	tt.writes = 0
}

func roundDownToPowerOf2(n uint64) uint64 {
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

// Clear wipes every entry.
func (tt *TranspositionTable) Clear() {
	for i := range tt.entries {
		tt.entries[i] = TTEntry{}
	}
	tt.writes = 0
}

func (tt *TranspositionTable) cluster(key board.Key) []TTEntry {
	first := (uint32(key) & (tt.buckets - 1)) * ttClusterSize
	return tt.entries[first : first+ttClusterSize]
}

// Store saves a value for the position. Within the cluster it prefers an
// entry with a matching key; otherwise the victim is the entry from an old
// generation with the smallest depth.
func (tt *TranspositionTable) Store(key board.Key, v board.Value, t ValueType, depth int, m board.Move) {
	cluster := tt.cluster(key)
	replace := 0
	replaceScore := -1 << 30

	for i := range cluster {
		e := &cluster[i]
		if e.key == 0 || e.key == key {
			// Keep the old move if the new search found none.
			if m == board.MoveNone && e.key == key {
				m = e.Move()
			}
			replace = i
			break
		}
		score := 0
		if e.Generation() != tt.generation {
			score += 1 << 20
		}
		score += 256 - e.Depth()
		if score > replaceScore {
			replaceScore = score
			replace = i
		}
	}

	cluster[replace] = newTTEntry(key, v, t, depth, m, tt.generation)
	tt.writes++
}

// Retrieve looks the position up, returning nil on a miss. The pointer
// aims into the shared table: copy what you need and revalidate the move.
func (tt *TranspositionTable) Retrieve(key board.Key) *TTEntry {
	cluster := tt.cluster(key)
	for i := range cluster {
		if cluster[i].key == key {
			return &cluster[i]
		}
	}
	return nil
}

// NewSearch bumps the generation, aging every stored entry.
func (tt *TranspositionTable) NewSearch() {
	tt.generation = (tt.generation + 1) & 0x1FF
}

// InsertPV walks the principal variation and makes sure each of its
// positions carries its PV move, so the next iteration searches the PV
// first even where the entries were overwritten.
func (tt *TranspositionTable) InsertPV(pos *board.Position, pv []board.Move) {
	p := pos.Copy()
	states := make([]board.StateInfo, len(pv))
	for i, m := range pv {
		if e := tt.Retrieve(p.Key()); e == nil || e.Move() != m {
			tt.Store(p.Key(), 0, ValueTypeNone, -1, m)
		}
		p.DoMove(m, &states[i])
	}
}

// Full estimates the table occupancy in permille, sampling a fixed prefix
// of entries written in the current generation.
func (tt *TranspositionTable) Full() int {
	sample := 1000
	if len(tt.entries) < sample {
		sample = len(tt.entries)
	}
	used := 0
	for i := 0; i < sample; i++ {
		e := &tt.entries[i]
		if e.key != 0 && e.Generation() == tt.generation {
			used++
		}
	}
	if sample == 0 {
		return 0
	}
	return used * 1000 / sample
}
