// Package book implements a persistent opening book backed by badger.
// Entries are keyed by position hash and hold weighted candidate moves;
// probing picks among them with weighted randomness, verifying each
// candidate against the live position's legal moves.
package book

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/greenbean52/stockfish-1/internal/board"
)

// Entry is one weighted book move.
type Entry struct {
	Move   board.Move
	Weight uint16
}

// Book is an opening book stored in a badger database.
type Book struct {
	db *badger.DB
}

// Open opens (or creates) a book database at the given path.
func Open(path string) (*Book, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open book %q: %w", path, err)
	}
	return &Book{db: db}, nil
}

// Close closes the underlying database.
func (b *Book) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

func storageKey(key board.Key) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], uint64(key))
	return k[:]
}

// Entry wire format: repeated (move uint32, weight uint16), big-endian.
const entrySize = 6

func encodeEntries(entries []Entry) []byte {
	buf := make([]byte, 0, len(entries)*entrySize)
	for _, e := range entries {
		var rec [entrySize]byte
		binary.BigEndian.PutUint32(rec[0:4], uint32(e.Move))
		binary.BigEndian.PutUint16(rec[4:6], e.Weight)
		buf = append(buf, rec[:]...)
	}
	return buf
}

func decodeEntries(buf []byte) []Entry {
	entries := make([]Entry, 0, len(buf)/entrySize)
	for len(buf) >= entrySize {
		entries = append(entries, Entry{
			Move:   board.Move(binary.BigEndian.Uint32(buf[0:4])),
			Weight: binary.BigEndian.Uint16(buf[4:6]),
		})
		buf = buf[entrySize:]
	}
	return entries
}

// Add records a move for the position key, accumulating weight if the move
// is already known.
func (b *Book) Add(key board.Key, m board.Move, weight uint16) error {
	return b.db.Update(func(txn *badger.Txn) error {
		var entries []Entry
		item, err := txn.Get(storageKey(key))
		switch err {
		case nil:
			err = item.Value(func(val []byte) error {
				entries = decodeEntries(val)
				return nil
			})
			if err != nil {
				return err
			}
		case badger.ErrKeyNotFound:
		default:
			return err
		}

		found := false
		for i := range entries {
			if entries[i].Move == m {
				entries[i].Weight += weight
				found = true
				break
			}
		}
		if !found {
			entries = append(entries, Entry{Move: m, Weight: weight})
		}
		return txn.Set(storageKey(key), encodeEntries(entries))
	})
}

// Lookup returns the stored entries for a position key, heaviest first.
func (b *Book) Lookup(key board.Key) ([]Entry, error) {
	var entries []Entry
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(storageKey(key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			entries = decodeEntries(val)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Weight > entries[j].Weight
	})
	return entries, nil
}

// Probe looks up the position and returns a book move using weighted
// random selection among the legal candidates.
func (b *Book) Probe(pos *board.Position) (board.Move, bool) {
	if b == nil || b.db == nil {
		return board.MoveNone, false
	}
	entries, err := b.Lookup(pos.Key())
	if err != nil || len(entries) == 0 {
		return board.MoveNone, false
	}

	legal := pos.GenerateLegalMoves()
	candidates := entries[:0]
	total := uint32(0)
	for _, e := range entries {
		if legal.Contains(e.Move) {
			candidates = append(candidates, e)
			total += uint32(e.Weight)
		}
	}
	if len(candidates) == 0 {
		return board.MoveNone, false
	}
	if total == 0 {
		return candidates[0].Move, true
	}

	r := rand.Uint32() % total
	cumulative := uint32(0)
	for _, e := range candidates {
		cumulative += uint32(e.Weight)
		if r < cumulative {
			return e.Move, true
		}
	}
	return candidates[0].Move, true
}

// ImportLines reads a text file of opening lines, one per row, each a
// space-separated sequence of long-algebraic moves from the starting
// position, and records every position-move pair. Lines starting with '#'
// are comments. Returns the number of moves recorded.
func (b *Book) ImportLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	added := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		pos := board.NewPosition()
		tokens := strings.Fields(line)
		states := make([]board.StateInfo, len(tokens))
		for i, token := range tokens {
			m, err := pos.MoveFromUCI(token)
			if err != nil {
				return added, fmt.Errorf("import %q: %w", line, err)
			}
			if err := b.Add(pos.Key(), m, 1); err != nil {
				return added, err
			}
			pos.DoMove(m, &states[i])
			added++
		}
	}
	return added, scanner.Err()
}
