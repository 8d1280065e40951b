package book

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/greenbean52/stockfish-1/internal/board"
)

func openTestBook(t *testing.T) *Book {
	t.Helper()
	b, err := Open(filepath.Join(t.TempDir(), "book.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

func TestAddAndLookup(t *testing.T) {
	b := openTestBook(t)
	pos := board.NewPosition()

	e4, _ := pos.MoveFromUCI("e2e4")
	d4, _ := pos.MoveFromUCI("d2d4")

	if err := b.Add(pos.Key(), e4, 3); err != nil {
		t.Fatal(err)
	}
	if err := b.Add(pos.Key(), d4, 1); err != nil {
		t.Fatal(err)
	}
	if err := b.Add(pos.Key(), e4, 2); err != nil {
		t.Fatal(err)
	}

	entries, err := b.Lookup(pos.Key())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Move != e4 || entries[0].Weight != 5 {
		t.Errorf("heaviest entry = %s/%d, want e2e4/5", entries[0].Move, entries[0].Weight)
	}
	if entries[1].Move != d4 || entries[1].Weight != 1 {
		t.Errorf("second entry = %s/%d, want d2d4/1", entries[1].Move, entries[1].Weight)
	}
}

func TestProbeReturnsLegalMove(t *testing.T) {
	b := openTestBook(t)
	pos := board.NewPosition()

	e4, _ := pos.MoveFromUCI("e2e4")
	if err := b.Add(pos.Key(), e4, 10); err != nil {
		t.Fatal(err)
	}
	// An illegal stored move (stale data) must be filtered out.
	if err := b.Add(pos.Key(), board.NewMove(board.E2, board.E5), 100); err != nil {
		t.Fatal(err)
	}

	m, ok := b.Probe(pos)
	if !ok {
		t.Fatal("probe missed")
	}
	if m != e4 {
		t.Errorf("probe = %s, want e2e4", m)
	}
}

func TestProbeMiss(t *testing.T) {
	b := openTestBook(t)
	pos := board.NewPosition()

	if m, ok := b.Probe(pos); ok || m != board.MoveNone {
		t.Errorf("probe on empty book = %s/%v, want miss", m, ok)
	}
}

func TestImportLines(t *testing.T) {
	b := openTestBook(t)

	path := filepath.Join(t.TempDir(), "lines.txt")
	lines := "# two king pawn openings\ne2e4 e7e5 g1f3\ne2e4 c7c5\n\nd2d4 d7d5\n"
	if err := os.WriteFile(path, []byte(lines), 0o644); err != nil {
		t.Fatal(err)
	}

	n, err := b.ImportLines(path)
	if err != nil {
		t.Fatal(err)
	}
	if n != 7 {
		t.Errorf("imported %d moves, want 7", n)
	}

	pos := board.NewPosition()
	entries, err := b.Lookup(pos.Key())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("start position has %d book moves, want 2", len(entries))
	}
	e4, _ := pos.MoveFromUCI("e2e4")
	if entries[0].Move != e4 || entries[0].Weight != 2 {
		t.Errorf("heaviest = %s/%d, want e2e4/2", entries[0].Move, entries[0].Weight)
	}

	// The position after 1.e4 knows both replies.
	var st board.StateInfo
	pos.DoMove(e4, &st)
	entries, err = b.Lookup(pos.Key())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("after e2e4: %d book moves, want 2", len(entries))
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "book.db")
	pos := board.NewPosition()
	e4, _ := pos.MoveFromUCI("e2e4")

	b, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Add(pos.Key(), e4, 7); err != nil {
		t.Fatal(err)
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}

	b, err = Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	entries, err := b.Lookup(pos.Key())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Move != e4 || entries[0].Weight != 7 {
		t.Errorf("reopened book lost data: %+v", entries)
	}
}
