// Package board implements the chess position representation: bitboards,
// Zobrist hashing, FEN I/O, and move making/unmaking.
package board

import "fmt"

// Square represents a square on the chess board (0-63).
// Uses Little-Endian Rank-File Mapping: A1=0, H1=7, A8=56, H8=63.
type Square int8

// Square constants for all 64 squares.
const (
	A1 Square = iota
	B1
	C1
	D1
	E1
	F1
	G1
	H1
	A2
	B2
	C2
	D2
	E2
	F2
	G2
	H2
	A3
	B3
	C3
	D3
	E3
	F3
	G3
	H3
	A4
	B4
	C4
	D4
	E4
	F4
	G4
	H4
	A5
	B5
	C5
	D5
	E5
	F5
	G5
	H5
	A6
	B6
	C6
	D6
	E6
	F6
	G6
	H6
	A7
	B7
	C7
	D7
	E7
	F7
	G7
	H7
	A8
	B8
	C8
	D8
	E8
	F8
	G8
	H8
	SquareNone Square = 64
)

// File indices (0=a .. 7=h).
const (
	FileAIdx = iota
	FileBIdx
	FileCIdx
	FileDIdx
	FileEIdx
	FileFIdx
	FileGIdx
	FileHIdx
)

// Rank indices (0=rank 1 .. 7=rank 8).
const (
	Rank1Idx = iota
	Rank2Idx
	Rank3Idx
	Rank4Idx
	Rank5Idx
	Rank6Idx
	Rank7Idx
	Rank8Idx
)

// File returns the file (column) of the square (0=a, 7=h).
func (sq Square) File() int {
	return int(sq) & 7
}

// Rank returns the rank (row) of the square (0=rank 1, 7=rank 8).
func (sq Square) Rank() int {
	return int(sq) >> 3
}

// NewSquare creates a square from file and rank (0-indexed).
func NewSquare(file, rank int) Square {
	return Square(rank*8 + file)
}

// IsValid returns true if the square is a valid board square (0-63).
func (sq Square) IsValid() bool {
	return sq >= A1 && sq < SquareNone
}

// Mirror returns the square mirrored vertically (for black's perspective).
func (sq Square) Mirror() Square {
	return sq ^ 56
}

// RelativeSquare returns the square seen from the given color's perspective.
func RelativeSquare(c Color, sq Square) Square {
	if c == White {
		return sq
	}
	return sq.Mirror()
}

// RelativeRank returns the rank from the given color's perspective.
// For White rank 0 is the 1st rank; for Black rank 0 is the 8th rank.
func (sq Square) RelativeRank(c Color) int {
	if c == White {
		return sq.Rank()
	}
	return 7 - sq.Rank()
}

// Color returns the color of the square (light squares are White).
func (sq Square) Color() Color {
	if (sq.File()+sq.Rank())&1 == 0 {
		return Black
	}
	return White
}

// String returns the algebraic notation for the square (e.g. "e4").
func (sq Square) String() string {
	if !sq.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%c%c", 'a'+sq.File(), '1'+sq.Rank())
}

// ParseSquare parses algebraic notation (e.g. "e4") into a Square.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return SquareNone, fmt.Errorf("invalid square: %q", s)
	}
	file := int(s[0] - 'a')
	rank := int(s[1] - '1')
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return SquareNone, fmt.Errorf("invalid square: %q", s)
	}
	return NewSquare(file, rank), nil
}

// SquareDistance returns the Chebyshev distance between two squares.
func SquareDistance(s1, s2 Square) int {
	df := abs(s1.File() - s2.File())
	dr := abs(s1.Rank() - s2.Rank())
	if df > dr {
		return df
	}
	return dr
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	if x > 0 {
		return 1
	}
	if x < 0 {
		return -1
	}
	return 0
}
