package board

import "fmt"

// Move encodes a chess move in 17 bits:
//
//	bits  0-5:  to square
//	bits  6-11: from square
//	bits 12-14: promotion piece type (Knight..Queen, 0 if none)
//	bit  15:    en passant capture
//	bit  16:    castling (to square holds the castling rook's square)
type Move uint32

// MoveNone is the reserved null move.
const MoveNone Move = 0

const (
	moveEpFlag     Move = 1 << 15
	moveCastleFlag Move = 1 << 16
)

// NewMove creates a normal move.
func NewMove(from, to Square) Move {
	return Move(to) | Move(from)<<6
}

// NewPromotionMove creates a pawn promotion move.
func NewPromotionMove(from, to Square, promotion PieceType) Move {
	return Move(to) | Move(from)<<6 | Move(promotion)<<12
}

// NewEnPassantMove creates an en passant capture.
func NewEnPassantMove(from, to Square) Move {
	return Move(to) | Move(from)<<6 | moveEpFlag
}

// NewCastleMove creates a castling move, encoded king-from to rook-square.
func NewCastleMove(kingFrom, rookSquare Square) Move {
	return Move(rookSquare) | Move(kingFrom)<<6 | moveCastleFlag
}

// From returns the origin square.
func (m Move) From() Square {
	return Square((m >> 6) & 0x3F)
}

// To returns the destination square. For castling moves this is the square
// of the castling rook.
func (m Move) To() Square {
	return Square(m & 0x3F)
}

// Promotion returns the promotion piece type, or None.
func (m Move) Promotion() PieceType {
	return PieceType((m >> 12) & 7)
}

// IsPromotion returns true if this is a promotion move.
func (m Move) IsPromotion() bool {
	return m.Promotion() != None
}

// IsEnPassant returns true if this is an en passant capture.
func (m Move) IsEnPassant() bool {
	return m&moveEpFlag != 0
}

// IsCastle returns true if this is a castling move.
func (m Move) IsCastle() bool {
	return m&moveCastleFlag != 0
}

// String returns the raw long-algebraic form of the move. Castling moves
// print their internal king-from/rook-square encoding; use Position.MoveToUCI
// for protocol output.
func (m Move) String() string {
	if m == MoveNone {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += string("  nbrq "[m.Promotion()])
	}
	return s
}

// MoveList is a fixed-capacity list of moves, avoiding allocations in move
// generation.
type MoveList struct {
	moves [256]Move
	count int
}

// Add appends a move to the list.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Set stores a move at index i.
func (ml *MoveList) Set(i int, m Move) {
	ml.moves[i] = m
}

// Swap exchanges two moves in the list.
func (ml *MoveList) Swap(i, j int) {
	ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i]
}

// Clear empties the list.
func (ml *MoveList) Clear() {
	ml.count = 0
}

// Contains reports whether the list contains the move.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Slice returns the moves as a slice backed by the list.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}

// promotionChar maps a promotion suffix letter to a piece type.
func promotionChar(c byte) (PieceType, error) {
	switch c {
	case 'n':
		return Knight, nil
	case 'b':
		return Bishop, nil
	case 'r':
		return Rook, nil
	case 'q':
		return Queen, nil
	}
	return None, fmt.Errorf("invalid promotion piece: %c", c)
}
