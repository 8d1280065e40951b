package board

// Color represents the color of a piece or player.
type Color uint8

const (
	White Color = iota
	Black
	NoColor Color = 2
)

// Other returns the opposite color.
func (c Color) Other() Color {
	return c ^ 1
}

// String returns the color name.
func (c Color) String() string {
	switch c {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return "NoColor"
	}
}

// PieceType represents the type of a chess piece. None is zero so that an
// empty board square reads as "no piece" in every table indexed by type.
type PieceType uint8

const (
	None PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

// AnyPieceType indexes the occupied-all union in Position.byTypeBB.
const AnyPieceType PieceType = 0

// String returns the piece type name.
func (pt PieceType) String() string {
	switch pt {
	case Pawn:
		return "Pawn"
	case Knight:
		return "Knight"
	case Bishop:
		return "Bishop"
	case Rook:
		return "Rook"
	case Queen:
		return "Queen"
	case King:
		return "King"
	default:
		return "None"
	}
}

// Value is the resolution of all evaluation scores, in Glaurung-style
// centipawn-ish units.
type Value int

// Piece values, separate for middle game and endgame.
const (
	PawnValueMidgame   Value = 198
	PawnValueEndgame   Value = 258
	KnightValueMidgame Value = 817
	KnightValueEndgame Value = 846
	BishopValueMidgame Value = 836
	BishopValueEndgame Value = 857
	RookValueMidgame   Value = 1270
	RookValueEndgame   Value = 1278
	QueenValueMidgame  Value = 2521
	QueenValueEndgame  Value = 2558
)

// Mate and bound values.
const (
	ValueZero     Value = 0
	ValueDraw     Value = 0
	ValueKnownWin Value = 15000
	ValueMate     Value = 30000
	ValueInfinite Value = 30001
	ValueNone     Value = 30002
)

// MidgameValue returns the middle-game material value of the piece type.
func (pt PieceType) MidgameValue() Value {
	return midgameValues[pt]
}

// EndgameValue returns the endgame material value of the piece type.
func (pt PieceType) EndgameValue() Value {
	return endgameValues[pt]
}

var midgameValues = [8]Value{
	0, PawnValueMidgame, KnightValueMidgame, BishopValueMidgame,
	RookValueMidgame, QueenValueMidgame, 0, 0,
}

var endgameValues = [8]Value{
	0, PawnValueEndgame, KnightValueEndgame, BishopValueEndgame,
	RookValueEndgame, QueenValueEndgame, 0, 0,
}

// Piece combines a PieceType and a Color, encoded as (color<<3)|type.
// Zero is the empty square.
type Piece uint8

// Piece constants.
const (
	Empty       Piece = 0
	WhitePawn   Piece = 1
	WhiteKnight Piece = 2
	WhiteBishop Piece = 3
	WhiteRook   Piece = 4
	WhiteQueen  Piece = 5
	WhiteKing   Piece = 6
	BlackPawn   Piece = 9
	BlackKnight Piece = 10
	BlackBishop Piece = 11
	BlackRook   Piece = 12
	BlackQueen  Piece = 13
	BlackKing   Piece = 14
)

// NewPiece creates a Piece from a Color and a PieceType.
func NewPiece(c Color, pt PieceType) Piece {
	return Piece(uint8(c)<<3 | uint8(pt))
}

// Type returns the PieceType of the piece.
func (p Piece) Type() PieceType {
	return PieceType(p & 7)
}

// Color returns the Color of the piece. Only meaningful for non-empty pieces.
func (p Piece) Color() Color {
	return Color(p >> 3)
}

// IsSlider returns true for bishops, rooks and queens.
func (p Piece) IsSlider() bool {
	t := p.Type()
	return t >= Bishop && t <= Queen
}

// String returns the FEN character for the piece.
func (p Piece) String() string {
	switch p {
	case WhitePawn:
		return "P"
	case WhiteKnight:
		return "N"
	case WhiteBishop:
		return "B"
	case WhiteRook:
		return "R"
	case WhiteQueen:
		return "Q"
	case WhiteKing:
		return "K"
	case BlackPawn:
		return "p"
	case BlackKnight:
		return "n"
	case BlackBishop:
		return "b"
	case BlackRook:
		return "r"
	case BlackQueen:
		return "q"
	case BlackKing:
		return "k"
	}
	return " "
}

// PieceFromChar converts a FEN character to a Piece, or Empty if unknown.
func PieceFromChar(c byte) Piece {
	switch c {
	case 'P':
		return WhitePawn
	case 'N':
		return WhiteKnight
	case 'B':
		return WhiteBishop
	case 'R':
		return WhiteRook
	case 'Q':
		return WhiteQueen
	case 'K':
		return WhiteKing
	case 'p':
		return BlackPawn
	case 'n':
		return BlackKnight
	case 'b':
		return BlackBishop
	case 'r':
		return BlackRook
	case 'q':
		return BlackQueen
	case 'k':
		return BlackKing
	}
	return Empty
}
