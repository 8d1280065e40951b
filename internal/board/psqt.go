package board

// Piece-square tables. The positional bonus arrays are written from White's
// point of view with rank 8 on the first line; the init code flips them into
// square order, adds the material value of the piece, and negates the black
// entries, so the incremental mg/eg sums always read "positive is good for
// White".

var pawnBonus = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	50, 50, 50, 50, 50, 50, 50, 50,
	10, 10, 20, 30, 30, 20, 10, 10,
	5, 5, 10, 25, 25, 10, 5, 5,
	0, 0, 0, 20, 20, 0, 0, 0,
	5, -5, -10, 0, 0, -10, -5, 5,
	5, 10, 10, -20, -20, 10, 10, 5,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var knightBonus = [64]int{
	-50, -40, -30, -30, -30, -30, -40, -50,
	-40, -20, 0, 0, 0, 0, -20, -40,
	-30, 0, 10, 15, 15, 10, 0, -30,
	-30, 5, 15, 20, 20, 15, 5, -30,
	-30, 0, 15, 20, 20, 15, 0, -30,
	-30, 5, 10, 15, 15, 10, 5, -30,
	-40, -20, 0, 5, 5, 0, -20, -40,
	-50, -40, -30, -30, -30, -30, -40, -50,
}

var bishopBonus = [64]int{
	-20, -10, -10, -10, -10, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 10, 10, 5, 0, -10,
	-10, 5, 5, 10, 10, 5, 5, -10,
	-10, 0, 10, 10, 10, 10, 0, -10,
	-10, 10, 10, 10, 10, 10, 10, -10,
	-10, 5, 0, 0, 0, 0, 5, -10,
	-20, -10, -10, -10, -10, -10, -10, -20,
}

var rookBonus = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	5, 10, 10, 10, 10, 10, 10, 5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	0, 0, 0, 5, 5, 0, 0, 0,
}

var queenBonus = [64]int{
	-20, -10, -10, -5, -5, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 5, 5, 5, 0, -10,
	-5, 0, 5, 5, 5, 5, 0, -5,
	0, 0, 5, 5, 5, 5, 0, -5,
	-10, 5, 5, 5, 5, 5, 0, -10,
	-10, 0, 5, 0, 0, 0, 0, -10,
	-20, -10, -10, -5, -5, -10, -10, -20,
}

var kingMidgameBonus = [64]int{
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-20, -30, -30, -40, -40, -30, -30, -20,
	-10, -20, -20, -20, -20, -20, -20, -10,
	20, 20, 0, 0, 0, 0, 20, 20,
	20, 30, 10, 0, 0, 10, 30, 20,
}

var kingEndgameBonus = [64]int{
	-50, -40, -30, -20, -20, -30, -40, -50,
	-30, -20, -10, 0, 0, -10, -20, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -30, 0, 0, 0, 0, -30, -30,
	-50, -30, -30, -30, -30, -30, -30, -50,
}

// Tables indexed by [Piece][Square].
var (
	mgPieceSquareTable [16][64]Value
	egPieceSquareTable [16][64]Value
)

func initPieceSquareTables() {
	type entry struct {
		pt      PieceType
		mg, eg  *[64]int
	}
	entries := []entry{
		{Pawn, &pawnBonus, &pawnBonus},
		{Knight, &knightBonus, &knightBonus},
		{Bishop, &bishopBonus, &bishopBonus},
		{Rook, &rookBonus, &rookBonus},
		{Queen, &queenBonus, &queenBonus},
		{King, &kingMidgameBonus, &kingEndgameBonus},
	}
	for _, e := range entries {
		for sq := A1; sq <= H8; sq++ {
			// Bonus arrays are written with rank 8 first.
			tableSq := NewSquare(sq.File(), 7-sq.Rank())
			mg := e.pt.MidgameValue() + Value(e.mg[tableSq])
			eg := e.pt.EndgameValue() + Value(e.eg[tableSq])

			white := NewPiece(White, e.pt)
			black := NewPiece(Black, e.pt)
			mgPieceSquareTable[white][sq] = mg
			egPieceSquareTable[white][sq] = eg
			mgPieceSquareTable[black][sq.Mirror()] = -mg
			egPieceSquareTable[black][sq.Mirror()] = -eg
		}
	}
}

// MgPst returns the middle-game piece-square value for a piece on a square.
func MgPst(p Piece, sq Square) Value {
	return mgPieceSquareTable[p][sq]
}

// EgPst returns the endgame piece-square value for a piece on a square.
func EgPst(p Piece, sq Square) Value {
	return egPieceSquareTable[p][sq]
}

// PstDeltaMg returns the middle-game score change when a piece moves.
func PstDeltaMg(p Piece, from, to Square) Value {
	return mgPieceSquareTable[p][to] - mgPieceSquareTable[p][from]
}

// PstDeltaEg returns the endgame score change when a piece moves.
func PstDeltaEg(p Piece, from, to Square) Value {
	return egPieceSquareTable[p][to] - egPieceSquareTable[p][from]
}
