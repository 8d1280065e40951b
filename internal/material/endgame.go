package material

import (
	"fmt"
	"strings"

	"github.com/greenbean52/stockfish-1/internal/board"
)

// EndgameFunctions holds the two keyed maps the material classifier
// queries: material key to specialized evaluation, and material key to
// scaling function plus the strong side it applies to. Both maps are
// populated once at construction; each search task owns its own instance,
// so no locking is needed.
type EndgameFunctions struct {
	evalMap  map[board.Key]EvalFunc
	scaleMap map[board.Key]scalingInfo

	knnkKey board.Key
	kknnKey board.Key
}

type scalingInfo struct {
	color board.Color
	fn    ScaleFunc
}

// NewEndgameFunctions builds the registry. Each entry is described by a
// compact material code such as "KBPK" (white king, bishop and pawn against
// the bare black king); the first K starts the white pieces, the second the
// black ones.
func NewEndgameFunctions() *EndgameFunctions {
	ef := &EndgameFunctions{
		evalMap:  make(map[board.Key]EvalFunc),
		scaleMap: make(map[board.Key]scalingInfo),
	}

	ef.knnkKey = buildKey("KNNK")
	ef.kknnKey = buildKey("KKNN")

	ef.add("KPK", evaluateKPK(board.White))
	ef.add("KKP", evaluateKPK(board.Black))
	ef.add("KBNK", evaluateKBNK(board.White))
	ef.add("KKBN", evaluateKBNK(board.Black))
	ef.add("KRKP", evaluateKRKP(board.White))
	ef.add("KPKR", evaluateKRKP(board.Black))
	ef.add("KRKB", evaluateKRKB(board.White))
	ef.add("KBKR", evaluateKRKB(board.Black))
	ef.add("KRKN", evaluateKRKN(board.White))
	ef.add("KNKR", evaluateKRKN(board.Black))
	ef.add("KQKR", evaluateKQKR(board.White))
	ef.add("KRKQ", evaluateKQKR(board.Black))
	ef.add("KBBKN", evaluateKBBKN(board.White))
	ef.add("KNKBB", evaluateKBBKN(board.Black))

	ef.addScaling("KNPK", board.White, scaleKNPK(board.White))
	ef.addScaling("KKNP", board.Black, scaleKNPK(board.Black))
	ef.addScaling("KRPKR", board.White, scaleKRPKR(board.White))
	ef.addScaling("KRKRP", board.Black, scaleKRPKR(board.Black))
	ef.addScaling("KBPKB", board.White, scaleKBPKB(board.White))
	ef.addScaling("KBKBP", board.Black, scaleKBPKB(board.Black))
	ef.addScaling("KBPPKB", board.White, scaleKBPPKB(board.White))
	ef.addScaling("KBKBPP", board.Black, scaleKBPPKB(board.Black))
	ef.addScaling("KBPKN", board.White, scaleKBPKN(board.White))
	ef.addScaling("KNKBP", board.Black, scaleKBPKN(board.Black))
	ef.addScaling("KRPPKRP", board.White, scaleKRPPKRP(board.White))
	ef.addScaling("KRPKRPP", board.Black, scaleKRPPKRP(board.Black))
	ef.addScaling("KRPPKRP", board.White, scaleKRPPKRP(board.White))
	ef.addScaling("KRPKRPP", board.Black, scaleKRPPKRP(board.Black))

	return ef
}

func (ef *EndgameFunctions) add(code string, fn EvalFunc) {
	ef.evalMap[buildKey(code)] = fn
}

func (ef *EndgameFunctions) addScaling(code string, c board.Color, fn ScaleFunc) {
	ef.scaleMap[buildKey(code)] = scalingInfo{color: c, fn: fn}
}

func (ef *EndgameFunctions) evaluation(key board.Key) (EvalFunc, bool) {
	fn, ok := ef.evalMap[key]
	return fn, ok
}

func (ef *EndgameFunctions) scaling(key board.Key) (ScaleFunc, board.Color, bool) {
	si, ok := ef.scaleMap[key]
	return si.fn, si.color, ok
}

// buildKey turns a material code into a material key by synthesizing a
// minimal position with exactly those pieces and hashing it through the
// same pipeline live positions use. The placement is irrelevant: the
// material key depends only on the piece counts. White pieces go on ranks
// 1-2, black on ranks 7-8, which keeps the synthetic FEN legal.
func buildKey(code string) board.Key {
	if len(code) == 0 || len(code) >= 8 || code[0] != 'K' {
		panic(fmt.Sprintf("bad material code %q", code))
	}
	second := strings.IndexByte(code[1:], 'K')
	if second < 0 {
		panic(fmt.Sprintf("material code %q has no black king", code))
	}
	white, black := code[1:second+1], code[second+2:]

	rank := func(pieces string, king bool, lower bool) (backRank, pawnRank string) {
		back, pawns := "", ""
		if king {
			back = "K"
		}
		for i := 0; i < len(pieces); i++ {
			if pieces[i] == 'P' {
				pawns += "P"
			} else {
				back += string(pieces[i])
			}
		}
		if lower {
			back, pawns = strings.ToLower(back), strings.ToLower(pawns)
		}
		return pad(back), pad(pawns)
	}

	wBack, wPawns := rank(white, true, false)
	bBack, bPawns := rank(black, true, true)

	fen := fmt.Sprintf("%s/%s/8/8/8/8/%s/%s w - - 0 1", bBack, bPawns, wPawns, wBack)
	pos, err := board.ParseFEN(fen)
	if err != nil {
		panic(fmt.Sprintf("material code %q produced bad FEN %q: %v", code, fen, err))
	}
	return pos.MaterialKey()
}

func pad(pieces string) string {
	if len(pieces) == 8 {
		return pieces
	}
	if len(pieces) == 0 {
		return "8"
	}
	return fmt.Sprintf("%s%d", pieces, 8-len(pieces))
}

// Tables shared by the mating evaluations: drive the weak king to the edge
// and pull the kings together.
var mateTable = [64]int{
	100, 90, 80, 70, 70, 80, 90, 100,
	90, 70, 60, 50, 50, 60, 70, 90,
	80, 60, 40, 30, 30, 40, 60, 80,
	70, 50, 30, 20, 20, 30, 50, 70,
	70, 50, 30, 20, 20, 30, 50, 70,
	80, 60, 40, 30, 30, 40, 60, 80,
	90, 70, 60, 50, 50, 60, 70, 90,
	100, 90, 80, 70, 70, 80, 90, 100,
}

var distanceBonus = [8]int{0, 0, 100, 80, 60, 40, 20, 10}

// relative flips the strong-side value into the side to move's perspective.
func relative(pos *board.Position, strong board.Color, v board.Value) board.Value {
	if pos.SideToMove() == strong {
		return v
	}
	return -v
}

// evaluateKXK handles the generic "win with a big material lead against a
// bare king": material plus mating-net bonuses, above the known-win floor.
func evaluateKXK(strong board.Color) EvalFunc {
	return func(pos *board.Position) board.Value {
		weak := strong.Other()
		winnerK := pos.KingSquare(strong)
		loserK := pos.KingSquare(weak)

		result := board.ValueKnownWin +
			pos.NonPawnMaterial(strong) +
			board.Value(pos.PieceCount(strong, board.Pawn))*board.PawnValueEndgame +
			board.Value(mateTable[loserK]) +
			board.Value(distanceBonus[board.SquareDistance(winnerK, loserK)])

		return relative(pos, strong, result)
	}
}

// evaluateKmmKm: two minors against one or two minors is a well-known
// near-draw, KBB vs KN excepted (registered separately).
func evaluateKmmKm(pos *board.Position) board.Value {
	return board.ValueDraw
}

// evaluateKBNK mates in the corner the bishop controls.
func evaluateKBNK(strong board.Color) EvalFunc {
	return func(pos *board.Position) board.Value {
		weak := strong.Other()
		winnerK := pos.KingSquare(strong)
		loserK := pos.KingSquare(weak)
		bishopSq := pos.PieceSquare(strong, board.Bishop, 0)

		// Corners of the bishop's square color.
		c1, c2 := board.A1, board.H8
		if bishopSq.Color() == board.White {
			c1, c2 = board.A8, board.H1
		}
		cornerDist := board.SquareDistance(loserK, c1)
		if d := board.SquareDistance(loserK, c2); d < cornerDist {
			cornerDist = d
		}

		result := board.ValueKnownWin +
			board.Value(distanceBonus[board.SquareDistance(winnerK, loserK)]) +
			board.Value((7-cornerDist)*50)

		return relative(pos, strong, result)
	}
}

// evaluateKPK is a heuristic stand-in for the full bitbase: a defending
// king that reaches the square in front of the pawn with the attacker
// behind holds the draw, everything else counts as winning progress.
func evaluateKPK(strong board.Color) EvalFunc {
	return func(pos *board.Position) board.Value {
		weak := strong.Other()
		psq := pos.PieceSquare(strong, board.Pawn, 0)
		winnerK := pos.KingSquare(strong)
		loserK := pos.KingSquare(weak)

		frontFile := board.SquaresInFront(strong, psq)
		if frontFile.IsSet(loserK) &&
			board.SquareDistance(loserK, psq) <= board.SquareDistance(winnerK, psq) {
			return board.ValueDraw
		}

		result := board.PawnValueEndgame +
			board.Value(psq.RelativeRank(strong)*20) +
			board.Value(distanceBonus[board.SquareDistance(winnerK, psq)]/10)

		return relative(pos, strong, result)
	}
}

// evaluateKRKP: rook against pawn, won unless the pawn runs home with its
// king while the rook's king is far away.
func evaluateKRKP(strong board.Color) EvalFunc {
	return func(pos *board.Position) board.Value {
		weak := strong.Other()
		psq := pos.PieceSquare(weak, board.Pawn, 0)
		winnerK := pos.KingSquare(strong)
		loserK := pos.KingSquare(weak)

		promDist := 7 - psq.RelativeRank(weak)
		pawnRuns := board.SquareDistance(loserK, psq) <= 1 &&
			board.SquareDistance(winnerK, psq) > promDist

		var result board.Value
		if pawnRuns {
			result = board.Value(40) // likely drawn, keep a nudge for the rook
		} else {
			result = board.RookValueEndgame - board.PawnValueEndgame +
				board.Value(promDist*20) -
				board.Value(board.SquareDistance(winnerK, psq)*10)
		}
		return relative(pos, strong, result)
	}
}

// evaluateKRKB and evaluateKRKN: theoretically drawn, but the defender can
// lose on the edge, so push the weak king outward.
func evaluateKRKB(strong board.Color) EvalFunc {
	return func(pos *board.Position) board.Value {
		loserK := pos.KingSquare(strong.Other())
		return relative(pos, strong, board.Value(mateTable[loserK]/2))
	}
}

func evaluateKRKN(strong board.Color) EvalFunc {
	return func(pos *board.Position) board.Value {
		weak := strong.Other()
		loserK := pos.KingSquare(weak)
		knightSq := pos.PieceSquare(weak, board.Knight, 0)
		// A knight separated from its king is in danger.
		result := board.Value(mateTable[loserK]/2) +
			board.Value(board.SquareDistance(loserK, knightSq)*8)
		return relative(pos, strong, result)
	}
}

// evaluateKQKR: a win, driven home by edge and king-distance bonuses.
func evaluateKQKR(strong board.Color) EvalFunc {
	return func(pos *board.Position) board.Value {
		weak := strong.Other()
		winnerK := pos.KingSquare(strong)
		loserK := pos.KingSquare(weak)

		result := board.QueenValueEndgame - board.RookValueEndgame +
			board.Value(mateTable[loserK]) +
			board.Value(distanceBonus[board.SquareDistance(winnerK, loserK)])

		return relative(pos, strong, result)
	}
}

// evaluateKBBKN: two bishops beat a knight slowly; keep the score well
// below a known win but drive the defender to the edge.
func evaluateKBBKN(strong board.Color) EvalFunc {
	return func(pos *board.Position) board.Value {
		weak := strong.Other()
		winnerK := pos.KingSquare(strong)
		loserK := pos.KingSquare(weak)
		knightSq := pos.PieceSquare(weak, board.Knight, 0)

		result := board.BishopValueEndgame +
			board.Value(mateTable[loserK]/2) +
			board.Value(distanceBonus[board.SquareDistance(winnerK, loserK)]/2) +
			board.Value(board.SquareDistance(loserK, knightSq)*8)

		return relative(pos, strong, result)
	}
}

// Scaling functions. Each returns ScaleFactorNone when its pattern does not
// apply, letting the classifier's static factor stand.

// scaleKBPsK: bishop and pawns where every pawn sits on a rook file whose
// promotion corner the bishop does not control is a draw once the
// defending king reaches the corner.
func scaleKBPsK(strong board.Color) ScaleFunc {
	return func(pos *board.Position) ScaleFactor {
		weak := strong.Other()
		pawns := pos.Pawns(strong)
		bishopSq := pos.PieceSquare(strong, board.Bishop, 0)

		for _, file := range []struct {
			mask board.Bitboard
			prom board.Square
		}{
			{board.FileA, board.RelativeSquare(strong, board.A8)},
			{board.FileH, board.RelativeSquare(strong, board.H8)},
		} {
			if pawns&^file.mask == 0 &&
				file.prom.Color() != bishopSq.Color() &&
				board.SquareDistance(pos.KingSquare(weak), file.prom) <= 1 {
				return ScaleFactorZero
			}
		}
		return ScaleFactorNone
	}
}

// scaleKQKRPs: a rook on the third rank shielded by a pawn and backed by
// its king is a fortress the queen cannot break.
func scaleKQKRPs(strong board.Color) ScaleFunc {
	return func(pos *board.Position) ScaleFactor {
		weak := strong.Other()
		ksq := pos.KingSquare(weak)
		rsq := pos.PieceSquare(weak, board.Rook, 0)

		if ksq.RelativeRank(weak) <= board.Rank2Idx &&
			rsq.RelativeRank(weak) == board.Rank3Idx &&
			pos.Pawns(weak)&board.PawnAttacks(strong, rsq) != 0 &&
			board.SquareDistance(ksq, rsq) <= 2 {
			return ScaleFactor(16)
		}
		return ScaleFactorNone
	}
}

// scaleKPsK: pawns against a bare king only fail on a rook file with the
// defending king in the corner.
func scaleKPsK(strong board.Color) ScaleFunc {
	return func(pos *board.Position) ScaleFactor {
		weak := strong.Other()
		pawns := pos.Pawns(strong)

		for _, file := range []struct {
			mask board.Bitboard
			prom board.Square
		}{
			{board.FileA, board.RelativeSquare(strong, board.A8)},
			{board.FileH, board.RelativeSquare(strong, board.H8)},
		} {
			if pawns&^file.mask == 0 &&
				board.SquareDistance(pos.KingSquare(weak), file.prom) <= 1 {
				return ScaleFactorZero
			}
		}
		return ScaleFactorNone
	}
}

// scaleKPKP: with the defending king planted in front of the pawn the
// single-pawn ending is dead.
func scaleKPKP(strong board.Color) ScaleFunc {
	return func(pos *board.Position) ScaleFactor {
		weak := strong.Other()
		psq := pos.PieceSquare(strong, board.Pawn, 0)
		loserK := pos.KingSquare(weak)
		winnerK := pos.KingSquare(strong)

		frontFile := board.SquaresInFront(strong, psq)
		if frontFile.IsSet(loserK) &&
			board.SquareDistance(loserK, psq) <= board.SquareDistance(winnerK, psq) {
			return ScaleFactorZero
		}
		return ScaleFactorNone
	}
}

// scaleKNPK: knight and rook-file pawn on the seventh is a draw with the
// defending king in the corner.
func scaleKNPK(strong board.Color) ScaleFunc {
	return func(pos *board.Position) ScaleFactor {
		weak := strong.Other()
		psq := pos.PieceSquare(strong, board.Pawn, 0)

		if psq == board.RelativeSquare(strong, board.A7) &&
			board.SquareDistance(pos.KingSquare(weak), board.RelativeSquare(strong, board.A8)) <= 1 {
			return ScaleFactorZero
		}
		if psq == board.RelativeSquare(strong, board.H7) &&
			board.SquareDistance(pos.KingSquare(weak), board.RelativeSquare(strong, board.H8)) <= 1 {
			return ScaleFactorZero
		}
		return ScaleFactorNone
	}
}

// scaleKRPKR: the Philidor position; with the defending king on the pawn's
// promotion path the ending is drawish.
func scaleKRPKR(strong board.Color) ScaleFunc {
	return func(pos *board.Position) ScaleFactor {
		weak := strong.Other()
		psq := pos.PieceSquare(strong, board.Pawn, 0)
		frontFile := board.SquaresInFront(strong, psq)

		if frontFile.IsSet(pos.KingSquare(weak)) {
			return ScaleFactor(16)
		}
		return ScaleFactorNone
	}
}

// scaleKBPKB: with the defending king on the pawn's path a lone extra pawn
// in a same- or opposite-bishop ending goes nowhere.
func scaleKBPKB(strong board.Color) ScaleFunc {
	return func(pos *board.Position) ScaleFactor {
		weak := strong.Other()
		psq := pos.PieceSquare(strong, board.Pawn, 0)
		frontFile := board.SquaresInFront(strong, psq)

		if frontFile.IsSet(pos.KingSquare(weak)) {
			return ScaleFactorZero
		}
		if pos.OppositeColoredBishops() {
			return ScaleFactor(8)
		}
		return ScaleFactorNone
	}
}

// scaleKBPPKB: two extra pawns still draw against a blockading king in an
// opposite-bishop ending.
func scaleKBPPKB(strong board.Color) ScaleFunc {
	return func(pos *board.Position) ScaleFactor {
		if !pos.OppositeColoredBishops() {
			return ScaleFactorNone
		}
		weak := strong.Other()
		loserK := pos.KingSquare(weak)
		for i := 0; i < 2; i++ {
			psq := pos.PieceSquare(strong, board.Pawn, i)
			frontFile := board.SquaresInFront(strong, psq)
			if !frontFile.IsSet(loserK) && board.SquareDistance(loserK, psq) > 2 {
				return ScaleFactorNone
			}
		}
		return ScaleFactor(8)
	}
}

// scaleKBPKN: a knight blockading on the pawn's path holds the draw.
func scaleKBPKN(strong board.Color) ScaleFunc {
	return func(pos *board.Position) ScaleFactor {
		weak := strong.Other()
		psq := pos.PieceSquare(strong, board.Pawn, 0)
		frontFile := board.SquaresInFront(strong, psq)

		if frontFile.IsSet(pos.KingSquare(weak)) ||
			frontFile.IsSet(pos.PieceSquare(weak, board.Knight, 0)) {
			return ScaleFactorZero
		}
		return ScaleFactorNone
	}
}

// scaleKRPPKRP: without a passed pawn the extra pawn rarely converts.
func scaleKRPPKRP(strong board.Color) ScaleFunc {
	return func(pos *board.Position) ScaleFactor {
		for i := 0; i < pos.PieceCount(strong, board.Pawn); i++ {
			if pos.PawnIsPassed(strong, pos.PieceSquare(strong, board.Pawn, i)) {
				return ScaleFactorNone
			}
		}
		return ScaleFactor(32)
	}
}
