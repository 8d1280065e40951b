package engine

import (
	"github.com/greenbean52/stockfish-1/internal/board"
	"github.com/greenbean52/stockfish-1/internal/material"
)

// Tempo bonus for having the move.
const tempoBonus board.Value = 10

// Space zones: files c-f from one's second to fifth rank, where safe
// squares count while the armies are still large.
var spaceZone = [2]board.Bitboard{
	(board.FileC | board.FileD | board.FileE | board.FileF) &
		(board.Rank2 | board.Rank3 | board.Rank4 | board.Rank5),
	(board.FileC | board.FileD | board.FileE | board.FileF) &
		(board.Rank4 | board.Rank5 | board.Rank6 | board.Rank7),
}

// Evaluate returns the positional score from the side to move's
// perspective. The material classifier short-circuits recognized endgames;
// otherwise the incremental piece-square sums and the material imbalance
// are interpolated by game phase, with the endgame half scaled by the
// classifier's factor for the leading side.
func Evaluate(pos *board.Position, mt *material.InfoTable) board.Value {
	mi := mt.Get(pos)

	if mi.SpecializedEvalExists() {
		return mi.Evaluate(pos)
	}

	mg := pos.MgValue() + mi.MgValue()
	eg := pos.EgValue() + mi.EgValue()

	if w := mi.SpaceWeight(); w > 0 {
		mg += board.Value(w*(spaceCount(pos, board.White)-spaceCount(pos, board.Black))) / 4
	}

	sf := mi.Scale(pos, board.White)
	if eg < 0 {
		sf = mi.Scale(pos, board.Black)
	}
	eg = eg * board.Value(sf) / board.Value(material.ScaleFactorNormal)

	phase := board.Value(pos.GamePhase())
	v := (mg*phase + eg*(128-phase)) / 128

	if pos.SideToMove() == board.Black {
		v = -v
	}
	return v + tempoBonus
}

// spaceCount counts the safe squares in c's space zone: not occupied by
// its own pawns and not attacked by enemy pawns.
func spaceCount(pos *board.Position, c board.Color) int {
	them := c.Other()
	var enemyPawnAttacks board.Bitboard
	pawns := pos.Pawns(them)
	for pawns != 0 {
		enemyPawnAttacks |= board.PawnAttacks(them, pawns.PopLSB())
	}
	safe := spaceZone[c] &^ pos.Pawns(c) &^ enemyPawnAttacks
	return safe.PopCount()
}
