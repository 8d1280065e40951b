package engine

import (
	"sync/atomic"
	"time"

	"github.com/greenbean52/stockfish-1/internal/board"
	"github.com/greenbean52/stockfish-1/internal/material"
)

// Search depth and score bounds.
const (
	MaxPly    = 100
	MateScore = board.ValueMate
)

// Limits carries the go-command search constraints.
type Limits struct {
	Depth     int
	Nodes     uint64
	MoveTime  time.Duration
	WTime     time.Duration
	BTime     time.Duration
	WInc      time.Duration
	BInc      time.Duration
	MovesToGo int
	Infinite  bool
}

// Info is a progress report emitted once per completed iteration.
type Info struct {
	Depth int
	Score board.Value
	Nodes uint64
	Time  time.Duration
	PV    []board.Move
}

// Searcher runs iterative-deepening alpha-beta on a position it owns for
// the duration of the search. The transposition table may be shared with
// other searchers; the material table is private, so its cache needs no
// locks.
type Searcher struct {
	tt  *TranspositionTable
	mat *material.InfoTable

	stop  atomic.Bool
	nodes uint64

	states   [MaxPly + 2]board.StateInfo
	pv       [MaxPly + 2][MaxPly + 2]board.Move
	pvLen    [MaxPly + 2]int
	deadline time.Time
	timed    bool
}

// NewSearcher creates a searcher around a (possibly shared) transposition
// table and its own material cache.
func NewSearcher(tt *TranspositionTable) *Searcher {
	return &Searcher{
		tt:  tt,
		mat: material.NewInfoTable(1024),
	}
}

// Stop aborts the search at the next node boundary.
func (s *Searcher) Stop() {
	s.stop.Store(true)
}

// Nodes returns the node count of the last search.
func (s *Searcher) Nodes() uint64 {
	return s.nodes
}

// Evaluate scores the searcher's position statically, a debugging hook for
// the protocol layer.
func (s *Searcher) Evaluate(pos *board.Position) board.Value {
	return Evaluate(pos, s.mat)
}

// Search picks the best move under the given limits. The progress callback
// fires after every completed iteration.
func (s *Searcher) Search(pos *board.Position, limits Limits, progress func(Info)) board.Move {
	s.stop.Store(false)
	s.nodes = 0
	s.tt.NewSearch()
	s.allocateTime(pos, limits)

	start := time.Now()
	best := board.MoveNone

	maxDepth := limits.Depth
	if maxDepth <= 0 || maxDepth > MaxPly {
		maxDepth = MaxPly
	}

	for depth := 1; depth <= maxDepth; depth++ {
		score := s.alphaBeta(pos, depth, -board.ValueInfinite, board.ValueInfinite, 0)
		if s.stop.Load() {
			break
		}
		best = s.pv[0][0]
		pv := append([]board.Move(nil), s.pv[0][:s.pvLen[0]]...)
		s.tt.InsertPV(pos, pv)
		if progress != nil {
			progress(Info{
				Depth: depth,
				Score: score,
				Nodes: s.nodes,
				Time:  time.Since(start),
				PV:    pv,
			})
		}
		if limits.Nodes > 0 && s.nodes >= limits.Nodes {
			break
		}
		// A found mate will not improve.
		if score > MateScore-MaxPly || score < -MateScore+MaxPly {
			break
		}
	}

	if best == board.MoveNone {
		// Interrupted before depth 1 finished: play anything legal.
		if ml := pos.GenerateLegalMoves(); ml.Len() > 0 {
			best = ml.Get(0)
		}
	}
	return best
}

func (s *Searcher) allocateTime(pos *board.Position, limits Limits) {
	s.timed = false
	if limits.Infinite {
		return
	}
	if limits.MoveTime > 0 {
		s.deadline = time.Now().Add(limits.MoveTime)
		s.timed = true
		return
	}

	remaining, inc := limits.WTime, limits.WInc
	if pos.SideToMove() == board.Black {
		remaining, inc = limits.BTime, limits.BInc
	}
	if remaining <= 0 {
		return
	}
	movesToGo := limits.MovesToGo
	if movesToGo <= 0 {
		movesToGo = 30
	}
	budget := remaining/time.Duration(movesToGo) + inc*4/5
	if budget > remaining/2 {
		budget = remaining / 2
	}
	s.deadline = time.Now().Add(budget)
	s.timed = true
}

func (s *Searcher) outOfTime() bool {
	return s.timed && time.Now().After(s.deadline)
}

func (s *Searcher) alphaBeta(pos *board.Position, depth int, alpha, beta board.Value, ply int) board.Value {
	s.pvLen[ply] = 0
	s.nodes++
	if s.nodes&1023 == 0 && s.outOfTime() {
		s.stop.Store(true)
	}
	if s.stop.Load() {
		return 0
	}

	if ply > 0 && pos.IsDraw() {
		return board.ValueDraw
	}
	if ply >= MaxPly {
		return Evaluate(pos, s.mat)
	}

	ttMove := board.MoveNone
	if entry := s.tt.Retrieve(pos.Key()); entry != nil {
		e := *entry // copy out of the shared table before reading twice
		ttMove = e.Move()
		if ply > 0 && e.Depth() >= depth {
			v := valueFromTT(e.Value(), ply)
			switch e.Type() {
			case ValueTypeExact:
				return v
			case ValueTypeLower:
				if v >= beta {
					return v
				}
			case ValueTypeUpper:
				if v <= alpha {
					return v
				}
			}
		}
	}

	if depth <= 0 {
		return s.quiescence(pos, alpha, beta, ply)
	}

	// Null move pruning: skip a turn and see if the reduced search still
	// fails high. Not while in check, and not in pawn endings, where
	// zugzwang makes the bound unsound.
	if ply > 0 && depth >= 3 && !pos.IsCheck() &&
		pos.NonPawnMaterial(pos.SideToMove()) > 0 {
		var nullSt board.StateInfo
		pos.DoNullMove(&nullSt)
		v := -s.alphaBeta(pos, depth-3, -beta, -beta+1, ply+1)
		pos.UndoNullMove()
		if v >= beta && v < MateScore-MaxPly {
			return v
		}
	}

	moves := pos.GenerateLegalMoves()
	if moves.Len() == 0 {
		if pos.IsCheck() {
			return -MateScore + board.Value(ply)
		}
		return board.ValueDraw
	}
	s.orderMoves(pos, moves, ttMove)

	bestValue := -board.ValueInfinite
	bestMove := board.MoveNone
	valueType := ValueTypeUpper

	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		pos.DoMove(m, &s.states[ply])
		v := -s.alphaBeta(pos, depth-1, -beta, -alpha, ply+1)
		pos.UndoMove(m)

		if s.stop.Load() {
			return 0
		}
		if v > bestValue {
			bestValue = v
			bestMove = m
			if v > alpha {
				alpha = v
				valueType = ValueTypeExact
				s.updatePV(ply, m)
				if alpha >= beta {
					valueType = ValueTypeLower
					break
				}
			}
		}
	}

	s.tt.Store(pos.Key(), valueToTT(bestValue, ply), valueType, depth, bestMove)
	return bestValue
}

func (s *Searcher) quiescence(pos *board.Position, alpha, beta board.Value, ply int) board.Value {
	s.pvLen[ply] = 0
	s.nodes++
	if s.stop.Load() || ply >= MaxPly {
		return Evaluate(pos, s.mat)
	}

	inCheck := pos.IsCheck()
	if !inCheck {
		standPat := Evaluate(pos, s.mat)
		if standPat >= beta {
			return standPat
		}
		if standPat > alpha {
			alpha = standPat
		}
	}

	moves := pos.GenerateCaptures()
	if inCheck && moves.Len() == 0 {
		return -MateScore + board.Value(ply)
	}
	s.orderMoves(pos, moves, board.MoveNone)

	bestValue := alpha
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		pos.DoMove(m, &s.states[ply])
		v := -s.quiescence(pos, -beta, -alpha, ply+1)
		pos.UndoMove(m)

		if v > bestValue {
			bestValue = v
			if v > alpha {
				alpha = v
				if alpha >= beta {
					break
				}
			}
		}
	}
	return bestValue
}

// orderMoves sorts the TT move first, then captures by most valuable
// victim / least valuable attacker.
func (s *Searcher) orderMoves(pos *board.Position, ml *board.MoveList, ttMove board.Move) {
	scores := make([]int, ml.Len())
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		switch {
		case m == ttMove:
			scores[i] = 1 << 20
		case m.IsEnPassant():
			scores[i] = 1 << 10
		default:
			if victim := pos.PieceOn(m.To()); victim != board.Empty {
				attacker := pos.PieceOn(m.From())
				scores[i] = 1<<10 + int(victim.Type().MidgameValue()) - int(attacker.Type())
			}
		}
	}
	// Insertion sort: the lists are short and mostly ordered.
	for i := 1; i < ml.Len(); i++ {
		for j := i; j > 0 && scores[j] > scores[j-1]; j-- {
			scores[j], scores[j-1] = scores[j-1], scores[j]
			ml.Swap(j, j-1)
		}
	}
}

func (s *Searcher) updatePV(ply int, m board.Move) {
	s.pv[ply][0] = m
	copy(s.pv[ply][1:], s.pv[ply+1][:s.pvLen[ply+1]])
	s.pvLen[ply] = s.pvLen[ply+1] + 1
}

// Mate scores are stored relative to the node, not the root, so they stay
// valid when the entry is reached along a different path.
func valueToTT(v board.Value, ply int) board.Value {
	if v > MateScore-MaxPly {
		return v + board.Value(ply)
	}
	if v < -MateScore+MaxPly {
		return v - board.Value(ply)
	}
	return v
}

func valueFromTT(v board.Value, ply int) board.Value {
	if v > MateScore-MaxPly {
		return v - board.Value(ply)
	}
	if v < -MateScore+MaxPly {
		return v + board.Value(ply)
	}
	return v
}
