package board

import "testing"

// applyMoves plays a sequence of long-algebraic moves, failing the test on
// any illegal move. The returned states keep the snapshots alive.
func applyMoves(t *testing.T, pos *Position, moves ...string) []StateInfo {
	t.Helper()
	states := make([]StateInfo, len(moves))
	for i, s := range moves {
		m, err := pos.MoveFromUCI(s)
		if err != nil {
			t.Fatalf("move %q: %v", s, err)
		}
		pos.DoMove(m, &states[i])
		if ok, step := pos.IsOK(); !ok {
			t.Fatalf("IsOK failed at step %d after %q", step, s)
		}
	}
	return states
}

func TestDoMoveScholarOpening(t *testing.T) {
	pos := NewPosition()
	_ = applyMoves(t, pos, "e2e4", "e7e5", "g1f3")

	want := "rnbqkbnr/pppp1ppp/8/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq - 1 2"
	if got := pos.ToFEN(); got != want {
		t.Errorf("ToFEN = %s, want %s", got, want)
	}
}

func TestDoUndoRestoresPosition(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"4k3/8/8/8/pP6/8/8/4K3 b - b3 0 1",
		"r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1",
		"8/P6k/8/8/8/8/7K/8 w - - 0 1",
	}

	for _, fen := range fens {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}

		before := pos.ToFEN()
		key, pawnKey, materialKey := pos.Key(), pos.PawnKey(), pos.MaterialKey()
		checkers := pos.Checkers()
		rootState := pos.st

		moves := pos.GenerateLegalMoves()
		for i := 0; i < moves.Len(); i++ {
			m := moves.Get(i)
			var st StateInfo
			pos.DoMove(m, &st)
			if pos.st != &st || st.previous != rootState {
				t.Fatalf("%s: state linkage broken after %s", fen, m)
			}
			pos.UndoMove(m)

			if pos.st != rootState {
				t.Errorf("%s: state not unlinked after %s", fen, m)
			}
			if got := pos.ToFEN(); got != before {
				t.Errorf("%s: undo of %s left %s", fen, m, got)
			}
			if pos.Key() != key || pos.PawnKey() != pawnKey || pos.MaterialKey() != materialKey {
				t.Errorf("%s: keys changed after do/undo of %s", fen, m)
			}
			if pos.Checkers() != checkers {
				t.Errorf("%s: checkers changed after do/undo of %s", fen, m)
			}
		}
	}
}

// TestDoUndoNested checks the ordering guarantee: do A, do B, undo B,
// undo A restores bit-identical state.
func TestDoUndoNested(t *testing.T) {
	pos := NewPosition()
	before := pos.ToFEN()
	key := pos.Key()

	var st1, st2 StateInfo
	a, _ := pos.MoveFromUCI("d2d4")
	pos.DoMove(a, &st1)
	b, _ := pos.MoveFromUCI("g8f6")
	pos.DoMove(b, &st2)
	pos.UndoMove(b)
	pos.UndoMove(a)

	if got := pos.ToFEN(); got != before {
		t.Errorf("nested undo left %s", got)
	}
	if pos.Key() != key {
		t.Errorf("nested undo changed key")
	}
}

// TestRandomWalkInvariants plays deterministic pseudo-random games and
// checks after every ply that the incremental state matches a from-scratch
// recomputation and that do/undo round-trips.
func TestRandomWalkInvariants(t *testing.T) {
	rng := prng{state: 0xDADB0D} // fixed: the walk must be reproducible

	for game := 0; game < 20; game++ {
		pos := NewPosition()
		states := make([]StateInfo, 256)

		for ply := 0; ply < 120; ply++ {
			moves := pos.GenerateLegalMoves()
			if moves.Len() == 0 || pos.IsDraw() {
				break
			}
			m := moves.Get(int(rng.next() % uint64(moves.Len())))

			before := pos.ToFEN()
			var probe StateInfo
			pos.DoMove(m, &probe)
			pos.UndoMove(m)
			if got := pos.ToFEN(); got != before {
				t.Fatalf("game %d ply %d: do/undo of %s: %s != %s", game, ply, m, got, before)
			}

			pos.DoMove(m, &states[ply])
			if ok, step := pos.IsOK(); !ok {
				t.Fatalf("game %d ply %d: IsOK step %d after %s\n%s", game, ply, step, m, pos)
			}
		}
	}
}

func TestCastlingRightsUpdates(t *testing.T) {
	tests := []struct {
		name  string
		moves []string
		want  CastleRights
	}{
		{"king move clears side", []string{"e1e2"}, BlackOO | BlackOOO},
		{"kingside rook move", []string{"h1g1"}, WhiteOOO | BlackOO | BlackOOO},
		{"queenside rook move", []string{"a1b1"}, WhiteOO | BlackOO | BlackOOO},
		{"rook capture clears theirs", []string{"a1a8"}, WhiteOO | BlackOO},
		{"castling clears both own bits", []string{"e1g1"}, BlackOO | BlackOOO},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := ParseFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
			if err != nil {
				t.Fatal(err)
			}
			_ = applyMoves(t, pos, tc.moves...)
			if pos.CastleRights() != tc.want {
				t.Errorf("rights = %04b, want %04b", pos.CastleRights(), tc.want)
			}
		})
	}
}

func TestCastleMovesPieces(t *testing.T) {
	pos, err := ParseFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	keyBefore := pos.Key()
	_ = applyMoves(t, pos, "e1g1")

	if pos.PieceOn(G1) != WhiteKing {
		t.Errorf("king on %v, want g1", pos.KingSquare(White))
	}
	if pos.PieceOn(F1) != WhiteRook {
		t.Error("rook not on f1 after castling")
	}
	if pos.CanCastleKingside(White) || pos.CanCastleQueenside(White) {
		t.Error("white castle rights not cleared")
	}
	if pos.Key() == keyBefore {
		t.Error("key unchanged by castling")
	}
}

func TestEnPassantCapture(t *testing.T) {
	pos, err := ParseFEN("4k3/8/8/8/pP6/8/8/4K3 b - b3 0 1")
	if err != nil {
		t.Fatal(err)
	}
	m, err := pos.MoveFromUCI("a4b3")
	if err != nil {
		t.Fatalf("a4b3 not legal: %v", err)
	}
	if !m.IsEnPassant() {
		t.Fatal("a4b3 not flagged en passant")
	}

	var st StateInfo
	pos.DoMove(m, &st)

	if pos.PieceOn(B4) != Empty {
		t.Error("captured pawn still on b4")
	}
	if pos.PieceOn(B3) != BlackPawn {
		t.Error("black pawn not on b3")
	}
	if pos.Rule50() != 0 {
		t.Errorf("rule50 = %d, want 0", pos.Rule50())
	}
	if pos.EpSquare() != SquareNone {
		t.Errorf("ep square = %v, want none", pos.EpSquare())
	}
	if pos.Captured() != Pawn {
		t.Errorf("captured = %v, want Pawn", pos.Captured())
	}
}

func TestEpSquareOnlyWhenCapturable(t *testing.T) {
	pos := NewPosition()
	// No black pawn can take on e3 after e2e4.
	_ = applyMoves(t, pos, "e2e4")
	if pos.EpSquare() != SquareNone {
		t.Errorf("ep square = %v, want none", pos.EpSquare())
	}

	// After d7d5 e4e5 f7f5 a white pawn on e5 can capture to f6.
	_ = applyMoves(t, pos, "d7d5", "e4e5", "f7f5")
	if pos.EpSquare() != F6 {
		t.Errorf("ep square = %v, want f6", pos.EpSquare())
	}
}

func TestRule50Counting(t *testing.T) {
	pos := NewPosition()

	_ = applyMoves(t, pos, "g1f3")
	if pos.Rule50() != 1 {
		t.Errorf("rule50 after knight move = %d, want 1", pos.Rule50())
	}
	_ = applyMoves(t, pos, "g8f6")
	if pos.Rule50() != 2 {
		t.Errorf("rule50 = %d, want 2", pos.Rule50())
	}
	_ = applyMoves(t, pos, "e2e4")
	if pos.Rule50() != 0 {
		t.Errorf("rule50 after pawn move = %d, want 0", pos.Rule50())
	}
	_ = applyMoves(t, pos, "f6e4") // capture
	if pos.Rule50() != 0 {
		t.Errorf("rule50 after capture = %d, want 0", pos.Rule50())
	}
}

func TestPromotion(t *testing.T) {
	pos, err := ParseFEN("8/P6k/8/8/8/8/7K/8 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	_ = applyMoves(t, pos, "a7a8q")

	if pos.PieceOn(A8) != WhiteQueen {
		t.Error("no queen on a8")
	}
	if pos.PieceCount(White, Pawn) != 0 {
		t.Error("pawn count not decremented")
	}
	if pos.NonPawnMaterial(White) != QueenValueMidgame {
		t.Errorf("np material = %d, want %d", pos.NonPawnMaterial(White), QueenValueMidgame)
	}
}

func TestRepetitionDraw(t *testing.T) {
	pos := NewPosition()

	shuffle := []string{"g1f3", "g8f6", "f3g1", "f6g8"}
	var moves []string
	for i := 0; i < 4; i++ {
		moves = append(moves, shuffle...)
	}
	_ = applyMoves(t, pos, moves...)

	if got := pos.repetitions(); got != 3 {
		t.Errorf("repetitions = %d, want 3", got)
	}
	if !pos.IsDrawByRepetition() {
		t.Error("IsDrawByRepetition = false, want true")
	}
	if !pos.IsDraw() {
		t.Error("IsDraw = false, want true")
	}
}

func TestNullMove(t *testing.T) {
	pos, err := ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	before := pos.ToFEN()
	key := pos.Key()

	var st StateInfo
	pos.DoNullMove(&st)
	if pos.SideToMove() != Black {
		t.Error("side not flipped")
	}
	if pos.Checkers() != EmptyBB {
		t.Error("checkers not cleared")
	}
	if pos.Key() == key {
		t.Error("key unchanged by null move")
	}
	pos.UndoNullMove()

	if got := pos.ToFEN(); got != before {
		t.Errorf("null move round trip left %s", got)
	}
	if pos.Key() != key {
		t.Error("key not restored")
	}
}

func TestSaveStateFlattens(t *testing.T) {
	pos := NewPosition()

	func() {
		var st StateInfo // dies with this frame
		m, _ := pos.MoveFromUCI("e2e4")
		pos.DoMove(m, &st)
		pos.SaveState()
	}()

	if ok, step := pos.IsOK(); !ok {
		t.Fatalf("IsOK failed at step %d after SaveState", step)
	}
	want := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1"
	if got := pos.ToFEN(); got != want {
		t.Errorf("ToFEN = %s, want %s", got, want)
	}
}
