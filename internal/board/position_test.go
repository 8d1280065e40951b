package board

import "testing"

func TestCheckersMatchesAttackQueries(t *testing.T) {
	fens := []string{
		"rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3",
		"rnbqkbnr/ppp1pppp/8/1B1p4/4P3/8/PPPP1PPP/RNBQK1NR b KQkq - 1 2",
		"4k3/8/8/8/8/8/4r3/4K3 w - - 0 1",
		"4k3/8/8/8/7b/8/8/4K2N w - - 0 1",
		StartFEN,
	}

	for _, fen := range fens {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}
		us := pos.SideToMove()
		want := pos.AttacksToByColor(pos.KingSquare(us), us.Other())
		if got := pos.Checkers(); got != want {
			t.Errorf("%s: checkers = %v, want %v", fen, got, want)
		}
	}
}

func TestKeysMatchRecomputation(t *testing.T) {
	pos := NewPosition()
	states := make([]StateInfo, 64)
	moves := []string{
		"e2e4", "c7c5", "g1f3", "d7d6", "d2d4", "c5d4", "f3d4", "g8f6",
		"b1c3", "a7a6", "c1e3", "e7e6", "f2f3", "b7b5", "d1d2", "f8e7",
		"e1c1", "e8g8",
	}
	for i, s := range moves {
		m, err := pos.MoveFromUCI(s)
		if err != nil {
			t.Fatalf("move %q: %v", s, err)
		}
		pos.DoMove(m, &states[i])
		if pos.Key() != pos.computeKey() {
			t.Fatalf("after %s: key %x != computed %x", s, pos.Key(), pos.computeKey())
		}
		if pos.PawnKey() != pos.computePawnKey() {
			t.Fatalf("after %s: pawn key mismatch", s)
		}
		if pos.MaterialKey() != pos.computeMaterialKey() {
			t.Fatalf("after %s: material key mismatch", s)
		}
	}
}

func TestTranspositionsHashEqually(t *testing.T) {
	// Two different move orders reaching the same position must produce
	// the same key.
	pos1 := NewPosition()
	s1 := applyMoves(t, pos1, "g1f3", "g8f6", "b1c3", "b8c6")
	_ = s1
	pos2 := NewPosition()
	s2 := applyMoves(t, pos2, "b1c3", "b8c6", "g1f3", "g8f6")
	_ = s2

	if pos1.Key() != pos2.Key() {
		t.Errorf("transposition keys differ: %x vs %x", pos1.Key(), pos2.Key())
	}
	if pos1.MaterialKey() != pos2.MaterialKey() {
		t.Error("material keys differ")
	}
	if pos1.PawnKey() != pos2.PawnKey() {
		t.Error("pawn keys differ")
	}
}

func TestGamePhase(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want Phase
	}{
		{"start position is midgame", StartFEN, PhaseMidgame},
		{"bare kings is endgame", "4k3/8/8/8/8/8/8/4K3 w - - 0 1", PhaseEndgame},
		{"king and rook each is endgame", "4k2r/8/8/8/8/8/8/R3K3 w - - 0 1", PhaseEndgame},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := ParseFEN(tc.fen)
			if err != nil {
				t.Fatal(err)
			}
			if got := pos.GamePhase(); got != tc.want {
				t.Errorf("phase = %d, want %d", got, tc.want)
			}
		})
	}

	// Intermediate material interpolates strictly between the limits.
	pos, err := ParseFEN("r2qk2r/8/8/8/8/8/8/R2QK2R w KQkq - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	phase := pos.GamePhase()
	if phase <= PhaseEndgame || phase >= PhaseMidgame {
		t.Errorf("phase = %d, want strictly between %d and %d", phase, PhaseEndgame, PhaseMidgame)
	}
}

func TestInsufficientMaterial(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want bool
	}{
		{"KvK", "8/8/8/8/4k3/8/8/4K3 w - - 0 1", true},
		{"KBvK", "8/8/8/8/4k3/8/2B5/4K3 w - - 0 1", true},
		{"KNvK", "8/8/8/8/4k3/8/2N5/4K3 w - - 0 1", true},
		{"KBvKB same color", "8/8/1b6/8/4k3/8/3B4/4K3 w - - 0 1", true},
		{"KBvKB opposite color", "8/8/2b5/8/4k3/8/3B4/4K3 w - - 0 1", false},
		{"KNNvK", "8/8/8/8/3nn3/8/8/4K2k w - - 0 1", false},
		{"pawn present", "8/8/8/8/4k3/8/4P3/4K3 w - - 0 1", false},
		{"rook present", "8/8/8/8/4k3/8/8/R3K3 w - - 0 1", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := ParseFEN(tc.fen)
			if err != nil {
				t.Fatal(err)
			}
			if got := pos.InsufficientMaterial(); got != tc.want {
				t.Errorf("InsufficientMaterial = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMateAndStalemate(t *testing.T) {
	mate, err := ParseFEN("rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3")
	if err != nil {
		t.Fatal(err)
	}
	if !mate.IsMate() {
		t.Error("fool's mate not detected")
	}

	stalemate, err := ParseFEN("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	if !stalemate.IsStalemate() {
		t.Error("stalemate not detected")
	}
	if stalemate.IsMate() {
		t.Error("stalemate misreported as mate")
	}
}

func TestPinnedPieces(t *testing.T) {
	// The knight on f6 is not on a line between the queen and the king, so it is free to move.
	pos, err := ParseFEN("4k3/8/5n2/8/8/8/8/3QK3 b - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	// d1 queen, f6 knight, e8 king: not aligned, so no pin.
	if pinned := pos.PinnedPieces(Black); pinned != 0 {
		t.Errorf("pinned = %v, want empty", pinned)
	}

	pos, err = ParseFEN("4k3/8/4n3/8/8/8/8/4QK2 b - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	if pinned := pos.PinnedPieces(Black); pinned != SquareBB(E6) {
		t.Errorf("pinned = %v, want e6 only", pinned)
	}
	// And every knight move must be filtered out as illegal.
	moves := pos.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		if moves.Get(i).From() == E6 {
			t.Errorf("pinned knight move %s generated", moves.Get(i))
		}
	}
}

func TestFileOpenness(t *testing.T) {
	pos, err := ParseFEN("4k3/2pp4/8/8/8/8/3P4/4K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}

	if !pos.FileIsOpen(FileAIdx) {
		t.Error("a-file should be open")
	}
	if pos.FileIsOpen(FileDIdx) {
		t.Error("d-file should not be open")
	}
	// c-file: black pawn only, so half-open for White.
	if !pos.FileIsHalfOpen(White, FileCIdx) {
		t.Error("c-file should be half-open for White")
	}
	if pos.FileIsHalfOpen(Black, FileCIdx) {
		t.Error("c-file should not be half-open for Black")
	}
	// d-file: both sides have a pawn.
	if pos.FileIsHalfOpen(White, FileDIdx) || pos.FileIsHalfOpen(Black, FileDIdx) {
		t.Error("d-file is half-open for neither side")
	}
}

func TestPawnStructureQueries(t *testing.T) {
	pos, err := ParseFEN("4k3/8/8/2p5/8/8/P6P/4K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}

	if !pos.PawnIsPassed(White, H2) {
		t.Error("h2 pawn is passed")
	}
	if pos.PawnIsPassed(Black, C5) == false {
		t.Error("c5 pawn is passed")
	}
	if !PawnIsIsolated(pos.Pawns(White), A2) {
		t.Error("a2 pawn is isolated")
	}

	doubled, err := ParseFEN("4k3/8/8/8/3P4/8/3P4/4K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	if !PawnIsDoubled(doubled.Pawns(White), White, D4) {
		t.Error("d4 pawn is doubled")
	}
	if PawnIsDoubled(doubled.Pawns(White), White, D2) {
		t.Error("d2 pawn has no friendly pawn behind it")
	}
}

func TestFlippedCopy(t *testing.T) {
	pos, err := ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	flipped := pos.FlippedCopy()

	if ok, step := flipped.IsOK(); !ok {
		t.Fatalf("flipped IsOK failed at step %d", step)
	}
	if flipped.SideToMove() != Black {
		t.Error("side not flipped")
	}
	if flipped.MgValue() != -pos.MgValue() || flipped.EgValue() != -pos.EgValue() {
		t.Error("incremental scores not negated")
	}
	// Flipping twice restores the original.
	back := flipped.FlippedCopy()
	if back.ToFEN() != pos.ToFEN() {
		t.Errorf("double flip: %s != %s", back.ToFEN(), pos.ToFEN())
	}
}

func TestMoveIsCheckAgreesWithDoMove(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
	}
	for _, fen := range fens {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Fatal(err)
		}
		moves := pos.GenerateLegalMoves()
		dc := pos.DiscoveredCheckCandidates(pos.SideToMove())
		for i := 0; i < moves.Len(); i++ {
			m := moves.Get(i)
			predicted := pos.MoveIsCheckDC(m, dc)
			var st StateInfo
			pos.DoMove(m, &st)
			actual := pos.IsCheck()
			pos.UndoMove(m)
			if predicted != actual {
				t.Errorf("%s: MoveIsCheck(%s) = %v, DoMove says %v", fen, m, predicted, actual)
			}
		}
	}
}
