package board

// Move generation. Moves are generated pseudo-legally and filtered through
// PlMoveIsLegal, except when the side to move is in check, where a
// dedicated evasion generator applies.

// GenerateLegalMoves returns every legal move in the position.
func (p *Position) GenerateLegalMoves() *MoveList {
	ml := &MoveList{}
	if p.IsCheck() {
		p.generateEvasions(ml)
	} else {
		p.generateNonEvasions(ml)
	}
	return p.filterLegal(ml)
}

// GenerateCaptures returns the legal captures, the move set searched in
// quiescence. Under check it falls back to full evasion generation.
func (p *Position) GenerateCaptures() *MoveList {
	if p.IsCheck() {
		return p.GenerateLegalMoves()
	}
	ml := &MoveList{}
	p.generateCaptures(ml)
	return p.filterLegal(ml)
}

func (p *Position) filterLegal(ml *MoveList) *MoveList {
	pinned := p.PinnedPieces(p.sideToMove)
	legal := &MoveList{}
	for i := 0; i < ml.Len(); i++ {
		if m := ml.Get(i); p.PlMoveIsLegal(m, pinned) {
			legal.Add(m)
		}
	}
	return legal
}

func (p *Position) generateNonEvasions(ml *MoveList) {
	us := p.sideToMove
	target := ^p.byColorBB[us]

	p.generatePawnMoves(ml, target, true, true)
	p.generatePieceMoves(ml, target)
	p.generateCastleMoves(ml)
}

func (p *Position) generateCaptures(ml *MoveList) {
	us := p.sideToMove
	target := p.byColorBB[us.Other()]

	p.generatePawnMoves(ml, target, false, true)
	p.generatePieceMoves(ml, target)
}

// generatePawnMoves adds pawn moves whose destination lies in target.
// Pushes are generated only with quiets set; captures (including en
// passant) only with captures set. Promotions always accompany the move
// that reaches the back rank.
func (p *Position) generatePawnMoves(ml *MoveList, target Bitboard, quiets, captures bool) {
	us := p.sideToMove
	them := us.Other()
	pawns := p.Pawns(us)
	empty := p.EmptySquares()
	enemies := p.byColorBB[them]

	var (
		push      func(Bitboard) Bitboard
		delta     Square
		doubleRk  Bitboard
		promoRank Bitboard
	)
	if us == White {
		push = Bitboard.North
		delta = 8
		doubleRk = Rank3
		promoRank = Rank8
	} else {
		push = Bitboard.South
		delta = -8
		doubleRk = Rank6
		promoRank = Rank1
	}

	addPawnMoves := func(targets Bitboard, offset Square) {
		for targets != 0 {
			to := targets.PopLSB()
			from := to - offset
			if SquareBB(to)&promoRank != 0 {
				for promo := Queen; promo >= Knight; promo-- {
					ml.Add(NewPromotionMove(from, to, promo))
				}
			} else {
				ml.Add(NewMove(from, to))
			}
		}
	}

	if quiets {
		single := push(pawns) & empty
		double := push(single&doubleRk) & empty
		addPawnMoves(single&target, delta)
		addPawnMoves(double&target, 2*delta)
	}

	if captures {
		east := push(pawns).East() & enemies & target
		west := push(pawns).West() & enemies & target
		addPawnMoves(east, delta+1)
		addPawnMoves(west, delta-1)

		if ep := p.st.epSquare; ep != SquareNone {
			froms := pawnAttacks[them][ep] & pawns
			for froms != 0 {
				ml.Add(NewEnPassantMove(froms.PopLSB(), ep))
			}
		}
	}
}

func (p *Position) generatePieceMoves(ml *MoveList, target Bitboard) {
	us := p.sideToMove
	occupied := p.byTypeBB[AnyPieceType]

	for pt := Knight; pt <= King; pt++ {
		pieces := p.Pieces(us, pt)
		for pieces != 0 {
			from := pieces.PopLSB()
			var attacks Bitboard
			switch pt {
			case Knight:
				attacks = knightAttacks[from]
			case Bishop:
				attacks = BishopAttacks(from, occupied)
			case Rook:
				attacks = RookAttacks(from, occupied)
			case Queen:
				attacks = QueenAttacks(from, occupied)
			case King:
				attacks = kingAttacks[from]
			}
			attacks &= target
			for attacks != 0 {
				ml.Add(NewMove(from, attacks.PopLSB()))
			}
		}
	}
}

// generateCastleMoves adds castling in Chess960-general form: whatever
// files king and rook start on, the king heads for g1/c1 and the rook for
// f1/d1, and every square either piece crosses or lands on must be free
// (apart from the two pieces themselves), with the king's path unattacked.
func (p *Position) generateCastleMoves(ml *MoveList) {
	us := p.sideToMove
	them := us.Other()

	tryCastle := func(rfrom, kto, rto Square) {
		kfrom := p.kingSquare[us]
		occ := p.byTypeBB[AnyPieceType] &^ (SquareBB(kfrom) | SquareBB(rfrom))

		kingPath := Between(kfrom, kto) | SquareBB(kto)
		if kingPath&occ != 0 {
			return
		}
		rookPath := Between(rfrom, rto) | SquareBB(rto)
		if rookPath&occ != 0 {
			return
		}
		for path := kingPath; path != 0; {
			if p.attacksTo(path.PopLSB(), occ)&p.byColorBB[them] != 0 {
				return
			}
		}
		ml.Add(NewCastleMove(kfrom, rfrom))
	}

	if p.CanCastleKingside(us) && !p.IsCheck() {
		tryCastle(p.InitialKRSquare(us), RelativeSquare(us, G1), RelativeSquare(us, F1))
	}
	if p.CanCastleQueenside(us) && !p.IsCheck() {
		tryCastle(p.InitialQRSquare(us), RelativeSquare(us, C1), RelativeSquare(us, D1))
	}
}

// generateEvasions produces check evasions: king steps off the attacked
// square, captures of a lone checker, and interpositions against a lone
// sliding checker.
func (p *Position) generateEvasions(ml *MoveList) {
	us := p.sideToMove
	them := us.Other()
	ksq := p.kingSquare[us]
	checkers := p.st.checkersBB
	kingless := p.byTypeBB[AnyPieceType] &^ SquareBB(ksq)

	// King moves: tested against the occupancy without the king, so
	// stepping along a slider's ray does not look safe.
	kingMoves := kingAttacks[ksq] &^ p.byColorBB[us]
	for kingMoves != 0 {
		to := kingMoves.PopLSB()
		if p.attacksTo(to, kingless)&p.byColorBB[them] == 0 {
			ml.Add(NewMove(ksq, to))
		}
	}

	if checkers.PopCount() != 1 {
		return // double check: only the king can move
	}

	checkSq := checkers.LSB()

	// Captures of the checker by non-king pieces.
	attackers := p.AttacksToByColor(checkSq, us) &^ p.Pieces(us, King)
	for attackers != 0 {
		from := attackers.PopLSB()
		if p.board[from].Type() == Pawn && SquareBB(checkSq)&(Rank1|Rank8) != 0 {
			for promo := Queen; promo >= Knight; promo-- {
				ml.Add(NewPromotionMove(from, checkSq, promo))
			}
		} else {
			ml.Add(NewMove(from, checkSq))
		}
	}

	// En passant capture of a checking pawn.
	if ep := p.st.epSquare; ep != SquareNone {
		capSq := ep - 8
		if us == Black {
			capSq = ep + 8
		}
		if capSq == checkSq {
			froms := pawnAttacks[them][ep] & p.Pawns(us)
			for froms != 0 {
				ml.Add(NewEnPassantMove(froms.PopLSB(), ep))
			}
		}
	}

	// Interpositions against a sliding checker.
	if !p.board[checkSq].IsSlider() {
		return
	}
	blockSquares := Between(ksq, checkSq)
	for targets := blockSquares; targets != 0; {
		to := targets.PopLSB()
		p.generateBlocksTo(ml, to)
	}
}

// generateBlocksTo adds the quiet moves of non-king pieces to the given
// (empty) square.
func (p *Position) generateBlocksTo(ml *MoveList, to Square) {
	us := p.sideToMove
	occupied := p.byTypeBB[AnyPieceType]

	// Pawn pushes reaching the square.
	var from Square
	if us == White {
		from = to - 8
	} else {
		from = to + 8
	}
	if from.IsValid() {
		if p.board[from] == NewPiece(us, Pawn) {
			if SquareBB(to)&(Rank1|Rank8) != 0 {
				for promo := Queen; promo >= Knight; promo-- {
					ml.Add(NewPromotionMove(from, to, promo))
				}
			} else {
				ml.Add(NewMove(from, to))
			}
		} else if p.board[from] == Empty {
			// Double push through the empty square.
			var from2 Square
			if us == White && to.Rank() == Rank4Idx {
				from2 = to - 16
			} else if us == Black && to.Rank() == Rank5Idx {
				from2 = to + 16
			} else {
				from2 = SquareNone
			}
			if from2 != SquareNone && p.board[from2] == NewPiece(us, Pawn) {
				ml.Add(NewMove(from2, to))
			}
		}
	}

	// Knight and slider interpositions.
	blockers := (knightAttacks[to] & p.Pieces(us, Knight)) |
		(BishopAttacks(to, occupied) & p.BishopsAndQueens(us)) |
		(RookAttacks(to, occupied) & p.RooksAndQueens(us))
	for blockers != 0 {
		ml.Add(NewMove(blockers.PopLSB(), to))
	}
}

// PlMoveIsLegal decides whether a pseudo-legal move is legal: after the
// hypothetical execution the mover's king must not be attacked. The test
// runs on pin analysis and occupancy surgery, without making the move.
func (p *Position) PlMoveIsLegal(m Move, pinned Bitboard) bool {
	us := p.sideToMove
	them := us.Other()
	ksq := p.kingSquare[us]
	from, to := m.From(), m.To()

	if m.IsCastle() {
		return true // the generator already vetted the king's path
	}

	if m.IsEnPassant() {
		// The move removes two pawns from the rank at once, so only a
		// full attack recomputation on the patched occupancy is safe.
		capSq := to - 8
		if us == Black {
			capSq = to + 8
		}
		occ := p.byTypeBB[AnyPieceType]&^(SquareBB(from)|SquareBB(capSq)) | SquareBB(to)
		if RookAttacks(ksq, occ)&p.RooksAndQueens(them) != 0 {
			return false
		}
		if BishopAttacks(ksq, occ)&p.BishopsAndQueens(them) != 0 {
			return false
		}
		if knightAttacks[ksq]&p.Pieces(them, Knight) != 0 {
			return false
		}
		if pawnAttacks[us][ksq]&(p.Pawns(them)&^SquareBB(capSq)) != 0 {
			return false
		}
		return true
	}

	if from == ksq {
		occ := p.byTypeBB[AnyPieceType] &^ SquareBB(from)
		return p.attacksTo(to, occ)&p.byColorBB[them] == 0
	}

	if p.IsCheck() {
		checkers := p.st.checkersBB
		if checkers.PopCount() > 1 {
			return false // double check: only king moves help
		}
		checkSq := checkers.LSB()
		if to != checkSq && !Between(ksq, checkSq).IsSet(to) {
			return false
		}
	}

	return !pinned.IsSet(from) || Aligned(from, to, ksq)
}

// MoveIsCheck returns true if the move gives check, decided by attack
// lookups on a surgically patched occupancy instead of making the move.
func (p *Position) MoveIsCheck(m Move) bool {
	return p.moveIsCheck(m, p.DiscoveredCheckCandidates(p.sideToMove))
}

// MoveIsCheckDC is MoveIsCheck with precomputed discovered-check candidates.
func (p *Position) MoveIsCheckDC(m Move, dcCandidates Bitboard) bool {
	return p.moveIsCheck(m, dcCandidates)
}

func (p *Position) moveIsCheck(m Move, dcCandidates Bitboard) bool {
	us := p.sideToMove
	them := us.Other()
	ksq := p.kingSquare[them]
	from, to := m.From(), m.To()
	occupied := p.byTypeBB[AnyPieceType]

	switch {
	case m.IsCastle():
		rto := RelativeSquare(us, D1)
		if to > from {
			rto = RelativeSquare(us, F1)
		}
		kto := RelativeSquare(us, C1)
		if to > from {
			kto = RelativeSquare(us, G1)
		}
		occ := occupied&^(SquareBB(from)|SquareBB(to)) | SquareBB(kto) | SquareBB(rto)
		return RookAttacks(ksq, occ).IsSet(rto)

	case m.IsEnPassant():
		capSq := to - 8
		if us == Black {
			capSq = to + 8
		}
		occ := occupied&^(SquareBB(from)|SquareBB(capSq)) | SquareBB(to)
		if pawnAttacks[them][ksq].IsSet(to) {
			return true
		}
		return RookAttacks(ksq, occ)&p.RooksAndQueens(us) != 0 ||
			BishopAttacks(ksq, occ)&p.BishopsAndQueens(us) != 0

	case m.IsPromotion():
		occ := occupied &^ SquareBB(from)
		var attacks Bitboard
		switch m.Promotion() {
		case Knight:
			attacks = knightAttacks[to]
		case Bishop:
			attacks = BishopAttacks(to, occ)
		case Rook:
			attacks = RookAttacks(to, occ)
		case Queen:
			attacks = QueenAttacks(to, occ)
		}
		if attacks.IsSet(ksq) {
			return true
		}
		return dcCandidates.IsSet(from) && !Aligned(from, to, ksq)
	}

	// Direct check by the moved piece.
	piece := p.board[from]
	var attacks Bitboard
	occ := occupied&^SquareBB(from) | SquareBB(to)
	switch piece.Type() {
	case Pawn:
		attacks = pawnAttacks[us][to]
	case Knight:
		attacks = knightAttacks[to]
	case Bishop:
		attacks = BishopAttacks(to, occ)
	case Rook:
		attacks = RookAttacks(to, occ)
	case Queen:
		attacks = QueenAttacks(to, occ)
	case King:
		attacks = EmptyBB
	}
	if attacks.IsSet(ksq) {
		return true
	}

	return dcCandidates.IsSet(from) && !Aligned(from, to, ksq)
}

// HasLegalMoves returns true if the side to move has any legal move.
func (p *Position) HasLegalMoves() bool {
	return p.GenerateLegalMoves().Len() > 0
}

// IsMate returns true if the side to move is checkmated.
func (p *Position) IsMate() bool {
	return p.IsCheck() && !p.HasLegalMoves()
}

// IsStalemate returns true if the side to move has no legal move but is
// not in check.
func (p *Position) IsStalemate() bool {
	return !p.IsCheck() && !p.HasLegalMoves()
}

// IsDraw returns true on 50-move rule, repetition, or insufficient
// material. Stalemate is left to the caller, which already generates moves.
func (p *Position) IsDraw() bool {
	if p.InsufficientMaterial() {
		return true
	}
	if p.st.rule50 >= 100 && !p.IsMate() {
		return true
	}
	return p.IsDrawByRepetition()
}

// IsDrawByRepetition scans the history back through the reversible plies
// for earlier occurrences of the current key; threefold means the key has
// shown up at least twice before.
func (p *Position) IsDrawByRepetition() bool {
	return p.repetitions() >= 2
}

func (p *Position) repetitions() int {
	count := 0
	last := p.gamePly - 1 // the current key's own history slot
	if last >= MaxGameLength {
		last = MaxGameLength - 1
	}
	oldest := p.gamePly - p.st.rule50
	if oldest < 0 {
		oldest = 0
	}
	for i := last - 2; i >= oldest; i -= 2 {
		if p.history[i] == p.st.key {
			count++
		}
	}
	return count
}

// InsufficientMaterial returns true for the dead draws KvK, KBvK, KNvK and
// KBvKB with both bishops on the same square color.
func (p *Position) InsufficientMaterial() bool {
	if p.byTypeBB[Pawn]|p.byTypeBB[Rook]|p.byTypeBB[Queen] != 0 {
		return false
	}
	knights := p.pieceCount[White][Knight] + p.pieceCount[Black][Knight]
	bishops := p.pieceCount[White][Bishop] + p.pieceCount[Black][Bishop]
	if knights+bishops <= 1 {
		return true
	}
	if knights == 0 && p.pieceCount[White][Bishop] == 1 && p.pieceCount[Black][Bishop] == 1 {
		return p.pieceList[White][Bishop][0].Color() == p.pieceList[Black][Bishop][0].Color()
	}
	return false
}

// Perft counts the leaf nodes of the legal move tree to the given depth,
// the standard cross-check for move generation and make/unmake.
func (p *Position) Perft(depth int) int64 {
	if depth == 0 {
		return 1
	}
	moves := p.GenerateLegalMoves()
	if depth == 1 {
		return int64(moves.Len())
	}
	var nodes int64
	var st StateInfo
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		p.DoMove(m, &st)
		nodes += p.Perft(depth - 1)
		p.UndoMove(m)
	}
	return nodes
}

// MoveToUCI renders a move in the protocol's long algebraic form. Castling
// prints king-to-rook in Chess960 mode and e1g1/e1c1 style otherwise.
func (p *Position) MoveToUCI(m Move, chess960 bool) string {
	if m == MoveNone {
		return "0000"
	}
	if m.IsCastle() {
		if chess960 {
			return m.From().String() + m.To().String()
		}
		us := p.board[m.From()].Color()
		kto := RelativeSquare(us, C1)
		if m.To() > m.From() {
			kto = RelativeSquare(us, G1)
		}
		return m.From().String() + kto.String()
	}
	return m.String()
}

// MoveFromUCI parses a long-algebraic move string against the current
// position, resolving it to a fully flagged legal move.
func (p *Position) MoveFromUCI(s string) (Move, error) {
	if len(s) < 4 || len(s) > 5 {
		return MoveNone, parseError(s, "malformed move")
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return MoveNone, parseError(s, "bad origin square")
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return MoveNone, parseError(s, "bad destination square")
	}
	promotion := None
	if len(s) == 5 {
		promotion, err = promotionChar(s[4])
		if err != nil {
			return MoveNone, parseError(s, "bad promotion piece")
		}
	}

	legal := p.GenerateLegalMoves()
	for i := 0; i < legal.Len(); i++ {
		m := legal.Get(i)
		if m.From() != from || m.Promotion() != promotion {
			continue
		}
		if m.IsCastle() {
			us := p.board[m.From()].Color()
			kto := RelativeSquare(us, C1)
			if m.To() > m.From() {
				kto = RelativeSquare(us, G1)
			}
			// Accept both the king-to-rook form and the standard form.
			if to == m.To() || to == kto {
				return m, nil
			}
			continue
		}
		if m.To() == to {
			return m, nil
		}
	}
	return MoveNone, parseError(s, "not a legal move")
}
