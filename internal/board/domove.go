package board

// DoMove makes a move on the board, linking the caller-owned state node st
// into the state stack. The move is assumed pseudo-legal: feeding an
// illegal move leaves the board in an undefined state, which is why only
// validated moves may reach this layer.
func (p *Position) DoMove(m Move, st *StateInfo) {
	p.doMove(m, st, p.DiscoveredCheckCandidates(p.sideToMove))
}

// DoMoveDC is DoMove with the discovered-check candidates already computed
// by the caller, sparing the recomputation inside a move loop.
func (p *Position) DoMoveDC(m Move, st *StateInfo, dcCandidates Bitboard) {
	p.doMove(m, st, dcCandidates)
}

func (p *Position) doMove(m Move, st *StateInfo, dcCandidates Bitboard) {
	prev := p.st
	*st = StateInfo{
		key:          prev.key,
		pawnKey:      prev.pawnKey,
		materialKey:  prev.materialKey,
		castleRights: prev.castleRights,
		rule50:       prev.rule50 + 1,
		epSquare:     prev.epSquare,
		mgValue:      prev.mgValue,
		egValue:      prev.egValue,
		npMaterial:   prev.npMaterial,
		capture:      None,
		previous:     prev,
	}
	p.st = st

	us := p.sideToMove
	them := us.Other()

	st.key ^= zobSideToMove
	if st.epSquare != SquareNone {
		st.key ^= zobEp[st.epSquare.File()]
		st.epSquare = SquareNone
	}

	fastCheckers := false
	var movedType PieceType

	switch {
	case m.IsCastle():
		p.doCastleMove(m)
	case m.IsEnPassant():
		p.doEpMove(m)
	case m.IsPromotion():
		p.doPromotionMove(m)
	default:
		from, to := m.From(), m.To()
		piece := p.board[from]
		movedType = piece.Type()

		if capture := p.board[to].Type(); capture != None {
			p.doCaptureMove(capture, them, to)
		}

		st.key ^= zobCastle[st.castleRights]
		st.castleRights &= p.castleRightsMask[from] & p.castleRightsMask[to]
		st.key ^= zobCastle[st.castleRights]

		p.shiftPiece(from, to)
		st.key ^= zobrist[us][movedType][from] ^ zobrist[us][movedType][to]
		st.mgValue += PstDeltaMg(piece, from, to)
		st.egValue += PstDeltaEg(piece, from, to)

		if movedType == Pawn {
			st.rule50 = 0
			st.pawnKey ^= zobrist[us][Pawn][from] ^ zobrist[us][Pawn][to]

			if abs(int(to)-int(from)) == 16 {
				// Record the skipped square only when an enemy pawn
				// could actually capture en passant.
				mid := Square((int(from) + int(to)) / 2)
				if pawnAttacks[us][mid]&p.Pawns(them) != 0 {
					st.epSquare = mid
					st.key ^= zobEp[mid.File()]
				}
			}
		}
		fastCheckers = movedType != King
	}

	p.sideToMove = them

	if fastCheckers {
		p.updateCheckers(movedType, m.From(), m.To(), dcCandidates)
	} else {
		p.findCheckers()
	}

	if p.gamePly < MaxGameLength {
		p.history[p.gamePly] = st.key
	}
	p.gamePly++
	if us == Black {
		p.fullMoveNumber++
	}
}

// doCaptureMove removes the piece of type capture and color them from to,
// updating every incrementally maintained value. Castling is never routed
// here; en passant arrives with the capture square already normalized.
func (p *Position) doCaptureMove(capture PieceType, them Color, to Square) {
	st := p.st
	captured := NewPiece(them, capture)

	p.removePiece(to)

	st.key ^= zobrist[them][capture][to]
	st.mgValue -= MgPst(captured, to)
	st.egValue -= EgPst(captured, to)

	if capture == Pawn {
		st.pawnKey ^= zobrist[them][Pawn][to]
	} else {
		st.npMaterial[them] -= capture.MidgameValue()
	}

	// The count has just dropped from n to n-1: remove the n-1 index key.
	st.materialKey ^= zobMaterial[them][capture][p.pieceCount[them][capture]]

	st.capture = capture
	st.rule50 = 0
}

// doCastleMove executes castling in Chess960-general fashion: regardless of
// where king and rook start, the king lands on g1/c1 and the rook on f1/d1
// (relative to the mover). The move encodes king-from and rook-square.
func (p *Position) doCastleMove(m Move) {
	st := p.st
	us := p.sideToMove
	kfrom, rfrom := m.From(), m.To()
	kingside := rfrom > kfrom

	var kto, rto Square
	if kingside {
		kto = RelativeSquare(us, G1)
		rto = RelativeSquare(us, F1)
	} else {
		kto = RelativeSquare(us, C1)
		rto = RelativeSquare(us, D1)
	}

	// Remove both pieces first: in Chess960 the king may land on the
	// rook's square and vice versa.
	p.removePiece(kfrom)
	p.removePiece(rfrom)
	p.putPiece(NewPiece(us, King), kto)
	p.putPiece(NewPiece(us, Rook), rto)

	st.key ^= zobrist[us][King][kfrom] ^ zobrist[us][King][kto]
	st.key ^= zobrist[us][Rook][rfrom] ^ zobrist[us][Rook][rto]
	st.mgValue += PstDeltaMg(NewPiece(us, King), kfrom, kto)
	st.egValue += PstDeltaEg(NewPiece(us, King), kfrom, kto)
	st.mgValue += PstDeltaMg(NewPiece(us, Rook), rfrom, rto)
	st.egValue += PstDeltaEg(NewPiece(us, Rook), rfrom, rto)

	st.key ^= zobCastle[st.castleRights]
	st.castleRights &= p.castleRightsMask[kfrom] & p.castleRightsMask[rfrom]
	st.key ^= zobCastle[st.castleRights]
}

// doEpMove executes an en passant capture: the captured pawn sits behind
// the destination square.
func (p *Position) doEpMove(m Move) {
	st := p.st
	us := p.sideToMove
	them := us.Other()
	from, to := m.From(), m.To()

	capSq := to - 8
	if us == Black {
		capSq = to + 8
	}

	p.removePiece(capSq)
	st.key ^= zobrist[them][Pawn][capSq]
	st.pawnKey ^= zobrist[them][Pawn][capSq]
	st.mgValue -= MgPst(NewPiece(them, Pawn), capSq)
	st.egValue -= EgPst(NewPiece(them, Pawn), capSq)
	st.materialKey ^= zobMaterial[them][Pawn][p.pieceCount[them][Pawn]]

	p.shiftPiece(from, to)
	st.key ^= zobrist[us][Pawn][from] ^ zobrist[us][Pawn][to]
	st.pawnKey ^= zobrist[us][Pawn][from] ^ zobrist[us][Pawn][to]
	st.mgValue += PstDeltaMg(NewPiece(us, Pawn), from, to)
	st.egValue += PstDeltaEg(NewPiece(us, Pawn), from, to)

	st.capture = Pawn
	st.rule50 = 0
}

// doPromotionMove replaces the pawn with the promoted piece, updating the
// material key for both the vanished pawn and the new piece.
func (p *Position) doPromotionMove(m Move) {
	st := p.st
	us := p.sideToMove
	them := us.Other()
	from, to := m.From(), m.To()
	promotion := m.Promotion()

	if capture := p.board[to].Type(); capture != None {
		p.doCaptureMove(capture, them, to)
	}

	st.key ^= zobCastle[st.castleRights]
	st.castleRights &= p.castleRightsMask[from] & p.castleRightsMask[to]
	st.key ^= zobCastle[st.castleRights]

	p.removePiece(from)
	p.putPiece(NewPiece(us, promotion), to)

	st.key ^= zobrist[us][Pawn][from] ^ zobrist[us][promotion][to]
	st.pawnKey ^= zobrist[us][Pawn][from]
	st.mgValue += MgPst(NewPiece(us, promotion), to) - MgPst(NewPiece(us, Pawn), from)
	st.egValue += EgPst(NewPiece(us, promotion), to) - EgPst(NewPiece(us, Pawn), from)
	st.npMaterial[us] += promotion.MidgameValue()

	st.materialKey ^= zobMaterial[us][Pawn][p.pieceCount[us][Pawn]]
	st.materialKey ^= zobMaterial[us][promotion][p.pieceCount[us][promotion]-1]

	st.rule50 = 0
}

// updateCheckers is the incremental path for plain moves: direct checks by
// the moved piece plus discovered checks uncovered by leaving from. It must
// agree with findCheckers bit for bit.
func (p *Position) updateCheckers(pt PieceType, from, to Square, dcCandidates Bitboard) {
	st := p.st
	them := p.sideToMove // already flipped: the side now to move
	us := them.Other()   // the mover
	ksq := p.kingSquare[them]
	occupied := p.byTypeBB[AnyPieceType]

	st.checkersBB = EmptyBB

	switch pt {
	case Pawn:
		if pawnAttacks[them][ksq].IsSet(to) {
			st.checkersBB |= SquareBB(to)
		}
	case Knight:
		if knightAttacks[ksq].IsSet(to) {
			st.checkersBB |= SquareBB(to)
		}
	case Bishop:
		if BishopAttacks(ksq, occupied).IsSet(to) {
			st.checkersBB |= SquareBB(to)
		}
	case Rook:
		if RookAttacks(ksq, occupied).IsSet(to) {
			st.checkersBB |= SquareBB(to)
		}
	case Queen:
		if QueenAttacks(ksq, occupied).IsSet(to) {
			st.checkersBB |= SquareBB(to)
		}
	}

	// A queen never uncovers a line it did not already cover itself, and
	// rooks/bishops only uncover the other slider direction.
	if dcCandidates.IsSet(from) && pt != Queen {
		if pt != Rook {
			st.checkersBB |= RookAttacks(ksq, occupied) & p.RooksAndQueens(us)
		}
		if pt != Bishop {
			st.checkersBB |= BishopAttacks(ksq, occupied) & p.BishopsAndQueens(us)
		}
	}
}

// UndoMove takes back the last move. The incrementally maintained values
// need no recomputation: the previous StateInfo node still holds them.
func (p *Position) UndoMove(m Move) {
	p.sideToMove = p.sideToMove.Other()
	us := p.sideToMove
	them := us.Other()
	st := p.st

	p.gamePly--
	if us == Black {
		p.fullMoveNumber--
	}

	switch {
	case m.IsCastle():
		p.undoCastleMove(m)
	case m.IsEnPassant():
		from, to := m.From(), m.To()
		capSq := to - 8
		if us == Black {
			capSq = to + 8
		}
		p.shiftPiece(to, from)
		p.putPiece(NewPiece(them, Pawn), capSq)
	case m.IsPromotion():
		from, to := m.From(), m.To()
		p.removePiece(to)
		p.putPiece(NewPiece(us, Pawn), from)
		if st.capture != None {
			p.putPiece(NewPiece(them, st.capture), to)
		}
	default:
		from, to := m.From(), m.To()
		p.shiftPiece(to, from)
		if st.capture != None {
			p.putPiece(NewPiece(them, st.capture), to)
		}
	}

	p.st = st.previous
}

func (p *Position) undoCastleMove(m Move) {
	us := p.sideToMove
	kfrom, rfrom := m.From(), m.To()
	kingside := rfrom > kfrom

	var kto, rto Square
	if kingside {
		kto = RelativeSquare(us, G1)
		rto = RelativeSquare(us, F1)
	} else {
		kto = RelativeSquare(us, C1)
		rto = RelativeSquare(us, D1)
	}

	p.removePiece(kto)
	p.removePiece(rto)
	p.putPiece(NewPiece(us, King), kfrom)
	p.putPiece(NewPiece(us, Rook), rfrom)
}

// DoNullMove passes the turn: only the side to move, the en passant square
// and the 50-move counter change. Forbidden while in check; the caller
// enforces that, which is what lets checkersBB be cleared outright.
func (p *Position) DoNullMove(st *StateInfo) {
	prev := p.st
	*st = *prev
	st.previous = prev
	p.st = st

	if st.epSquare != SquareNone {
		st.key ^= zobEp[st.epSquare.File()]
		st.epSquare = SquareNone
	}
	st.key ^= zobSideToMove
	st.rule50++
	st.capture = None
	st.checkersBB = EmptyBB

	p.sideToMove = p.sideToMove.Other()
}

// UndoNullMove takes back a null move.
func (p *Position) UndoNullMove() {
	p.st = p.st.previous
	p.sideToMove = p.sideToMove.Other()
}
