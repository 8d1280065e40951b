// Package uci implements the Universal Chess Interface dispatcher: it owns
// the root position and routes protocol commands into the engine core.
package uci

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/greenbean52/stockfish-1/internal/board"
	"github.com/greenbean52/stockfish-1/internal/book"
	"github.com/greenbean52/stockfish-1/internal/engine"
)

const (
	engineName   = "Greenbean 1"
	engineAuthor = "the Greenbean developers"
)

// UCI is the protocol handler.
type UCI struct {
	out      io.Writer
	tt       *engine.TranspositionTable
	searcher *engine.Searcher
	position *board.Position
	options  *Options

	openingBook *book.Book
	chess960    bool

	searchDone chan struct{}
}

// New creates a UCI handler with default settings.
func New(out io.Writer) *UCI {
	tt := engine.NewTranspositionTable(32)
	u := &UCI{
		out:      out,
		tt:       tt,
		searcher: engine.NewSearcher(tt),
		position: board.NewPosition(),
		options:  NewOptions(),
	}
	u.registerOptions()
	return u
}

func (u *UCI) registerOptions() {
	u.options.Add(Option{Name: "Hash", Type: OptionSpin, Default: "32", Min: 4, Max: 1024},
		func(v string) {
			n, _ := strconv.Atoi(v)
			u.tt.Resize(n)
		})
	u.options.Add(Option{Name: "Clear Hash", Type: OptionButton}, func(string) {
		u.tt.Clear()
	})
	u.options.Add(Option{Name: "Ponder", Type: OptionCheck, Default: "true"}, nil)
	u.options.Add(Option{Name: "OwnBook", Type: OptionCheck, Default: "false"}, nil)
	u.options.Add(Option{Name: "Book File", Type: OptionString, Default: "book.db"},
		func(v string) {
			if u.openingBook != nil {
				u.openingBook.Close()
				u.openingBook = nil
			}
		})
	u.options.Add(Option{Name: "UCI_Chess960", Type: OptionCheck, Default: "false"},
		func(v string) {
			u.chess960 = v == "true"
		})
}

func (u *UCI) send(format string, args ...any) {
	fmt.Fprintf(u.out, format+"\n", args...)
}

// Run reads commands until quit or EOF.
func (u *UCI) Run(in io.Reader) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !u.dispatch(line) {
			return
		}
	}
}

// dispatch handles one command line, returning false on quit.
func (u *UCI) dispatch(line string) bool {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "uci":
		u.send("id name %s", engineName)
		u.send("id author %s", engineAuthor)
		u.options.Print(func(s string) { u.send("%s", s) })
		u.send("uciok")
	case "isready":
		u.send("readyok")
	case "ucinewgame":
		u.waitSearch()
		u.tt.Clear()
		u.position = board.NewPosition()
	case "setoption":
		u.setOption(args)
	case "position":
		u.waitSearch()
		u.setPosition(args)
	case "go":
		u.goCommand(args)
	case "stop":
		u.searcher.Stop()
		u.waitSearch()
	case "ponderhit":
		// A ponder search runs as an infinite search; it keeps running until stop.
	case "quit":
		u.searcher.Stop()
		u.waitSearch()
		if u.openingBook != nil {
			u.openingBook.Close()
		}
		return false

	// Debug commands.
	case "d":
		fmt.Fprint(u.out, u.position.String())
	case "flip":
		u.waitSearch()
		u.position = u.position.FlippedCopy()
	case "eval":
		u.send("static eval: %d", u.searcher.Evaluate(u.position))
	case "key":
		u.send("key: %016X material: %016X pawn: %016X",
			uint64(u.position.Key()), uint64(u.position.MaterialKey()), uint64(u.position.PawnKey()))
	case "perft":
		depth := 5
		if len(args) > 0 {
			if n, err := strconv.Atoi(args[0]); err == nil {
				depth = n
			}
		}
		start := time.Now()
		nodes := u.position.Perft(depth)
		u.send("perft %d: %d nodes in %v", depth, nodes, time.Since(start).Round(time.Millisecond))
	case "bookimport":
		if len(args) == 0 {
			u.send("bookimport needs a file of opening lines")
			break
		}
		u.importBook(args[0])
	default:
		u.send("unknown command: %s", cmd)
	}
	return true
}

func (u *UCI) setOption(args []string) {
	// setoption name <name...> [value <value...>]
	name, value := "", ""
	target := &name
	for _, a := range args {
		switch a {
		case "name":
			target = &name
		case "value":
			target = &value
		default:
			if *target != "" {
				*target += " "
			}
			*target += a
		}
	}
	if err := u.options.Set(name, value); err != nil {
		u.send("info string %v", err)
	}
}

func (u *UCI) setPosition(args []string) {
	if len(args) == 0 {
		return
	}

	var (
		pos   *board.Position
		err   error
		moves []string
	)

	switch args[0] {
	case "startpos":
		pos = board.NewPosition()
		if len(args) > 1 && args[1] == "moves" {
			moves = args[2:]
		}
	case "fen":
		fenFields := args[1:]
		for i, a := range fenFields {
			if a == "moves" {
				moves = fenFields[i+1:]
				fenFields = fenFields[:i]
				break
			}
		}
		pos, err = board.ParseFEN(strings.Join(fenFields, " "))
		if err != nil {
			u.send("info string %v", err)
			return
		}
	default:
		return
	}

	states := make([]board.StateInfo, len(moves))
	for i, token := range moves {
		m, err := pos.MoveFromUCI(token)
		if err != nil {
			u.send("info string %v", err)
			return
		}
		pos.DoMove(m, &states[i])
	}
	// Flatten the snapshot so the local state frames may die.
	pos.SaveState()
	u.position = pos
}

func (u *UCI) goCommand(args []string) {
	u.waitSearch()

	var limits engine.Limits
	ms := func(s string) time.Duration {
		n, _ := strconv.Atoi(s)
		return time.Duration(n) * time.Millisecond
	}
	for i := 0; i < len(args); i++ {
		next := func() string {
			if i+1 < len(args) {
				i++
				return args[i]
			}
			return ""
		}
		switch args[i] {
		case "wtime":
			limits.WTime = ms(next())
		case "btime":
			limits.BTime = ms(next())
		case "winc":
			limits.WInc = ms(next())
		case "binc":
			limits.BInc = ms(next())
		case "movestogo":
			limits.MovesToGo, _ = strconv.Atoi(next())
		case "depth":
			limits.Depth, _ = strconv.Atoi(next())
		case "nodes":
			n, _ := strconv.Atoi(next())
			limits.Nodes = uint64(n)
		case "movetime":
			limits.MoveTime = ms(next())
		case "infinite":
			limits.Infinite = true
		case "ponder":
			limits.Infinite = true
		case "searchmoves":
			// Root move filtering is not supported; search everything.
		}
	}

	// Book probe before searching.
	if u.options.GetBool("OwnBook") {
		if m, ok := u.probeBook(); ok {
			u.send("bestmove %s", u.position.MoveToUCI(m, u.chess960))
			return
		}
	}

	pos := u.position.Copy()
	u.searchDone = make(chan struct{})
	go func() {
		defer close(u.searchDone)
		best := u.searcher.Search(pos, limits, func(info engine.Info) {
			u.sendInfo(pos, info)
		})
		u.send("bestmove %s", pos.MoveToUCI(best, u.chess960))
	}()
}

func (u *UCI) sendInfo(pos *board.Position, info engine.Info) {
	score := fmt.Sprintf("cp %d", info.Score)
	if info.Score > engine.MateScore-engine.MaxPly {
		score = fmt.Sprintf("mate %d", (int(engine.MateScore-info.Score)+1)/2)
	} else if info.Score < -engine.MateScore+engine.MaxPly {
		score = fmt.Sprintf("mate %d", -(int(engine.MateScore+info.Score)+1)/2)
	}

	var pv strings.Builder
	walk := pos.Copy()
	states := make([]board.StateInfo, len(info.PV))
	for i, m := range info.PV {
		pv.WriteByte(' ')
		pv.WriteString(walk.MoveToUCI(m, u.chess960))
		walk.DoMove(m, &states[i])
	}

	ms := info.Time.Milliseconds()
	nps := int64(0)
	if ms > 0 {
		nps = int64(info.Nodes) * 1000 / ms
	}
	u.send("info depth %d score %s nodes %d nps %d time %d hashfull %d pv%s",
		info.Depth, score, info.Nodes, nps, ms, u.tt.Full(), pv.String())
}

func (u *UCI) waitSearch() {
	if u.searchDone != nil {
		<-u.searchDone
		u.searchDone = nil
	}
}

func (u *UCI) probeBook() (board.Move, bool) {
	if u.openingBook == nil {
		b, err := book.Open(u.options.Get("Book File"))
		if err != nil {
			log.Printf("opening book unavailable: %v", err)
			return board.MoveNone, false
		}
		u.openingBook = b
	}
	return u.openingBook.Probe(u.position)
}

func (u *UCI) importBook(path string) {
	if u.openingBook == nil {
		b, err := book.Open(u.options.Get("Book File"))
		if err != nil {
			u.send("info string open book: %v", err)
			return
		}
		u.openingBook = b
	}
	n, err := u.openingBook.ImportLines(path)
	if err != nil {
		u.send("info string import: %v", err)
		return
	}
	u.send("info string imported %d book moves", n)
}
