// Command stockfish-uci runs the engine as a UCI protocol server on
// standard input and output.
package main

import (
	"os"

	"github.com/greenbean52/stockfish-1/internal/uci"
)

func main() {
	handler := uci.New(os.Stdout)
	handler.Run(os.Stdin)
}
