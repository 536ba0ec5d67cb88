// Package main provides a bridge with a canned solver for process tests.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/metalagman/llmpipe"
)

type upperSolver struct{}

func (upperSolver) Name() string { return "fake" }

func (upperSolver) Solve(_ context.Context, line string) (string, error) {
	switch {
	case strings.HasPrefix(line, "fail"):
		return "", &llmpipe.RemoteError{Err: errors.New("upstream unavailable")}
	case strings.HasPrefix(line, "slow"):
		time.Sleep(2 * time.Second)
	}

	return strings.ToUpper(line), nil
}

func main() {
	noise := flag.Bool("noise", false, "print a line before the handshake")
	silent := flag.Bool("silent", false, "never print the handshake")
	flag.Parse()

	if *silent {
		_, _ = io.Copy(io.Discard, os.Stdin)

		return
	}

	if *noise {
		fmt.Println("warming up")
	}

	fmt.Fprintln(os.Stderr, "fake bridge started")

	if err := llmpipe.NewBridge(upperSolver{}).Serve(context.Background(), os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
