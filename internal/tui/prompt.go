package tui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrPromptAborted is returned when the user cancels a prompt instead of
// answering it.
var ErrPromptAborted = errors.New("prompt aborted")

// Confirmer obtains a yes/no decision. The bootstrap sequence depends only on
// this interface, never on how the answer is collected.
type Confirmer interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// ParseAnswer interprets a typed response. Only an explicit negative
// declines; anything else counts as agreement.
func ParseAnswer(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "n", "no":
		return false
	default:
		return true
	}
}

// StaticConfirmer answers every question the same way.
type StaticConfirmer bool

func (s StaticConfirmer) Confirm(context.Context, string) (bool, error) {
	return bool(s), nil
}

// LinePrompter asks on Out and reads a single line from In.
type LinePrompter struct {
	In  io.Reader
	Out io.Writer
}

func (p LinePrompter) Confirm(ctx context.Context, question string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	fmt.Fprintf(p.Out, "\n%s (y/n): ", question)

	type answer struct {
		line string
		err  error
	}
	// Buffered so the reader goroutine can finish after a cancelled prompt
	// has returned; it exits once In yields a line or is closed.
	answers := make(chan answer, 1)
	go func() {
		line, err := bufio.NewReader(p.In).ReadString('\n')
		answers <- answer{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(p.Out)
		return false, ctx.Err()
	case a := <-answers:
		if a.err != nil {
			if errors.Is(a.err, io.EOF) && strings.TrimSpace(a.line) != "" {
				return ParseAnswer(a.line), nil
			}
			fmt.Fprintln(p.Out)
			return false, fmt.Errorf("read answer: %w", a.err)
		}
		return ParseAnswer(a.line), nil
	}
}

// NewConfirmer picks the prompt mechanism for the current terminal.
func NewConfirmer(mode OutputMode, in io.Reader, out io.Writer, assumeYes bool) Confirmer {
	if assumeYes {
		return StaticConfirmer(true)
	}
	if mode == ModeTUI && IsInteractive(in) {
		return TeaPrompter{In: in, Out: out}
	}
	return LinePrompter{In: in, Out: out}
}
