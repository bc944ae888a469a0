// Package confirm gates state-mutating commands behind an explicit yes/no
// prompt. It renders a rich prompt on a terminal and degrades to a plain
// line prompt everywhere else; either way the answer is resolved exactly
// once per call.
package confirm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// Ask prompts the operator with message and returns their decision. Abort
// (ctrl+c, esc) counts as a decline, not an error.
func Ask(message string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return askPlain(os.Stdin, os.Stdout, message)
	}

	var confirmed bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title("Please Confirm").
			Description(message).
			Affirmative("Continue").
			Negative("Cancel").
			Value(&confirmed),
	))

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		// The rich prompt is unavailable; fall back to the plain one.
		return askPlain(os.Stdin, os.Stdout, message)
	}
	return confirmed, nil
}

// askPlain is the non-TTY fallback: a single y/N line read.
func askPlain(r io.Reader, w io.Writer, message string) (bool, error) {
	fmt.Fprintf(w, "%s [y/N]: ", message)

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
