package app

import (
	"fmt"
	"io"
	"strings"

	"go.trai.ch/porcelain/internal/core/domain"
	"go.trai.ch/porcelain/internal/ui/output"
	"go.trai.ch/porcelain/internal/ui/style"
)

// report prints one line per partition and the captured output of failed partitions.
func report(w io.Writer, results []domain.GoalResult) {
	out := output.New(w)
	for _, r := range results {
		icon, color := style.OutcomeIcon(string(r.Outcome))
		line := out.String(icon).Foreground(out.Color(string(color))).String()
		line += " " + r.Goal + " " + r.Address.String()
		if r.Outcome != domain.OutcomeSucceeded {
			line += " " + out.String("("+string(r.Outcome)+")").Faint().String()
		}
		_, _ = fmt.Fprintln(w, line)

		for _, path := range r.Outputs {
			_, _ = fmt.Fprintln(w, "    "+path)
		}
		if r.Failed() {
			writeIndented(w, r.Stdout)
			writeIndented(w, r.Stderr)
		}
	}
}

func writeIndented(w io.Writer, text string) {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return
	}
	for _, line := range strings.Split(text, "\n") {
		_, _ = fmt.Fprintln(w, "    "+line)
	}
}
