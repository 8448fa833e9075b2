package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.trai.ch/porcelain/internal/ui/output"
	"go.trai.ch/porcelain/internal/ui/style"
)

// PrettyHandler is a slog.Handler that produces human-readable, colored output.
// Only the first line of a message carries the level color; continuation lines such as
// the cause chain of an error are rendered faint so the headline stands out.
type PrettyHandler struct {
	out    *termenv.Output
	level  slog.Leveler
	attrs  []slog.Attr
	groups []string
}

// NewPrettyHandler creates a new PrettyHandler writing to the provided writer.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if w == nil {
		w = os.Stderr
	}

	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}

	return &PrettyHandler{
		out:   output.New(w),
		level: level,
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats and outputs the log record.
//
//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	icon, color := levelStyle(r.Level)

	headline, rest, _ := strings.Cut(r.Message, "\n")
	if icon != "" {
		headline = icon + " " + headline
	}

	var attrParts []string
	for _, attr := range h.attrs {
		attrParts = append(attrParts, attr.Key+"="+attr.Value.String())
	}
	r.Attrs(func(attr slog.Attr) bool {
		attrParts = append(attrParts, h.qualify(attr.Key)+"="+attr.Value.String())
		return true
	})
	if len(attrParts) > 0 {
		headline += " " + strings.Join(attrParts, " ")
	}

	var b strings.Builder
	b.WriteString(h.out.String(headline).Foreground(h.out.Color(string(color))).String())
	b.WriteByte('\n')
	if rest != "" {
		for _, line := range strings.Split(rest, "\n") {
			b.WriteString(h.out.String(line).Faint().String())
			b.WriteByte('\n')
		}
	}

	_, err := h.out.WriteString(b.String())
	return err
}

func levelStyle(level slog.Level) (string, lipgloss.Color) {
	switch {
	case level >= slog.LevelError:
		return style.Cross, style.Red
	case level >= slog.LevelWarn:
		return style.Warning, style.Yellow
	case level < slog.LevelInfo:
		return "", style.Slate
	default:
		return "", style.Rust
	}
}

// WithAttrs returns a new Handler with the given attributes appended.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = slices.Clip(h.attrs)
	for _, attr := range attrs {
		clone.attrs = append(clone.attrs, slog.Attr{Key: h.qualify(attr.Key), Value: attr.Value})
	}
	return &clone
}

// WithGroup returns a new Handler that qualifies later attributes with name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(slices.Clip(h.groups), name)
	return &clone
}

// qualify prefixes key with the groups opened so far. Attributes added before a group keep their key.
func (h *PrettyHandler) qualify(key string) string {
	if len(h.groups) == 0 {
		return key
	}
	return strings.Join(h.groups, ".") + "." + key
}
