package sandbox

import (
	"bytes"
	"strings"

	"go.trai.ch/porcelain/internal/core/domain"
	"go.trai.ch/zerr"
	"mvdan.cc/sh/v3/syntax"
)

// scriptWriter assembles a bash wrapper script from already quoted words.
type scriptWriter struct {
	lines []string
	err   error
}

func newScriptWriter() *scriptWriter {
	return &scriptWriter{lines: []string{"#!/usr/bin/env bash", "set -euo pipefail"}}
}

// command appends one simple command with every word quoted.
func (w *scriptWriter) command(words ...string) {
	w.lines = append(w.lines, w.quoteAll(words))
}

// exportRealpath exports name as the absolute path of the sandbox-relative dir.
func (w *scriptWriter) exportRealpath(name, dir string) {
	w.lines = append(w.lines, "export "+name+"=\"$(realpath "+w.quote(dir)+")\"")
}

func (w *scriptWriter) quoteAll(words []string) string {
	quoted := make([]string, len(words))
	for i, word := range words {
		quoted[i] = w.quote(word)
	}
	return strings.Join(quoted, " ")
}

func (w *scriptWriter) quote(word string) string {
	q, err := syntax.Quote(word, syntax.LangBash)
	if err != nil && w.err == nil {
		w.err = zerr.With(zerr.Wrap(err, domain.ErrInvalidScript.Error()), "word", word)
	}
	return q
}

// Bytes parses the script back and returns its canonical printed form.
func (w *scriptWriter) Bytes() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}

	src := strings.Join(w.lines, "\n") + "\n"
	parser := syntax.NewParser(syntax.KeepComments(true), syntax.Variant(syntax.LangBash))
	file, err := parser.Parse(strings.NewReader(src), domain.WrapperScriptName)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrInvalidScript.Error()), "script", src)
	}

	var buf bytes.Buffer
	if err := syntax.NewPrinter().Print(&buf, file); err != nil {
		return nil, zerr.Wrap(err, domain.ErrInvalidScript.Error())
	}
	return buf.Bytes(), nil
}
