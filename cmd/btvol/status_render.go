package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const ansiReset = "\x1b[0m"

// kindTag returns the bracketed label and ANSI color for a status kind.
func (k statusKind) kindTag() (label, color string) {
	switch k {
	case statusOK:
		return "OK", "\x1b[32m"
	case statusWarn:
		return "WARN", "\x1b[33m"
	case statusError:
		return "ERROR", "\x1b[31m"
	default:
		return "INFO", "\x1b[34m"
	}
}

// statusPrinter writes aligned, optionally colorized status sections.
type statusPrinter struct {
	w        io.Writer
	colorize bool
}

func newStatusPrinter(w io.Writer) *statusPrinter {
	return &statusPrinter{w: w, colorize: isTerminal(w)}
}

const statusLabelWidth = 18

func (p *statusPrinter) section(title string) {
	header := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(header))
	if p.colorize {
		_, blue := statusInfo.kindTag()
		header = blue + header + ansiReset
		rule = blue + rule + ansiReset
	}
	fmt.Fprintln(p.w, header)
	fmt.Fprintln(p.w, rule)
}

func (p *statusPrinter) line(label string, kind statusKind, message string) {
	tag, color := kind.kindTag()
	text := "[" + tag + "]"
	if message != "" {
		text += " " + message
	}
	rendered := fmt.Sprintf("  %-*s %s", statusLabelWidth, label+":", text)
	if p.colorize {
		rendered = color + rendered + ansiReset
	}
	fmt.Fprintln(p.w, rendered)
}

func (p *statusPrinter) blank() {
	fmt.Fprintln(p.w)
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
