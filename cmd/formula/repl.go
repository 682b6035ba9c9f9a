package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/rs/zerolog/log"
)

const historyFile = ".formula_history"

// historyPath is FORMULA_HISTORY if set, otherwise a file in the home
// directory.
func historyPath() string {
	if p := os.Getenv("FORMULA_HISTORY"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, historyFile)
}

func repl(s *session) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(func(line string) []string {
		return complete(line, s.names())
	})

	hist := historyPath()
	if hist != "" {
		if f, err := os.Open(hist); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			f, err := os.Create(hist)
			if err != nil {
				log.Warn().Err(err).Str("file", hist).Msg("couldn't save history")
				return
			}
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}()
	}

	for {
		line, err := ln.Prompt("> ")
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Println()
			return nil
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		ln.AppendHistory(line)
		out, err := s.eval(line)
		if out != "" {
			fmt.Println(out)
		}
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, s.describe(err))
		}
	}
}

// complete offers completions of the name at the end of line.
func complete(line string, names []string) []string {
	i := len(line)
	for i > 0 && isNameByte(line[i-1]) {
		i--
	}
	prefix, word := line[:i], line[i:]
	if word == "" {
		return nil
	}
	var r []string
	for _, name := range names {
		if strings.HasPrefix(name, word) {
			r = append(r, prefix+name)
		}
	}
	return r
}

func isNameByte(c byte) bool {
	return c == '_' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}
