// Package input supplies the reference text and style for a run, either from
// a file, from stdin, or typed interactively.
package input

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
)

// EndMarker on a line of its own ends interactive reference entry.
const EndMarker = "."

// ErrInterrupted is returned when the user aborts interactive entry.
var ErrInterrupted = errors.New("input interrupted")

// LineReader reads a line of user input. Returns the line and any error (io.EOF on end).
type LineReader func(prompt string) (string, error)

// ReadFile reads the reference text from path, or from stdin when path is "-".
func ReadFile(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read reference file: %w", err)
	}
	return string(data), nil
}

// ReadReference collects lines until EndMarker or EOF.
func ReadReference(read LineReader) (string, error) {
	var lines []string
	prompt := "reference> "
	for {
		line, err := read(prompt)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(line) == EndMarker {
			break
		}
		lines = append(lines, line)
		prompt = "........> "
	}
	return strings.Join(lines, "\n"), nil
}

// ReadStyle asks for a style, keeping fallback on an empty answer or EOF.
func ReadStyle(read LineReader, fallback string) (string, error) {
	line, err := read(fmt.Sprintf("style [%s]> ", fallback))
	if errors.Is(err, io.EOF) {
		return fallback, nil
	}
	if err != nil {
		return "", err
	}
	if s := strings.TrimSpace(line); s != "" {
		return s, nil
	}
	return fallback, nil
}

// Terminal is an interactive LineReader backed by readline.
type Terminal struct {
	rl *readline.Instance
}

// NewTerminal opens a readline session with history kept in historyFile.
func NewTerminal(historyFile string) (*Terminal, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "reference> ",
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       EndMarker,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize readline: %w", err)
	}
	return &Terminal{rl: rl}, nil
}

// ReadLine implements LineReader.
func (t *Terminal) ReadLine(prompt string) (string, error) {
	t.rl.SetPrompt(prompt)
	line, err := t.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", ErrInterrupted
	}
	return line, err
}

// Close restores the terminal.
func (t *Terminal) Close() error {
	return t.rl.Close()
}

// HistoryPath returns the readline history file under $HOME, or "" when the
// home directory is unknown.
func HistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	dir := filepath.Join(home, ".blogwriter")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "history")
}
