// Package util holds small helpers shared by the commands.
package util

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/lectern-player/lectern/filesystem"
	"golang.org/x/exp/constraints"
	"golang.org/x/term"
)

var (
	unsafeChars  = regexp.MustCompile(`[\\/<>:;"'|?!*{}#%&^+,~\s]`)
	underscores  = regexp.MustCompile(`__+`)
	outerMarkers = regexp.MustCompile(`^[_\-.]+|[_\-.]+$`)
)

// SanitizeFilename turns s into something safe to use as a file name or video id.
func SanitizeFilename(s string) string {
	s = unsafeChars.ReplaceAllString(s, "_")
	s = underscores.ReplaceAllString(s, "_")
	return outerMarkers.ReplaceAllString(s, "")
}

// FileStem is the base name of path without its extension.
func FileStem(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// Quantify formats count with the matching noun, e.g. "1 snapshot" or "3 snapshots".
func Quantify(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}

func Capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// TerminalSize reports the size of the terminal attached to stdout.
func TerminalSize() (width, height int, err error) {
	return term.GetSize(int(os.Stdout.Fd()))
}

// PrintErasable prints msg on the current line and returns a func that blanks it again.
func PrintErasable(msg string) (erase func()) {
	fmt.Fprintf(os.Stdout, "\r%s", msg)
	return func() {
		fmt.Fprintf(os.Stdout, "\r%s\r", strings.Repeat(" ", len(msg)))
	}
}

// Ignore calls f and drops its error. Meant for deferred Close calls.
func Ignore(f func() error) {
	_ = f()
}

// Max returns the largest item, or the zero value when there are none.
func Max[T constraints.Ordered](items ...T) (largest T) {
	for i, item := range items {
		if i == 0 || item > largest {
			largest = item
		}
	}
	return
}

// Delete removes path, recursing into directories.
func Delete(path string) error {
	fs := filesystem.API()
	info, err := fs.Stat(path)
	if err != nil {
		return err
	}

	if info.IsDir() {
		return fs.RemoveAll(path)
	}
	return fs.Remove(path)
}
