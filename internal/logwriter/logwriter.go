// Package logwriter provides the two log sinks named in spec.md §4.13:
// access log and error log, each defaulting to a stream (stdout/stderr) and
// switchable to a file. Grounded on
// _examples/original_source/src/logger/writer.rs's LogWriter, adapted from a
// global OnceLock singleton to an explicit, constructor-owned value since Go
// has no equivalent of a process-wide static without import-cycle risk.
package logwriter

import (
	"io"
	"os"
	"sync"
)

// Writer multiplexes access-log and error-log lines to independently
// configurable targets.
type Writer struct {
	accessMu sync.Mutex
	access   io.Writer
	accessF  *os.File

	errorMu sync.Mutex
	errorW  io.Writer
	errorF  *os.File
}

// New opens accessLogFile/errorLogFile if given, defaulting to stdout/stderr
// respectively when the path is empty.
func New(accessLogFile, errorLogFile string) (*Writer, error) {
	w := &Writer{access: os.Stdout, errorW: os.Stderr}

	if accessLogFile != "" {
		f, err := openLogFile(accessLogFile)
		if err != nil {
			return nil, err
		}
		w.access, w.accessF = f, f
	}
	if errorLogFile != "" {
		f, err := openLogFile(errorLogFile)
		if err != nil {
			return nil, err
		}
		w.errorW, w.errorF = f, f
	}
	return w, nil
}

func openLogFile(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
}

// WriteAccess appends line (newline included by the caller's formatter, or
// appended here if absent) to the access log target.
func (w *Writer) WriteAccess(line string) {
	w.accessMu.Lock()
	defer w.accessMu.Unlock()
	writeLine(w.access, line)
}

// WriteError appends line to the error log target.
func (w *Writer) WriteError(line string) {
	w.errorMu.Lock()
	defer w.errorMu.Unlock()
	writeLine(w.errorW, line)
}

func writeLine(w io.Writer, line string) {
	if len(line) == 0 || line[len(line)-1] != '\n' {
		line += "\n"
	}
	_, _ = io.WriteString(w, line)
}

// SetAccessLogFile reopens the access log target at path, or reverts to
// stdout when path is empty. Safe to call while other goroutines are
// writing.
func (w *Writer) SetAccessLogFile(path string) error {
	var next io.Writer = os.Stdout
	var f *os.File
	if path != "" {
		var err error
		f, err = openLogFile(path)
		if err != nil {
			return err
		}
		next = f
	}

	w.accessMu.Lock()
	prev := w.accessF
	w.access, w.accessF = next, f
	w.accessMu.Unlock()

	if prev != nil {
		_ = prev.Close()
	}
	return nil
}

// SetErrorLogFile reopens the error log target at path, or reverts to
// stderr when path is empty.
func (w *Writer) SetErrorLogFile(path string) error {
	var next io.Writer = os.Stderr
	var f *os.File
	if path != "" {
		var err error
		f, err = openLogFile(path)
		if err != nil {
			return err
		}
		next = f
	}

	w.errorMu.Lock()
	prev := w.errorF
	w.errorW, w.errorF = next, f
	w.errorMu.Unlock()

	if prev != nil {
		_ = prev.Close()
	}
	return nil
}

// Close releases any open file handles.
func (w *Writer) Close() error {
	w.accessMu.Lock()
	if w.accessF != nil {
		_ = w.accessF.Close()
	}
	w.accessMu.Unlock()

	w.errorMu.Lock()
	if w.errorF != nil {
		_ = w.errorF.Close()
	}
	w.errorMu.Unlock()
	return nil
}
