package csvexport

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"

	"github.com/nao1215/paperstat/internal/model"
)

// Extension is appended to every saved file name.
const Extension = ".csv"

// Strategy is one way of delivering an exported file.
type Strategy interface {
	// Name identifies the strategy in logs and errors.
	Name() string

	// Available reports whether the strategy can be tried in this environment.
	Available() bool

	// Attempt delivers data under fileName (extension included).
	Attempt(fileName string, data []byte) (string, error)
}

// Saver tries strategies in order until one succeeds.
type Saver struct {
	strategies []Strategy
	encoding   Encoding
	logger     *slog.Logger
}

// SaverOption configures a Saver.
type SaverOption func(*Saver)

// WithEncoding sets the output encoding. Defaults to UTF8BOM.
func WithEncoding(e Encoding) SaverOption {
	return func(s *Saver) {
		s.encoding = e
	}
}

// WithSaverLogger sets the logger used to report skipped and failed strategies.
func WithSaverLogger(logger *slog.Logger) SaverOption {
	return func(s *Saver) {
		s.logger = logger
	}
}

// NewSaver creates a Saver over the given strategies, tried in order.
func NewSaver(strategies []Strategy, opts ...SaverOption) *Saver {
	s := &Saver{
		strategies: strategies,
		encoding:   UTF8BOM,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Save encodes csvText and delivers it as <fileName>.csv.
// It returns the location reported by the strategy that succeeded, or an
// error wrapping model.ErrUnsupportedEnvironment when every strategy was
// unavailable or failed.
func (s *Saver) Save(fileName, csvText string) (string, error) {
	if fileName == "" {
		fileName = DefaultFileName
	}
	data, err := s.encoding.Encode(csvText)
	if err != nil {
		return "", err
	}

	var errs []error
	for _, st := range s.strategies {
		if !st.Available() {
			s.logger.Debug("save strategy unavailable", "strategy", st.Name())
			continue
		}
		location, err := st.Attempt(fileName+Extension, data)
		if err != nil {
			s.logger.Warn("save strategy failed", "strategy", st.Name(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", st.Name(), err))
			continue
		}
		s.logger.Info("export saved", "strategy", st.Name(), "location", location, "bytes", len(data))
		return location, nil
	}

	if len(errs) == 0 {
		return "", fmt.Errorf("%w: no save strategy available", model.ErrUnsupportedEnvironment)
	}
	return "", fmt.Errorf("%w: %w", model.ErrUnsupportedEnvironment, errors.Join(errs...))
}

// FileStrategy writes the file into a directory. The data goes to a
// temporary file first and is renamed into place, so a failed write never
// leaves a partial export behind.
type FileStrategy struct {
	Dir string
}

// Name implements Strategy.
func (f *FileStrategy) Name() string { return "file" }

// Available reports whether Dir exists (or can be created) and is a directory.
func (f *FileStrategy) Available() bool {
	if f.Dir == "" {
		return false
	}
	if err := os.MkdirAll(f.Dir, 0750); err != nil {
		return false
	}
	info, err := os.Stat(f.Dir)
	return err == nil && info.IsDir()
}

// Attempt implements Strategy.
func (f *FileStrategy) Attempt(fileName string, data []byte) (string, error) {
	tmp, err := os.CreateTemp(f.Dir, ".paperstat-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // Removing after rename is expected to fail

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close export: %w", err)
	}

	dest := filepath.Join(f.Dir, filepath.Base(fileName))
	if err := os.Rename(tmpName, dest); err != nil {
		return "", fmt.Errorf("failed to move export into place: %w", err)
	}
	if err := os.Chmod(dest, 0600); err != nil {
		return "", fmt.Errorf("failed to set export permissions: %w", err)
	}
	return dest, nil
}

// StreamStrategy writes the raw file bytes to a stream such as a pipe.
// It refuses terminals, where binary CSV with a BOM is not useful.
type StreamStrategy struct {
	W io.Writer

	// Force skips the terminal check.
	Force bool
}

// Name implements Strategy.
func (s *StreamStrategy) Name() string { return "stream" }

// Available reports whether W is set and, unless forced, not a terminal.
func (s *StreamStrategy) Available() bool {
	if s.W == nil {
		return false
	}
	if s.Force {
		return true
	}
	return !isTerminal(s.W)
}

// Attempt implements Strategy.
func (s *StreamStrategy) Attempt(fileName string, data []byte) (string, error) {
	if _, err := s.W.Write(data); err != nil {
		return "", fmt.Errorf("failed to write %s to stream: %w", fileName, err)
	}
	return "stream", nil
}

// SepStrategy is the degraded last resort: it writes a "sep=," hint line
// followed by the CSV text to any writer, terminal included. The hint tells
// spreadsheet tools which delimiter to use when the BOM is lost.
type SepStrategy struct {
	W io.Writer
}

// Name implements Strategy.
func (s *SepStrategy) Name() string { return "sep" }

// Available reports whether W is set.
func (s *SepStrategy) Available() bool { return s.W != nil }

// Attempt implements Strategy.
func (s *SepStrategy) Attempt(fileName string, data []byte) (string, error) {
	payload := append([]byte("sep=,\r\n"), trimBOM(data)...)
	if _, err := s.W.Write(payload); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", fileName, err)
	}
	return "sep", nil
}

// trimBOM drops a leading UTF-8 byte-order mark; the sep line must come first.
func trimBOM(data []byte) []byte {
	if len(data) >= len(bom) && string(data[:len(bom)]) == bom {
		return data[len(bom):]
	}
	return data
}

// isTerminal reports whether w is a file descriptor attached to a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
