package search

import (
	"bufio"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/meghashyamc/fuzzyfind/logger"
)

// Number of entries read from a directory at a time. Once the cap is hit no further batch is
// listed.
const readDirBatchSize = 64

type Options struct {
	SearchContents bool
	MaxResults     int
	// SortEntries visits each directory's entries by name instead of listing order.
	SortEntries bool
}

type Searcher struct {
	logger logger.Logger
}

func NewSearcher(logger logger.Logger) *Searcher {
	return &Searcher{logger: logger}
}

type walker struct {
	ctx     context.Context
	logger  logger.Logger
	pattern *regexp.Regexp
	opts    Options
	session *Session
}

// Walk searches the tree under root depth-first, pre-order, testing file names and optionally
// file contents against pattern. It stops the whole traversal as soon as MaxResults records
// have been collected. Reaching the cap is not an error; cancelling ctx returns the partial
// session together with the context error.
func (s *Searcher) Walk(ctx context.Context, root string, pattern *regexp.Regexp, opts Options) (*Session, error) {
	if opts.MaxResults < 1 {
		return nil, ErrInvalidResultCap
	}

	rootDir, err := openRoot(root)
	if err != nil {
		s.logger.Error("cannot search root", "root", root, "err", err.Error())
		return nil, err
	}
	defer rootDir.Close()

	session := &Session{
		Root:           root,
		Pattern:        pattern,
		SearchContents: opts.SearchContents,
		MaxResults:     opts.MaxResults,
		StartedAt:      time.Now().UTC(),
	}
	w := &walker{
		ctx:     ctx,
		logger:  s.logger,
		pattern: pattern,
		opts:    opts,
		session: session,
	}

	err = w.walkEntries(root, rootDir)
	session.Elapsed = time.Since(session.StartedAt)

	switch {
	case err == nil:
	case errors.Is(err, errCapReached):
		session.Capped = true
		err = nil
	default:
		session.Cancelled = true
	}

	s.logger.Info("search finished", "root", root, "matches", session.Count(), "entries_visited", session.EntriesVisited, "capped", session.Capped, "cancelled", session.Cancelled, "elapsed", session.Elapsed.String())

	return session, err
}

// CheckRoot reports an *InvalidRootError if root does not exist or is not a directory.
func CheckRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return &InvalidRootError{Path: root, Reason: err.Error()}
	}
	if !info.IsDir() {
		return &InvalidRootError{Path: root, Reason: "not a directory"}
	}

	return nil
}

func openRoot(root string) (*os.File, error) {
	if err := CheckRoot(root); err != nil {
		return nil, err
	}

	dir, err := os.Open(root)
	if err != nil {
		return nil, &InvalidRootError{Path: root, Reason: err.Error()}
	}

	return dir, nil
}

// stop returns the reason the walk must unwind, or nil to keep going.
func (w *walker) stop() error {
	if w.session.full() {
		return errCapReached
	}

	return w.ctx.Err()
}

func (w *walker) emit(record MatchRecord) error {
	w.session.Records = append(w.session.Records, record)
	if w.session.full() {
		return errCapReached
	}

	return nil
}

func (w *walker) walkDir(path string) error {
	dir, err := os.Open(path)
	if err != nil {
		w.logger.Warn("could not open directory, skipping", "path", path, "err", err.Error())
		return nil
	}
	defer dir.Close()

	return w.walkEntries(path, dir)
}

func (w *walker) walkEntries(path string, dir *os.File) error {
	if w.opts.SortEntries {
		entries, err := dir.ReadDir(-1)
		if err != nil {
			w.logger.Warn("could not list directory completely", "path", path, "err", err.Error())
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

		return w.visitAll(path, entries)
	}

	for {
		if err := w.stop(); err != nil {
			return err
		}

		entries, readErr := dir.ReadDir(readDirBatchSize)
		if err := w.visitAll(path, entries); err != nil {
			return err
		}

		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			w.logger.Warn("could not list directory completely", "path", path, "err", readErr.Error())
			return nil
		}
	}
}

func (w *walker) visitAll(dir string, entries []fs.DirEntry) error {
	for _, entry := range entries {
		if err := w.stop(); err != nil {
			return err
		}
		w.session.EntriesVisited++

		if err := w.visit(filepath.Join(dir, entry.Name()), entry); err != nil {
			return err
		}
	}

	return nil
}

func (w *walker) visit(path string, entry fs.DirEntry) error {
	entryType := entry.Type()

	switch {
	case entryType&fs.ModeSymlink != 0:
		w.logger.Debug("skipping symbolic link", "path", path)
		return nil
	case entry.IsDir():
		return w.walkDir(path)
	case entryType.IsRegular():
		return w.evaluateFile(path, entry.Name())
	default:
		w.logger.Debug("skipping special file", "path", path, "type", entryType.String())
		return nil
	}
}

// evaluateFile scans the content first, then tests the file name.
func (w *walker) evaluateFile(path string, name string) error {
	if w.opts.SearchContents {
		done, err := w.scanContents(path)
		if err != nil || done {
			return err
		}
	}

	if w.pattern.MatchString(name) {
		return w.emit(NameMatch(path))
	}

	return nil
}

// scanContents reports done when the file must not be evaluated any further, either because
// it is not text or because it could not be read. Nothing is emitted for a file until all of
// it is known to decode.
func (w *walker) scanContents(path string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		w.logger.Warn("could not open file, skipping", "path", path, "err", err.Error())
		return true, nil
	}
	defer file.Close()

	text, err := isText(w.ctx, file)
	if err != nil {
		if ctxErr := w.ctx.Err(); ctxErr != nil {
			return true, ctxErr
		}
		w.logger.Warn("could not read file, skipping", "path", path, "err", err.Error())
		return true, nil
	}
	if !text {
		w.logger.Debug("file is not valid text", "path", path)
		return true, w.emit(DecodeError(path))
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		w.logger.Warn("could not rewind file, skipping", "path", path, "err", err.Error())
		return true, nil
	}

	reader := bufio.NewReader(file)
	lineNumber := 0

	for {
		if err := w.stop(); err != nil {
			return true, err
		}

		chunk, readErr := reader.ReadBytes('\n')
		for _, line := range splitLines(chunk) {
			lineNumber++
			if !w.pattern.Match(line) {
				continue
			}
			if err := w.emit(ContentMatch(path, lineNumber, string(line))); err != nil {
				return true, err
			}
		}

		if readErr == io.EOF {
			return false, nil
		}
		if readErr != nil {
			w.logger.Warn("could not read file, skipping", "path", path, "err", readErr.Error())
			return true, nil
		}
	}
}
