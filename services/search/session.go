package search

import (
	"fmt"
	"regexp"
	"time"
)

type MatchKind string

const (
	KindName        MatchKind = "name"
	KindContent     MatchKind = "content"
	KindDecodeError MatchKind = "decode_error"
)

// MatchRecord is one finding of a search: a file name match, a matching line, or a file whose
// content could not be decoded as text.
type MatchRecord struct {
	Kind MatchKind `json:"kind"`
	Path string    `json:"path"`
	Line int       `json:"line,omitempty"`
	Text string    `json:"text,omitempty"`
}

func NameMatch(path string) MatchRecord {
	return MatchRecord{Kind: KindName, Path: path}
}

func ContentMatch(path string, line int, text string) MatchRecord {
	return MatchRecord{Kind: KindContent, Path: path, Line: line, Text: text}
}

func DecodeError(path string) MatchRecord {
	return MatchRecord{Kind: KindDecodeError, Path: path}
}

func (r MatchRecord) String() string {
	switch r.Kind {
	case KindName:
		return fmt.Sprintf("Found matching file: %s", r.Path)
	case KindContent:
		return fmt.Sprintf("Found matching content in: %s:%d: %s", r.Path, r.Line, r.Text)
	case KindDecodeError:
		return fmt.Sprintf("Error decoding file: %s", r.Path)
	default:
		return fmt.Sprintf("Unknown match (%s): %s", r.Kind, r.Path)
	}
}

// Session is the state of a single walk. Records are in visitation order and never exceed
// MaxResults.
type Session struct {
	Root           string         `json:"root"`
	Pattern        *regexp.Regexp `json:"-"`
	SearchContents bool           `json:"search_contents"`
	MaxResults     int            `json:"max_results"`
	StartedAt      time.Time      `json:"started_at"`
	Elapsed        time.Duration  `json:"elapsed"`
	Records        []MatchRecord  `json:"records"`
	EntriesVisited int            `json:"entries_visited"`
	Capped         bool           `json:"capped"`
	Cancelled      bool           `json:"cancelled"`
}

func (s *Session) Count() int {
	return len(s.Records)
}

func (s *Session) full() bool {
	return len(s.Records) >= s.MaxResults
}
