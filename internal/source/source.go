// Package source turns a command-line input (file path, raw XML text or a
// bare PMID) into a parsed XML tree.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/pgzip"
	"github.com/matsen/pubmedxml/internal/xmltree"
)

// ErrParse wraps every failure to produce a tree for an input.
var ErrParse = errors.New("XML parse error")

// ErrNoFetcher is returned for PMID inputs when no Fetcher is configured.
var ErrNoFetcher = errors.New("no remote fetcher configured")

// Kind classifies an input string.
type Kind int

const (
	KindFile Kind = iota
	KindXML
	KindPMID
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindXML:
		return "xml"
	case KindPMID:
		return "pmid"
	}
	return "unknown"
}

// Fetcher returns the raw XML for a single PMID.
type Fetcher interface {
	FetchXML(ctx context.Context, pmid string) (string, error)
}

// Loader resolves inputs to parsed trees.
type Loader struct {
	fetcher Fetcher
}

// NewLoader creates a Loader. fetcher may be nil when only files and
// literal XML are expected.
func NewLoader(fetcher Fetcher) *Loader {
	return &Loader{fetcher: fetcher}
}

// Classify reports how src will be interpreted: an existing regular file
// wins, then text beginning with '<', then a remote identifier.
func Classify(src string) Kind {
	if info, err := os.Stat(src); err == nil && info.Mode().IsRegular() {
		return KindFile
	}
	if strings.HasPrefix(strings.TrimSpace(src), "<") {
		return KindXML
	}
	return KindPMID
}

// Load parses src into a tree. Every failure, including a failed remote
// fetch, is returned wrapped in ErrParse with the underlying cause.
func (l *Loader) Load(ctx context.Context, src string) (*xmltree.Node, error) {
	kind := Classify(src)

	var (
		doc *xmltree.Node
		err error
	)
	switch kind {
	case KindFile:
		doc, err = parseFile(src)
	case KindXML:
		doc, err = xmltree.ParseString(src)
	case KindPMID:
		doc, err = l.fetch(ctx, strings.TrimSpace(src))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrParse, kind, label(src), err)
	}
	return doc, nil
}

func (l *Loader) fetch(ctx context.Context, pmid string) (*xmltree.Node, error) {
	if l.fetcher == nil {
		return nil, ErrNoFetcher
	}
	text, err := l.fetcher.FetchXML(ctx, pmid)
	if err != nil {
		return nil, err
	}
	return xmltree.ParseString(text)
}

// Open opens a file for reading, transparently decompressing ".gz" files.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}

	zr, err := pgzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("opening gzip stream: %w", err)
	}
	return &gzipFile{Reader: zr, file: f}, nil
}

type gzipFile struct {
	*pgzip.Reader
	file *os.File
}

func (g *gzipFile) Close() error {
	zerr := g.Reader.Close()
	ferr := g.file.Close()
	if zerr != nil {
		return zerr
	}
	return ferr
}

func parseFile(path string) (*xmltree.Node, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return xmltree.Parse(r)
}

// label shortens literal XML inputs for error messages.
func label(src string) string {
	const maxLen = 40
	src = strings.TrimSpace(src)
	if i := strings.IndexByte(src, '\n'); i >= 0 {
		src = src[:i]
	}
	if len(src) > maxLen {
		cut := maxLen - 3
		for cut > 0 && !utf8.RuneStart(src[cut]) {
			cut--
		}
		return src[:cut] + "..."
	}
	return src
}
