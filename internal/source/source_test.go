package source

import (
	"compress/gzip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"
)

const docXML = `<?xml version="1.0"?>
<PubmedArticleSet><PubmedArticle><MedlineCitation><PMID>5</PMID></MedlineCitation></PubmedArticle></PubmedArticleSet>`

type stubFetcher struct {
	xml   string
	err   error
	calls []string
}

func (s *stubFetcher) FetchXML(_ context.Context, pmid string) (string, error) {
	s.calls = append(s.calls, pmid)
	return s.xml, s.err
}

func TestClassify(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.xml")
	if err := os.WriteFile(path, []byte(docXML), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		src  string
		want Kind
	}{
		{"existing file", path, KindFile},
		{"xml declaration", docXML, KindXML},
		{"bare element", "<PubmedArticleSet/>", KindXML},
		{"leading whitespace", "  \n<a/>", KindXML},
		{"pmid", "30003000", KindPMID},
		{"missing file", filepath.Join(t.TempDir(), "missing.xml"), KindPMID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.src); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.src, got, tt.want)
			}
		})
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "in.xml")
	if err := os.WriteFile(plain, []byte(docXML), 0644); err != nil {
		t.Fatal(err)
	}

	gzPath := filepath.Join(dir, "in.xml.gz")
	f, err := os.Create(gzPath)
	if err != nil {
		t.Fatal(err)
	}
	zw := gzip.NewWriter(f)
	zw.Write([]byte(docXML))
	zw.Close()
	f.Close()

	l := NewLoader(nil)
	for _, path := range []string{plain, gzPath} {
		doc, err := l.Load(context.Background(), path)
		if err != nil {
			t.Fatalf("Load(%s) error = %v", path, err)
		}
		if doc.FindText("PubmedArticle/MedlineCitation/PMID") != "5" {
			t.Errorf("Load(%s) tree missing PMID", path)
		}
	}
}

func TestLoad_RawXML(t *testing.T) {
	doc, err := NewLoader(nil).Load(context.Background(), docXML)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if doc.Name != "PubmedArticleSet" {
		t.Errorf("root = %q", doc.Name)
	}
}

func TestLoad_PMID(t *testing.T) {
	f := &stubFetcher{xml: docXML}
	doc, err := NewLoader(f).Load(context.Background(), "5")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(f.calls) != 1 || f.calls[0] != "5" {
		t.Errorf("fetcher calls = %v, want [5]", f.calls)
	}
	if doc.FindText("PubmedArticle/MedlineCitation/PMID") != "5" {
		t.Error("fetched tree missing PMID")
	}
}

func TestLoad_ErrorsWrapParse(t *testing.T) {
	fetchErr := errors.New("connection refused")

	tests := []struct {
		name    string
		loader  *Loader
		src     string
		wantErr error
	}{
		{"malformed xml", NewLoader(nil), "<a><b></a>", nil},
		{"no fetcher", NewLoader(nil), "123", ErrNoFetcher},
		{"fetch failure", NewLoader(&stubFetcher{err: fetchErr}), "123", fetchErr},
		{"fetched garbage", NewLoader(&stubFetcher{xml: "<a>"}), "123", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.loader.Load(context.Background(), tt.src)
			if !errors.Is(err, ErrParse) {
				t.Fatalf("Load() error = %v, want ErrParse", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want wrapped %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_BadGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.xml.gz")
	if err := os.WriteFile(path, []byte("not gzip"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewLoader(nil).Load(context.Background(), path); !errors.Is(err, ErrParse) {
		t.Errorf("Load() error = %v, want ErrParse", err)
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short", "12345", "12345"},
		{"first line only", "<a>\n<b/></a>", "<a>"},
		{"ascii cut", strings.Repeat("x", 50), strings.Repeat("x", 37) + "..."},
		{"multibyte at cut", strings.Repeat("x", 36) + "éééé", strings.Repeat("x", 36) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := label(tt.in)
			if got != tt.want {
				t.Errorf("label(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("label(%q) = %q is not valid UTF-8", tt.in, got)
			}
		})
	}
}
