package output

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matsen/pubmedxml/internal/article"
)

func TestWriter_OneObjectPerLine(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	recs := []*article.Article{
		{PMID: 1, Title: "Ökologie <i>und</i> Umwelt & mehr"},
		{PMID: 2, Title: "Second"},
	}
	for _, r := range recs {
		r.Normalize()
		if err := w.Write(r); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	if w.Count() != 2 {
		t.Errorf("Count() = %d, want 2", w.Count())
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), buf.String())
	}

	if !strings.Contains(lines[0], `"title":"Ökologie <i>und</i> Umwelt & mehr"`) {
		t.Errorf("non-ASCII or HTML characters were escaped: %s", lines[0])
	}
	if !strings.HasPrefix(lines[0], `{"pmid":1,`) {
		t.Errorf("record should start with pmid: %s", lines[0])
	}

	var got article.Article
	if err := json.Unmarshal([]byte(lines[1]), &got); err != nil {
		t.Fatalf("line 2 is not valid JSON: %v", err)
	}
	if got.PMID != 2 {
		t.Errorf("PMID = %d, want 2", got.PMID)
	}
}

func TestOpen_PlainFileCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "out.jsonl")

	w, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := w.Write([]byte("{}\n")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "{}\n" {
		t.Errorf("file content = %q", data)
	}
}

func TestOpen_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl.gz")

	w, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	jw := NewWriter(w)
	a := &article.Article{PMID: 7}
	a.Normalize()
	if err := jw.Write(a); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := jw.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer f.Close()
	zr, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("output is not gzip: %v", err)
	}
	scanner := bufio.NewScanner(zr)
	if !scanner.Scan() {
		t.Fatal("no lines in gzip output")
	}
	if !strings.HasPrefix(scanner.Text(), `{"pmid":7,`) {
		t.Errorf("line = %s", scanner.Text())
	}
}

func TestOpen_Stdout(t *testing.T) {
	for _, path := range []string{"", "-"} {
		w, err := Open(path)
		if err != nil {
			t.Fatalf("Open(%q) error = %v", path, err)
		}
		if err := w.Close(); err != nil {
			t.Errorf("Close() on stdout = %v", err)
		}
	}
}

func TestReadAll_RoundTrip(t *testing.T) {
	want := []*article.Article{
		{PMID: 1, Title: "Ünïcode", Year: 2020, References: []int{3, 4}},
		{PMID: 2, Authors: []string{"Jane Smith"}},
	}
	for _, a := range want {
		a.Normalize()
	}

	for _, name := range []string{"out.jsonl", "out.jsonl.gz"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			w, err := Open(path)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			jw := NewWriter(w)
			for _, a := range want {
				if err := jw.Write(a); err != nil {
					t.Fatalf("Write() error = %v", err)
				}
			}
			if err := jw.Flush(); err != nil {
				t.Fatal(err)
			}
			if err := w.Close(); err != nil {
				t.Fatal(err)
			}

			got, err := ReadAll(path)
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("ReadAll() = %+v, want %+v", got, want)
			}
		})
	}
}

func TestDecode_BadLine(t *testing.T) {
	_, err := Decode(strings.NewReader("{\"pmid\":1}\n\nnot json\n"))
	if err == nil || !strings.Contains(err.Error(), "line 3") {
		t.Errorf("Decode() error = %v, want parse error on line 3", err)
	}
}
