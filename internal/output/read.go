package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/pgzip"
	"github.com/matsen/pubmedxml/internal/article"
	"github.com/segmentio/encoding/json"
)

// MaxLineCapacity is the maximum buffer size for reading one JSON line.
const MaxLineCapacity = 16 * 1024 * 1024

// ReadAll reads every record from a JSONL file written by Writer.
// ".gz" files are decompressed.
func ReadAll(path string) ([]*article.Article, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening records file: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := pgzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("opening gzip stream: %w", err)
		}
		defer zr.Close()
		r = zr
	}
	return Decode(r)
}

// Decode reads records, one JSON object per line. Blank lines are skipped.
func Decode(r io.Reader) ([]*article.Article, error) {
	var records []*article.Article
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), MaxLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var a article.Article
		if err := json.Unmarshal(line, &a); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		records = append(records, &a)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}
	return records, nil
}
