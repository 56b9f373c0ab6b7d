package extract

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/matsen/pubmedxml/internal/article"
	"github.com/matsen/pubmedxml/internal/xmltree"
)

// historyStatuses is the lookup order for the authoritative PubMed date.
// The first status present wins even when a later one is more complete.
var historyStatuses = []string{"pubmed", "entrez", "medline"}

// ResolvePubDate picks the first history date in status priority order and
// returns its year and its formatted date. Both are zero values when no
// candidate exists. A candidate with malformed components is an error.
func (e *Extractor) ResolvePubDate(pubmedArticle *xmltree.Node) (article.Year, string, error) {
	for _, status := range historyStatuses {
		node := pubmedArticle.Find(`PubmedData/History/PubMedPubDate[@PubStatus="` + status + `"]`)
		if node == nil {
			continue
		}

		date, err := historyDate(node)
		if err != nil {
			return 0, "", fmt.Errorf("%w: %s: %v", ErrInvalidDate, status, err)
		}
		return article.Year(date.Year()), e.formatDate(date), nil
	}
	return 0, "", nil
}

// historyDate reads Year, Month and Day; Day defaults to 1.
func historyDate(node *xmltree.Node) (time.Time, error) {
	year, err := dateComponent(node, "Year", "")
	if err != nil {
		return time.Time{}, err
	}
	month, err := dateComponent(node, "Month", "")
	if err != nil {
		return time.Time{}, err
	}
	day, err := dateComponent(node, "Day", "1")
	if err != nil {
		return time.Time{}, err
	}

	if year < 1 || year > 9999 {
		return time.Time{}, fmt.Errorf("year %d out of range", year)
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if int(t.Month()) != month || t.Day() != day {
		return time.Time{}, fmt.Errorf("date %d-%d-%d out of range", year, month, day)
	}
	return t, nil
}

func dateComponent(node *xmltree.Node, name, fallback string) (int, error) {
	text := strings.TrimSpace(node.FindText(name))
	if text == "" {
		text = fallback
	}
	if text == "" {
		return 0, fmt.Errorf("missing %s", name)
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("%s %q is not numeric", name, text)
	}
	return n, nil
}

func (e *Extractor) formatDate(t time.Time) string {
	return fmt.Sprintf("%04d%s%02d%s%02d", t.Year(), e.dateSep, int(t.Month()), e.dateSep, t.Day())
}
