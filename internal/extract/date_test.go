package extract

import (
	"errors"
	"testing"

	"github.com/matsen/pubmedxml/internal/article"
)

func historyDoc(dates string) string {
	return `<PubmedArticle><PubmedData><History>` + dates + `</History></PubmedData></PubmedArticle>`
}

func TestResolvePubDate(t *testing.T) {
	tests := []struct {
		name     string
		dates    string
		wantYear article.Year
		wantDate string
	}{
		{
			name: "pubmed preferred over entrez",
			dates: `<PubMedPubDate PubStatus="entrez"><Year>2019</Year><Month>1</Month><Day>2</Day></PubMedPubDate>
				<PubMedPubDate PubStatus="pubmed"><Year>2020</Year><Month>3</Month><Day>4</Day></PubMedPubDate>`,
			wantYear: 2020,
			wantDate: "2020-03-04",
		},
		{
			name:     "entrez when pubmed absent",
			dates:    `<PubMedPubDate PubStatus="entrez"><Year>2019</Year><Month>1</Month><Day>2</Day></PubMedPubDate>`,
			wantYear: 2019,
			wantDate: "2019-01-02",
		},
		{
			name: "medline last",
			dates: `<PubMedPubDate PubStatus="received"><Year>2001</Year><Month>1</Month><Day>1</Day></PubMedPubDate>
				<PubMedPubDate PubStatus="medline"><Year>2002</Year><Month>12</Month><Day>31</Day></PubMedPubDate>`,
			wantYear: 2002,
			wantDate: "2002-12-31",
		},
		{
			name:     "day defaults to first",
			dates:    `<PubMedPubDate PubStatus="pubmed"><Year>2018</Year><Month>07</Month></PubMedPubDate>`,
			wantYear: 2018,
			wantDate: "2018-07-01",
		},
		{
			name: "earlier but more complete date not preferred",
			dates: `<PubMedPubDate PubStatus="medline"><Year>2010</Year><Month>5</Month><Day>6</Day></PubMedPubDate>
				<PubMedPubDate PubStatus="pubmed"><Year>2009</Year><Month>5</Month></PubMedPubDate>`,
			wantYear: 2009,
			wantDate: "2009-05-01",
		},
		{
			name:     "no candidate status",
			dates:    `<PubMedPubDate PubStatus="accepted"><Year>2001</Year><Month>1</Month><Day>1</Day></PubMedPubDate>`,
			wantYear: 0,
			wantDate: "",
		},
	}

	e := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			year, date, err := e.ResolvePubDate(parseDoc(t, historyDoc(tt.dates)))
			if err != nil {
				t.Fatalf("ResolvePubDate() error = %v", err)
			}
			if year != tt.wantYear || date != tt.wantDate {
				t.Errorf("ResolvePubDate() = (%d, %q), want (%d, %q)", year, date, tt.wantYear, tt.wantDate)
			}
		})
	}
}

func TestResolvePubDate_NoHistory(t *testing.T) {
	year, date, err := New().ResolvePubDate(parseDoc(t, `<PubmedArticle/>`))
	if err != nil || year != 0 || date != "" {
		t.Errorf("ResolvePubDate() = (%d, %q, %v), want zero values", year, date, err)
	}
}

func TestResolvePubDate_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		dates string
	}{
		{"non-numeric month", `<PubMedPubDate PubStatus="pubmed"><Year>2020</Year><Month>Mar</Month><Day>1</Day></PubMedPubDate>`},
		{"month out of range", `<PubMedPubDate PubStatus="pubmed"><Year>2020</Year><Month>13</Month><Day>1</Day></PubMedPubDate>`},
		{"day out of range", `<PubMedPubDate PubStatus="entrez"><Year>2021</Year><Month>2</Month><Day>29</Day></PubMedPubDate>`},
		{"missing year", `<PubMedPubDate PubStatus="pubmed"><Month>2</Month><Day>2</Day></PubMedPubDate>`},
		{"missing month", `<PubMedPubDate PubStatus="pubmed"><Year>2020</Year></PubMedPubDate>`},
	}

	e := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := e.ResolvePubDate(parseDoc(t, historyDoc(tt.dates)))
			if !errors.Is(err, ErrInvalidDate) {
				t.Errorf("ResolvePubDate() error = %v, want ErrInvalidDate", err)
			}
		})
	}
}

func TestResolvePubDate_Separator(t *testing.T) {
	e := New(WithDateSeparator("/"))
	doc := parseDoc(t, historyDoc(`<PubMedPubDate PubStatus="pubmed"><Year>2021</Year><Month>4</Month><Day>9</Day></PubMedPubDate>`))

	_, date, err := e.ResolvePubDate(doc)
	if err != nil {
		t.Fatalf("ResolvePubDate() error = %v", err)
	}
	if date != "2021/04/09" {
		t.Errorf("date = %q, want 2021/04/09", date)
	}
}
