// Package article defines the normalized record emitted for each PubMed citation.
package article

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Placeholder marks a text field whose source element was absent.
const Placeholder = "."

// Article is one normalized PubMed citation. Every field is always present
// in the JSON encoding; absent source data resolves to "", [] or Placeholder.
type Article struct {
	// Identity
	PMID int `json:"pmid"`

	// Journal
	ISSN    string `json:"issn"`   // Print ISSN, falling back to ISSNLinking
	EISSN   string `json:"e_issn"` // Electronic ISSN
	Journal string `json:"journal"`
	ISOAbbr string `json:"iso_abbr"`
	MedAbbr string `json:"med_abbr"` // MedlineTA
	MedISSN string `json:"med_issn"` // ISSNLinking
	NLMID   string `json:"nlm_id"`

	// Dates
	PubDate       string `json:"pubdate"` // Space-joined PubDate components
	Year          Year   `json:"year"`
	PubMedPubDate string `json:"pubmed_pubdate"`

	Pagination string `json:"pagination"`
	Volume     string `json:"volume"`
	Issue      string `json:"issue"`

	// Content
	Title    string   `json:"title"`
	Abstract string   `json:"abstract"`
	Keywords []string `json:"keywords"`

	PubStatus string   `json:"pub_status"`
	PubTypes  []string `json:"pub_types"`

	// People
	Authors      []string `json:"authors"`
	AuthorMails  []string `json:"author_mails"`
	Affiliations []string `json:"affiliations"`

	// External identifiers
	DOI        string `json:"doi"`
	PMC        string `json:"pmc"`
	PII        string `json:"pii"`
	References []int  `json:"references"`
}

// Normalize replaces nil slices with empty ones and an empty abstract with
// Placeholder so the encoded record keeps a fixed shape.
func (a *Article) Normalize() {
	if a.Abstract == "" {
		a.Abstract = Placeholder
	}
	a.Keywords = nonNil(a.Keywords)
	a.PubTypes = nonNil(a.PubTypes)
	a.Authors = nonNil(a.Authors)
	a.AuthorMails = nonNil(a.AuthorMails)
	a.Affiliations = nonNil(a.Affiliations)
	if a.References == nil {
		a.References = []int{}
	}
}

func (a *Article) String() string {
	return fmt.Sprintf("Article<%d>", a.PMID)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Year is a publication year. It encodes as a JSON number when set and as
// an empty string when unresolved, and decodes from either form.
type Year int

func (y Year) MarshalJSON() ([]byte, error) {
	if y == 0 {
		return []byte(`""`), nil
	}
	return []byte(strconv.Itoa(int(y))), nil
}

func (y *Year) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*y = 0
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			*y = 0
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("cannot unmarshal %q into Year", s)
		}
		*y = Year(n)
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*y = Year(n)
		return nil
	}

	return fmt.Errorf("cannot unmarshal %s into Year", string(data))
}

// String returns "" for an unresolved year.
func (y Year) String() string {
	if y == 0 {
		return ""
	}
	return strconv.Itoa(int(y))
}
