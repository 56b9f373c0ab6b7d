// Package extract converts PubMed XML trees into normalized article records.
package extract

import (
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strconv"
	"strings"

	"github.com/matsen/pubmedxml/internal/article"
	"github.com/matsen/pubmedxml/internal/xmltree"
)

// DefaultDateSeparator separates the components of pubmed_pubdate.
const DefaultDateSeparator = "-"

// Extractor holds presentation options. It keeps no per-document state and
// is safe for concurrent use.
type Extractor struct {
	logger  *slog.Logger
	dateSep string
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithDateSeparator sets the separator used in pubmed_pubdate (e.g. "/").
func WithDateSeparator(sep string) Option {
	return func(e *Extractor) {
		e.dateSep = sep
	}
}

// New creates an Extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		dateSep: DefaultDateSeparator,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultExtractor = New()

// Extract converts doc with default options. See Extractor.Extract.
func Extract(doc *xmltree.Node) iter.Seq2[*article.Article, error] {
	return defaultExtractor.Extract(doc)
}

// Extract yields one record per PubmedArticle child of doc, in document
// order. A document without citations yields exactly one (nil, nil) pair,
// which callers treat as "no data". A citation that cannot be converted
// yields (nil, *RecordError) and iteration continues with the next one.
func (e *Extractor) Extract(doc *xmltree.Node) iter.Seq2[*article.Article, error] {
	return func(yield func(*article.Article, error) bool) {
		index := 0
		if doc != nil {
			for _, child := range doc.Children {
				if child.Name != "PubmedArticle" {
					continue
				}
				a, err := e.ExtractArticle(child)
				if err != nil {
					pmid := 0
					if a != nil {
						pmid = a.PMID
					}
					err = &RecordError{Index: index, PMID: pmid, Err: err}
					a = nil
				}
				index++
				if !yield(a, err) {
					return
				}
			}
		}
		if index == 0 {
			yield(nil, nil)
		}
	}
}

// ExtractArticle converts one PubmedArticle element. On a date error the
// partially filled record is returned alongside the error so callers can
// report its PMID.
func (e *Extractor) ExtractArticle(pa *xmltree.Node) (*article.Article, error) {
	mc := pa.Find("MedlineCitation")
	pmid, err := parsePMID(mc)
	if err != nil {
		return nil, err
	}

	art := mc.Find("Article")
	journalInfo := mc.Find("MedlineJournalInfo")
	issue := art.Find("Journal/JournalIssue")

	a := &article.Article{
		PMID:    pmid,
		EISSN:   art.FindText(`Journal/ISSN[@IssnType="Electronic"]`),
		ISSN:    art.FindText(`Journal/ISSN[@IssnType="Print"]`),
		Journal: art.FindText("Journal/Title"),
		ISOAbbr: art.FindText("Journal/ISOAbbreviation"),
		MedAbbr: journalInfo.FindText("MedlineTA"),
		MedISSN: journalInfo.FindText("ISSNLinking"),
		NLMID:   journalInfo.FindText("NlmUniqueID"),

		PubDate: strings.Join(issue.FindTexts("PubDate/*"), " "),

		Pagination: art.FindText("Pagination/MedlinePgn"),
		Volume:     issue.FindText("Volume"),
		Issue:      issue.FindText("Issue"),

		Title:    art.Find("ArticleTitle").InnerText(),
		Abstract: e.NormalizeAbstract(art.FindAll("Abstract/AbstractText")),
		Keywords: innerTexts(mc.FindAll("KeywordList/Keyword")),

		PubStatus: pa.FindText("PubmedData/PublicationStatus"),
		PubTypes:  innerTexts(art.FindAll("PublicationTypeList/PublicationType")),
	}
	if a.ISSN == "" {
		a.ISSN = a.MedISSN
	}

	a.Authors, a.AuthorMails, a.Affiliations = assembleAuthors(art.FindAll("AuthorList/Author"))

	ids := pa.FindAll("PubmedData/ArticleIdList/ArticleId")
	a.DOI = ArticleID(ids, "doi")
	a.PMC = ArticleID(ids, "pmc")
	a.PII = ArticleID(ids, "pii")
	a.References = ReferenceIDs(pa.FindAll("PubmedData/ReferenceList/Reference/ArticleIdList/ArticleId"))

	a.Year, a.PubMedPubDate, err = e.ResolvePubDate(pa)
	a.Normalize()
	return a, err
}

func parsePMID(mc *xmltree.Node) (int, error) {
	node := mc.Find("PMID")
	if node == nil {
		return 0, ErrMissingPMID
	}
	text := strings.TrimSpace(node.Text)
	if text == "" {
		return 0, ErrMissingPMID
	}
	pmid, err := strconv.Atoi(text)
	if err != nil || pmid <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPMID, text)
	}
	return pmid, nil
}

// assembleAuthors returns display names, "Name:email" entries and the
// deduplicated affiliations (first-seen order) of an AuthorList.
func assembleAuthors(authors []*xmltree.Node) (names, mails, affiliations []string) {
	seen := make(map[string]bool)

	for _, au := range authors {
		name := article.AuthorName(au.FindText("LastName"), au.FindText("ForeName"), au.FindText("Initials"))
		if name == "" {
			name = strings.TrimSpace(au.Find("CollectiveName").InnerText())
		}

		affTexts := innerTexts(au.FindAll("AffiliationInfo/Affiliation"))
		for _, aff := range affTexts {
			if !seen[aff] {
				seen[aff] = true
				affiliations = append(affiliations, aff)
			}
		}

		if name == "" {
			continue
		}
		names = append(names, name)

		if email := article.FindEmail(strings.Join(affTexts, "\n")); email != "" {
			mails = append(mails, article.AuthorMail(name, email))
		}
	}
	return names, mails, affiliations
}

// ArticleID returns the first ArticleId whose IdType equals idType.
func ArticleID(ids []*xmltree.Node, idType string) string {
	for _, id := range ids {
		if id.Attr("IdType") == idType {
			return strings.TrimSpace(id.InnerText())
		}
	}
	return ""
}

// ReferenceIDs returns the PMIDs of every ArticleId of type "pubmed".
// Values that are not integers are skipped.
func ReferenceIDs(ids []*xmltree.Node) []int {
	refs := []int{}
	for _, id := range ids {
		if id.Attr("IdType") != "pubmed" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(id.InnerText()))
		if err != nil {
			continue
		}
		refs = append(refs, n)
	}
	return refs
}

func innerTexts(nodes []*xmltree.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if t := n.InnerText(); t != "" {
			out = append(out, t)
		}
	}
	return out
}
