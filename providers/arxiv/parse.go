package arxiv

import (
	"bytes"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// SubjectRef is a (short code, full name) pair as it appears on the page,
// e.g. "Machine Learning (cs.LG)".
type SubjectRef struct {
	Code string
	Name string
}

// Detail is the structured form of one abstract page.
type Detail struct {
	Title          string
	Abstract       string
	Authors        []string
	PrimarySubject SubjectRef
	Subjects       []SubjectRef
	JournalRef     string
	Comment        string
	DOI            string

	// SubmittedOn is nil when the dateline carries no parseable date.
	// Upstream tolerates that, so we do too.
	SubmittedOn *time.Time
}

var (
	versionSuffixRe = regexp.MustCompile(`\s*\(v.*\)`)
	submittedRe     = regexp.MustCompile(`\[Submitted on (.+)\]`)
	doubleSpaceRe   = regexp.MustCompile(`  +`)
)

// ParseAbs extracts a Detail from raw abstract-page HTML. A missing
// required field (title, abstract, authors, primary subject) yields a
// ParseError; optional sections are simply left empty.
func ParseAbs(html []byte) (*Detail, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, &ParseError{Field: "document"}
	}

	d := &Detail{}

	d.Title = stripLabel(doc.Find("h1.title").Text(), "Title:")
	if d.Title == "" {
		return nil, &ParseError{Field: "title"}
	}

	d.Abstract = stripLabel(doc.Find("blockquote.abstract").Text(), "Abstract:")
	if d.Abstract == "" {
		return nil, &ParseError{Field: "abstract"}
	}

	doc.Find("div.authors a").Each(func(_ int, s *goquery.Selection) {
		name := strings.TrimSpace(s.Text())
		if name != "" {
			d.Authors = append(d.Authors, name)
		}
	})
	if len(d.Authors) == 0 {
		return nil, &ParseError{Field: "authors"}
	}

	primary, ok := splitSubject(doc.Find("span.primary-subject").Text())
	if !ok {
		return nil, &ParseError{Field: "primary-subject"}
	}
	d.PrimarySubject = primary

	for _, entry := range strings.Split(doc.Find("td.subjects").Text(), ";") {
		if ref, ok := splitSubject(entry); ok {
			d.Subjects = append(d.Subjects, ref)
		}
	}

	d.JournalRef = stripLabel(doc.Find("td.tablecell.jref").Text(), "Journal ref:")
	d.Comment = stripLabel(doc.Find("td.tablecell.comments").Text(), "Comments:")
	d.DOI = stripLabel(doc.Find("td.tablecell.arxivdoi a").Text(), "DOI:")

	d.SubmittedOn = parseDateline(doc.Find("div.dateline").Text())

	return d, nil
}

// parseDateline extracts the submission date from a dateline like
// "[Submitted on 5 Jun 2023 (v1), last revised ...]". Returns nil when no
// bracketed pattern matches or the date does not parse.
func parseDateline(text string) *time.Time {
	text = versionSuffixRe.ReplaceAllString(strings.TrimSpace(text), "")
	m := submittedRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	t, err := time.Parse("2 Jan 2006", strings.TrimSpace(m[1]))
	if err != nil {
		return nil
	}
	return &t
}

// splitSubject splits "Machine Learning (cs.LG)" into its code and name.
func splitSubject(s string) (SubjectRef, bool) {
	s = strings.TrimSpace(s)
	open := strings.Index(s, "(")
	if open < 0 {
		return SubjectRef{}, false
	}
	code := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s[open+1:]), ")"))
	name := strings.TrimSpace(s[:open])
	if code == "" || name == "" {
		return SubjectRef{}, false
	}
	return SubjectRef{Code: code, Name: name}, true
}

// stripLabel removes a leading label token and collapses whitespace.
func stripLabel(s, label string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, label)
	s = strings.ReplaceAll(s, "\n", " ")
	s = doubleSpaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
