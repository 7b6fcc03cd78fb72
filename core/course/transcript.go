package course

import (
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
)

// transcript page layout: the course table is the second table nested in the page table.
const (
	transcriptRowSelector = "table table:nth-of-type(2) tr"

	colName   = 2
	colLabel  = 4
	colCredit = 5
	colScore  = 6
)

var ErrMalformedTranscript = errors.New("malformed transcript")

// TranscriptRow is a course read from a transcript page.
// Classified is false when Label matched no category; Category is then meaningless.
type TranscriptRow struct {
	Name       string   `json:"name"`
	Label      string   `json:"label"`
	Credit     int      `json:"credit"`
	Score      float64  `json:"score"`
	Category   Category `json:"category,omitempty"`
	Classified bool     `json:"classified"`
}

func (row TranscriptRow) course(term int) NewCourse {
	return NewCourse{
		Name:     row.Name,
		Term:     term,
		Category: row.Category,
		Credit:   row.Credit,
		Score:    row.Score,
	}
}

// ParseTranscript reads the course rows of an exported transcript HTML page.
func ParseTranscript(r io.Reader) ([]TranscriptRow, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "parsing transcript html")
	}

	var rows []TranscriptRow
	var parseErr error
	doc.Find(transcriptRowSelector).EachWithBreak(func(i int, tr *goquery.Selection) bool {
		if i == 0 { // header
			return true
		}
		row, err := parseTranscriptRow(tr.Find("td"))
		if err != nil {
			parseErr = errors.Wrapf(err, "row %d", i)
			return false
		}
		rows = append(rows, row)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return rows, nil
}

func parseTranscriptRow(tds *goquery.Selection) (TranscriptRow, error) {
	if tds.Length() <= colScore {
		return TranscriptRow{}, errors.Wrapf(ErrMalformedTranscript, "expected at least %d cells, got %d", colScore+1, tds.Length())
	}
	cell := func(i int) string { return strings.TrimSpace(tds.Eq(i).Text()) }

	row := TranscriptRow{
		Name:  cell(colName),
		Label: cell(colLabel),
	}
	if row.Name == "" {
		return TranscriptRow{}, errors.Wrap(ErrMalformedTranscript, "empty course name")
	}

	credit, err := strconv.Atoi(cell(colCredit))
	if err != nil {
		return TranscriptRow{}, errors.Wrapf(ErrMalformedTranscript, "credit %q of %s", cell(colCredit), row.Name)
	}
	score, err := strconv.ParseFloat(cell(colScore), 64)
	if err != nil {
		return TranscriptRow{}, errors.Wrapf(ErrMalformedTranscript, "score %q of %s", cell(colScore), row.Name)
	}
	row.Credit = credit
	row.Score = score
	row.Category, row.Classified = GuessCategory(row.Label)
	return row, nil
}
