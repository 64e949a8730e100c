package casepage

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"casewatch/internal/components/telemetry"
	"casewatch/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

const (
	report_extractor_parse_counter = "extractor.parse-counter"
)

const (
	AnchorContent = "div.bvc_txt"
	AnchorTitle   = "p.s_descript"
	AnchorImage   = "div.box_image img[src]"
	AnchorList    = "ul.s_listin_dot"
)

// CounterCount is the number of counters tracked on the page, in order:
// confirmed, discharged, deaths, tests in progress.
const CounterCount = 4

type Snapshot struct {
	Title    string
	ImageRef string
	Counters [CounterCount]int
	// ParseFallbacks counts the list items whose number could not be read
	// and were recorded as 0.
	ParseFallbacks int
}

var numberRegex = regexp.MustCompile(`[0-9,]+`)

// ParseCounter reads the first run of digits and commas in text as an
// integer. It returns false (and 0) when nothing usable is found.
func ParseCounter(text string) (int, bool) {
	match := numberRegex.FindString(text)
	if match == "" {
		return 0, false
	}
	value, err := strconv.Atoi(strings.ReplaceAll(match, ",", ""))
	if err != nil {
		return 0, false
	}
	return value, true
}

// Extract parses the page markup into a Snapshot. Malformed counters never
// fail the extraction, they are reported through tel and recorded as 0.
func Extract(markup string, tel telemetry.API) (Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return Snapshot{}, &ExtractError{Anchor: "document", Err: err}
	}
	return ExtractDocument(doc, tel)
}

func ExtractDocument(doc *goquery.Document, tel telemetry.API) (Snapshot, error) {
	content := doc.Find(AnchorContent).First()
	if content.Length() == 0 {
		return Snapshot{}, &ExtractError{Anchor: AnchorContent}
	}

	title := content.Find(AnchorTitle).First()
	if title.Length() == 0 {
		return Snapshot{}, &ExtractError{Anchor: AnchorTitle}
	}

	image := content.Find(AnchorImage).First()
	if image.Length() == 0 {
		return Snapshot{}, &ExtractError{Anchor: AnchorImage}
	}

	list := content.Find(AnchorList).First()
	if list.Length() == 0 {
		return Snapshot{}, &ExtractError{Anchor: AnchorList}
	}

	snapshot := Snapshot{
		Title:    strings.TrimSpace(htmlutil.GetText(title.Nodes[0])),
		ImageRef: image.AttrOr("src", ""),
	}

	list.Find("li").EachWithBreak(func(i int, li *goquery.Selection) bool {
		if i >= CounterCount {
			return false
		}
		text := htmlutil.SelectionText(li)
		value, ok := ParseCounter(text)
		if !ok {
			snapshot.ParseFallbacks++
			tel.ReportWarning(
				report_extractor_parse_counter,
				fmt.Errorf("counter %d is not a number, recording 0", i),
				text,
			)
		}
		snapshot.Counters[i] = value
		return true
	})

	return snapshot, nil
}
