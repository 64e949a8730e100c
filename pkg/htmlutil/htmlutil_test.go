package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	testCases := []struct {
		in       string
		expected string
	}{
		{in: "  hello  ", expected: "hello"},
		{in: "a \n\t b", expected: "a b"},
		{in: "x\u200by", expected: "xy"},
		{in: "", expected: ""},
	}

	for _, test := range testCases {
		require.Equal(t, test.expected, CleanText(test.in), test.in)
	}
}

func TestSelectionText(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<div><p class="a">  first <b>bold</b>
		text </p><p class="a">second</p></div>`,
	))
	require.NoError(t, err)

	require.Equal(t, "first bold text", SelectionText(doc.Find("p.a")))
	require.Equal(t, "", SelectionText(doc.Find("p.missing")))
}
