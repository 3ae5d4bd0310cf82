package textx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeTitle_UsesFirstLine(t *testing.T) {
	input := "Read Pluto vol.1\nGreat pacing"
	assert.Equal(t, "Read Pluto vol.1", SummarizeTitle(input))
}

func TestSummarizeTitle_TruncatesTo80Runes(t *testing.T) {
	input := strings.Repeat("ы", 120)
	got := SummarizeTitle(input)
	assert.Equal(t, 80, len([]rune(got)))
}

func TestSummarizeTitle_FallbackWhenEmpty(t *testing.T) {
	assert.Equal(t, "quick note", SummarizeTitle("   \nsecond line"))
	assert.Equal(t, "quick note", SummarizeTitle(""))
}

func TestExtractURL_HandlesTrailingPunctuation(t *testing.T) {
	input := "save this https://example.com/path?x=1, thanks"
	assert.Equal(t, "https://example.com/path?x=1", ExtractURL(input))
}

func TestExtractURL_NoURL(t *testing.T) {
	assert.Equal(t, "", ExtractURL("just some words"))
}

func TestExtractURL_PlainHTTP(t *testing.T) {
	assert.Equal(t, "http://example.org", ExtractURL("see (http://example.org)"))
}
