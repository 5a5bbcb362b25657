package extract

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageImages(t *testing.T) {
	page := `<html><body>
		<img src="/img/a.png" alt="a">
		<img src="https://cdn.example.com/b.jpg">
		<img data-src="lazy.gif">
		<img srcset="small.png 480w, /img/large.png 1080w">
		<img src="/img/a.png">
		<img src="data:image/png;base64,AAAA">
	</body></html>`

	base, _ := url.Parse("https://example.com/gallery/")
	urls, err := PageImages(strings.NewReader(page), base)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://example.com/img/a.png",
		"https://cdn.example.com/b.jpg",
		"https://example.com/gallery/lazy.gif",
		"https://example.com/gallery/small.png",
		"https://example.com/img/large.png",
	}, urls)
}

func TestPageImagesSkipsUnsupportedSchemes(t *testing.T) {
	page := `<img src="ftp://example.com/x.png"><img src="javascript:alert(1)">`
	base, _ := url.Parse("https://example.com/")

	urls, err := PageImages(strings.NewReader(page), base)
	require.NoError(t, err)
	assert.Empty(t, urls)
}

func TestFeedImages(t *testing.T) {
	doc := `{"items": [
		{"title": "one", "image": "https://example.com/1.png"},
		{"title": "two", "image": "https://example.com/2.png"},
		{"title": "dupe", "image": "https://example.com/1.png"}
	]}`

	urls, err := FeedImages([]byte(doc), ".items[].image")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://example.com/1.png",
		"https://example.com/2.png",
	}, urls)
}

func TestFeedImagesArrayResult(t *testing.T) {
	doc := `{"images": ["https://a.example/1.jpg", "https://a.example/2.jpg"]}`

	urls, err := FeedImages([]byte(doc), ".images")
	require.NoError(t, err)
	assert.Len(t, urls, 2)
}

func TestFeedImagesBadQuery(t *testing.T) {
	_, err := FeedImages([]byte(`{}`), ".items[")
	assert.Error(t, err)
}
