package arxiv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingPageHTML = `<!DOCTYPE html>
<html>
<body>
<dl>
  <dt>
    <span class="list-identifier"><a href="/abs/2306.01001" title="Abstract">arXiv:2306.01001</a> [<a href="/pdf/2306.01001" title="Download PDF">pdf</a>, <a href="/format/2306.01001" title="Other formats">other</a>]</span>
  </dt>
  <dd><div class="list-title">Paper One</div></dd>
  <dt>
    <span class="list-identifier"><a href="/abs/2306.01002" title="Abstract">arXiv:2306.01002</a> [<a href="/pdf/2306.01002" title="Download PDF">pdf</a>]</span>
  </dt>
  <dd><div class="list-title">Paper Two</div></dd>
  <dt>
    <span class="list-identifier"><a href="/abs/2305.99999" title="Abstract">arXiv:2305.99999</a> [<a href="/pdf/2305.99999" title="Download PDF">pdf</a>]</span>
  </dt>
  <dd><div class="list-title">Paper Three</div></dd>
</dl>
</body>
</html>`

func TestParseListing(t *testing.T) {
	ids, err := ParseListing([]byte(listingPageHTML))
	require.NoError(t, err)
	assert.Equal(t, []string{"2306.01001", "2306.01002", "2305.99999"}, ids)
}

func TestParseListingEmptyPage(t *testing.T) {
	ids, err := ParseListing([]byte(`<html><body><dl></dl></body></html>`))
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestParseListingIgnoresNonAbstractLinks(t *testing.T) {
	html := `<html><body>
	<span class="list-identifier"><a href="/pdf/2306.01001">pdf</a></span>
	</body></html>`
	ids, err := ParseListing([]byte(html))
	require.NoError(t, err)
	assert.Empty(t, ids)
}
