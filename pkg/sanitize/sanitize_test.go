package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	assert.Equal(t, "Hello world", Text("<p>Hello</p><script>alert(1)</script>world"))
	assert.Equal(t, "a & b", Text("a &amp; b"))
	assert.Equal(t, "spaced out", Text("  spaced \n\t out "))
	assert.Equal(t, "", Text(""))
}

func TestPtrAndStrings(t *testing.T) {
	assert.Nil(t, Ptr(nil))

	in := "<b>bold</b>"
	assert.Equal(t, "bold", *Ptr(&in))

	assert.Equal(t, []string{"Go", "Databases"}, Strings([]string{"<i>Go</i>", "  ", "Databases"}))
}
