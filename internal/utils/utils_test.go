package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheSetGet(t *testing.T) {
	c := NewCache(10)

	c.Set("key", "value", time.Minute)
	assert.Equal(t, "value", c.Get("key"))

	assert.Nil(t, c.Get("missing"))

	c.Delete("key")
	assert.Nil(t, c.Get("key"))
}

func TestCacheDeletePrefix(t *testing.T) {
	c := NewCache(10)

	c.Set("posts:page:1", "a", time.Minute)
	c.Set("posts:page:2", "b", time.Minute)
	c.Set("other", "c", time.Minute)

	c.DeletePrefix("posts:page:")
	assert.Nil(t, c.Get("posts:page:1"))
	assert.Nil(t, c.Get("posts:page:2"))
	assert.Equal(t, "c", c.Get("other"))
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache(10)

	c.Set("key", "value", 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	assert.Nil(t, c.Get("key"))
}

func TestRandString(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		s := RandString(8)
		assert.Len(t, s, 8)
		for _, r := range s {
			assert.True(t, strings.ContainsRune(letterBytes, r))
		}
		seen[s] = true
	}
	// Collisions over 100 draws from 62^8 would be astonishing
	assert.Greater(t, len(seen), 90)
}

func TestParsePage(t *testing.T) {
	assert.Equal(t, 1, ParsePage(""))
	assert.Equal(t, 1, ParsePage("0"))
	assert.Equal(t, 1, ParsePage("-3"))
	assert.Equal(t, 1, ParsePage("abc"))
	assert.Equal(t, 7, ParsePage("7"))
}

func TestRenderMarkdown(t *testing.T) {
	out := string(RenderMarkdown("# Hello\n\nSome **bold** text."))
	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "<strong>bold</strong>")
}

func TestRenderMarkdownSanitizes(t *testing.T) {
	out := string(RenderMarkdown(`hello <script>alert("x")</script> world`))
	assert.NotContains(t, out, "<script>")
}
