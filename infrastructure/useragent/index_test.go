package useragent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseUserAgent(t *testing.T) {
	ua := ParseUserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	assert.Equal(t, "Chrome", ua.Name)
	assert.Equal(t, "Windows", ua.OS)
	assert.Equal(t, "desktop", ua.Device)
	assert.False(t, ua.Bot)

	assert.True(t, ParseUserAgent("Googlebot/2.1 (+http://www.google.com/bot.html)").Bot)
}
