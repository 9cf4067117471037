package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripTags(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "Acme", "Acme"},
		{"bold", "<b>Acme</b>", "Acme"},
		{"entities", "Tom &amp; Jerry", "Tom & Jerry"},
		{"script content dropped", "Nice<script>alert(1)</script>", "Nice"},
		{"trimmed", "  <p>Hello</p>  ", "Hello"},
		{"encoded tag", "&lt;b&gt;Acme", "Acme"},
		{"encoded script", "&lt;script&gt;alert(1)&lt;/script&gt;", ""},
		{"double encoded tag", "&amp;lt;b&amp;gt;Acme&amp;lt;/b&amp;gt;", "Acme"},
		{"literal less-than", "5 &lt; 6", "5 < 6"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripTags(tt.in))
		})
	}
}

func TestTextField(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"trims", "  4006381333931 ", "4006381333931"},
		{"markup", "<em>4006381333931</em>", "4006381333931"},
		{"line breaks collapse", "MPN\r\n\t 123", "MPN 123"},
		{"control characters", "AB\x00C\x07D", "ABCD"},
		{"percent octets", "AB%20CD", "ABCD"},
		{"invalid utf8", "\xff\xfe", ""},
		{"encoded markup", "&lt;em&gt;4006381333931&lt;/em&gt;", "4006381333931"},
		{"encoded script", "&lt;script&gt;alert(1)&lt;/script&gt;", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TextField(tt.in))
		})
	}
}

func TestTextField_Stable(t *testing.T) {
	inputs := []string{
		"&lt;script&gt;alert(1)&lt;/script&gt;",
		"&amp;lt;i&amp;gt;MPN-1",
		"<b>4006381333931</b>",
		"Tom &amp; Jerry",
	}

	for _, in := range inputs {
		once := TextField(in)
		assert.Equal(t, once, TextField(once), in)
		assert.NotContains(t, once, "<")
	}
}
