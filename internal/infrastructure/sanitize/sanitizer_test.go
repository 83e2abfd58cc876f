package sanitize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lllypuk/reviewguard/internal/infrastructure/sanitize"
)

func TestStrictSanitizer_Sanitize(t *testing.T) {
	s := sanitize.NewStrictSanitizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text", "Great product", "Great product"},
		{"empty", "", ""},
		{"trims whitespace", "  fine  ", "fine"},
		{"script tag", `<script>alert("xss")</script>nice`, "nice"},
		{"inline markup", "<b>bold</b> claim", "bold claim"},
		{"event handler", `<img src=x onerror="alert(1)">ok`, "ok"},
		{"iframe", `<iframe src="javascript:alert('xss')"></iframe>`, ""},
		{"ampersand kept as text", "salt & pepper", "salt & pepper"},
		{"escaped markup", "&lt;script&gt;alert(1)&lt;/script&gt;hi", "hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Sanitize(tt.input))
		})
	}
}
