package pipeline

import "testing"

func TestNormalizeLineEndings(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"a\r\nb":   "a\nb",
		"a\rb":     "a\nb",
		"a\nb":     "a\nb",
		"a\r\n\rb": "a\n\nb",
	}
	for in, want := range tests {
		if got := normalizeLineEndings(in); got != want {
			t.Errorf("normalizeLineEndings(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestConvertHighlights(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "inline mark",
			in:   "a ==b== c\n",
			want: "a " + MarkStartPlaceholder + "b" + MarkEndPlaceholder + " c\n",
		},
		{
			name: "backtick fence untouched",
			in:   "```\nx == y == z\n```\n==m==\n",
			want: "```\nx == y == z\n```\n" + MarkStartPlaceholder + "m" + MarkEndPlaceholder + "\n",
		},
		{
			name: "tilde fence untouched",
			in:   "~~~go\na ==b==\n~~~\n",
			want: "~~~go\na ==b==\n~~~\n",
		},
		{
			name: "longer closing fence required",
			in:   "````\n```\n==x==\n````\n",
			want: "````\n```\n==x==\n````\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := convertHighlights(tt.in); got != tt.want {
				t.Errorf("convertHighlights() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConvertMarkPlaceholders(t *testing.T) {
	t.Parallel()

	in := "<p>" + MarkStartPlaceholder + "hot" + MarkEndPlaceholder + "</p>"
	if got := ConvertMarkPlaceholders(in); got != "<p><mark>hot</mark></p>" {
		t.Errorf("ConvertMarkPlaceholders() = %q", got)
	}
}
