package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain text passes through",
			input: "Dear Customer, your account has been debited",
			want:  "Dear Customer, your account has been debited",
		},
		{
			name:  "quoted printable escapes",
			input: "Amount=20=3A OMR 2.500",
			want:  "Amount : OMR 2.500",
		},
		{
			name:  "soft line break joins split words",
			input: "has been debi=\r\nted by OMR 1.000",
			want:  "has been debited by OMR 1.000",
		},
		{
			name:  "html entities",
			input: "AT&amp;T &lt;payment&gt;",
			want:  "AT&T",
		},
		{
			name:  "markup stripped with br as line break",
			input: "<html><body><p>Dear Customer</p><img src=\"x.png\"><p>Amount : OMR 1.000</p></body></html>",
			want:  "Dear Customer\nAmount : OMR 1.000",
		},
		{
			name:  "style and script content dropped",
			input: "<html><head><style>body{color:red}</style></head><body>Amount : OMR 1.000<script>alert(1)</script></body></html>",
			want:  "Amount : OMR 1.000",
		},
		{
			name:  "whitespace runs collapsed within lines",
			input: "Dear    cus   tomer, amount   OMR 5.000",
			want:  "Dear cus tomer, amount OMR 5.000",
		},
		{
			name:  "last two lines dropped as footer",
			input: "Your account xxxx0019 debited\nAmount : OMR 1.000\nKind Regards\nBank Muscat Call Center",
			want:  "Your account xxxx0019 debited\nAmount : OMR 1.000",
		},
		{
			name:  "two lines kept whole",
			input: "Line one\nLine two",
			want:  "Line one\nLine two",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
		{
			name:  "invalid hex escape kept verbatim",
			input: "ref =ZZ stays",
			want:  "ref =ZZ stays",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeNeverErrors(t *testing.T) {
	// Garbage in, best-effort text out. The contract is that no input
	// panics or produces an error path.
	inputs := []string{
		"<html><body><table><tr><td>unclosed",
		"=XX=3D=",
		"&#xZZ; &notanentity;",
		"<<<>>>",
	}
	for _, input := range inputs {
		assert.NotPanics(t, func() { Normalize(input) })
	}
}

func TestNormalizeEncodedHTMLBody(t *testing.T) {
	// A body that is quoted-printable on the outside and HTML inside,
	// the way the real notification templates arrive.
	input := "<html><body>Your account xxxx0019 has been debited=20by OMR 2.500<br>" +
		"Description=20: 911792-AL MAHA PETROL PUMP</body></html>"

	got := Normalize(input)
	assert.Equal(t, "Your account xxxx0019 has been debited by OMR 2.500\nDescription : 911792-AL MAHA PETROL PUMP", got)
}
