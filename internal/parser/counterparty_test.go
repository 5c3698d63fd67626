package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCounterpartyName_FromDescription(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "numeric reference stripped",
			text: "Description : 911792-AL MAHA PETROL PUMP Amount : OMR 2.500",
			want: "AL MAHA PETROL PUMP",
		},
		{
			name: "stops before date time label",
			text: "Description : 998232-JENAN TEA MUTT Date/Time : 14 JUL 25 11:01",
			want: "JENAN TEA MUTT",
		},
		{
			name: "last name-like segment wins",
			text: "Description : POS-4411-LULU HYPERMARKET Amount : OMR 12.300",
			want: "LULU HYPERMARKET",
		},
		{
			name: "currency token cut from name",
			text: "Description : SHELL OMAN OMR 3.000 extra\n",
			want: "SHELL OMAN",
		},
		{
			// The end scan prefers the last segment with two
			// consecutive letters, even when an earlier segment looks
			// more like a merchant name. "BOX" qualifies here, so the
			// address tail wins over "AL MAHA".
			name: "address tail beats earlier merchant segment",
			text: "Description : 748277-AL MAHA - 155 P O BOX 5",
			want: "155 P O BOX 5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, counterpartyName(tt.text))
		})
	}
}

func TestCounterpartyName_DirectionPhrase(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "from uppercase name",
			text: "Your account has been credited by OMR 100.000 from AHMED AL BALUSHI.",
			want: "AHMED AL BALUSHI",
		},
		{
			name: "transfer prefix stripped",
			text: "funds moved to TRANSFER SAID AL HARTHI.",
			want: "SAID AL HARTHI",
		},
		{
			name: "truncated template tail dropped",
			text: "received funds from MUNA AL ZADJALI AMOUNT CREDITED in your a",
			want: "MUNA AL ZADJALI AMOUNT CREDITED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, counterpartyName(tt.text))
		})
	}
}

func TestCounterpartyName_UppercaseBlock(t *testing.T) {
	text := "Dear Customer, a payment has arrived.\nMOHAMMED AL RAWAHI\nthe funds are available now"
	assert.Equal(t, "MOHAMMED AL RAWAHI", counterpartyName(text))
}

func TestCounterpartyName_FooterScan(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "sender name on final line",
			text: "a payment has arrived for you.\nplease see details below.\nFATMA AL LAWATI",
			want: "FATMA AL LAWATI",
		},
		{
			name: "boilerplate lines skipped",
			text: "see details.\nKH TRADING est\nThank you for banking with us",
			want: "KH TRADING est",
		},
		{
			name: "all boilerplate yields nothing",
			text: "Dear Customer, details below.\nValue date information\nBank Muscat",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, counterpartyName(tt.text))
		})
	}
}

func TestStripNameArtifacts(t *testing.T) {
	assert.Equal(t, "AL AMRI", stripNameArtifacts("TRANSFER  AL AMRI"))
	assert.Equal(t, "NAME", stripNameArtifacts("NAME from your a"))
	assert.Equal(t, "NAME", stripNameArtifacts("NAME in your a"))
	assert.Equal(t, "spaced out", stripNameArtifacts("  spaced   out  "))
}
