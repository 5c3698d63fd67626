package parser

import (
	"testing"

	"github.com/amalhadhrami/ghwazi/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestClassifyType(t *testing.T) {
	tests := []struct {
		name string
		text string
		want model.TransactionType
	}{
		{
			name: "credited is income",
			text: "Your account xxxx0019 has been credited by OMR 13.000",
			want: model.TypeIncome,
		},
		{
			name: "debited is expense",
			text: "Your account xxxx0019 has been debited by OMR 2.500",
			want: model.TypeExpense,
		},
		{
			name: "utilised card is expense",
			text: "Your card has been utilised as follows",
			want: model.TypeExpense,
		},
		{
			name: "case insensitive",
			text: "AMOUNT WITHDRAWAL COMPLETED",
			want: model.TypeExpense,
		},
		{
			name: "earliest keyword wins across both sets",
			text: "credited with your salary payment",
			want: model.TypeIncome,
		},
		{
			name: "earliest keyword wins for expense",
			text: "payment received from merchant",
			want: model.TypeExpense,
		},
		{
			name: "offset decides not list order",
			text: "amount spent before anything was deposited",
			want: model.TypeExpense,
		},
		{
			name: "no keyword is unknown",
			text: "Dear Customer, please update your contact details",
			want: model.TypeUnknown,
		},
		{
			name: "empty text is unknown",
			text: "",
			want: model.TypeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyType(tt.text))
		})
	}
}
