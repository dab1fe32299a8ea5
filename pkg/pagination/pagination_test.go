package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		in       Params
		wantPage int
		wantSize int
	}{
		{name: "zero values get defaults", in: Params{}, wantPage: 1, wantSize: 20},
		{name: "negative page clamped", in: Params{Page: -3, PageSize: 50}, wantPage: 1, wantSize: 50},
		{name: "oversized page size reset", in: Params{Page: 2, PageSize: 500}, wantPage: 2, wantSize: 20},
		{name: "valid values untouched", in: Params{Page: 4, PageSize: 25}, wantPage: 4, wantSize: 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.in
			p.Normalize()
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantSize, p.PageSize)
			assert.Equal(t, (tt.wantPage-1)*tt.wantSize, p.GetOffset())
			assert.Equal(t, tt.wantSize, p.GetLimit())
		})
	}
}
