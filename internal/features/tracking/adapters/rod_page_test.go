package adapter

import (
	"context"
	"testing"

	"github.com/go-rod/rod/lib/proto"
	"github.com/stretchr/testify/assert"
)

func TestShouldBlock(t *testing.T) {
	assert.True(t, shouldBlock(proto.NetworkResourceTypeImage))
	assert.True(t, shouldBlock(proto.NetworkResourceTypeFont))
	assert.True(t, shouldBlock(proto.NetworkResourceTypeMedia))

	assert.False(t, shouldBlock(proto.NetworkResourceTypeDocument))
	assert.False(t, shouldBlock(proto.NetworkResourceTypeScript))
	assert.False(t, shouldBlock(proto.NetworkResourceTypeStylesheet))
	assert.False(t, shouldBlock(proto.NetworkResourceTypeXHR))
	assert.False(t, shouldBlock(proto.NetworkResourceTypeFetch))
}

func TestMatchesLabel(t *testing.T) {
	texts := []string{"search", "buscar"}

	tests := []struct {
		label    string
		expected bool
	}{
		{"Search", true},
		{"  BUSCAR  ", true},
		{"buscar\n", true},
		{"Buscar guía", false},
		{"search »", false},
		{"Buscar en el sitio", false},
		{"Search again", false},
		{"Reset search", false},
		{"Nueva búsqueda: buscar otro", false},
		{"Researcher", false},
		{"Limpiar", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.expected, matchesLabel(tt.label, texts))
		})
	}
}

type otherElement struct{}

func (otherElement) Describe() string { return "other" }

func TestRodPage_RejectsForeignElements(t *testing.T) {
	p := &RodPage{}
	ctx := context.Background()

	assert.ErrorIs(t, p.Click(ctx, otherElement{}), errForeignElement)
	assert.ErrorIs(t, p.SelectAll(ctx, otherElement{}), errForeignElement)
	assert.ErrorIs(t, p.TypeInto(ctx, otherElement{}, "HX1", 0), errForeignElement)

	submitted, err := p.SubmitForm(ctx, nil)
	assert.False(t, submitted)
	assert.ErrorIs(t, err, errForeignElement)
}
