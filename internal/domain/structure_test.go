package domain_test

import (
	"testing"

	"github.com/openkraft/kraftlint/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestLanguageKind_IsCode(t *testing.T) {
	assert.True(t, domain.KindIndentBlock.IsCode())
	assert.True(t, domain.KindComponentMarkup.IsCode())
	assert.False(t, domain.KindProseMarkup.IsCode())
	assert.False(t, domain.KindUnclassified.IsCode())
}

func TestBlockSpan_Contains(t *testing.T) {
	b := domain.BlockSpan{StartLine: 3, EndLine: 5}
	assert.False(t, b.Contains(2))
	assert.True(t, b.Contains(3))
	assert.True(t, b.Contains(5))
	assert.False(t, b.Contains(6))
}

func TestStructuralModel_Line(t *testing.T) {
	m := &domain.StructuralModel{Lines: []domain.LogicalLine{{Index: 1, Text: "a"}, {Index: 2, Text: "b"}}}

	assert.Equal(t, 2, m.LineCount())
	l, ok := m.Line(2)
	assert.True(t, ok)
	assert.Equal(t, "b", l.Text)

	_, ok = m.Line(0)
	assert.False(t, ok)
	_, ok = m.Line(3)
	assert.False(t, ok)
}

func TestStructuralModel_InFenceBody(t *testing.T) {
	m := &domain.StructuralModel{Fragments: []domain.Fragment{
		{Span: domain.BlockSpan{StartLine: 4, EndLine: 8}},
	}}

	assert.False(t, m.InFenceBody(4), "opening fence line")
	assert.True(t, m.InFenceBody(5))
	assert.True(t, m.InFenceBody(7))
	assert.False(t, m.InFenceBody(8), "closing fence line")
}
