package extract_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkraft/kraftlint/internal/domain"
	"github.com/openkraft/kraftlint/internal/domain/extract"
)

var tsxModule = src(
	`import React from "react";`,
	`import { useState } from "react";`,
	``,
	`const MAX_ITEMS = 5;`,
	``,
	`/** Renders a card. */`,
	`export function UserCard({ name }: Props): JSX.Element {`,
	`  const [open, setOpen] = useState(false);`,
	`  return (`,
	`    <div className="card">`,
	`      {open ? <span>{name}</span> : null}`,
	`    </div>`,
	`  );`,
	`}`,
	``,
	`export const useToggle = (initial: boolean) => {`,
	`  return initial;`,
	`};`,
	``,
	`function helper(a, b: number) {`,
	`  // explain`,
	`  return a + b;`,
	`}`,
)

func TestMarkup_LineKinds(t *testing.T) {
	m := mustExtract(t, domain.KindComponentMarkup, tsxModule)

	require.Len(t, m.Lines, 23)
	assert.Equal(t, domain.LineDocstring, m.Lines[5].Kind)
	assert.Equal(t, domain.LineComment, m.Lines[20].Kind)
	assert.Equal(t, domain.LineCode, m.Lines[10].Kind)
	assert.Equal(t, domain.LineBlank, m.Lines[2].Kind)
	assert.Equal(t, 2, m.ImportEnd)
}

func TestMarkup_Blocks(t *testing.T) {
	m := mustExtract(t, domain.KindComponentMarkup, tsxModule)

	require.Len(t, m.Blocks, 3)
	assert.Equal(t, domain.BlockSpan{StartLine: 7, EndLine: 14, HeaderLine: 7, Kind: domain.BlockComponent, Name: "UserCard"}, m.Blocks[0])
	assert.Equal(t, domain.BlockSpan{StartLine: 16, EndLine: 18, HeaderLine: 16, Kind: domain.BlockFunction, Name: "useToggle"}, m.Blocks[1])
	assert.Equal(t, domain.BlockSpan{StartLine: 20, EndLine: 23, HeaderLine: 20, Kind: domain.BlockFunction, Name: "helper"}, m.Blocks[2])
}

func TestMarkup_Identifiers(t *testing.T) {
	m := mustExtract(t, domain.KindComponentMarkup, tsxModule)

	assert.Equal(t, []domain.IdentifierDecl{
		{Name: "MAX_ITEMS", Role: domain.RoleConstant, Case: domain.CaseUpperSnake, DeclaredAtLine: 4},
		{Name: "UserCard", Role: domain.RoleComponent, Case: domain.CasePascal, DeclaredAtLine: 7},
		{Name: "useToggle", Role: domain.RoleHook, Case: domain.CaseCamel, DeclaredAtLine: 16},
		{Name: "helper", Role: domain.RoleFunction, Case: domain.CaseSnake, DeclaredAtLine: 20},
	}, m.Identifiers)
}

func TestMarkup_Signatures(t *testing.T) {
	m := mustExtract(t, domain.KindComponentMarkup, tsxModule)

	require.Len(t, m.Signatures, 3)
	card := m.Signatures[0]
	assert.Equal(t, []domain.Param{{Name: "{ name }", Line: 7, Typed: true}}, card.Params)
	assert.True(t, card.ReturnTyped)
	assert.Equal(t, "JSX.Element", card.ReturnType)

	toggle := m.Signatures[1]
	assert.Equal(t, []domain.Param{{Name: "initial", Line: 16, Typed: true}}, toggle.Params)
	assert.False(t, toggle.ReturnTyped)
	assert.Equal(t, 16, toggle.ReturnLine)

	helper := m.Signatures[2]
	assert.Equal(t, []domain.Param{
		{Name: "a", Line: 20, Typed: false},
		{Name: "b", Line: 20, Typed: true},
	}, helper.Params)
}

func TestMarkup_Returns(t *testing.T) {
	m := mustExtract(t, domain.KindComponentMarkup, tsxModule)

	assert.Equal(t, []domain.ReturnStmt{
		{StartLine: 9, EndLine: 13, Conditional: true},
		{StartLine: 17, EndLine: 17},
		{StartLine: 22, EndLine: 22},
	}, m.Returns)
}

func TestMarkup_ClassMethodsAndArrowProperties(t *testing.T) {
	m := mustExtract(t, domain.KindComponentMarkup, src(
		`export class Store {`,
		`  private items: string[] = [];`,
		``,
		`  add(item: string): void {`,
		`    this.items.push(item);`,
		`  }`,
		``,
		`  handle = (e) => {`,
		`    return e;`,
		`  };`,
		`}`,
	))

	names := map[string]domain.BlockSpan{}
	for _, b := range m.Blocks {
		names[b.Name] = b
	}
	require.Contains(t, names, "Store")
	assert.Equal(t, 11, names["Store"].EndLine)
	require.Contains(t, names, "add")
	assert.Equal(t, 4, names["add"].StartLine)
	assert.Equal(t, 6, names["add"].EndLine)
	assert.Equal(t, 1, names["add"].Depth)
	require.Contains(t, names, "handle")
	assert.Equal(t, 10, names["handle"].EndLine)

	require.Len(t, m.Signatures, 2)
	assert.True(t, m.Signatures[0].ReturnTyped)
	assert.Equal(t, "void", m.Signatures[0].ReturnType)
	assert.False(t, m.Signatures[1].Params[0].Typed)
}

func TestMarkup_NonFunctionParenthesisedValue(t *testing.T) {
	m := mustExtract(t, domain.KindComponentMarkup, src(
		`let total = (a + b) * 2;`,
		`const double = x => x * 2;`,
	))

	require.Len(t, m.Blocks, 1)
	assert.Equal(t, "double", m.Blocks[0].Name)
	require.Len(t, m.Signatures, 1)
	assert.Equal(t, []domain.Param{{Name: "x", Line: 2}}, m.Signatures[0].Params)
	assert.Equal(t, domain.RoleVariable, m.Identifiers[0].Role)
}

func TestMarkup_GenericsAreNotMarkup(t *testing.T) {
	m := mustExtract(t, domain.KindComponentMarkup, src(
		`export function Wrap(items: Array<string>): number {`,
		`  const count = items.length < limit ? 1 : 0;`,
		`  return count;`,
		`}`,
	))

	require.Len(t, m.Blocks, 1)
	assert.Equal(t, domain.BlockFunction, m.Blocks[0].Kind)
	assert.Equal(t, 4, m.Blocks[0].EndLine)
}

func TestMarkup_TemplateAndStringContent(t *testing.T) {
	m := mustExtract(t, domain.KindComponentMarkup, src(
		"const query = `",
		"",
		"  // not a comment",
		"`;",
		`const url = "http://example.com"; // trailing`,
	))

	assert.Equal(t, domain.LineCode, m.Lines[1].Kind)
	assert.Equal(t, domain.LineCode, m.Lines[2].Kind)
	assert.Equal(t, domain.LineCode, m.Lines[4].Kind)
	assert.True(t, m.Lines[1].Continuation)
}

func TestMarkup_ParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		line    int
	}{
		{"unterminated block comment", src(`const a = 1;`, `/* open`), 2},
		{"unterminated template", src("const a = `open", "more"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := extract.Extract(domain.KindComponentMarkup, tt.content, extract.DefaultOptions())
			var pe *domain.ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.line, pe.Line)
		})
	}

	t.Run("recoveries over budget", func(t *testing.T) {
		opts := extract.DefaultOptions()
		opts.RecoveryBudget = 1
		_, err := extract.Extract(domain.KindComponentMarkup, src(`f(a));`, `g(b));`), opts)
		var pe *domain.ParseError
		require.True(t, errors.As(err, &pe))
	})
}
