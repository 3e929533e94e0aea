package grammar

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msto63/frege/foundation/expr/ast"
	c "github.com/msto63/frege/foundation/expr/combinator"
	"github.com/msto63/frege/foundation/expr/token"
)

var (
	n    = token.Int
	plus = token.Plus
)

func in(toks ...token.Token) token.Stream {
	return token.NewStream(toks...)
}

func TestExpressionP_Scenarios(t *testing.T) {
	tests := []struct {
		name      string
		input     token.Stream
		want      ast.Exp
		remaining int
		message   string
		reason    c.Reason
	}{
		{
			name:  "single literal",
			input: in(n(123)),
			want:  ast.NewInt(123),
		},
		{
			name:  "one sum",
			input: in(n(123), plus(), n(456)),
			want:  ast.NewPlus(ast.NewInt(123), ast.NewInt(456)),
		},
		{
			name:  "chain is right associative",
			input: in(n(123), plus(), n(456), plus(), n(789)),
			want:  ast.NewPlus(ast.NewInt(123), ast.NewPlus(ast.NewInt(456), ast.NewInt(789))),
		},
		{
			name:    "empty input",
			input:   in(),
			message: "out of tokens",
			reason:  c.ReasonExhausted,
		},
		{
			name:    "leading plus",
			input:   in(plus()),
			message: "expected integer literal, got +",
			reason:  c.ReasonMismatch,
		},
		{
			name:      "trailing plus is left unconsumed",
			input:     in(n(1), plus()),
			want:      ast.NewInt(1),
			remaining: 1,
		},
		{
			name:      "adjacent literals stop after the first",
			input:     in(n(1), n(2)),
			want:      ast.NewInt(1),
			remaining: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := c.Run(ExpressionP(), tt.input)

			if tt.want == nil {
				require.False(t, r.IsSuccess(), "got %s", r)
				assert.Equal(t, tt.message, r.Message())
				assert.Equal(t, tt.reason, r.Reason())
				return
			}

			require.True(t, r.IsSuccess(), "got %s", r)
			if diff := cmp.Diff(tt.want, r.Value()); diff != "" {
				t.Errorf("tree mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.remaining, r.Remaining().Len())
			assert.Equal(t, tt.remaining == 0, Complete(r))
		})
	}
}

func TestLeftExpressionP(t *testing.T) {
	r := c.Run(LeftExpressionP(), in(n(1), plus(), n(2), plus(), n(3), plus(), n(4)))
	require.True(t, r.IsSuccess())
	assert.Equal(t, "Plus(Plus(Plus(Int(1), Int(2)), Int(3)), Int(4))", r.Value().String())
	assert.True(t, Complete(r))

	r = c.Run(LeftExpressionP(), in(n(5)))
	require.True(t, r.IsSuccess())
	assert.True(t, ast.Equal(ast.NewInt(5), r.Value()))

	r = c.Run(LeftExpressionP(), in(n(5), plus()))
	require.True(t, r.IsSuccess())
	assert.Equal(t, 1, r.Remaining().Len())

	r = c.Run(LeftExpressionP(), in())
	assert.Equal(t, "out of tokens", r.Message())
}

func TestAssociativity_SameValue(t *testing.T) {
	input := in(n(10), plus(), n(20), plus(), n(30))

	for _, a := range []Assoc{AssocRight, AssocLeft} {
		t.Run(a.String(), func(t *testing.T) {
			r := c.Run(ForAssociativity(a), input)
			require.True(t, r.IsSuccess())
			v, err := ast.Evaluate(r.Value())
			require.NoError(t, err)
			assert.Equal(t, int64(60), v)
		})
	}
}

func TestParseAssoc(t *testing.T) {
	for input, want := range map[string]Assoc{"": AssocRight, "Right": AssocRight, " left ": AssocLeft, "l": AssocLeft} {
		got, ok := ParseAssoc(input)
		assert.True(t, ok, input)
		assert.Equal(t, want, got, input)
	}
	_, ok := ParseAssoc("middle")
	assert.False(t, ok)
}

func TestExpressionP_LongChain(t *testing.T) {
	toks := []token.Token{n(0)}
	for i := 1; i <= 200; i++ {
		toks = append(toks, plus(), n(int64(i)))
	}

	r := c.Run(ExpressionP(), in(toks...))
	require.True(t, r.IsSuccess())
	assert.True(t, Complete(r))
	assert.Equal(t, 201, ast.Depth(r.Value()))

	v, err := ast.Evaluate(r.Value())
	require.NoError(t, err)
	assert.Equal(t, int64(200*201/2), v)
}

func TestExpressionP_SharedAcrossGoroutines(t *testing.T) {
	p := ExpressionP()

	var wg sync.WaitGroup
	for i := 1; i <= 16; i++ {
		wg.Add(1)
		go func(i int64) {
			defer wg.Done()
			r := c.Run(p, in(n(i), plus(), n(i)))
			if assert.True(t, r.IsSuccess()) {
				assert.Equal(t, fmt.Sprintf("Plus(Int(%d), Int(%d))", i, i), r.Value().String())
			}
		}(int64(i))
	}
	wg.Wait()
}
