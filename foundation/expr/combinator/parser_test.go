package combinator

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msto63/frege/foundation/expr/token"
)

// counting wraps p and records how often its thunk was forced and how often
// the parser ran
type counting[A any] struct {
	p      Parser[A]
	forced int
	runs   int
}

func (c *counting[A]) thunk() Parser[A] {
	c.forced++
	return func(s token.Stream) Result[A] {
		c.runs++
		return c.p(s)
	}
}

func stream(toks ...token.Token) token.Stream {
	return token.NewStream(toks...)
}

func TestTokenP(t *testing.T) {
	tests := []struct {
		name     string
		expected token.Token
		input    token.Stream
		ok       bool
		reason   Reason
		message  string
		consumed int
	}{
		{"plus matches plus", token.Plus(), stream(token.Plus(), token.Int(1)), true, ReasonNone, "", 1},
		{"int matches same value", token.Int(7), stream(token.Int(7)), true, ReasonNone, "", 1},
		{"int mismatch value", token.Int(7), stream(token.Int(8)), false, ReasonMismatch, "expected 7, got 8", 0},
		{"plus mismatch kind", token.Plus(), stream(token.Int(3)), false, ReasonMismatch, "expected +, got 3", 0},
		{"empty input", token.Plus(), stream(), false, ReasonExhausted, "out of tokens", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Run(TokenP(tt.expected), tt.input)
			assert.Equal(t, tt.ok, r.IsSuccess())
			assert.Equal(t, tt.reason, r.Reason())
			assert.Equal(t, tt.message, r.Message())
			if tt.ok {
				assert.Equal(t, tt.input.Len()-tt.consumed, r.Remaining().Len())
				assert.Equal(t, Unit{}, r.Value())
			}
		})
	}
}

func TestNumP(t *testing.T) {
	r := Run(NumP(), stream(token.Int(42), token.Plus()))
	require.True(t, r.IsSuccess())
	assert.Equal(t, int64(42), r.Value())
	assert.Equal(t, 1, r.Remaining().Len())

	r = Run(NumP(), stream(token.Plus()))
	assert.False(t, r.IsSuccess())
	assert.Equal(t, ReasonMismatch, r.Reason())
	assert.Equal(t, "expected integer literal, got +", r.Message())

	r = Run(NumP(), stream())
	assert.False(t, r.IsSuccess())
	assert.Equal(t, ReasonExhausted, r.Reason())
	assert.Equal(t, MessageExhausted, r.Message())
}

func TestAndP_ConsumesBoth(t *testing.T) {
	p := AndP(Now(NumP()), Now(TokenP(token.Plus())))
	r := Run(p, stream(token.Int(1), token.Plus(), token.Int(2)))

	require.True(t, r.IsSuccess())
	assert.Equal(t, Pair[int64, Unit]{First: 1, Second: Unit{}}, r.Value())
	assert.Equal(t, 1, r.Remaining().Len())
}

func TestAndP_ShortCircuits(t *testing.T) {
	right := &counting[int64]{p: NumP()}
	p := AndP(Now(TokenP(token.Plus())), right.thunk)

	r := Run(p, stream(token.Int(1), token.Int(2)))

	assert.False(t, r.IsSuccess())
	assert.Equal(t, "expected +, got 1", r.Message(), "left failure forwarded verbatim")
	assert.Equal(t, ReasonMismatch, r.Reason())
	assert.Zero(t, right.forced, "right thunk must not be forced")
	assert.Zero(t, right.runs)
}

func TestAndP_RightFailure(t *testing.T) {
	p := AndP(Now(NumP()), Now(TokenP(token.Plus())))
	r := Run(p, stream(token.Int(1)))

	assert.False(t, r.IsSuccess())
	assert.Equal(t, ReasonExhausted, r.Reason())
	assert.Equal(t, MessageExhausted, r.Message())
	assert.True(t, r.Remaining().Empty(), "failure carries no stream")
}

func TestOrP_LeftWins(t *testing.T) {
	right := &counting[int64]{p: NumP()}
	p := OrP(Now(NumP()), right.thunk)
	input := stream(token.Int(5), token.Plus())

	r := Run(p, input)
	alone := Run(NumP(), input)

	require.True(t, r.IsSuccess())
	assert.Equal(t, alone.Value(), r.Value())
	assert.True(t, alone.Remaining().Equal(r.Remaining()))
	assert.Zero(t, right.forced)
	assert.Zero(t, right.runs)
}

func TestOrP_FallsBackOnOriginalInput(t *testing.T) {
	// left consumes one token before failing
	left := Map(AndP(Now(NumP()), Now(NumP())), func(p Pair[int64, int64]) int64 { return p.First + p.Second })
	p := OrP(Now(left), Now(NumP()))

	r := Run(p, stream(token.Int(9), token.Plus()))

	require.True(t, r.IsSuccess())
	assert.Equal(t, int64(9), r.Value())
	assert.Equal(t, 1, r.Remaining().Len())
}

// asInt lifts a token match into an int64 parser so it can be an OrP operand
// next to NumP
func asInt(p Parser[Unit]) Parser[int64] {
	return Map(p, func(Unit) int64 { return 0 })
}

func TestOrP_BothFailReportsRight(t *testing.T) {
	p := OrP(Now(asInt(TokenP(token.Plus()))), Now(NumP()))
	r := Run(p, stream())

	assert.False(t, r.IsSuccess())
	assert.Equal(t, ReasonExhausted, r.Reason())
	assert.Equal(t, MessageExhausted, r.Message())
	assert.Equal(t, `failure("out of tokens")`, r.String())

	p = OrP(Now(NumP()), Now(asInt(TokenP(token.Int(3)))))
	r = Run(p, stream(token.Plus()))
	assert.False(t, r.IsSuccess())
	assert.Equal(t, "expected 3, got +", r.Message(), "left detail is dropped")
}

func TestOrP_KeepsOriginalStream(t *testing.T) {
	input := stream(token.Int(1), token.Plus())
	p := OrP(Now(asInt(TokenP(token.Plus()))), Now(NumP()))

	r := Run(p, input)

	require.True(t, r.IsSuccess())
	assert.Equal(t, int64(1), r.Value())
	assert.Equal(t, 1, r.Remaining().Len())
	assert.Equal(t, 2, input.Len(), "input stream is not mutated")
}

func TestMap_ForwardsFailure(t *testing.T) {
	called := false
	p := Map(NumP(), func(v int64) string {
		called = true
		return "x"
	})

	r := Run(p, stream(token.Plus()))
	assert.False(t, r.IsSuccess())
	assert.False(t, called)
	assert.Equal(t, ReasonMismatch, r.Reason())
}

func TestParsers_AreReusableAndConcurrent(t *testing.T) {
	p := AndP(Now(NumP()), Now(NumP()))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r := Run(p, stream(token.Int(int64(i)), token.Int(1)))
			assert.True(t, r.IsSuccess())
			assert.Equal(t, int64(i), r.Value().First)
		}(i)
	}
	wg.Wait()
}

func TestResult_String(t *testing.T) {
	assert.Equal(t, "success([+], 1)", Run(NumP(), stream(token.Int(1), token.Plus())).String())
	assert.Equal(t, `failure("out of tokens")`, Run(NumP(), stream()).String())
}
