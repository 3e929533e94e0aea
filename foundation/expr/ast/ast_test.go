package ast

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mdwerror "github.com/msto63/frege/foundation/core/error"
)

// 1 + (2 + 3)
func rightNested() Exp {
	return NewPlus(NewInt(1), NewPlus(NewInt(2), NewInt(3)))
}

func TestString(t *testing.T) {
	assert.Equal(t, "Int(7)", NewInt(7).String())
	assert.Equal(t, "Plus(Int(1), Plus(Int(2), Int(3)))", rightNested().String())
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(rightNested(), rightNested()))
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(NewInt(1), nil))
	assert.False(t, Equal(NewInt(1), NewInt(2)))
	assert.False(t, Equal(NewInt(1), NewPlus(NewInt(1), NewInt(0))))

	left := NewPlus(NewPlus(NewInt(1), NewInt(2)), NewInt(3))
	assert.False(t, Equal(left, rightNested()), "associativity is structural")
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name    string
		exp     Exp
		want    int64
		wantErr bool
	}{
		{"literal", NewInt(42), 42, false},
		{"nested", rightNested(), 6, false},
		{"negative literal", NewPlus(NewInt(-5), NewInt(3)), -2, false},
		{"max", NewPlus(NewInt(math.MaxInt64-1), NewInt(1)), math.MaxInt64, false},
		{"overflow", NewPlus(NewInt(math.MaxInt64), NewInt(1)), 0, true},
		{"nested overflow", NewPlus(NewInt(1), NewPlus(NewInt(math.MaxInt64), NewInt(1))), 0, true},
		{"underflow", NewPlus(NewInt(math.MinInt64), NewInt(-1)), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.exp)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, mdwerror.HasCode(err, mdwerror.CodeEvaluation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrintDepthLiterals(t *testing.T) {
	e := rightNested()
	assert.Equal(t, "(1 + (2 + 3))", Print(e))
	assert.Equal(t, "5", Print(NewInt(5)))
	assert.Equal(t, 3, Depth(e))
	assert.Equal(t, 1, Depth(NewInt(5)))
	assert.Equal(t, []int64{1, 2, 3}, Literals(e))
}

func TestMapRoundTrip(t *testing.T) {
	e := rightNested()

	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"type":"plus","left":{"type":"int","value":1},"right":{"type":"plus","left":{"type":"int","value":2},"right":{"type":"int","value":3}}}`,
		string(data))

	decoded, err := Decode(data)
	require.NoError(t, err)
	if diff := cmp.Diff(e, decoded); diff != "" {
		t.Errorf("decoded tree mismatch (-want +got):\n%s", diff)
	}
}

func TestFromMap_Invalid(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]interface{}
	}{
		{"nil", nil},
		{"unknown type", map[string]interface{}{"type": "minus"}},
		{"missing value", map[string]interface{}{"type": "int"}},
		{"fractional value", map[string]interface{}{"type": "int", "value": 1.5}},
		{"missing child", map[string]interface{}{"type": "plus", "left": map[string]interface{}{"type": "int", "value": 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromMap(tt.in)
			require.Error(t, err)
			assert.True(t, mdwerror.HasCode(err, mdwerror.CodeInvalidInput))
		})
	}
}

func TestDecode_KeepsLargeLiterals(t *testing.T) {
	e, err := Decode([]byte(`{"type":"plus","left":{"type":"int","value":9223372036854775807},"right":{"type":"int","value":1}}`))
	require.NoError(t, err)
	assert.Equal(t, []int64{math.MaxInt64, 1}, Literals(e))
}
