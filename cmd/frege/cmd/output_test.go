package cmd

import (
	"bytes"
	"testing"

	"github.com/msto63/frege/foundation/expr/ast"
	"github.com/msto63/frege/internal/frege/service"
)

func TestPrintResponse(t *testing.T) {
	value := int64(6)
	resp := &service.Response{
		Source:    "1 + 2 + 3",
		Assoc:     "right",
		Success:   true,
		Tokens:    []string{"1", "+", "2", "+", "3"},
		AST:       ast.NewPlus(ast.NewInt(1), ast.NewPlus(ast.NewInt(2), ast.NewInt(3))),
		Printed:   "(1 + (2 + 3))",
		Value:     &value,
		Remaining: []string{},
	}

	tests := []struct {
		format string
		want   []string
	}{
		{formatText, []string{"Tokens:  1 + 2 + 3", "Infix:   (1 + (2 + 3))", "Wert:    6"}},
		{formatJSON, []string{`"printed": "(1 + (2 + 3))"`, `"value": 6`}},
		{formatYAML, []string{"printed: (1 + (2 + 3))", "value: 6", "type: plus"}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := printResponse(&buf, tt.format, resp); err != nil {
				t.Fatalf("printResponse() error = %v", err)
			}
			for _, w := range tt.want {
				if !bytes.Contains(buf.Bytes(), []byte(w)) {
					t.Errorf("output missing %q:\n%s", w, buf.String())
				}
			}
		})
	}
}

func TestValidFormat(t *testing.T) {
	for _, f := range []string{formatText, formatJSON, formatYAML} {
		if err := validFormat(f); err != nil {
			t.Errorf("validFormat(%q) = %v", f, err)
		}
	}
	if err := validFormat("xml"); err == nil {
		t.Error("validFormat(xml) should fail")
	}
}

func TestInputText_Args(t *testing.T) {
	got, err := inputText([]string{"1", "+", "2"})
	if err != nil {
		t.Fatal(err)
	}
	if got != "1 + 2" {
		t.Errorf("inputText() = %q", got)
	}
}
