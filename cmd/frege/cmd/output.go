package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/msto63/frege/foundation/expr/ast"
	"github.com/msto63/frege/internal/frege/service"
)

// Output formats shared by all commands
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func validFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("unbekanntes Ausgabeformat %q (text, json, yaml)", format)
	}
}

// writeStructured encodes v as JSON or YAML
func writeStructured(w io.Writer, format string, v interface{}) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	default:
		return fmt.Errorf("unbekanntes Ausgabeformat %q", format)
	}
}

// responseView is the YAML-friendly form of a response. The AST is kept in
// its map form since yaml.v3 ignores MarshalJSON.
type responseView struct {
	Source    string                 `yaml:"source"`
	Assoc     string                 `yaml:"assoc"`
	Success   bool                   `yaml:"success"`
	Message   string                 `yaml:"message,omitempty"`
	Reason    string                 `yaml:"reason,omitempty"`
	Tokens    []string               `yaml:"tokens"`
	AST       map[string]interface{} `yaml:"ast,omitempty"`
	Printed   string                 `yaml:"printed,omitempty"`
	Value     *int64                 `yaml:"value,omitempty"`
	Remaining []string               `yaml:"remaining"`
	Cached    bool                   `yaml:"cached"`
}

func printResponse(w io.Writer, format string, resp *service.Response) error {
	switch format {
	case formatJSON:
		return writeStructured(w, format, resp)
	case formatYAML:
		view := responseView{
			Source:    resp.Source,
			Assoc:     resp.Assoc,
			Success:   resp.Success,
			Message:   resp.Message,
			Reason:    resp.Reason,
			Tokens:    resp.Tokens,
			Printed:   resp.Printed,
			Value:     resp.Value,
			Remaining: resp.Remaining,
			Cached:    resp.Cached,
		}
		if resp.AST != nil {
			view.AST = ast.ToMap(resp.AST)
		}
		return writeStructured(w, format, view)
	}

	fmt.Fprintf(w, "Tokens:  %s\n", strings.Join(resp.Tokens, " "))
	if resp.AST != nil {
		fmt.Fprintf(w, "AST:     %s\n", resp.AST)
		fmt.Fprintf(w, "Infix:   %s\n", resp.Printed)
	}
	if !resp.Success {
		fmt.Fprintf(w, "Fehler:  %s (%s)\n", resp.Message, resp.Reason)
	}
	if resp.Value != nil {
		fmt.Fprintf(w, "Wert:    %d\n", *resp.Value)
	}
	if len(resp.Remaining) > 0 {
		fmt.Fprintf(w, "Rest:    %s\n", strings.Join(resp.Remaining, " "))
	}
	return nil
}
