package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/frege/internal/frege/service"
)

var (
	exprAssoc    string
	exprComplete bool
	exprRemote   string
	exprFormat   string
	exprTimeout  time.Duration
)

var parseCmd = &cobra.Command{
	Use:   "parse [ausdruck]",
	Short: "Ausdruck parsen und AST anzeigen",
	Long: `Parst einen Ausdruck und zeigt Tokens, AST und nicht verbrauchte Tokens.

Ohne --complete wird nur ein Präfix der Eingabe verlangt,
"1 2" ergibt Int(1) mit dem Rest "2".

Beispiele:
  frege parse "1 + 2 + 3"
  frege parse --assoc left "1 + 2 + 3"
  frege parse --complete "1 2"
  frege parse --output json "4 + 5"
  frege parse --remote localhost:9300 "1 + 2"
  echo "1 + 2" | frege parse`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExpression(cmd, args, false)
	},
}

var evalCmd = &cobra.Command{
	Use:   "eval [ausdruck]",
	Short: "Ausdruck parsen und auswerten",
	Long: `Parst einen Ausdruck und berechnet seinen Wert.

Überläufe von 64-Bit-Ganzzahlen werden als Fehler gemeldet.

Beispiele:
  frege eval "1 + 2 + 3"
  frege eval --output yaml "40 + 2"
  frege eval --remote localhost:9300 "1 + 2"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExpression(cmd, args, true)
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(evalCmd)

	for _, c := range []*cobra.Command{parseCmd, evalCmd} {
		c.Flags().StringVarP(&exprAssoc, "assoc", "a", "", "Assoziativität von '+' (left, right)")
		c.Flags().BoolVarP(&exprComplete, "complete", "c", false, "Gesamte Eingabe muss verbraucht werden")
		c.Flags().StringVarP(&exprRemote, "remote", "r", "", "gRPC-Server statt lokaler Engine (host:port)")
		c.Flags().StringVarP(&exprFormat, "output", "o", formatText, "Ausgabeformat (text, json, yaml)")
		c.Flags().DurationVar(&exprTimeout, "timeout", 10*time.Second, "Timeout der Anfrage")
	}
}

func runExpression(cmd *cobra.Command, args []string, evaluate bool) error {
	if err := validFormat(exprFormat); err != nil {
		return err
	}
	src, err := inputText(args)
	if err != nil {
		return err
	}

	backend, err := openBackend(exprRemote)
	if err != nil {
		return err
	}
	defer backend.Close()

	ctx, cancel := context.WithTimeout(context.Background(), exprTimeout)
	defer cancel()

	req := service.Request{
		Source:          src,
		Assoc:           exprAssoc,
		RequireComplete: exprComplete,
	}

	var resp *service.Response
	if evaluate {
		resp, err = backend.Evaluate(ctx, req)
	} else {
		resp, err = backend.Parse(ctx, req)
	}
	if err != nil {
		return err
	}

	if err := printResponse(cmd.OutOrStdout(), exprFormat, resp); err != nil {
		return err
	}
	if !resp.Success {
		return errRejected
	}
	return nil
}
