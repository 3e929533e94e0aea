package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/msto63/frege/internal/tui/repl"
	"github.com/msto63/frege/pkg/core/logging"
)

var (
	replRemote   string
	replAssoc    string
	replComplete bool
	replParse    bool
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interaktive Eingabe (TUI)",
	Long: `Startet eine interaktive Oberfläche zum Parsen und Auswerten.

Tasten:
  Enter    Ausdruck auswerten
  Ctrl+A   Assoziativität umschalten
  Ctrl+E   Zwischen Parsen und Auswerten wechseln
  Ctrl+K   Vollständige Eingabe verlangen
  Ctrl+L   Ausgabe leeren
  ↑/↓      Frühere Eingaben
  Ctrl+C   Beenden

Beispiele:
  frege repl
  frege repl --assoc left
  frege repl --remote localhost:9300`,
	RunE: runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)
	replCmd.Flags().StringVarP(&replRemote, "remote", "r", "", "gRPC-Server statt lokaler Engine (host:port)")
	replCmd.Flags().StringVarP(&replAssoc, "assoc", "a", "", "Start-Assoziativität (left, right)")
	replCmd.Flags().BoolVarP(&replComplete, "complete", "c", false, "Gesamte Eingabe muss verbraucht werden")
	replCmd.Flags().BoolVar(&replParse, "parse", false, "Nur parsen, nicht auswerten")
}

func runRepl(cmd *cobra.Command, args []string) error {
	// Log lines would tear the alternate screen
	logging.SetOutput(io.Discard)

	backend, err := openBackend(replRemote)
	if err != nil {
		return err
	}
	defer backend.Close()

	cfg := repl.DefaultConfig(backend)
	cfg.Target = replRemote
	cfg.Assoc = appConfig.Grammar.Assoc
	if replAssoc != "" {
		cfg.Assoc = replAssoc
	}
	cfg.RequireComplete = replComplete || appConfig.Grammar.RequireComplete
	cfg.Evaluate = !replParse

	return repl.Run(cfg)
}
