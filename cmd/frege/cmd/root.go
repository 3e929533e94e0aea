package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/frege/internal/frege/server"
	"github.com/msto63/frege/internal/frege/service"
	"github.com/msto63/frege/internal/tui/repl"
	"github.com/msto63/frege/pkg/core/config"
	"github.com/msto63/frege/pkg/core/logging"
)

var (
	cfgFile   string
	verbose   bool
	appConfig *config.Config
)

// errRejected signals a grammar failure that was already printed
var errRejected = errors.New("Ausdruck nicht akzeptiert")

var rootCmd = &cobra.Command{
	Use:   "frege",
	Short: "frege - Parser-Kombinatoren für Ausdrücke",
	Long: `frege parst und wertet Ausdrücke der Grammatik

  exp ::= integer '+' exp | integer

mit Parser-Kombinatoren aus. '+' ist standardmäßig rechtsassoziativ,
"1 + 2 + 3" ergibt also (1 + (2 + 3)).

Befehle:
  parse    - Ausdruck parsen und AST anzeigen
  eval     - Ausdruck parsen und auswerten
  check    - YAML-Testfälle prüfen
  repl     - Interaktive Eingabe (TUI)
  serve    - gRPC-Server und HTTP-Gateway starten
  history  - Verlauf der Anfragen anzeigen`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config-Datei (default: ./configs/frege.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose Output")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return err
	}
	appConfig = cfg

	level := cfg.General.LogLevel
	if verbose {
		level = "debug"
	}
	logging.Configure(level, cfg.General.LogFormat)
	return nil
}

// newLocalService builds a service from the loaded configuration
func newLocalService() (*service.Service, error) {
	return service.NewService(service.ConfigFrom(appConfig))
}

// backendCloser is a backend that owns resources
type backendCloser interface {
	repl.Backend
	Close() error
}

// openBackend returns the gRPC client for remote, or a local service
func openBackend(remote string) (backendCloser, error) {
	if remote != "" {
		client, err := server.Dial(remote, 5*time.Second)
		if err != nil {
			return nil, fmt.Errorf("Verbindung zu %s fehlgeschlagen: %w", remote, err)
		}
		return client, nil
	}
	svc, err := newLocalService()
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// inputText joins the arguments or reads stdin when there are none
func inputText(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	stat, err := os.Stdin.Stat()
	if err != nil {
		return "", err
	}
	if stat.Mode()&os.ModeCharDevice != 0 {
		return "", fmt.Errorf("kein Ausdruck angegeben")
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "Fehler: %s: %v\n", msg, err)
}
