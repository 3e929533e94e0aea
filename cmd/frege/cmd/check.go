package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/msto63/frege/foundation/expr"
	"github.com/msto63/frege/internal/frege/cases"
	"github.com/msto63/frege/pkg/core/logging"
)

var (
	checkWatch  bool
	checkFormat string
)

var checkCmd = &cobra.Command{
	Use:   "check [pfad]",
	Short: "YAML-Testfälle prüfen",
	Long: `Prüft Testfälle aus einer YAML-Datei oder allen YAML-Dateien eines
Verzeichnisses gegen die Engine.

Beispiele:
  frege check testdata/cases
  frege check testdata/cases/basic.yaml
  frege check --watch testdata/cases     # Bei Änderungen erneut prüfen
  frege check --output json testdata/cases`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolVarP(&checkWatch, "watch", "w", false, "Dateien beobachten und bei Änderungen erneut prüfen")
	checkCmd.Flags().StringVarP(&checkFormat, "output", "o", formatText, "Ausgabeformat (text, json, yaml)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	if err := validFormat(checkFormat); err != nil {
		return err
	}
	path := "testdata/cases"
	if len(args) > 0 {
		path = args[0]
	}

	engine, err := expr.NewEngine(expr.Options{
		Logger:          logging.NewSimpleLogger("check"),
		Assoc:           appConfig.Assoc(),
		RequireComplete: appConfig.Grammar.RequireComplete,
		MaxInputLength:  appConfig.Grammar.MaxInputLength,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !checkWatch {
		report, err := checkOnce(out, engine, path)
		if err != nil {
			return err
		}
		if !report.OK() {
			return fmt.Errorf("%d von %d Testfällen fehlgeschlagen", report.Failed, report.Passed+report.Failed)
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := checkOnce(out, engine, path); err != nil {
		printError("Testfälle nicht geladen", err)
	}
	fmt.Fprintln(out, "Beobachte", path, "(Ctrl+C zum Beenden)")

	return cases.Watch(ctx, path, func() {
		fmt.Fprintln(out)
		if _, err := checkOnce(out, engine, path); err != nil {
			printError("Testfälle nicht geladen", err)
		}
	})
}

func checkOnce(out io.Writer, engine *expr.Engine, path string) (cases.Report, error) {
	files, err := cases.LoadPath(path)
	if err != nil {
		return cases.Report{}, err
	}
	report := cases.RunAll(engine, files)

	if checkFormat != formatText {
		return report, writeStructured(out, checkFormat, report)
	}

	for _, res := range report.Results {
		mark := "[+]"
		if !res.Passed {
			mark = "[-]"
		}
		fmt.Fprintf(out, "  %s %s/%s\n", mark, res.File, res.Case)
		for _, p := range res.Problems {
			fmt.Fprintf(out, "        %s\n", p)
		}
	}
	fmt.Fprintf(out, "\n%d bestanden, %d fehlgeschlagen\n", report.Passed, report.Failed)
	return report, nil
}
