package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/frege/internal/frege/server"
	"github.com/msto63/frege/internal/frege/store"
)

var (
	historyLimit  int
	historyRemote string
	historyFormat string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Verlauf der Anfragen anzeigen",
	Long: `Zeigt die letzten Parse- und Eval-Anfragen, neueste zuerst.

Beispiele:
  frege history
  frege history --limit 5 --output json
  frege history --remote localhost:9300
  frege history prune`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Einträge älter als die Aufbewahrungsdauer löschen",
	Args:  cobra.NoArgs,
	RunE:  runHistoryPrune,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyPruneCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximale Anzahl Einträge")
	historyCmd.Flags().StringVarP(&historyRemote, "remote", "r", "", "Verlauf vom gRPC-Server lesen (host:port)")
	historyCmd.Flags().StringVarP(&historyFormat, "output", "o", formatText, "Ausgabeformat (text, json, yaml)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	if err := validFormat(historyFormat); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var entries []*store.Entry
	if historyRemote != "" {
		client, err := server.Dial(historyRemote, 5*time.Second)
		if err != nil {
			return fmt.Errorf("Verbindung zu %s fehlgeschlagen: %w", historyRemote, err)
		}
		defer client.Close()
		if entries, err = client.History(ctx, historyLimit); err != nil {
			return err
		}
	} else {
		if !appConfig.Store.Enabled {
			return fmt.Errorf("Verlauf ist deaktiviert (store.enabled = false)")
		}
		svc, err := newLocalService()
		if err != nil {
			return err
		}
		defer svc.Close()
		if entries, err = svc.History(ctx, historyLimit); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if historyFormat != formatText {
		return writeStructured(out, historyFormat, entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(out, "Keine Einträge")
		return nil
	}
	for _, e := range entries {
		status := "ok"
		if !e.Success {
			status = "fehler"
		}
		result := e.AST
		if e.Value != nil {
			result = fmt.Sprintf("%s = %d", e.AST, *e.Value)
		}
		if e.Message != "" {
			result = e.Message
		}
		fmt.Fprintf(out, "%s  %-8s %-5s %-6s %-24s %s\n",
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			e.Operation, e.Assoc, status, truncate(e.Source, 24), result)
	}
	return nil
}

func runHistoryPrune(cmd *cobra.Command, args []string) error {
	svc, err := newLocalService()
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	deleted, err := svc.Prune(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d Einträge gelöscht\n", deleted)
	return nil
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "~"
}
