package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/msto63/frege/pkg/core/version"
)

var versionFormat string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Zeigt die Version an",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.Get()
		out := cmd.OutOrStdout()

		if versionFormat != formatText {
			if err := validFormat(versionFormat); err != nil {
				return err
			}
			return writeStructured(out, versionFormat, info)
		}

		fmt.Fprintf(out, "frege v%s\n", info.Version)
		fmt.Fprintf(out, "  Git Commit: %s\n", info.Commit)
		fmt.Fprintf(out, "  Build Date: %s\n", info.BuildDate)
		fmt.Fprintf(out, "  Go Version: %s\n", info.GoVersion)
		fmt.Fprintf(out, "  OS/Arch:    %s\n", info.Platform)
		fmt.Fprintln(out, "  Komponenten:")
		for _, name := range []string{"grammar", "engine", "server", "gateway", "repl"} {
			fmt.Fprintf(out, "    %-8s %s\n", name, version.ComponentVersion(name))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().StringVarP(&versionFormat, "output", "o", formatText, "Ausgabeformat (text, json, yaml)")
}
