package main

import "github.com/spf13/cobra"

var (
	serverURL string
	outputFmt string
)

var rootCmd = &cobra.Command{
	Use:   "kernelctl",
	Short: "CLI for the periodicals kernel server",
	Long: `kernelctl is an administrative client for the periodicals kernel: create
journals and documents bundles, register documents and versions, and read
the change feed.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Kernel server URL")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table", "Output format: table, json, yaml (commands without a table view print JSON for table)")

	rootCmd.AddCommand(journalsCmd)
	rootCmd.AddCommand(bundlesCmd)
	rootCmd.AddCommand(documentsCmd)
	rootCmd.AddCommand(changesCmd)
	rootCmd.AddCommand(pidCmd)
}
