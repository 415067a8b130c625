package main

import (
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	changesSinceFlag string
	changesLimitFlag int
)

var changesCmd = &cobra.Command{
	Use:   "changes",
	Short: "Read the replication change feed",
	RunE:  runChanges,
}

func init() {
	changesCmd.Flags().StringVar(&changesSinceFlag, "since", "", "ISO-8601 timestamp; only changes after it are returned")
	changesCmd.Flags().IntVar(&changesLimitFlag, "limit", 0, "maximum entries to return (server default applies when 0)")
}

func runChanges(cmd *cobra.Command, args []string) error {
	q := url.Values{}
	if changesSinceFlag != "" {
		q.Set("since", changesSinceFlag)
	}
	if changesLimitFlag > 0 {
		q.Set("limit", strconv.Itoa(changesLimitFlag))
	}
	path := "/changes"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var changes []map[string]any
	if err := newClient().getJSON(path, &changes); err != nil {
		return err
	}

	if outputFmt == "json" || outputFmt == "yaml" {
		return printOutput(changes)
	}

	headers := []string{"timestamp", "entity", "id", "deleted"}
	rows := make([][]string, len(changes))
	for i, c := range changes {
		rows[i] = []string{
			asString(c["Timestamp"]),
			asString(c["Entity"]),
			asString(c["ID"]),
			asString(c["Deleted"]),
		}
	}
	printTable(headers, rows)
	return nil
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
