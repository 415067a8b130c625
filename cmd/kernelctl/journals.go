package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var journalsCmd = &cobra.Command{
	Use:   "journals",
	Short: "Manage journals",
}

var journalMetadataFlag []string

var journalsCreateCmd = &cobra.Command{
	Use:   "create <id>",
	Short: "Create a journal",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalsCreate,
}

var journalsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Fetch a journal's manifest",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalsGet,
}

var journalsAddBundleCmd = &cobra.Command{
	Use:   "add-bundle <journal-id> <bundle-id>",
	Short: "Add a documents bundle to a journal",
	Args:  cobra.ExactArgs(2),
	RunE:  runJournalsAddBundle,
}

func init() {
	journalsCreateCmd.Flags().StringSliceVar(&journalMetadataFlag, "metadata", nil, "key=value metadata pairs")
	journalsCmd.AddCommand(journalsCreateCmd, journalsGetCmd, journalsAddBundleCmd)
}

func parseMetadataFlag(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("invalid metadata pair %q, expected key=value", p)
		}
		out[k] = v
	}
	return out, nil
}

func runJournalsCreate(cmd *cobra.Command, args []string) error {
	metadata, err := parseMetadataFlag(journalMetadataFlag)
	if err != nil {
		return err
	}
	var manifest map[string]any
	if err := newClient().putJSON("/journals/"+args[0], map[string]any{"metadata": metadata}, &manifest); err != nil {
		return err
	}
	return printOutput(manifest)
}

func runJournalsGet(cmd *cobra.Command, args []string) error {
	var manifest map[string]any
	if err := newClient().getJSON("/journals/"+args[0], &manifest); err != nil {
		return err
	}
	return printOutput(manifest)
}

func runJournalsAddBundle(cmd *cobra.Command, args []string) error {
	var manifest map[string]any
	path := "/journals/" + args[0] + "/bundles/" + args[1]
	if err := newClient().putJSON(path, nil, &manifest); err != nil {
		return err
	}
	return printOutput(manifest)
}
