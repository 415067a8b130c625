package main

import "github.com/spf13/cobra"

var bundlesCmd = &cobra.Command{
	Use:   "bundles",
	Short: "Manage documents bundles",
}

var bundleMetadataFlag []string

var bundlesCreateCmd = &cobra.Command{
	Use:   "create <id>",
	Short: "Create a documents bundle",
	Args:  cobra.ExactArgs(1),
	RunE:  runBundlesCreate,
}

var bundlesGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Fetch a documents bundle's manifest",
	Args:  cobra.ExactArgs(1),
	RunE:  runBundlesGet,
}

var bundlesAddDocumentCmd = &cobra.Command{
	Use:   "add-document <bundle-id> <document-id>",
	Short: "Add a document to a documents bundle",
	Args:  cobra.ExactArgs(2),
	RunE:  runBundlesAddDocument,
}

func init() {
	bundlesCreateCmd.Flags().StringSliceVar(&bundleMetadataFlag, "metadata", nil, "key=value metadata pairs")
	bundlesCmd.AddCommand(bundlesCreateCmd, bundlesGetCmd, bundlesAddDocumentCmd)
}

func runBundlesCreate(cmd *cobra.Command, args []string) error {
	metadata, err := parseMetadataFlag(bundleMetadataFlag)
	if err != nil {
		return err
	}
	var manifest map[string]any
	if err := newClient().putJSON("/bundles/"+args[0], map[string]any{"metadata": metadata}, &manifest); err != nil {
		return err
	}
	return printOutput(manifest)
}

func runBundlesGet(cmd *cobra.Command, args []string) error {
	var manifest map[string]any
	if err := newClient().getJSON("/bundles/"+args[0], &manifest); err != nil {
		return err
	}
	return printOutput(manifest)
}

func runBundlesAddDocument(cmd *cobra.Command, args []string) error {
	var manifest map[string]any
	path := "/bundles/" + args[0] + "/documents/" + args[1]
	if err := newClient().putJSON(path, nil, &manifest); err != nil {
		return err
	}
	return printOutput(manifest)
}
