package main

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "Manage documents",
}

var (
	documentDataFlag       string
	documentAssetFlags     []string
	documentRenditionFlags []string
	documentVersionFlag    int
	documentWhenFlag       string
)

var documentsRegisterCmd = &cobra.Command{
	Use:   "register <id>",
	Short: "Register a document, or a new version of an existing one",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsRegister,
}

var documentsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Fetch a document's manifest",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsGet,
}

var documentsAssetsCmd = &cobra.Command{
	Use:   "assets <id>",
	Short: "List a document version's assets",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsAssets,
}

func init() {
	documentsRegisterCmd.Flags().StringVar(&documentDataFlag, "data", "", "XML data URI")
	documentsRegisterCmd.Flags().StringArrayVar(&documentAssetFlags, "asset", nil, "slot=uri asset binding (repeatable)")
	documentsRegisterCmd.Flags().StringArrayVar(&documentRenditionFlags, "rendition", nil, "slot=uri rendition binding (repeatable)")
	_ = documentsRegisterCmd.MarkFlagRequired("data")

	documentsGetCmd.Flags().IntVar(&documentVersionFlag, "version", 0, "1-indexed version; the server validates it but returns the full manifest with every version")
	documentsGetCmd.Flags().StringVar(&documentWhenFlag, "when", "", "ISO-8601 timestamp; the server validates it but returns the full manifest with every version")
	documentsAssetsCmd.Flags().IntVar(&documentVersionFlag, "version", 0, "1-indexed version (default latest)")
	documentsAssetsCmd.Flags().StringVar(&documentWhenFlag, "when", "", "ISO-8601 timestamp to select the version as-of")

	documentsCmd.AddCommand(documentsRegisterCmd, documentsGetCmd, documentsAssetsCmd)
}

type assetBindingPayload struct {
	AssetID  string `json:"asset_id"`
	AssetURL string `json:"asset_url"`
}

func parseAssetFlags(flags []string) ([]assetBindingPayload, error) {
	out := make([]assetBindingPayload, 0, len(flags))
	for _, f := range flags {
		slot, uri, ok := strings.Cut(f, "=")
		if !ok {
			return nil, fmt.Errorf("invalid asset binding %q, expected slot=uri", f)
		}
		out = append(out, assetBindingPayload{AssetID: slot, AssetURL: uri})
	}
	return out, nil
}

func runDocumentsRegister(cmd *cobra.Command, args []string) error {
	assets, err := parseAssetFlags(documentAssetFlags)
	if err != nil {
		return err
	}
	renditions, err := parseAssetFlags(documentRenditionFlags)
	if err != nil {
		return err
	}

	body := map[string]any{
		"data":       documentDataFlag,
		"assets":     assets,
		"renditions": renditions,
	}
	var manifest map[string]any
	if err := newClient().putJSON("/documents/"+args[0], body, &manifest); err != nil {
		return err
	}
	return printOutput(manifest)
}

func selectorQuery() string {
	q := url.Values{}
	if documentWhenFlag != "" {
		q.Set("when", documentWhenFlag)
	} else if documentVersionFlag > 0 {
		q.Set("version", strconv.Itoa(documentVersionFlag))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

func runDocumentsGet(cmd *cobra.Command, args []string) error {
	var manifest map[string]any
	if err := newClient().getJSON("/documents/"+args[0]+selectorQuery(), &manifest); err != nil {
		return err
	}
	return printOutput(manifest)
}

func runDocumentsAssets(cmd *cobra.Command, args []string) error {
	var assets map[string]any
	if err := newClient().getJSON("/documents/"+args[0]+"/assets"+selectorQuery(), &assets); err != nil {
		return err
	}
	return printOutput(assets)
}
