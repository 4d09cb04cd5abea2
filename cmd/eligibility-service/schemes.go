// cmd/eligibility-service/schemes.go
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newSchemesCmd(root *rootOptions) *cobra.Command {
	var (
		category string
		query    string
		output   string
	)
	cmd := &cobra.Command{
		Use:   "schemes",
		Short: "List or search the scheme catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			cat, err := root.loadCatalog(cfg)
			if err != nil {
				return err
			}
			schemes := cat.Search(query, category)
			out := cmd.OutOrStdout()

			switch output {
			case "json":
				return writeJSON(out, schemes)
			case "yaml":
				return writeYAML(out, schemes)
			case "table":
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tCRITERIA")
				for _, s := range schemes {
					ids := make([]string, 0, len(s.Eligibility))
					for _, c := range s.Eligibility {
						ids = append(ids, c.ID)
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.ID, s.Name, s.Category, strings.Join(ids, ","))
				}
				return tw.Flush()
			default:
				return fmt.Errorf("unknown output format %q", output)
			}
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Filter by category id (all for no filter)")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Search name, description or Hindi name")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table, json or yaml")
	return cmd
}

// writeYAML goes through JSON so the output uses the same field names and
// criterion value shapes as the API.
func writeYAML(w io.Writer, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
