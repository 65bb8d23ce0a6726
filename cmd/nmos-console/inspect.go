package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jonathan-r-thorpe/nmos-js/internal/console"
	"github.com/jonathan-r-thorpe/nmos-js/internal/models"
	"github.com/jonathan-r-thorpe/nmos-js/internal/registry"
	"github.com/jonathan-r-thorpe/nmos-js/internal/view"
)

var (
	listFilter map[string]string
	listCursor string
)

var showCmd = &cobra.Command{
	Use:   "show [type] [id] [tab]",
	Short: "Render a resource the way the console shows it",
	Long: `Fetches a resource from the default Query API and prints its fields.

Examples:
  nmos-console show senders 6a3b0d52-... --registry http://registry:8010/x-nmos/query/v1.3
  nmos-console show receivers 4f1c... active`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runShow,
}

var listCmd = &cobra.Command{
	Use:   "list [type]",
	Short: "List resources of one type",
	Args:  cobra.ExactArgs(1),
	RunE:  runList,
}

var versionsCmd = &cobra.Command{
	Use:   "versions [url]",
	Short: "Discover the Query API versions a registry serves",
	Long: `Reads the Query API root of a registry. The URL may be the root itself
(http://registry/x-nmos/query/) or any versioned Query API under it.`,
	Args: cobra.ExactArgs(1),
	RunE: runVersions,
}

func init() {
	listCmd.Flags().StringToStringVar(&listFilter, "filter", nil, "Column filters, e.g. --filter label=camera")
	listCmd.Flags().StringVar(&listCursor, "cursor", "", "Paging cursor printed by a previous list")
}

// cliContext resolves the render context for command-line use, where there
// is no browser selection.
func cliContext() (*console.Service, console.RenderContext, error) {
	rc, err := console.ResolveContext("", cfg.DefaultQueryAPI(), "")
	if err != nil {
		return nil, rc, err
	}
	server, err := newServer(&cfg, logger)
	if err != nil {
		return nil, rc, err
	}
	return server.Console, rc, nil
}

func runShow(cmd *cobra.Command, args []string) error {
	svc, rc, err := cliContext()
	if err != nil {
		return err
	}
	tab := ""
	if len(args) == 3 {
		tab = args[2]
	}
	page, err := svc.Show(cmd.Context(), rc, args[0], args[1], tab)
	if err != nil {
		return err
	}
	printPage(cmd.OutOrStdout(), page)
	return nil
}

func printPage(out io.Writer, page *console.Page) {
	fmt.Fprintf(out, "%s [%s]\n%s\n\n", page.Title, page.Tab, page.RawURL)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, row := range page.Rows {
		lines := rowLines(row)
		fmt.Fprintf(w, "%s\t%s\n", row.Label, lines[0])
		for _, l := range lines[1:] {
			fmt.Fprintf(w, "\t%s\n", l)
		}
	}
	w.Flush()
}

// rowLines formats a row as one or more plain text lines. Tables and
// multi-line text such as SDP files span several lines.
func rowLines(row view.Row) []string {
	if row.Empty {
		return []string{"-"}
	}
	if row.Renderer == view.RenderTable {
		lines := []string{strings.Join(row.Columns, " | ")}
		for _, cells := range row.Cells {
			texts := make([]string, len(cells))
			for i, c := range cells {
				texts[i] = rowLines(c)[0]
			}
			lines = append(lines, strings.Join(texts, " | "))
		}
		return lines
	}
	text := strings.TrimRight(row.Summarize(), "\r\n")
	if text == "" {
		return []string{"-"}
	}
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

func runList(cmd *cobra.Command, args []string) error {
	svc, rc, err := cliContext()
	if err != nil {
		return err
	}
	list, err := svc.List(cmd.Context(), rc, args[0], listFilter, listCursor)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "ID\t%s\n", strings.ToUpper(strings.Join(list.Type.Filters, "\t")))
	for _, item := range list.Items {
		fmt.Fprintf(w, "%s\t%s\n", item.ID, strings.Join(item.Columns, "\t"))
	}
	w.Flush()
	if len(list.Items) == 0 {
		fmt.Fprintf(out, "No %s\n", list.Type.Label)
	}
	for _, rel := range []string{"prev", "next"} {
		if cursor, ok := list.Links[rel]; ok {
			fmt.Fprintf(out, "%s: --cursor '%s'\n", rel, cursor)
		}
	}
	return nil
}

func runVersions(cmd *cobra.Command, args []string) error {
	root := strings.TrimSpace(args[0])
	reg := &models.Registry{QueryAPI: root}
	if !strings.HasSuffix(strings.TrimRight(root, "/"), "/x-nmos/query") {
		root = reg.Root()
	}
	client := registry.NewClient(reg, logger)
	versions, err := client.DiscoverVersions(cmd.Context(), root)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, v := range versions {
		fmt.Fprintln(out, v)
	}
	if preferred := registry.PreferredQueryAPI(root, versions); preferred != "" {
		fmt.Fprintln(out, "preferred:", preferred)
	}
	return nil
}
