package main

import (
	"fmt"
	"io"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/spf13/cobra"

	"github.com/codeGROOVE-dev/hourz/pkg/browser"
	"github.com/codeGROOVE-dev/hourz/pkg/extract"
)

func newInspectCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Show what each frame's today row looks like, for when the page layout changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := o.reader(o.logger()).ReadFrames(cmd.Context())
			if err != nil {
				return err
			}
			return inspect(cmd.OutOrStdout(), snap)
		},
	}
}

func inspect(w io.Writer, snap browser.Snapshot) error {
	if snap.URL != "" {
		fmt.Fprintf(w, "URL: %s\n", snap.URL)
	}
	for i, html := range snap.Frames {
		fmt.Fprintf(w, "\n## frame %d\n", i)
		if html == "" {
			fmt.Fprintln(w, "(unreadable)")
			continue
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			fmt.Fprintf(w, "(parse error: %v)\n", err)
			continue
		}
		res := extract.Extract(doc)
		fmt.Fprintf(w, "source: %s  worked: %q  punches: %d  week days: %d\n",
			res.Source, res.WorkedText, len(res.Punches), len(res.Week))

		row, _, err := extract.RowHTML(doc)
		if err != nil {
			return err
		}
		if row == "" {
			fmt.Fprintln(w, "(no today row)")
			continue
		}
		// goquery renders a bare <tr>; the converter needs a table around it.
		text, err := md.ConvertString("<table>" + row + "</table>")
		if err != nil {
			fmt.Fprintf(w, "```html\n%s\n```\n", row)
			continue
		}
		fmt.Fprintln(w, text)
	}
	return nil
}
