package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/vbonduro/portfolio/internal/domain"
)

func newTable(w io.Writer, styled bool) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	if styled {
		tw.SetStyle(table.StyleRounded)
		tw.Style().Color.Header = text.Colors{text.Bold}
	} else {
		tw.SetStyle(table.StyleLight)
	}
	tw.Style().Options.SeparateRows = false
	tw.Style().Format.Footer = text.FormatDefault
	return tw
}

// renderWorks prints one row per work in cache order.
func renderWorks(w io.Writer, works []domain.Item, styled bool) {
	tw := newTable(w, styled)
	tw.AppendHeader(table.Row{"ID", "Title", "Category", "Image"})
	for _, work := range works {
		category := work.Category.Name
		if category == "" {
			category = fmt.Sprintf("#%d", work.CategoryID)
		}
		tw.AppendRow(table.Row{work.ID, work.Title, category, work.ImageLocation})
	}
	tw.AppendFooter(table.Row{"", fmt.Sprintf("%d works", len(works))})
	tw.Render()
}

func renderCategories(w io.Writer, cats []domain.CategoryRef, styled bool) {
	tw := newTable(w, styled)
	tw.AppendHeader(table.Row{"ID", "Name"})
	for _, c := range cats {
		tw.AppendRow(table.Row{c.ID, c.Name})
	}
	tw.Render()
}
