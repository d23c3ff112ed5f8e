// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package ui

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/stacklok/kernelhive/pkg/servers/provider"
)

// RenderServerTable writes the stored servers as a table to w.
func RenderServerTable(w io.Writer, list []provider.Server) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "No remote Jupyter servers found. Add one with 'khv server add'.")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Options(
		tablewriter.WithHeader([]string{"ID", "Name"}),
		tablewriter.WithRendition(
			tw.Rendition{
				Borders: tw.Border{
					Left:   tw.State(1),
					Top:    tw.State(1),
					Right:  tw.State(1),
					Bottom: tw.State(1),
				},
			},
		),
		tablewriter.WithAlignment(tw.MakeAlign(2, tw.AlignLeft)),
	)

	for _, s := range list {
		if err := table.Append([]string{s.ID, s.Label}); err != nil {
			return fmt.Errorf("failed to append row: %w", err)
		}
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	return nil
}
