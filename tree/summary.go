// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tree

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/ASEM000/Osiris/nn"
	"github.com/ASEM000/Osiris/tensor"
)

// Summary renders a per-module table of the model to w: one row per
// module with its parameter count, parameter shapes and byte size, plus a
// totals footer.
func Summary[B tensor.Backend](w io.Writer, model nn.Module[B]) {
	root := Build(model)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Name", "Type", "Params", "Shapes", "Size"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)

	root.Walk(func(path string, node *Node[B]) {
		count := 0
		shapes := make([]string, 0, len(node.Params))
		bytes := 0
		for _, p := range node.Params {
			count += p.Param.NumElements()
			bytes += p.Param.Tensor().Raw().ByteSize()
			shapes = append(shapes, fmt.Sprintf("%s%v", p.Name, p.Param.Shape()))
		}
		table.Append([]string{
			path,
			node.Type,
			fmt.Sprintf("%d", count),
			strings.Join(shapes, " "),
			humanBytes(bytes),
		})
	})

	table.SetFooter([]string{
		"Total", "",
		fmt.Sprintf("%d", root.NumParams()),
		"",
		humanBytes(root.NumBytes()),
	})
	table.Render()
}

// SummaryString renders Summary into a string.
func SummaryString[B tensor.Backend](model nn.Module[B]) string {
	var sb strings.Builder
	Summary(&sb, model)
	return sb.String()
}

func humanBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.2f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.2f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
