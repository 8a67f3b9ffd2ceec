// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tree

import (
	"fmt"

	"github.com/xlab/treeprint"

	"github.com/ASEM000/Osiris/nn"
	"github.com/ASEM000/Osiris/tensor"
)

// Diagram renders the model structure as an ASCII tree: one branch per
// module, one leaf per parameter with its shape.
func Diagram[B tensor.Backend](model nn.Module[B]) string {
	root := Build(model)
	tp := treeprint.New()
	tp.SetValue(nodeLabel(root))
	addBranches(tp, root)
	return tp.String()
}

func addBranches[B tensor.Backend](tp treeprint.Tree, node *Node[B]) {
	for _, p := range node.Params {
		tp.AddNode(fmt.Sprintf("%s%v", p.Name, p.Param.Shape()))
	}
	for _, child := range node.Children {
		branch := tp.AddBranch(nodeLabel(child))
		addBranches(branch, child)
	}
}

func nodeLabel[B tensor.Backend](node *Node[B]) string {
	if node.Name == "" || node.Name == "model" {
		return node.Type
	}
	return fmt.Sprintf("%s: %s", node.Name, node.Type)
}
