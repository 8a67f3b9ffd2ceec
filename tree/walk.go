// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tree

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/ASEM000/Osiris/nn"
	"github.com/ASEM000/Osiris/tensor"
)

// Node is one module in the structural tree of a model. Params holds the
// parameters declared directly on the module, Buffers its non-trainable
// raw tensors (running statistics, fixed kernels), Children its nested
// modules and parameter containers.
type Node[B tensor.Backend] struct {
	// Name is the path segment of this node: the struct field that holds
	// it, with a [i] suffix for slice elements. The root is named "model".
	Name string
	// Type is the module type without package or type arguments, e.g.
	// "Linear".
	Type string

	// Module is nil for nodes that carry parameters without being
	// modules themselves, such as recurrent cells.
	Module   nn.Module[B]
	Params   []NamedParam[B]
	Buffers  []NamedBuffer
	Children []*Node[B]
}

// NamedParam pairs a parameter with the field it lives in.
type NamedParam[B tensor.Backend] struct {
	Name  string
	Param *nn.Parameter[B]
}

// NamedBuffer pairs a non-trainable tensor with the field it lives in.
// Buffers are state dict entries but never optimizer targets.
type NamedBuffer struct {
	Name string
	Raw  *tensor.RawTensor
}

// paramHolder matches values that carry parameters without satisfying
// nn.Module, such as recurrent cells whose entry point is Step.
type paramHolder[B tensor.Backend] interface {
	Parameters() []*nn.Parameter[B]
}

// Build walks the exported fields of a model and returns its structural
// tree. Fields holding *nn.Parameter become Params entries, fields
// holding *tensor.RawTensor become Buffers entries, and fields and slice
// elements satisfying nn.Module, or exposing Parameters() without being
// modules, become Children.
func Build[B tensor.Backend](model nn.Module[B]) *Node[B] {
	return buildNode[B]("model", model)
}

func buildNode[B tensor.Backend](name string, value any) *Node[B] {
	node := &Node[B]{
		Name: name,
		Type: typeName(value),
	}
	if m, ok := value.(nn.Module[B]); ok {
		node.Module = m
	}
	v := reflect.ValueOf(value)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return node
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return node
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		collect(node, field.Name, v.Field(i))
	}
	return node
}

// collect sorts one field value into Params, Buffers or Children,
// descending into slices.
func collect[B tensor.Backend](node *Node[B], name string, v reflect.Value) {
	if !v.IsValid() || !v.CanInterface() {
		return
	}
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			collect(node, fmt.Sprintf("%s[%d]", name, i), v.Index(i))
		}
		return
	case reflect.Interface:
		if v.IsNil() {
			return
		}
		collect(node, name, v.Elem())
		return
	}
	iv := v.Interface()
	if p, ok := iv.(*nn.Parameter[B]); ok {
		if p != nil {
			node.Params = append(node.Params, NamedParam[B]{Name: name, Param: p})
		}
		return
	}
	if raw, ok := iv.(*tensor.RawTensor); ok {
		if raw != nil {
			node.Buffers = append(node.Buffers, NamedBuffer{Name: name, Raw: raw})
		}
		return
	}
	if m, ok := iv.(nn.Module[B]); ok {
		if v.Kind() == reflect.Ptr && v.IsNil() {
			return
		}
		node.Children = append(node.Children, buildNode[B](name, m))
		return
	}
	if _, ok := iv.(paramHolder[B]); ok {
		if v.Kind() == reflect.Ptr && v.IsNil() {
			return
		}
		node.Children = append(node.Children, buildNode[B](name, iv))
	}
}

// typeName strips the pointer, package path and type arguments from a
// module's dynamic type: *nn.Linear[*cpu.Backend] becomes Linear.
func typeName(v any) string {
	s := reflect.TypeOf(v).String()
	s = strings.TrimPrefix(s, "*")
	if i := strings.IndexByte(s, '['); i >= 0 {
		s = s[:i]
	}
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		s = s[i+1:]
	}
	return s
}

// Walk calls fn for every node in depth-first order, parents first.
func (n *Node[B]) Walk(fn func(path string, node *Node[B])) {
	n.walk("", fn)
}

func (n *Node[B]) walk(prefix string, fn func(path string, node *Node[B])) {
	path := n.Name
	if prefix != "" {
		path = prefix + "." + n.Name
	}
	fn(path, n)
	for _, child := range n.Children {
		child.walk(path, fn)
	}
}

// NumParams returns the total element count of all parameters in the
// subtree.
func (n *Node[B]) NumParams() int {
	total := 0
	for _, p := range n.Params {
		total += p.Param.NumElements()
	}
	for _, child := range n.Children {
		total += child.NumParams()
	}
	return total
}

// NumBytes returns the total parameter byte size of the subtree.
func (n *Node[B]) NumBytes() int {
	total := 0
	for _, p := range n.Params {
		total += p.Param.Tensor().Raw().ByteSize()
	}
	for _, child := range n.Children {
		total += child.NumBytes()
	}
	return total
}
