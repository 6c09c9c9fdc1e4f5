package mjml

import (
	"mjmlc/utils/debug"
)

// Dump returns indented outline of the tree, used by validate command and in
// tests to compare trees.
func Dump(root Node) string {
	tw := debug.NewTreeWriter()
	dumpNode(tw, 0, root)
	return tw.String()
}

func dumpNode(tw *debug.TreeWriter, depth int, n Node) {
	switch n := n.(type) {
	case *Element:
		tw.Line(depth, "%s", n.Tag)
		tw.Attrs(depth+1, n.Attrs.All())
		for _, c := range n.Children {
			dumpNode(tw, depth+1, c)
		}
	case *Raw:
		if n.SelfClosing {
			tw.Line(depth, "<%s/>", n.Name)
		} else {
			tw.Line(depth, "<%s>", n.Name)
		}
		tw.Attrs(depth+1, n.Attrs.All())
		for _, c := range n.Children {
			dumpNode(tw, depth+1, c)
		}
	case *Text:
		tw.TextBlock(depth, "text", n.Value)
	case *Comment:
		tw.TextBlock(depth, "comment", n.Value)
	}
}
