package bodmas

import (
	"strconv"
	"strings"
)

// node is a node in the abstract syntax tree of an expression.
type node struct {
	kind nodeKind

	// text is the literal of a number.
	text string
	// pos is the column of the token that created the node.
	pos int

	left  *node
	right *node
}

type nodeKind int8

const (
	nodeNone nodeKind = iota

	nodeNum // push num

	nodeNeg  // evaluate left, then negate
	nodePlus // evaluate left
	nodeAdd  // evaluate left, add right
	nodeSub  // evaluate left, sub right
	nodeMul  // evaluate left, mul right
	nodeDiv  // evaluate left, div by right
	nodePow  // evaluate left, exp by right
)

var nodeNames = [...]string{
	nodeNone: "None",
	nodeNum:  "Num",
	nodeNeg:  "Neg",
	nodePlus: "Plus",
	nodeAdd:  "Add",
	nodeSub:  "Sub",
	nodeMul:  "Mul",
	nodeDiv:  "Div",
	nodePow:  "Pow",
}

func (k nodeKind) String() string {
	if k < 0 || int(k) >= len(nodeNames) {
		return "nodeKind(" + strconv.Itoa(int(k)) + ")"
	}
	return nodeNames[k]
}

// binops maps binary node kinds to the operator text used to format them.
var binops = [...]string{
	nodeAdd: " + ",
	nodeSub: " - ",
	nodeMul: " * ",
	nodeDiv: " / ",
	nodePow: " ** ",
}

func (n *node) String() string {
	var b strings.Builder
	n.fmt(&b)
	return b.String()
}

// fmt writes n with every operation in brackets, so that the result parses
// back to the same tree.
func (n *node) fmt(b *strings.Builder) {
	switch n.kind {
	case nodeNone:
		// Invalid nodes use invalid characters.
		b.WriteString("($")
		if n.left != nil {
			n.left.fmt(b)
		}
		b.WriteByte('#')
		if n.right != nil {
			n.right.fmt(b)
		}
		b.WriteString("$)")
	case nodeNum:
		b.WriteString(n.text)
	case nodeNeg:
		b.WriteString("(-")
		n.left.fmt(b)
		b.WriteByte(')')
	case nodePlus:
		b.WriteString("(+")
		n.left.fmt(b)
		b.WriteByte(')')
	case nodeAdd, nodeSub, nodeMul, nodeDiv, nodePow:
		b.WriteByte('(')
		n.left.fmt(b)
		b.WriteString(binops[n.kind])
		n.right.fmt(b)
		b.WriteByte(')')
	default:
		panic("bodmas: invalid node kind " + n.kind.String() + " after writing " + b.String())
	}
}
