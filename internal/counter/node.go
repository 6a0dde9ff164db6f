// =============================================================================
// COUNTER Report Generator - Node Contract and Rendering
// =============================================================================
//
// Every report entity implements Node. Render produces a detached element
// subtree named after the schema element; parents append their children's
// subtrees in schema order. ToText and Fragment drive the xmlwriter module.
//
// Nodes are immutable once constructed, so rendering never validates and
// repeated calls produce identical output.
//
// =============================================================================

package counter

import (
	"github.com/ginjaninja78/counter-reports/internal/xmlwriter"
)

// Namespace is the COUNTER XML namespace stamped on the Reports element.
const Namespace = "http://www.niso.org/schemas/counter"

// SchemaLocation is the schema hint paired with Namespace.
const SchemaLocation = "http://www.niso.org/schemas/sushi/counter4_1.xsd"

const xsiNamespace = "http://www.w3.org/2001/XMLSchema-instance"

// dateFormat is the calendar date layout used for every rendered date.
const dateFormat = "2006-01-02"

// Node is a renderable report entity.
type Node interface {
	// Render returns the node as a standalone element subtree.
	Render() *xmlwriter.Element
}

// ToText renders n as an indented, UTF-8 declared XML document.
func ToText(n Node) (string, error) {
	return render(n, xmlwriter.DefaultOptions())
}

// Fragment renders n compactly, without an XML declaration.
func Fragment(n Node) (string, error) {
	return render(n, xmlwriter.FragmentOptions())
}

func render(n Node, options xmlwriter.Options) (string, error) {
	if n == nil || isNilPointer(n) {
		return "", renderError(typeName(n), "cannot render a nil node")
	}
	element := n.Render()
	if element == nil {
		return "", renderError(typeName(n), "node does not render an element")
	}
	out, err := xmlwriter.MarshalString(element, options)
	if err != nil {
		return "", renderError(element.Name(), err.Error())
	}
	return out, nil
}

// renderAll appends each node's subtree to parent in order.
func renderAll[T Node](parent *xmlwriter.Element, nodes []T) {
	for _, n := range nodes {
		parent.Append(n.Render())
	}
}
