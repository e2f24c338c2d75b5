package state

import (
	"fmt"
	"strings"
)

// Dump renders the named nodes under node, one per line, indented by depth:
//
//	program [0, 0] - [1, 0]
//	  lexical_declaration [0, 0] - [0, 11]
//	    declarator: variable_declarator [0, 4] - [0, 10]
func Dump(node Node) string {
	var sb strings.Builder

	dump(&sb, node, "", 0)

	return sb.String()
}

func dump(sb *strings.Builder, node Node, field string, level int) {
	if node.IsZero() {
		return
	}

	next := level

	if node.IsNamed() {
		start := node.StartPoint()
		end := node.EndPoint()

		sb.WriteString(strings.Repeat("  ", level))

		if field != "" {
			sb.WriteString(field + ": ")
		}

		kind := node.Kind()

		if node.IsMissing() {
			kind = "MISSING " + kind
		}

		fmt.Fprintf(sb, "%s [%d, %d] - [%d, %d]\n", kind, start.Row, start.Column, end.Row, end.Column)

		next++
	}

	for i := range node.ChildCount() {
		dump(sb, node.Child(i), node.FieldNameForChild(i), next)
	}
}
