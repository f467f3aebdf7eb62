package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TreeNode is one row of a rendered tree: a record and the records nested under it.
type TreeNode struct {
	ID string
	// Label is the main text, e.g. a user's name or a course title.
	Label string
	// Badge is pre-styled text shown between the id and the label.
	Badge string
	// Detail is shown muted after the label.
	Detail   string
	Children []*TreeNode
}

// Tree rendering constants
const (
	treeBranch     = "├─ "
	treeLastBranch = "└─ "
	treeIndent     = 3 // width of connector (├─  or └─ )
	badgeWidth     = 12
	labelWidth     = 44
)

// calculateMaxDepth returns the maximum depth of the tree.
func calculateMaxDepth(nodes []*TreeNode) int {
	maxDepth := 0
	for _, node := range nodes {
		depth := 1 + calculateMaxDepth(node.Children)
		if depth > maxDepth {
			maxDepth = depth
		}
	}
	return maxDepth
}

// maxIDWidth returns the widest id in the tree.
func maxIDWidth(nodes []*TreeNode) int {
	w := 0
	for _, node := range nodes {
		if n := runeWidth(node.ID); n > w {
			w = n
		}
		if n := maxIDWidth(node.Children); n > w {
			w = n
		}
	}
	return w
}

// RenderTree renders the tree as an ASCII tree with styled columns.
func RenderTree(nodes []*TreeNode, headers [3]string) string {
	var sb strings.Builder

	// The ID column holds the connectors of the deepest level plus the widest id.
	treeColWidth := maxIDWidth(nodes) + 2
	if maxDepth := calculateMaxDepth(nodes); maxDepth > 1 {
		treeColWidth += (maxDepth - 1) * treeIndent
	}

	idStyle := lipgloss.NewStyle().Width(treeColWidth)
	badgeStyle := lipgloss.NewStyle().Width(badgeWidth)
	headerCol := lipgloss.NewStyle().Foreground(ColorMuted)

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		idStyle.Render(headerCol.Render(headers[0])),
		badgeStyle.Render(headerCol.Render(headers[1])),
		headerCol.Render(headers[2]),
	)
	sb.WriteString(header)
	sb.WriteString("\n")
	sb.WriteString(Muted.Render(strings.Repeat("─", treeColWidth+badgeWidth+labelWidth)))
	sb.WriteString("\n")

	renderNodes(&sb, nodes, 0, treeColWidth)

	return sb.String()
}

// renderNodes recursively renders tree nodes with proper indentation.
// depth 0 = root level (no connector), depth 1+ = nested (has connector)
func renderNodes(sb *strings.Builder, nodes []*TreeNode, depth int, treeColWidth int) {
	for i, node := range nodes {
		renderNode(sb, node, depth, i == len(nodes)-1, treeColWidth)
		renderNodes(sb, node.Children, depth+1, treeColWidth)
	}
}

func renderNode(sb *strings.Builder, node *TreeNode, depth int, isLast bool, treeColWidth int) {
	var indent, connector string
	if depth > 0 {
		if depth > 1 {
			indent = strings.Repeat("   ", depth-1)
		}
		if isLast {
			connector = treeLastBranch
		} else {
			connector = treeBranch
		}
	}

	idText := ID.Render(node.ID)
	if depth > 0 {
		idText = Secondary.Render(node.ID)
	}

	visualWidth := len(indent) + runeWidth(connector) + runeWidth(node.ID)
	padding := ""
	if treeColWidth > visualWidth {
		padding = strings.Repeat(" ", treeColWidth-visualWidth)
	}
	idCell := TreeLine.Render(indent+connector) + idText + padding

	label := truncateString(node.Label, labelWidth)
	if depth == 0 {
		label = Title.Render(label)
	}
	if node.Detail != "" {
		label += " " + Muted.Render(node.Detail)
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top,
		idCell,
		lipgloss.NewStyle().Width(badgeWidth).Render(node.Badge),
		label,
	)
	sb.WriteString(row)
	sb.WriteString("\n")
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

// runeWidth returns the visual width of a string (counting runes, not bytes).
// This assumes all runes are single-width (which works for our tree connectors).
func runeWidth(s string) int {
	return len([]rune(s))
}
