package workspace

// RowKind says what a visible tree row shows.
type RowKind int

const (
	RowNode    RowKind = iota // a file or folder
	RowLoading                // placeholder under an expanded folder still loading
	RowFailed                 // placeholder under an expanded folder whose read failed
	RowEmpty                  // placeholder under an expanded, loaded, empty folder
)

// Row is one line of the rendered tree.
type Row struct {
	Kind     RowKind
	Node     *FileNode // the node, or the folder a placeholder belongs to
	Depth    int       // 0 for the root's children
	Expanded bool
	Active   bool // node is the active tab's file
}

// Rows flattens the tree into visible rows. It is the one place expanded
// state and load state are reconciled: a folder shows children only when it
// is both expanded and loaded; otherwise a placeholder row stands in.
func (s *State) Rows() []Row {
	if s.root == nil {
		return nil
	}
	var rows []Row
	var walk func(n *FileNode, depth int)
	walk = func(n *FileNode, depth int) {
		for _, c := range n.Children {
			row := Row{Kind: RowNode, Node: c, Depth: depth, Active: c.Path == s.activeTabID}
			if !c.IsFolder() {
				rows = append(rows, row)
				continue
			}
			row.Expanded = s.expanded[c.Path]
			rows = append(rows, row)
			if row.Expanded {
				appendContents(&rows, c, depth+1, walk)
			}
		}
	}
	appendContents(&rows, s.root, 0, walk)
	return rows
}

func appendContents(rows *[]Row, n *FileNode, depth int, walk func(*FileNode, int)) {
	switch n.Load {
	case LoadLoaded:
		if len(n.Children) == 0 {
			*rows = append(*rows, Row{Kind: RowEmpty, Node: n, Depth: depth})
			return
		}
		walk(n, depth)
	case LoadFailed:
		*rows = append(*rows, Row{Kind: RowFailed, Node: n, Depth: depth})
	default:
		*rows = append(*rows, Row{Kind: RowLoading, Node: n, Depth: depth})
	}
}

// IndexOf returns the row index showing the node at path, or -1.
func IndexOf(rows []Row, path string) int {
	for i, r := range rows {
		if r.Kind == RowNode && r.Node.Path == path {
			return i
		}
	}
	return -1
}
