package results

import (
	"strings"

	"buffcomply/dashboard/models"
)

// TreeNode is one path segment of the URLs visited by a job. Visited nodes carry
// the keyword findings of their URL.
type TreeNode struct {
	Name     string          `json:"name"`
	Path     string          `json:"path"`
	Visited  bool            `json:"visited"`
	Matched  bool            `json:"matched"`
	Keywords models.Findings `json:"keywords,omitempty"`
	Children []*TreeNode     `json:"children"`

	index map[string]*TreeNode
}

func newTreeNode(name, path string) *TreeNode {
	return &TreeNode{Name: name, Path: path, Children: []*TreeNode{}, index: make(map[string]*TreeNode)}
}

func (n *TreeNode) child(name, path string) *TreeNode {
	if c, ok := n.index[name]; ok {
		return c
	}
	c := newTreeNode(name, path)
	n.index[name] = c
	n.Children = append(n.Children, c)
	return c
}

// Count is the number of nodes in the subtree, n included.
func (n *TreeNode) Count() int {
	total := 1
	for _, c := range n.Children {
		total += c.Count()
	}
	return total
}

// Walk calls fn on every node depth first, parents before children.
func (n *TreeNode) Walk(fn func(node *TreeNode, depth int)) {
	n.walk(fn, 0)
}

func (n *TreeNode) walk(fn func(*TreeNode, int), depth int) {
	fn(n, depth)
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}

// BuildTree arranges the successful entries of job by path segment under base. An
// empty base means the first seed URL. URLs outside base hang from the root by host.
// Children keep the order in which their URLs were visited.
//
// A non-empty search keeps the nodes whose path contains it (case-insensitive) along
// with their ancestors. The root is always returned.
func BuildTree(job models.ScrapeJobResult, base, search string) *TreeNode {
	base = strings.TrimSpace(base)
	if base == "" && len(job.StartURLs) > 0 {
		base = job.StartURLs[0]
	}
	root := newTreeNode(base, base)
	trimmed := strings.TrimRight(base, "/")

	for _, entry := range job.Results {
		if entry.IsError() {
			continue
		}
		prefix, segments := splitUnder(entry.URL, trimmed)
		node := root
		for i, seg := range segments {
			node = node.child(seg, prefix+strings.Join(segments[:i+1], "/"))
		}
		node.Visited = true
		node.Keywords = entry.Keywords
		node.Matched = entry.MatchCount() > 0
	}

	if search = strings.ToLower(strings.TrimSpace(search)); search != "" {
		root.prune(search)
	}
	return root
}

// splitUnder returns the path segments of rawURL below base and the prefix that
// rebuilds their full URLs. URLs outside base are split after their scheme.
func splitUnder(rawURL, base string) (string, []string) {
	u := strings.TrimSpace(rawURL)
	if base != "" && strings.HasPrefix(u, base) {
		rest := u[len(base):]
		if rest == "" || rest[0] == '/' {
			return base + "/", segmentsOf(rest)
		}
	}
	prefix := ""
	if i := strings.Index(u, "://"); i >= 0 {
		prefix, u = u[:i+3], u[i+3:]
	}
	return prefix, segmentsOf(u)
}

func segmentsOf(path string) []string {
	var out []string
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

// prune drops the children whose subtree never mentions needle and reports whether
// n itself should stay.
func (n *TreeNode) prune(needle string) bool {
	kept := n.Children[:0]
	for _, c := range n.Children {
		if c.prune(needle) {
			kept = append(kept, c)
		} else {
			delete(n.index, c.Name)
		}
	}
	n.Children = kept
	return len(kept) > 0 || strings.Contains(strings.ToLower(n.Path), needle)
}
