package results

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buffcomply/dashboard/models"
)

func treeJob() models.ScrapeJobResult {
	return models.ScrapeJobResult{
		StartURLs: []string{"https://a.com/"},
		Keywords:  []string{"bono"},
		Results: models.ResultSet{
			models.NewSuccessEntry("https://a.com/", findings("bono", false)),
			models.NewSuccessEntry("https://a.com/promos/bienvenida", findings("bono", true)),
			models.NewSuccessEntry("https://a.com/promos", findings("bono", false)),
			models.NewErrorEntry("https://a.com/caido", "timeout"),
			models.NewSuccessEntry("https://a.com/ayuda/", findings("bono", false)),
			models.NewSuccessEntry("https://cdn.b.com/x", findings("bono", true)),
		},
	}
}

func names(nodes []*TreeNode) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Name)
	}
	return out
}

func TestBuildTree(t *testing.T) {
	root := BuildTree(treeJob(), "", "")

	assert.Equal(t, "https://a.com/", root.Path)
	assert.True(t, root.Visited, "the seed itself was visited")
	assert.False(t, root.Matched)
	assert.Equal(t, []string{"promos", "ayuda", "cdn.b.com"}, names(root.Children))

	promos := root.Children[0]
	assert.Equal(t, "https://a.com/promos", promos.Path)
	assert.True(t, promos.Visited)
	require.Len(t, promos.Children, 1)

	leaf := promos.Children[0]
	assert.Equal(t, "https://a.com/promos/bienvenida", leaf.Path)
	assert.True(t, leaf.Matched)
	assert.Equal(t, findings("bono", true), leaf.Keywords)

	foreign := root.Children[2]
	assert.Equal(t, "https://cdn.b.com", foreign.Path)
	assert.False(t, foreign.Visited)
	require.Len(t, foreign.Children, 1)
	assert.Equal(t, "https://cdn.b.com/x", foreign.Children[0].Path)

	assert.Equal(t, 6, root.Count(), "error entries are left out")
}

func TestBuildTree_Search(t *testing.T) {
	root := BuildTree(treeJob(), "https://a.com", "BIENVENIDA")
	require.Equal(t, []string{"promos"}, names(root.Children))
	assert.Equal(t, []string{"bienvenida"}, names(root.Children[0].Children))

	root = BuildTree(treeJob(), "https://a.com", "nothing-here")
	assert.Empty(t, root.Children)
	assert.Equal(t, 1, root.Count())
}

func TestBuildTree_ExplicitBaseDoesNotMatchSiblingHosts(t *testing.T) {
	job := models.ScrapeJobResult{Results: models.ResultSet{
		models.NewSuccessEntry("https://a.com.evil/x", findings("bono", false)),
	}}
	root := BuildTree(job, "https://a.com", "")
	require.Len(t, root.Children, 1)
	assert.Equal(t, "a.com.evil", root.Children[0].Name)
}

func TestTreeNode_Walk(t *testing.T) {
	var visited []string
	var depths []int
	BuildTree(treeJob(), "", "ayuda").Walk(func(n *TreeNode, depth int) {
		visited = append(visited, n.Name)
		depths = append(depths, depth)
	})
	assert.Equal(t, []string{"https://a.com/", "ayuda"}, visited)
	assert.Equal(t, []int{0, 1}, depths)
}
