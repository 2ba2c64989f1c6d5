package svgdoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze(t *testing.T) {
	doc, err := Parse([]byte(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:inkscape="http://www.inkscape.org/namespaces/inkscape">
  <rect id="loose"/>
  <g inkscape:label="holes">
    <rect/><rect/><path/>
    <g inkscape:label="inner">
      <circle/>
    </g>
  </g>
  <g id="unnamed-but-has-id">
    <text/>
  </g>
</svg>`))
	require.NoError(t, err)

	stats := Analyze(doc)
	require.Len(t, stats.RootGroups, 2)

	holes := stats.RootGroups[0]
	assert.Equal(t, "holes", holes.Name)
	assert.Equal(t, 0, holes.Depth)
	assert.Equal(t, map[string]int{"rect": 2, "path": 1}, holes.ElementCounts)
	assert.Equal(t, 3, holes.TotalElements())
	assert.Equal(t, 4, holes.TotalElementsRecursive())

	require.Len(t, holes.Children, 1)
	inner := holes.Children[0]
	assert.Equal(t, "inner", inner.Name)
	assert.Equal(t, 1, inner.Depth)
	assert.Equal(t, map[string]int{"circle": 1}, inner.ElementCounts)

	// id stands in for a missing inkscape:label
	assert.Equal(t, "unnamed-but-has-id", stats.RootGroups[1].Name)

	assert.Equal(t, map[string]int{"rect": 1}, stats.UngroupedCounts)
	assert.Equal(t, 6, stats.TotalElements())
}

func TestAnalyzeAnonymousGroupsFold(t *testing.T) {
	doc, err := Parse([]byte(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:inkscape="http://www.inkscape.org/namespaces/inkscape">
  <g inkscape:label="outer">
    <g>
      <rect/>
      <g inkscape:label="named"><rect/></g>
    </g>
  </g>
  <g>
    <path/>
    <g inkscape:label="promoted"><line/></g>
  </g>
</svg>`))
	require.NoError(t, err)

	stats := Analyze(doc)
	require.Len(t, stats.RootGroups, 2)

	outer := stats.RootGroups[0]
	assert.Equal(t, "outer", outer.Name)
	// The anonymous wrapper's rect folds into outer.
	assert.Equal(t, map[string]int{"rect": 1}, outer.ElementCounts)
	require.Len(t, outer.Children, 1)
	assert.Equal(t, "named", outer.Children[0].Name)

	// An anonymous root group promotes named children to root level and
	// counts its direct elements as ungrouped.
	assert.Equal(t, "promoted", stats.RootGroups[1].Name)
	assert.Equal(t, map[string]int{"path": 1}, stats.UngroupedCounts)
}
