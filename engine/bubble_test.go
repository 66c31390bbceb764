package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestBubble() *BubbleNode {
	root := &BubbleNode{ID: 1, Type: TypeFolder, Role: RoleViewable}
	a := root.AddChild(&BubbleNode{ID: 2, GUID: "a", Name: "Level 1", Type: TypeGeometry, Role: Role3D})
	a.AddChild(&BubbleNode{ID: 3, GUID: "a-res", Type: TypeResource, Role: RoleGraphics})
	root.AddChild(&BubbleNode{ID: 4, GUID: "thumb", Type: TypeResource, Role: RoleThumbnail})
	b := root.AddChild(&BubbleNode{ID: 5, GUID: "b", Name: "Plan", Type: TypeGeometry, Role: Role2D})
	b.AddChild(&BubbleNode{ID: 6, GUID: "b-res", Type: TypeResource, Role: RoleGraphics})
	return root
}

func TestBubbleSearchPreservesOrder(t *testing.T) {
	root := newTestBubble()

	geometry := root.Search(BubbleFilter{Type: TypeGeometry})
	if assert.Len(t, geometry, 2) {
		assert.Equal(t, "a", geometry[0].GUID)
		assert.Equal(t, "b", geometry[1].GUID)
	}

	assert.Len(t, root.Search(BubbleFilter{Type: TypeGeometry, Role: Role2D}), 1)
	assert.Len(t, root.Search(BubbleFilter{Name: "Plan"}), 1)
	assert.Len(t, root.Search(BubbleFilter{}), 6)
}

func TestBubbleFindByGUID(t *testing.T) {
	root := newTestBubble()

	n := root.FindByGUID("b-res")
	if assert.NotNil(t, n) {
		assert.Equal(t, 6, n.ID)
		assert.Equal(t, "b", n.Parent.GUID)
		assert.Empty(t, n.Children)
	}
	assert.Nil(t, root.FindByGUID("missing"))
	assert.Equal(t, "a-res", root.Children[0].Resource(RoleGraphics).GUID)
	assert.Nil(t, root.Children[0].Resource(RoleThumbnail))
}

func TestLoadErrorMessage(t *testing.T) {
	err := &LoadError{Code: ErrorNotFound, Message: "no such document"}
	assert.Equal(t, "error code 5 (not found): no such document", err.Error())
	assert.Equal(t, "geometry-loaded", GeometryLoaded.String())
}
