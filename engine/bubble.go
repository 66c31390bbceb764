package engine

const (
	TypeFolder    = "folder"
	TypeGeometry  = "geometry"
	TypeResource  = "resource"
	TypeView      = "view"
	RoleViewable  = "viewable"
	Role3D        = "3d"
	Role2D        = "2d"
	RoleGraphics  = "graphics"
	RoleThumbnail = "thumbnail"
)

// BubbleNode is a node of the viewable hierarchy of a document.
type BubbleNode struct {
	ID       int
	Parent   *BubbleNode
	Children []*BubbleNode

	GUID string
	Name string
	Role string
	Type string
	Mime string
	// Path locates the node's resource inside the document source.
	Path string
	// Scene selects a scene of a multi-scene resource.
	Scene int
}

// BubbleFilter matches nodes by non-empty fields.
type BubbleFilter struct {
	Type string
	Role string
	Name string
}

func (f *BubbleFilter) match(n *BubbleNode) bool {
	return (f.Type == "" || f.Type == n.Type) &&
		(f.Role == "" || f.Role == n.Role) &&
		(f.Name == "" || f.Name == n.Name)
}

func (n *BubbleNode) AddChild(c *BubbleNode) *BubbleNode {
	c.Parent = n
	n.Children = append(n.Children, c)
	return c
}

// Walk visits n and its descendants in pre-order until fn returns false.
func (n *BubbleNode) Walk(fn func(*BubbleNode) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Search returns the matching nodes in pre-order, n included.
func (n *BubbleNode) Search(filter BubbleFilter) []*BubbleNode {
	var found []*BubbleNode
	n.Walk(func(c *BubbleNode) bool {
		if filter.match(c) {
			found = append(found, c)
		}
		return true
	})
	return found
}

func (n *BubbleNode) FindByGUID(guid string) *BubbleNode {
	var found *BubbleNode
	n.Walk(func(c *BubbleNode) bool {
		if c.GUID == guid {
			found = c
			return false
		}
		return true
	})
	return found
}

// Resource returns the first resource with the given role in the subtree of n.
func (n *BubbleNode) Resource(role string) *BubbleNode {
	for _, r := range n.Search(BubbleFilter{Type: TypeResource, Role: role}) {
		return r
	}
	return nil
}
