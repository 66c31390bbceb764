package engine

type Event int

const (
	ObjectTreeCreated Event = iota
	GeometryLoaded
	ModelUnloaded
)

func (e Event) String() string {
	switch e {
	case ObjectTreeCreated:
		return "object-tree-created"
	case GeometryLoaded:
		return "geometry-loaded"
	case ModelUnloaded:
		return "model-unloaded"
	}
	return "unknown"
}
