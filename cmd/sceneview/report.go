package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/binzume/sceneview/engine"
	"github.com/binzume/sceneview/geom"
	"github.com/binzume/sceneview/viewer"
)

func printViewable(w io.Writer, node *engine.BubbleNode) error {
	_, err := fmt.Fprintf(w, "viewable: %s (guid=%s role=%s)\n", node.Name, node.GUID, node.Role)
	return err
}

func printTree(ctx context.Context, w io.Writer, v *viewer.Viewer) error {
	nodes, err := v.ListNodes(ctx)
	if err != nil {
		return err
	}
	leaves, err := v.ListLeafNodes(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "nodes: %d leaves: %d\n", len(nodes), len(leaves))

	var tree engine.ObjectTree
	v.Engine().Model().GetObjectTree(func(t engine.ObjectTree) { tree = t }, func(engine.ErrorCode, string) {})
	if tree == nil {
		return nil
	}
	var walk func(id, depth int)
	walk = func(id, depth int) {
		fmt.Fprintf(w, "%s%d %s\n", strings.Repeat("  ", depth), id, tree.NodeName(id))
		tree.EnumNodeChildren(id, func(child int) { walk(child, depth+1) }, false)
	}
	walk(tree.RootID(), 0)
	return nil
}

func printFragments(ctx context.Context, w io.Writer, v *viewer.Viewer) error {
	frags, err := v.ListFragments(ctx)
	if err != nil {
		return err
	}
	fl := v.Engine().Model().FragmentList()
	for _, id := range frags {
		b, err := v.FragmentBounds(id)
		if err != nil {
			return err
		}
		dbID, _ := fl.DBID(id)
		aux, err := v.FragmentAuxTransform(id)
		if err != nil {
			return err
		}
		m, err := v.FragmentTransform(id)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "fragment %d node=%d min=(%.3g %.3g %.3g) max=(%.3g %.3g %.3g) offset=(%.3g %.3g %.3g) %s\n",
			id, dbID, b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z,
			aux.Position.X, aux.Position.Y, aux.Position.Z, formatTransform(m))
	}
	return nil
}

// formatTransform prints m as position, XYZ Euler rotation in degrees and scale.
func formatTransform(m *geom.Matrix4) string {
	pos, rot, scale := m.Decompose()
	e := geom.NewEulerFromQuaternion(rot, geom.RotationOrderXYZ)
	deg := e.Degrees()
	return fmt.Sprintf("pos=(%.3g %.3g %.3g) rot%v=(%.3g %.3g %.3g) scale=(%.3g %.3g %.3g)",
		pos.X, pos.Y, pos.Z, e.Order, deg.X, deg.Y, deg.Z, scale.X, scale.Y, scale.Z)
}

func printHits(w io.Writer, hits []*engine.Intersection) {
	if len(hits) == 0 {
		fmt.Fprintln(w, "no hit")
		return
	}
	for _, h := range hits {
		fmt.Fprintf(w, "hit node=%d fragment=%d distance=%.4g point=(%.3g %.3g %.3g)\n",
			h.DBID, h.FragID, h.Distance, h.Point.X, h.Point.Y, h.Point.Z)
	}
}
