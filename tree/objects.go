package tree

import (
	"christmas-tree/math"
	"christmas-tree/scene"
)

// Object is one renderable part of a generation. The concrete kinds are
// *Foliage, *Star, *StarGlow, *Ornament, *OrnamentGlow and *Snow; per-frame
// code dispatches on them with a type switch.
type Object interface {
	SceneNode() *scene.Node
	object()
}

// Foliage is the twinkling particle cloud that forms the tree.
type Foliage struct {
	Node  *scene.Node
	Cloud *scene.PointCloud
}

// Star is the extruded star on top of the tree.
type Star struct {
	Node     *scene.Node
	Material *scene.Material
}

// StarGlow is the additive halo quad behind the star.
type StarGlow struct {
	Node     *scene.Node
	Material *scene.Material
}

// Shape identifies how an ornament is drawn.
type Shape int

const (
	ShapeFrame Shape = iota
	ShapeSphere
	ShapeRoundedBox
	ShapeCylinder
	ShapeCone
	ShapeOctahedron
	ShapeTorus
	ShapeStar
)

// solidShapes is the order ornaments cycle through in the shapes style.
var solidShapes = [...]Shape{
	ShapeSphere,
	ShapeRoundedBox,
	ShapeCylinder,
	ShapeCone,
	ShapeOctahedron,
	ShapeTorus,
	ShapeStar,
}

func (s Shape) String() string {
	switch s {
	case ShapeFrame:
		return "frame"
	case ShapeSphere:
		return "sphere"
	case ShapeRoundedBox:
		return "rounded-box"
	case ShapeCylinder:
		return "cylinder"
	case ShapeCone:
		return "cone"
	case ShapeOctahedron:
		return "octahedron"
	case ShapeTorus:
		return "torus"
	case ShapeStar:
		return "star"
	}
	return "unknown"
}

// Ornament is a clickable decoration bound to a media URL.
type Ornament struct {
	Node     *scene.Node
	Material *scene.Material
	Index    int
	URL      string
	Shape    Shape
	// Rotation is the placement rotation; spin is applied on top of it.
	Rotation  math.Vec3
	SpinPhase float32
}

// Solid reports whether the ornament is one of the procedural solids.
func (o *Ornament) Solid() bool { return o.Shape != ShapeFrame }

// HitMesh is the geometry picking tests against.
func (o *Ornament) HitMesh() *scene.Mesh { return o.Node.Mesh }

// OrnamentGlow is the flash halo behind ornament Index. Never a hit target.
type OrnamentGlow struct {
	Node     *scene.Node
	Material *scene.Material
	Index    int
}

// Snow is the falling snow layer. It lives outside the rotating group.
type Snow struct {
	Node  *scene.Node
	Cloud *scene.PointCloud
}

func (o *Foliage) SceneNode() *scene.Node      { return o.Node }
func (o *Star) SceneNode() *scene.Node         { return o.Node }
func (o *StarGlow) SceneNode() *scene.Node     { return o.Node }
func (o *Ornament) SceneNode() *scene.Node     { return o.Node }
func (o *OrnamentGlow) SceneNode() *scene.Node { return o.Node }
func (o *Snow) SceneNode() *scene.Node         { return o.Node }

func (*Foliage) object()      {}
func (*Star) object()         {}
func (*StarGlow) object()     {}
func (*Ornament) object()     {}
func (*OrnamentGlow) object() {}
func (*Snow) object()         {}
