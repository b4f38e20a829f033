package scene

import (
	"christmas-tree/core"
	"christmas-tree/math"
)

// Scene is the node graph plus camera for one view.
//
// Group holds everything that turns with the tree. Nodes that must stay
// upright in world space (snow) hang directly off Root.
type Scene struct {
	Root       *Node
	Group      *Node
	Camera     *Camera
	Background core.Color
}

func NewScene() *Scene {
	root := NewNode("Root")
	group := NewNode("Tree")
	root.AddChild(group)
	return &Scene{
		Root:       root,
		Group:      group,
		Camera:     NewCamera(stdFOV, 16.0/9.0, 0.1, 1000.0),
		Background: core.ColorBlack,
	}
}

// 60 degrees
const stdFOV = 1.0471976

func (s *Scene) SetCamera(camera *Camera) {
	s.Camera = camera
}

// SetGroupRotation applies pitch about X and yaw about Y to the tree group.
func (s *Scene) SetGroupRotation(yaw, pitch float32) {
	s.Group.SetRotation(math.Vec3{X: pitch, Y: yaw})
}

// GetVisibleNodes returns all visible nodes that carry a mesh or points,
// in traversal order. A hidden node hides its subtree.
func (s *Scene) GetVisibleNodes() []*Node {
	var visible []*Node
	var walk func(*Node)
	walk = func(n *Node) {
		if !n.Visible {
			return
		}
		if n.Mesh != nil || n.Points != nil {
			visible = append(visible, n)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(s.Root)
	return visible
}
