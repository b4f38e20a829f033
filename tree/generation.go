package tree

import (
	"christmas-tree/config"
	"christmas-tree/scene"
)

// Releaser frees GPU-side resources. The OpenGL backend implements it.
type Releaser interface {
	ReleaseMesh(m *scene.Mesh)
	ReleaseTexture(t *scene.Texture)
	ReleasePoints(c *scene.PointCloud)
}

// Generation owns everything one Build produced. It must be released
// before the next generation replaces it.
type Generation struct {
	// Config is the sanitized snapshot the generation was built from.
	Config config.Config

	Objects   []Object
	Foliage   *Foliage
	Star      *Star
	StarGlow  *StarGlow
	Ornaments []*Ornament
	Glows     []*OrnamentGlow
	Snow      *Snow // nil when snow is disabled

	meshes   []*scene.Mesh
	clouds   []*scene.PointCloud
	textures map[string]*scene.Texture
	attached *scene.Scene
	released bool
}

// Attach hangs the generation's nodes on s: snow under the root, the rest
// under the rotating tree group.
func (g *Generation) Attach(s *scene.Scene) {
	if g.attached != nil {
		g.Detach()
	}
	for _, obj := range g.Objects {
		if _, ok := obj.(*Snow); ok {
			s.Root.AddChild(obj.SceneNode())
			continue
		}
		s.Group.AddChild(obj.SceneNode())
	}
	g.attached = s
}

// Detach removes the generation's nodes from the scene it was attached to.
func (g *Generation) Detach() {
	if g.attached == nil {
		return
	}
	for _, obj := range g.Objects {
		n := obj.SceneNode()
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	}
	g.attached = nil
}

// Release detaches the generation and hands every mesh, texture and point
// buffer it owns to r. Shared resources are released once; calling Release
// again is a no-op.
func (g *Generation) Release(r Releaser) {
	if g == nil || g.released {
		return
	}
	g.Detach()
	for _, m := range g.meshes {
		r.ReleaseMesh(m)
	}
	for _, tex := range g.textures {
		r.ReleaseTexture(tex)
	}
	for _, c := range g.clouds {
		r.ReleasePoints(c)
	}
	g.meshes, g.clouds, g.textures = nil, nil, nil
	g.released = true
}

// Released reports whether Release has run.
func (g *Generation) Released() bool { return g.released }

// Meshes returns the meshes the generation owns.
func (g *Generation) Meshes() []*scene.Mesh { return g.meshes }

// Textures returns the textures the generation owns, keyed by media URL.
func (g *Generation) Textures() map[string]*scene.Texture { return g.textures }

// OrnamentByNode finds the ornament that owns n.
func (g *Generation) OrnamentByNode(n *scene.Node) (*Ornament, bool) {
	for _, o := range g.Ornaments {
		if o.Node == n {
			return o, true
		}
	}
	return nil, false
}
