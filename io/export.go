// Package io writes a built tree generation out as a binary glTF file so
// it can be opened in other tools.
package io

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"christmas-tree/math"
	"christmas-tree/scene"
	"christmas-tree/tree"
)

// exporter tracks what has already been written so shared meshes and
// textures are stored once.
type exporter struct {
	doc       *gltf.Document
	accessors map[*scene.Mesh]gltf.PrimitiveAttributes
	indices   map[*scene.Mesh]int
	textures  map[*scene.Texture]int
}

// ExportGLB writes gen to path as a .glb. Every object becomes a node with
// its world transform; point clouds are exported as POINTS primitives with
// per-vertex color. Materials are approximated as unlit-looking PBR: the
// flash and twinkle animation is not representable and is left out.
func ExportGLB(gen *tree.Generation, path string) error {
	doc, err := Document(gen)
	if err != nil {
		return err
	}
	if err := gltf.SaveBinary(doc, path); err != nil {
		return fmt.Errorf("write glb %q: %w", path, err)
	}
	return nil
}

// Document builds the glTF document for gen without writing it.
func Document(gen *tree.Generation) (*gltf.Document, error) {
	if gen == nil || gen.Released() {
		return nil, fmt.Errorf("export: no live generation")
	}
	e := &exporter{
		doc:       gltf.NewDocument(),
		accessors: map[*scene.Mesh]gltf.PrimitiveAttributes{},
		indices:   map[*scene.Mesh]int{},
		textures:  map[*scene.Texture]int{},
	}
	e.doc.Asset.Generator = "xmastree"

	for _, obj := range gen.Objects {
		var mesh int
		var err error
		switch o := obj.(type) {
		case *tree.Foliage:
			mesh = e.points(o.Cloud)
		case *tree.Snow:
			mesh = e.points(o.Cloud)
		default:
			n := obj.SceneNode()
			mesh, err = e.surface(n.Name, n.Mesh, n.SurfaceMaterial())
		}
		if err != nil {
			return nil, err
		}
		n := obj.SceneNode()
		e.doc.Nodes = append(e.doc.Nodes, &gltf.Node{
			Name:   n.Name,
			Mesh:   gltf.Index(mesh),
			Matrix: columnMajor(n.GetWorldMatrix()),
		})
		e.doc.Scenes[0].Nodes = append(e.doc.Scenes[0].Nodes, len(e.doc.Nodes)-1)
	}
	return e.doc, nil
}

// columnMajor stores a row-vector matrix the way glTF reads a
// column-vector one: the transpose, column by column, is our row order.
func columnMajor(m math.Mat4) [16]float64 {
	var out [16]float64
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			out[i*4+j] = float64(m[i][j])
		}
	}
	return out
}

func (e *exporter) points(cloud *scene.PointCloud) int {
	pos := make([][3]float32, len(cloud.Points))
	col := make([][3]float32, len(cloud.Points))
	for i, p := range cloud.Points {
		pos[i] = [3]float32{p.Position.X, p.Position.Y, p.Position.Z}
		col[i] = [3]float32{p.Color.R, p.Color.G, p.Color.B}
	}
	attrs := gltf.PrimitiveAttributes{}
	if len(pos) > 0 {
		attrs[gltf.POSITION] = modeler.WritePosition(e.doc, pos)
		attrs[gltf.COLOR_0] = modeler.WriteColor(e.doc, col)
	}
	e.doc.Meshes = append(e.doc.Meshes, &gltf.Mesh{
		Name: cloud.Name,
		Primitives: []*gltf.Primitive{{
			Attributes: attrs,
			Mode:       gltf.PrimitivePoints,
		}},
	})
	return len(e.doc.Meshes) - 1
}

func (e *exporter) surface(name string, m *scene.Mesh, mat *scene.Material) (int, error) {
	attrs, ok := e.accessors[m]
	if !ok {
		pos := make([][3]float32, len(m.Vertices))
		nrm := make([][3]float32, len(m.Vertices))
		uv := make([][2]float32, len(m.Vertices))
		for i, v := range m.Vertices {
			pos[i] = [3]float32{v.Position.X, v.Position.Y, v.Position.Z}
			nrm[i] = [3]float32{v.Normal.X, v.Normal.Y, v.Normal.Z}
			uv[i] = [2]float32{v.UV.X, v.UV.Y}
		}
		attrs = gltf.PrimitiveAttributes{
			gltf.POSITION:   modeler.WritePosition(e.doc, pos),
			gltf.NORMAL:     modeler.WriteNormal(e.doc, nrm),
			gltf.TEXCOORD_0: modeler.WriteTextureCoord(e.doc, uv),
		}
		e.accessors[m] = attrs
		if len(m.Indices) > 0 {
			e.indices[m] = modeler.WriteIndices(e.doc, m.Indices)
		}
	}

	matIdx, err := e.material(mat)
	if err != nil {
		return 0, err
	}
	prim := &gltf.Primitive{
		Attributes: attrs,
		Material:   gltf.Index(matIdx),
	}
	if idx, ok := e.indices[m]; ok {
		prim.Indices = gltf.Index(idx)
	}
	e.doc.Meshes = append(e.doc.Meshes, &gltf.Mesh{Name: name, Primitives: []*gltf.Primitive{prim}})
	return len(e.doc.Meshes) - 1, nil
}

func (e *exporter) material(mat *scene.Material) (int, error) {
	a := mat.Albedo
	pbr := &gltf.PBRMetallicRoughness{
		BaseColorFactor: &[4]float64{float64(a.R), float64(a.G), float64(a.B), 1},
		MetallicFactor:  gltf.Float(0),
		RoughnessFactor: gltf.Float(0.8),
	}
	gm := &gltf.Material{
		Name:                 mat.Name,
		PBRMetallicRoughness: pbr,
		DoubleSided:          true,
	}
	switch mat.Shader {
	case scene.ShadeGlow:
		gm.AlphaMode = gltf.AlphaBlend
		gm.EmissiveFactor = [3]float64{float64(a.R), float64(a.G), float64(a.B)}
		pbr.BaseColorFactor[3] = 0.5
	case scene.ShadeStar:
		gm.EmissiveFactor = [3]float64{float64(a.R) * 0.5, float64(a.G) * 0.5, float64(a.B) * 0.5}
		pbr.MetallicFactor = gltf.Float(1)
		pbr.RoughnessFactor = gltf.Float(0.3)
	}
	if tex := mat.AlbedoTexture; tex != nil {
		ti, err := e.texture(tex)
		if err != nil {
			return 0, err
		}
		pbr.BaseColorFactor = &[4]float64{1, 1, 1, 1}
		pbr.BaseColorTexture = &gltf.TextureInfo{Index: ti}
	}
	e.doc.Materials = append(e.doc.Materials, gm)
	return len(e.doc.Materials) - 1, nil
}

func (e *exporter) texture(tex *scene.Texture) (int, error) {
	if ti, ok := e.textures[tex]; ok {
		return ti, nil
	}
	img := &image.RGBA{
		Pix:    tex.Pixels,
		Stride: tex.Width * 4,
		Rect:   image.Rect(0, 0, tex.Width, tex.Height),
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return 0, fmt.Errorf("encode texture %q: %w", tex.Name, err)
	}
	ii, err := modeler.WriteImage(e.doc, tex.Name, "image/png", &buf)
	if err != nil {
		return 0, fmt.Errorf("embed texture %q: %w", tex.Name, err)
	}
	e.doc.Textures = append(e.doc.Textures, &gltf.Texture{Source: gltf.Index(ii)})
	ti := len(e.doc.Textures) - 1
	e.textures[tex] = ti
	return ti, nil
}
