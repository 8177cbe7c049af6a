package shaderlink

import (
	"github.com/go-gl/mathgl/mgl32"
)

// PosColorVertex is the CPU layout for programs declaring a float32x3
// position and a normalized uint8x4 color.
type PosColorVertex struct {
	Position [3]float32
	Color    [4]uint8
}

// PosUVVertex is the CPU layout for textured programs: float32x3 position,
// float32x2 texture coordinate.
type PosUVVertex struct {
	Position [3]float32
	UV       [2]float32
}

// QuadMesh builds a single quad in the XY plane, centered on the origin,
// wound counter-clockwise.
func QuadMesh(size float32, color [4]uint8) ([]PosColorVertex, []uint16) {
	h := size * 0.5
	vertices := []PosColorVertex{
		{Position: [3]float32{-h, -h, 0}, Color: color},
		{Position: [3]float32{h, -h, 0}, Color: color},
		{Position: [3]float32{h, h, 0}, Color: color},
		{Position: [3]float32{-h, h, 0}, Color: color},
	}
	indices := []uint16{0, 1, 2, 2, 3, 0}
	return vertices, indices
}

// CubeMesh builds an axis-aligned cube centered on the origin with one flat
// color per face, 24 vertices so faces don't share colors.
func CubeMesh(size float32, faceColors [6][4]uint8) ([]PosColorVertex, []uint16) {
	h := size * 0.5
	corners := [][4]mgl32.Vec3{
		// +Z
		{{-h, -h, h}, {h, -h, h}, {h, h, h}, {-h, h, h}},
		// -Z
		{{h, -h, -h}, {-h, -h, -h}, {-h, h, -h}, {h, h, -h}},
		// +X
		{{h, -h, h}, {h, -h, -h}, {h, h, -h}, {h, h, h}},
		// -X
		{{-h, -h, -h}, {-h, -h, h}, {-h, h, h}, {-h, h, -h}},
		// +Y
		{{-h, h, h}, {h, h, h}, {h, h, -h}, {-h, h, -h}},
		// -Y
		{{-h, -h, -h}, {h, -h, -h}, {h, -h, h}, {-h, -h, h}},
	}

	var vertices []PosColorVertex
	var indices []uint16
	for face, quad := range corners {
		base := uint16(len(vertices))
		for _, c := range quad {
			vertices = append(vertices, PosColorVertex{
				Position: [3]float32{c.X(), c.Y(), c.Z()},
				Color:    faceColors[face],
			})
		}
		indices = append(indices, base, base+1, base+2, base+2, base+3, base)
	}
	return vertices, indices
}

// TransformPositions applies a model matrix to every vertex position in
// place. Useful for baking static transforms into a mesh before upload.
func TransformPositions(vertices []PosColorVertex, m mgl32.Mat4) {
	for i := range vertices {
		p := vertices[i].Position
		out := mgl32.TransformCoordinate(mgl32.Vec3{p[0], p[1], p[2]}, m)
		vertices[i].Position = [3]float32{out.X(), out.Y(), out.Z()}
	}
}

// ModelMatrix composes translate * rotate-about-Y * scale.
func ModelMatrix(position mgl32.Vec3, scale mgl32.Vec3, yaw float32) mgl32.Mat4 {
	return mgl32.Translate3D(position.X(), position.Y(), position.Z()).
		Mul4(mgl32.HomogRotate3DY(yaw)).
		Mul4(mgl32.Scale3D(scale.X(), scale.Y(), scale.Z()))
}

// Camera is a simple look-at perspective camera. Fov is in radians.
type Camera struct {
	Position mgl32.Vec3
	LookAt   mgl32.Vec3
	Up       mgl32.Vec3
	Fov      float32
	Aspect   float32
	Near     float32
	Far      float32
}

func NewCamera(position mgl32.Vec3, aspect float32) Camera {
	return Camera{
		Position: position,
		LookAt:   mgl32.Vec3{0, 0, 0},
		Up:       mgl32.Vec3{0, 1, 0},
		Fov:      mgl32.DegToRad(60),
		Aspect:   aspect,
		Near:     0.1,
		Far:      1000.0,
	}
}

func (c Camera) ViewProjection() mgl32.Mat4 {
	view := mgl32.LookAtV(
		c.Position,
		c.LookAt,
		c.Up,
	)
	projection := mgl32.Perspective(
		c.Fov,
		c.Aspect,
		c.Near,
		c.Far,
	)
	return projection.Mul4(view)
}
