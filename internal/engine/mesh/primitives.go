package mesh

import "github.com/Faultbox/prism/internal/engine/gpu"

// CubeData returns a unit cube scaled by size, centered on the origin, with
// per-face normals and texcoords.
func CubeData(size float32) gpu.MeshData {
	h := size / 2
	// normal, then the four corners counter-clockwise seen from outside.
	faces := [6]struct {
		n       [3]float32
		corners [4][3]float32
	}{
		{[3]float32{1, 0, 0}, [4][3]float32{{h, -h, h}, {h, -h, -h}, {h, h, -h}, {h, h, h}}},
		{[3]float32{-1, 0, 0}, [4][3]float32{{-h, -h, -h}, {-h, -h, h}, {-h, h, h}, {-h, h, -h}}},
		{[3]float32{0, 1, 0}, [4][3]float32{{-h, h, h}, {h, h, h}, {h, h, -h}, {-h, h, -h}}},
		{[3]float32{0, -1, 0}, [4][3]float32{{-h, -h, -h}, {h, -h, -h}, {h, -h, h}, {-h, -h, h}}},
		{[3]float32{0, 0, 1}, [4][3]float32{{-h, -h, h}, {h, -h, h}, {h, h, h}, {-h, h, h}}},
		{[3]float32{0, 0, -1}, [4][3]float32{{h, -h, -h}, {-h, -h, -h}, {-h, h, -h}, {h, h, -h}}},
	}
	uvs := [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

	data := gpu.MeshData{
		Vertices:   make([]float32, 0, 6*4*8),
		Indices:    make([]uint32, 0, 6*6),
		Attributes: Layout,
	}
	for f, face := range faces {
		for i, c := range face.corners {
			data.Vertices = append(data.Vertices,
				c[0], c[1], c[2],
				face.n[0], face.n[1], face.n[2],
				uvs[i][0], uvs[i][1],
			)
		}
		base := uint32(f * 4)
		data.Indices = append(data.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return data
}

// QuadData returns a width x height quad in the XY plane facing +Z.
func QuadData(width, height float32) gpu.MeshData {
	w, h := width/2, height/2
	return gpu.MeshData{
		Vertices: []float32{
			-w, -h, 0, 0, 0, 1, 0, 0,
			w, -h, 0, 0, 0, 1, 1, 0,
			w, h, 0, 0, 0, 1, 1, 1,
			-w, h, 0, 0, 0, 1, 0, 1,
		},
		Indices:    []uint32{0, 1, 2, 0, 2, 3},
		Attributes: Layout,
	}
}

// Cube uploads CubeData(size).
func Cube(dev gpu.Device, size float32) (*Mesh, error) {
	return New(dev, CubeData(size))
}

// Quad uploads QuadData(width, height).
func Quad(dev gpu.Device, width, height float32) (*Mesh, error) {
	return New(dev, QuadData(width, height))
}
