package math

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const eps = 1e-4

func vecNear(a, b Vec3) bool {
	return abs(a.X-b.X) < eps && abs(a.Y-b.Y) < eps && abs(a.Z-b.Z) < eps
}

func TestQuatFromEulerMatchesMathgl(t *testing.T) {
	tests := []Vec3{
		{0, 0, 0},
		{0.3, 0, 0},
		{0, 1.2, 0},
		{0, 0, -0.7},
		{0.4, -2.1, 0.9},
		{float32(math.Pi / 2), 0.5, 0.25},
	}

	for _, e := range tests {
		q := QuatFromEuler(e)
		want := mgl32.QuatRotate(e.Y, mgl32.Vec3{0, 1, 0}).
			Mul(mgl32.QuatRotate(e.X, mgl32.Vec3{1, 0, 0})).
			Mul(mgl32.QuatRotate(e.Z, mgl32.Vec3{0, 0, 1}))

		if abs(q.W-want.W) > eps || abs(q.X-want.V[0]) > eps || abs(q.Y-want.V[1]) > eps || abs(q.Z-want.V[2]) > eps {
			t.Errorf("QuatFromEuler(%v) = %+v, want %+v", e, q, want)
		}
	}
}

func TestEulerMatrixMatchesAxisRotations(t *testing.T) {
	e := Vec3{X: 0.3, Y: -1.1, Z: 0.6}
	want := mgl32.HomogRotate3DY(e.Y).Mul4(mgl32.HomogRotate3DX(e.X)).Mul4(mgl32.HomogRotate3DZ(e.Z))
	got := EulerMatrix(e)
	if !got.ApproxEqual(Mat4(want), eps) {
		t.Errorf("EulerMatrix = %v, want %v", got, want)
	}
}

func TestDirectionsAgreeWithMatrix(t *testing.T) {
	e := Vec3{X: 0.7, Y: 2.4, Z: -0.3}
	q := QuatFromEuler(e)
	m := EulerMatrix(e)

	if got, want := q.Forward(), m.TransformDirection(AxisForward); !vecNear(got, want) {
		t.Errorf("Forward = %v, matrix says %v", got, want)
	}
	if got, want := q.Up(), m.TransformDirection(AxisUp); !vecNear(got, want) {
		t.Errorf("Up = %v, matrix says %v", got, want)
	}
	if got, want := q.Right(), m.TransformDirection(AxisRight); !vecNear(got, want) {
		t.Errorf("Right = %v, matrix says %v", got, want)
	}
}

func TestYawRotatesForward(t *testing.T) {
	q := QuatFromEuler(Vec3{Y: float32(-math.Pi / 2)})
	if got, want := q.Forward(), (Vec3{1, 0, 0}); !vecNear(got, want) {
		t.Errorf("yaw -90 forward = %v, want %v", got, want)
	}
}

func TestTRSMatchesMathgl(t *testing.T) {
	pos := Vec3{1, -2, 3}
	rot := Vec3{0.2, 0.8, -0.4}
	scl := Vec3{2, 0.5, 1.5}

	got := TRS(pos, rot, scl)

	q := mgl32.QuatRotate(rot.Y, mgl32.Vec3{0, 1, 0}).
		Mul(mgl32.QuatRotate(rot.X, mgl32.Vec3{1, 0, 0})).
		Mul(mgl32.QuatRotate(rot.Z, mgl32.Vec3{0, 0, 1}))
	want := mgl32.Translate3D(pos.X, pos.Y, pos.Z).Mul4(q.Mat4()).Mul4(mgl32.Scale3D(scl.X, scl.Y, scl.Z))

	if !got.ApproxEqual(Mat4(want), eps) {
		t.Errorf("TRS = %v, want %v", got, want)
	}
}

func TestQuatRotateMatchesToMat4(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{0, 0, 1}, float32(math.Pi/2))
	got := q.Rotate(Vec3{1, 0, 0})
	if !vecNear(got, Vec3{0, 1, 0}) {
		t.Errorf("Rotate = %v, want (0,1,0)", got)
	}
	if m := q.ToMat4().TransformDirection(Vec3{1, 0, 0}); !vecNear(got, m) {
		t.Errorf("Rotate = %v, ToMat4 gives %v", got, m)
	}
}

func TestMatchesMathglProjection(t *testing.T) {
	got := Perspective(float32(math.Pi/3), 16.0/9.0, 0.1, 500)
	want := mgl32.Perspective(float32(math.Pi/3), 16.0/9.0, 0.1, 500)
	if !got.ApproxEqual(Mat4(want), eps) {
		t.Errorf("Perspective = %v, want %v", got, want)
	}

	eye, center, up := Vec3{3, 4, 5}, Vec3{0, 1, 0}, Vec3{0, 1, 0}
	gotView := LookAt(eye, center, up)
	wantView := mgl32.LookAtV(mgl32.Vec3{3, 4, 5}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 1, 0})
	if !gotView.ApproxEqual(Mat4(wantView), eps) {
		t.Errorf("LookAt = %v, want %v", gotView, wantView)
	}
}

func TestInverseMatchesMathgl(t *testing.T) {
	m := TRS(Vec3{4, 5, 6}, Vec3{0.1, 0.2, 0.3}, Vec3{1, 2, 3})
	want := mgl32.Mat4(m).Inv()
	if got := m.Inverse(); !got.ApproxEqual(Mat4(want), eps) {
		t.Errorf("Inverse = %v, want %v", got, want)
	}
	if got := m.Mul(m.Inverse()); !got.ApproxEqual(Identity(), eps) {
		t.Errorf("M * M^-1 = %v, want identity", got)
	}
}
