package movement

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/Faultbox/strafe/pkg/math"
)

const tick = float32(1.0 / 128.0)

func approxEqual(t *testing.T, got, want, tol float32, field string) {
	t.Helper()
	if math32.Abs(got-want) > tol {
		t.Fatalf("%s = %.6f, want %.6f (tol=%.6f)", field, got, want, tol)
	}
}

func approxVec(t *testing.T, got, want math.Vec3, tol float32, field string) {
	t.Helper()
	if !got.ApproxEqual(want, tol) {
		t.Fatalf("%s = %+v, want %+v (tol=%g)", field, got, want, tol)
	}
}

func defaultTuning() *Tuning {
	tn := DefaultTuning()
	return &tn
}
