package movement

import "github.com/Faultbox/strafe/pkg/math"

// WishDir converts directional input and facing yaw into a horizontal unit
// vector in world space. Forward is -Z and right is +X before rotation.
// No input, or only opposing keys, returns the zero vector.
func WishDir(forward, backward, left, right bool, yaw float32) math.Vec3 {
	var local math.Vec3
	if forward {
		local.Z--
	}
	if backward {
		local.Z++
	}
	if left {
		local.X--
	}
	if right {
		local.X++
	}
	if local.IsZero() {
		return math.Vec3{}
	}
	return local.Normalize().RotateY(yaw)
}
