package viewer

import "github.com/pthm-cable/reef/game"

// Exposed returns the scene voxels with at least one open face, ordered
// like Scene.Voxels. X and Z wrap at n; the floor counts as closed.
func Exposed(sc *game.Scene, n int) []game.SceneVoxel {
	all := sc.Voxels()
	out := make([]game.SceneVoxel, 0, len(all))
	for _, sv := range all {
		if open(sc, sv, n) {
			out = append(out, sv)
		}
	}
	return out
}

func open(sc *game.Scene, sv game.SceneVoxel, n int) bool {
	if sv.Y+1 >= n {
		return true
	}
	neighbours := [...]game.Voxel{
		{X: (sv.X + 1) % n, Y: sv.Y, Z: sv.Z},
		{X: (sv.X - 1 + n) % n, Y: sv.Y, Z: sv.Z},
		{X: sv.X, Y: sv.Y + 1, Z: sv.Z},
		{X: sv.X, Y: sv.Y, Z: (sv.Z + 1) % n},
		{X: sv.X, Y: sv.Y, Z: (sv.Z - 1 + n) % n},
	}
	for _, nb := range neighbours {
		if _, ok := sc.At(nb); !ok {
			return true
		}
	}
	if sv.Y > 0 {
		if _, ok := sc.At(game.Voxel{X: sv.X, Y: sv.Y - 1, Z: sv.Z}); !ok {
			return true
		}
	}
	return false
}
