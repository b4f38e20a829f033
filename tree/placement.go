package tree

import (
	"math/rand"

	"github.com/chewxy/math32"

	"christmas-tree/math"
)

const (
	// PlacementAttempts bounds the rejection sampling per ornament.
	PlacementAttempts = 50
	// SeparationFactor times letterSize*scale is the minimum distance
	// between ornament centers.
	SeparationFactor = 2.8
)

// PlaceOrnaments samples count positions inside the ornament cone. Each
// position is the first of up to PlacementAttempts samples that keeps at
// least minDist from every earlier one. When every attempt fails the last
// sample is kept anyway, so exactly count positions are always returned and
// overlaps are possible on a crowded tree.
func PlaceOrnaments(rng *rand.Rand, count int, scale, minDist float32) []math.Vec3 {
	if count <= 0 {
		return nil
	}
	placed := make([]math.Vec3, 0, count)
	for i := 0; i < count; i++ {
		var p math.Vec3
		for attempt := 0; attempt < PlacementAttempts; attempt++ {
			p = sampleOrnamentPosition(rng, scale)
			if separated(p, placed, minDist) {
				break
			}
		}
		placed = append(placed, p)
	}
	return placed
}

func sampleOrnamentPosition(rng *rand.Rand, scale float32) math.Vec3 {
	y := (rng.Float32()*3.5 - 1.5) * scale
	ny := (y/scale + 1.5) / 3.5
	maxRadius := ((1-ny)*1.5 + 0.1) * scale
	angle := rng.Float32() * 2 * math32.Pi
	r := rng.Float32() * maxRadius * 0.85
	s, c := math32.Sincos(angle)
	return math.Vec3{X: c * r, Y: y, Z: s * r}
}

func separated(p math.Vec3, placed []math.Vec3, minDist float32) bool {
	for _, q := range placed {
		if p.Distance(q) < minDist {
			return false
		}
	}
	return true
}
