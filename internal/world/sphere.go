package world

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// SpherePoint maps grid cell (x, y) to a point on the unit sphere.
// x spans longitude [0, 2π) so column 0 and column size meet seamlessly;
// y spans latitude [-π/2, π/2) so rows converge at the poles instead of wrapping.
func SpherePoint(x, y, size int) mgl64.Vec3 {
	u := float64(x) / float64(size)
	v := float64(y) / float64(size)

	lon := u * 2 * math.Pi
	lat := v*math.Pi - math.Pi/2.0

	return mgl64.Vec3{
		math.Cos(lat) * math.Cos(lon),
		math.Cos(lat) * math.Sin(lon),
		math.Sin(lat),
	}
}

// LatLon returns the map-readout latitude and longitude in degrees for a cell:
// latitude 90 at row 0 falling southward, longitude -180 at column 0.
func LatLon(x, y, size int) (lat, lon float64) {
	lat = 90 - float64(y)*180.0/float64(size)
	lon = float64(x)*360.0/float64(size) - 180
	return lat, lon
}
