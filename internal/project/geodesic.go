package project

import (
	"github.com/paulmach/orb"
	"github.com/umahmood/haversine"
)

// GeodesicKm returns the great-circle distance in kilometers between two
// points given in crs.
func GeodesicKm(a, b orb.Point, crs CRS) (float64, error) {
	aLon, aLat, err := Reproject(a[0], a[1], crs, WGS84)
	if err != nil {
		return 0, err
	}
	bLon, bLat, err := Reproject(b[0], b[1], crs, WGS84)
	if err != nil {
		return 0, err
	}

	_, km := haversine.Distance(
		haversine.Coord{Lat: aLat, Lon: aLon},
		haversine.Coord{Lat: bLat, Lon: bLon},
	)
	return km, nil
}
