// Package geo holds the great-circle helpers used for airport-relative geometry.
package geo

import (
	"math"
	"time"

	"github.com/westphae/geomag/pkg/egm96"
	"github.com/westphae/geomag/pkg/wmm"
)

const (
	EarthRadiusKm   = 6371.0
	KmPerNM         = 1.852
	FeetPerMeter    = 3.28084
	KnotsPerMs      = 1.943844
	FeetPerMinPerMs = 196.850394
)

func toRad(deg float64) float64 { return deg * math.Pi / 180 }
func toDeg(rad float64) float64 { return rad * 180 / math.Pi }

// Distance returns the haversine great-circle distance in kilometers
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Bearing returns the initial bearing from point 1 to point 2, in degrees [0,360)
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	phi1, phi2 := toRad(lat1), toRad(lat2)
	dLon := toRad(lon2 - lon1)
	y := math.Sin(dLon) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLon)
	return NormalizeHeading(toDeg(math.Atan2(y, x)))
}

// AngularDifference returns the smallest absolute difference between two headings, in [0,180]
func AngularDifference(a, b float64) float64 {
	d := math.Mod(a-b+180, 360)
	if d < 0 {
		d += 360
	}
	return math.Abs(d - 180)
}

// NormalizeHeading maps any angle into [0,360)
func NormalizeHeading(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	// math.Mod(-0.0000001, 360) + 360 rounds to 360
	if h >= 360 {
		h -= 360
	}
	return h
}

// Destination returns the point reached by travelling distKm from a start
// point on the given initial bearing
func Destination(lat, lon, bearing, distKm float64) (float64, float64) {
	phi1, lambda1 := toRad(lat), toRad(lon)
	theta := toRad(bearing)
	delta := distKm / EarthRadiusKm

	phi2 := math.Asin(math.Sin(phi1)*math.Cos(delta) + math.Cos(phi1)*math.Sin(delta)*math.Cos(theta))
	lambda2 := lambda1 + math.Atan2(math.Sin(theta)*math.Sin(delta)*math.Cos(phi1),
		math.Cos(delta)-math.Sin(phi1)*math.Sin(phi2))

	return toDeg(phi2), math.Mod(toDeg(lambda2)+540, 360) - 180
}

// MetersToFeet converts meters to feet
func MetersToFeet(m float64) float64 {
	return m * FeetPerMeter
}

// MagneticVariation returns the WMM declination for a position and date.
// Positive is east. Returns 0 when the model has no answer for the date.
func MagneticVariation(lat, lon, altFt float64, date time.Time) float64 {
	loc := egm96.NewLocationGeodetic(lat, lon, altFt/FeetPerMeter)

	mag, err := wmm.CalculateWMMMagneticField(loc, date)
	if err != nil {
		return 0.0
	}

	return mag.D()
}

// MagneticHeading converts a true heading to magnetic using the local declination
func MagneticHeading(trueHeading, declination float64) float64 {
	return NormalizeHeading(trueHeading - declination)
}
