package geospatial

import (
	"math"

	"github.com/accuritas/voyagemap/internal/core/domain"
)

const (
	maxIterations        = 20
	convergenceThreshold = 1e-12
)

// GeodeticCurve is the solution of the inverse geodesic problem.
// Azimuths are in degrees clockwise from north.
type GeodeticCurve struct {
	DistanceMeters float64 `json:"distance_m"`
	Azimuth        float64 `json:"azimuth"`
	ReverseAzimuth float64 `json:"reverse_azimuth"`
}

// Distance returns the ellipsoidal geodesic distance in meters between p1
// and p2.
func Distance(e Ellipsoid, p1, p2 domain.GeoPoint) (float64, error) {
	c, err := Curve(e, p1, p2)
	if err != nil {
		return 0, err
	}
	return c.DistanceMeters, nil
}

// Curve solves the inverse geodesic problem on e with Vincenty's iteration.
// Nearly antipodal points that fail to converge keep the last distance
// estimate and a meridional azimuth.
func Curve(e Ellipsoid, p1, p2 domain.GeoPoint) (GeodeticCurve, error) {
	if err := e.Validate(); err != nil {
		return GeodeticCurve{}, err
	}
	if err := CheckPoint(p1); err != nil {
		return GeodeticCurve{}, err
	}
	if err := CheckPoint(p2); err != nil {
		return GeodeticCurve{}, err
	}
	if p1 == p2 {
		return GeodeticCurve{}, nil
	}

	a := e.SemiMajorAxis
	b := e.SemiMinorAxis
	f := e.Flattening

	phi1 := toRad(p1.Lat)
	phi2 := toRad(p2.Lat)
	omega := toRad(p2.Lon - p1.Lon)

	a2b2b2 := (a*a - b*b) / (b * b)

	u1 := math.Atan((1 - f) * math.Tan(phi1))
	u2 := math.Atan((1 - f) * math.Tan(phi2))
	sinU1, cosU1 := math.Sincos(u1)
	sinU2, cosU2 := math.Sincos(u2)

	sinU1sinU2 := sinU1 * sinU2
	cosU1sinU2 := cosU1 * sinU2
	sinU1cosU2 := sinU1 * cosU2
	cosU1cosU2 := cosU1 * cosU2

	var (
		lambda     = omega
		bigA       float64
		sigma      float64
		deltaSigma float64
		converged  bool
	)

	for i := 0; i < maxIterations; i++ {
		lambda0 := lambda
		sinLambda, cosLambda := math.Sincos(lambda)

		sin2Sigma := (cosU2*sinLambda)*(cosU2*sinLambda) +
			(cosU1sinU2-sinU1cosU2*cosLambda)*(cosU1sinU2-sinU1cosU2*cosLambda)
		sinSigma := math.Sqrt(sin2Sigma)
		cosSigma := sinU1sinU2 + cosU1cosU2*cosLambda
		sigma = math.Atan2(sinSigma, cosSigma)

		var sinAlpha float64
		if sin2Sigma != 0 {
			sinAlpha = cosU1cosU2 * sinLambda / sinSigma
		}
		cos2Alpha := 1 - sinAlpha*sinAlpha

		var cos2SigmaM float64
		if cos2Alpha != 0 {
			cos2SigmaM = cosSigma - 2*sinU1sinU2/cos2Alpha
		}
		cos2SigmaM2 := cos2SigmaM * cos2SigmaM

		uu := cos2Alpha * a2b2b2
		bigA = 1 + uu/16384*(4096+uu*(-768+uu*(320-175*uu)))
		bigB := uu / 1024 * (256 + uu*(-128+uu*(74-47*uu)))
		deltaSigma = bigB * sinSigma * (cos2SigmaM + bigB/4*(cosSigma*(-1+2*cos2SigmaM2)-
			bigB/6*cos2SigmaM*(-3+4*sin2Sigma)*(-3+4*cos2SigmaM2)))

		c := f / 16 * cos2Alpha * (4 + f*(4-3*cos2Alpha))
		lambda = omega + (1-c)*f*sinAlpha*(sigma+c*sinSigma*(cos2SigmaM+c*cosSigma*(-1+2*cos2SigmaM2)))

		if math.Abs(lambda-lambda0) < convergenceThreshold {
			converged = true
			break
		}
	}

	curve := GeodeticCurve{DistanceMeters: b * bigA * (sigma - deltaSigma)}

	if converged {
		sinLambda, cosLambda := math.Sincos(lambda)
		alpha1 := math.Atan2(cosU2*sinLambda, cosU1sinU2-sinU1cosU2*cosLambda)
		alpha2 := math.Atan2(cosU1*sinLambda, -sinU1cosU2+cosU1sinU2*cosLambda)
		curve.Azimuth = normalizeAzimuth(toDeg(alpha1))
		curve.ReverseAzimuth = normalizeAzimuth(toDeg(alpha2) + 180)
		return curve, nil
	}

	switch {
	case p1.Lat > 0:
		curve.Azimuth, curve.ReverseAzimuth = 180, 0
	case p1.Lat < 0:
		curve.Azimuth, curve.ReverseAzimuth = 0, 180
	}
	return curve, nil
}

func normalizeAzimuth(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

func toDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
