// Package device holds the viewer hardware parameters the renderer needs to
// pair a pose with the correct projection and lens-distortion correction.
// The pose subsystem itself is agnostic to these values; they travel
// alongside it as the device-parameter store.
package device

import "fmt"

// Params describes one viewer model: its lens geometry in meters, the field
// of view half-angles in degrees (left, right, bottom, top), and the radial
// distortion polynomial coefficients.
type Params struct {
	Vendor string `json:"vendor"`
	Model  string `json:"model"`

	InterLensDistance    float64 `json:"inter_lens_distance_m"`
	ScreenToLensDistance float64 `json:"screen_to_lens_distance_m"`
	TrayToLensCenter     float64 `json:"tray_to_lens_center_m"`

	FOVAngles [4]float64 `json:"fov_angles_deg"`

	// DistortionCoefficients are the k1, k2, ... terms of the radial
	// distortion polynomial.
	DistortionCoefficients []float64 `json:"distortion_coefficients"`
}

// CardboardV1 returns the parameters of the original Cardboard viewer, the
// fallback profile used when no viewer has been paired.
func CardboardV1() Params {
	return Params{
		Vendor:               "Google, Inc.",
		Model:                "Cardboard v1",
		InterLensDistance:    0.060,
		ScreenToLensDistance: 0.042,
		TrayToLensCenter:     0.035,
		FOVAngles:            [4]float64{40, 40, 40, 40},
		DistortionCoefficients: []float64{
			0.441, 0.156,
		},
	}
}

// ByProfile resolves a named viewer profile from configuration.
func ByProfile(name string) (Params, error) {
	switch name {
	case "", "cardboard_v1":
		return CardboardV1(), nil
	default:
		return Params{}, fmt.Errorf("unknown device profile %q", name)
	}
}

// DistortionFactor evaluates the radial distortion polynomial
// 1 + k1·r² + k2·r⁴ + ... for a squared radius.
func (p Params) DistortionFactor(rSquared float64) float64 {
	factor := 1.0
	rFactor := 1.0
	for _, k := range p.DistortionCoefficients {
		rFactor *= rSquared
		factor += k * rFactor
	}
	return factor
}

// Distort maps an undistorted radius to its lens-distorted radius.
func (p Params) Distort(radius float64) float64 {
	return radius * p.DistortionFactor(radius*radius)
}

// Undistort inverts Distort by Newton iteration. A handful of steps is
// plenty for the radii that occur inside the viewer's field of view.
func (p Params) Undistort(radius float64) float64 {
	r := radius
	for i := 0; i < 10; i++ {
		diff := p.Distort(r) - radius
		// Derivative approximated by a small central difference; the
		// polynomial is smooth and well-conditioned over the lens.
		const h = 1e-6
		deriv := (p.Distort(r+h) - p.Distort(r-h)) / (2 * h)
		if deriv == 0 {
			break
		}
		r -= diff / deriv
	}
	return r
}
