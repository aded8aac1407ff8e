// Package phi provides constants derived from the golden ratio.
package phi

import "math"

// Phi is the golden ratio.
const Phi = 1.6180339887498948

// Psyche is Φ⁻², the fraction of a turn left over by the golden angle.
var Psyche = math.Pow(Phi, -2) // 0.38197...

// GoldenAngle in degrees. Successive multiples never line up, which makes
// it a good step for spreading hues or points around a circle.
var GoldenAngle = 360 * Psyche // 137.5077...
