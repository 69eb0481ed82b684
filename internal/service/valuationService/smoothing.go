package valuationService

import "math/rand"

// smoothedSeries interpolates a display curve from 0 to finalPct over the
// given number of steps with a bounded random wobble. Presentation smoothing
// for the dashboard chart only: the endpoint is the real figure, the path is
// not historical data. The last quarter of the steps drops the wobble so the
// curve lands exactly on finalPct.
func smoothedSeries(finalPct float64, steps int) []float64 {
	if steps <= 0 {
		return nil
	}

	amplitude := 0.15 * finalPct
	if amplitude < 0 {
		amplitude = -amplitude
	}
	if amplitude < 0.5 {
		amplitude = 0.5
	}

	wobbleUntil := steps - steps/4

	series := make([]float64, steps)
	for i := range series {
		progress := float64(i+1) / float64(steps)
		v := finalPct * progress
		if i+1 < wobbleUntil {
			v += (rand.Float64()*2 - 1) * amplitude * (1 - progress)
		}
		series[i] = v
	}
	series[steps-1] = finalPct

	return series
}
