package geom

// ResampleClosed resamples the sequence to k points spaced uniformly by
// arc length along the closed loop, including the segment from the last
// point back to the first. Uniform spacing gives the point correspondence
// that Procrustes superimposition relies on.
func (s Sequence) ResampleClosed(k int) Sequence {
	if len(s) < 2 || k < 1 {
		return s.Clone()
	}

	// Cumulative arc-length distances, closing the loop.
	cumulative := make([]float64, len(s)+1)
	for i := 0; i < len(s)-1; i++ {
		cumulative[i+1] = cumulative[i] + s[i].Distance(s[i+1])
	}
	cumulative[len(s)] = cumulative[len(s)-1] + s[len(s)-1].Distance(s[0])

	total := cumulative[len(s)]
	if total == 0 {
		out := make(Sequence, k)
		for i := range out {
			out[i] = s[0]
		}
		return out
	}

	out := make(Sequence, k)
	segment := 0
	for i := 0; i < k; i++ {
		target := total * float64(i) / float64(k)

		// Advance to the segment containing the target distance.
		for segment < len(s)-1 && cumulative[segment+1] <= target {
			segment++
		}

		start := s[segment]
		end := s[(segment+1)%len(s)]
		segLen := cumulative[segment+1] - cumulative[segment]
		if segLen > 0 {
			t := (target - cumulative[segment]) / segLen
			out[i] = Point{
				X: start.X + t*(end.X-start.X),
				Y: start.Y + t*(end.Y-start.Y),
			}
		} else {
			out[i] = start
		}
	}
	return out
}

// Downsample reduces the sequence to at most max points using a uniform
// stride, always keeping the first point. Sequences at or under the limit
// are returned as-is.
func (s Sequence) Downsample(max int) Sequence {
	if max < MinPoints || len(s) <= max {
		return s
	}
	out := make(Sequence, 0, max)
	step := float64(len(s)) / float64(max)
	for i := 0; i < max; i++ {
		out = append(out, s[int(float64(i)*step)])
	}
	return out
}
