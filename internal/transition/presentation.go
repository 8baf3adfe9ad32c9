package transition

// Present turns progress p into the deltas of the outgoing and incoming
// sequences. p = 0 leaves the outgoing sequence untouched with the incoming
// one hidden; p = 1 is the reverse. Fade clamps p into [0,1] for opacity;
// slide and wipe keep spring overshoot so they can bounce.
func Present(pr Presentation, p float64) (out, in Delta) {
	switch pr.Kind {
	case Slide:
		return slide(pr.Direction, p)
	case Wipe:
		return wipe(pr.Direction, p)
	}
	return fade(p)
}

func fade(p float64) (out, in Delta) {
	c := clamp01(p)
	out, in = Identity, Identity
	out.Opacity = 1 - c
	in.Opacity = c
	return out, in
}

func slide(d Direction, p float64) (out, in Delta) {
	out, in = Identity, Identity
	switch d {
	case FromLeft:
		in.OffsetX = p - 1
		out.OffsetX = p
	case FromRight:
		in.OffsetX = 1 - p
		out.OffsetX = -p
	case FromTop:
		in.OffsetY = p - 1
		out.OffsetY = p
	case FromBottom:
		in.OffsetY = 1 - p
		out.OffsetY = -p
	}
	return out, in
}

// wipe reveals the incoming sequence starting at the edge it enters from.
func wipe(d Direction, p float64) (out, in Delta) {
	out, in = Identity, Identity
	switch d {
	case FromLeft:
		in.Clip.Right = 1 - p
	case FromRight:
		in.Clip.Left = 1 - p
	case FromTop:
		in.Clip.Bottom = 1 - p
	case FromBottom:
		in.Clip.Top = 1 - p
	}
	return out, in
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
