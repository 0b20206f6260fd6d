package s3_tagging

// Cross-sectional tags
const (
	TagReview     = "Review"
	TagExpensive  = "Expensive"
	TagUnderperf  = "Underperf"
	TagHighRisk   = "High Risk"
	TagTenureLow  = "Tenure Low"
	TagConsistent = "Consistent"
	TagMomentum   = "Momentum"
	TagTurnaround = "Turnaround?"
)

// Temporal tags (applied to the newest snapshot only)
const (
	TagImproving     = "improving"
	TagDeteriorating = "deteriorating"
	TagVolatile      = "volatile"
)

// AllTags lists every tag the engines can emit
var AllTags = []string{
	TagReview, TagExpensive, TagUnderperf, TagHighRisk, TagTenureLow,
	TagConsistent, TagMomentum, TagTurnaround,
	TagImproving, TagDeteriorating, TagVolatile,
}

// mergeTags appends tags not already present, keeping order
func mergeTags(existing []string, add ...string) []string {
	out := append([]string{}, existing...)
	for _, t := range add {
		dup := false
		for _, e := range out {
			if e == t {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, t)
		}
	}
	return out
}
