package signal

// Score caps: volume and recency each contribute at most half the scale.
const (
	maxVolumeScore  = 50
	maxRecencyScore = 50
	maxStrength     = 100

	volumePointsPerPosting  = 5
	recencyPointsPerPosting = 10
)

// ScoreSignal turns a posting count and the size of the recent-postings batch
// into a strength in [0,100]. Each component is capped on its own before the
// sum is capped, so neither can saturate the score alone.
func ScoreSignal(count, recent int) int {
	volume := min(max(count, 0)*volumePointsPerPosting, maxVolumeScore)
	recency := min(max(recent, 0)*recencyPointsPerPosting, maxRecencyScore)
	return min(volume+recency, maxStrength)
}
