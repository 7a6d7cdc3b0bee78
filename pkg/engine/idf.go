package engine

import "math"

// IDF is the smoothed inverse document frequency ln((N+1)/(df+1)). It is
// finite for unseen tokens and never increases as df grows.
func IDF(docCount, docFreq int) float64 {
	return math.Log(float64(docCount+1) / float64(docFreq+1))
}
