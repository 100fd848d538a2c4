package infrastructure

import "regexp"

var mobileAgent = regexp.MustCompile(`iPhone|iPad|iPod|Android|Mobile`)

// UserAgentClassifier classifies clients by their User-Agent header
type UserAgentClassifier struct{}

// IsMobile reports whether the agent names a phone or tablet
func (UserAgentClassifier) IsMobile(userAgent string) bool {
	return mobileAgent.MatchString(userAgent)
}
