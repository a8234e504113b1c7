package classifier

import "errors"

// Classifier errors
var (
	// ErrUnavailable indicates the classifier service could not be reached
	ErrUnavailable = errors.New("classifier service unavailable")
	// ErrInvalidScore indicates the classifier returned an unusable score
	ErrInvalidScore = errors.New("classifier returned an invalid score")
)
