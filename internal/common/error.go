package common

import "fmt"

// The site answers several of its error conditions with HTTP 200 and a
// marker phrase in the body, so fetch failures carry their own kind.
var (
	ErrSoftFailure    = fmt.Errorf("resource not available in web-publishable format")
	ErrPageNotFound   = fmt.Errorf("page not found")
	ErrInvalidRequest = fmt.Errorf("request not recognised")
)
