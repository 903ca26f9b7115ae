package session

// UnauthenticatedError signals a request without a valid session, or a
// session whose bound account no longer exists or is inactive.
type UnauthenticatedError string

// Error implements the error interface
func (e UnauthenticatedError) Error() string {
	return string(e)
}

// ForbiddenError signals an authenticated identity whose role does not
// satisfy the required one.
type ForbiddenError string

// Error implements the error interface
func (e ForbiddenError) Error() string {
	return string(e)
}
