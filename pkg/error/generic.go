package error

// GenericError is implemented by errors that carry an API error code
// and HTTP status. The recovery middleware uses it to shape responses.
type GenericError interface {
	Error() string
	ErrCode() string
	StatusCode() int
}
