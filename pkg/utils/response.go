package utils

// ResponseData is the standard envelope for REST responses.
type ResponseData struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Results any    `json:"results,omitempty"`
}

// PanicIfNeeded panics when err is non-nil. The recovery middleware
// turns the panic into a proper JSON error response.
func PanicIfNeeded(err any) {
	if err != nil {
		panic(err)
	}
}
