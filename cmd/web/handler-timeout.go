package main

import (
	"net/http"
	"time"
)

const timeoutBody = `{"error":{"kind":"Timeout","message":"The request took too long. Please try again."}}`

// timeoutHandler responds with a 503 Service Unavailable error when the handler does not meet the deadline.
func timeoutHandler(h http.Handler, timeout time.Duration) http.Handler {
	return http.TimeoutHandler(h, timeout, timeoutBody)
}
