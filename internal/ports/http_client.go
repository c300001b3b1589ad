package ports

import "net/http"

// HTTPClient is what the remote executor and the health probe send requests
// through. *http.Client satisfies it; tests substitute a recording fake.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
