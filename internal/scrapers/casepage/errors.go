package casepage

import "fmt"

// FetchError is returned when the page could not be retrieved, either because
// the transport failed or because the server did not answer 200.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.Status)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ExtractError names the structural anchor that could not be found in the
// page markup.
type ExtractError struct {
	Anchor string
	Err    error
}

func (e *ExtractError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extract %s: %v", e.Anchor, e.Err)
	}
	return fmt.Sprintf("extract: missing anchor %q", e.Anchor)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}
