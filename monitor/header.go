package monitor

import "github.com/samestation/eas/same"

// parsedHeader is the subset of a decoded same.Header the alert pathway
// needs.
type parsedHeader struct {
	originator string
	event      string
	alertFIPS  []string
}

func parseHeaderFields(rawText string) (parsedHeader, error) {
	h, err := same.Parse(rawText)
	if err != nil {
		return parsedHeader{}, err
	}
	codes := make([]string, len(h.Locations))
	for i, loc := range h.Locations {
		codes[i] = loc.Code
	}
	return parsedHeader{originator: h.Originator, event: h.Event, alertFIPS: codes}, nil
}
