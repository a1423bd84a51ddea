package mock

import "github.com/fwojciec/initbot"

var _ initbot.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of initbot.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*initbot.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*initbot.ExtractResult, error) {
	return e.ExtractFn(html)
}
