package mock

import "github.com/fwojciec/initbot"

var _ initbot.Converter = (*Converter)(nil)

// Converter is a mock implementation of initbot.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
