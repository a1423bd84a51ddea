package mock

import "github.com/fwojciec/initbot"

var _ initbot.Parser = (*Parser)(nil)

// Parser is a mock implementation of initbot.Parser.
type Parser struct {
	ParseIndexFn    func(html, baseURL string) ([]initbot.IndexEntry, error)
	ParseDetailFn   func(html, baseURL string) (*initbot.Detail, error)
	ParseFullTextFn func(html string) (string, error)
}

func (p *Parser) ParseIndex(html, baseURL string) ([]initbot.IndexEntry, error) {
	return p.ParseIndexFn(html, baseURL)
}

func (p *Parser) ParseDetail(html, baseURL string) (*initbot.Detail, error) {
	return p.ParseDetailFn(html, baseURL)
}

func (p *Parser) ParseFullText(html string) (string, error) {
	return p.ParseFullTextFn(html)
}
