package main

import (
	"math/rand"
	"net/url"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// shared test scaffolding: a service context wired to an in-memory
// transport and navigation store, so no Solr or Redis is required.

type fakeTransport struct {
	searchBody []byte
	searchErr  error
	pingMS     float64
	pingErr    error

	lastQuery  string
	lastStart  int
	lastLimit  int
	lastParams url.Values
	lastMethod string
}

func (t *fakeTransport) Search(query string, start int, limit int, params url.Values, method string) ([]byte, error) {
	t.lastQuery = query
	t.lastStart = start
	t.lastLimit = limit
	t.lastParams = params
	t.lastMethod = method

	if t.searchErr != nil {
		return nil, t.searchErr
	}

	return t.searchBody, nil
}

func (t *fakeTransport) Ping(host string, port int, path string) (float64, error) {
	return t.pingMS, t.pingErr
}

func newTestConfig() *serviceConfig {
	cfg := defaultConfig()

	cfg.Solr.URL = "http://localhost:8080/solr/collection1"
	cfg.Solr.Version = "4.10.2"

	return &cfg
}

func newTestService(cfg *serviceConfig) *serviceContext {
	svc := &serviceContext{
		config:       cfg,
		randomSource: rand.New(rand.NewSource(1)),
		hooks:        newHookRegistry(),
	}

	svc.translations = serviceTranslations{bundle: i18n.NewBundle(language.English)}

	svc.solr.url = cfg.Solr.URL
	svc.solr.version = cfg.Solr.Version
	svc.solr.majorVersion, svc.solr.versionKnown = parseSolrMajorVersion(cfg.Solr.Version)
	svc.solr.transport = &fakeTransport{}

	svc.nav = newMemoryNavStore()

	return svc
}

func newTestSearch(svc *serviceContext) *searchContext {
	cl := &clientContext{}
	cl.init(svc, nil)

	s := &searchContext{}
	s.init(svc, cl)
	s.path = "islandora/search/test"

	return s
}

func testFakeTransport(s *searchContext) *fakeTransport {
	return s.transport.(*fakeTransport)
}
