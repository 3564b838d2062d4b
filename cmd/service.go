package main

import (
	"fmt"
	"log"
	"math/rand"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// git commit used for this build; supplied at compile time
var gitCommit string

type serviceVersion struct {
	BuildVersion string `json:"build,omitempty"`
	GoVersion    string `json:"go_version,omitempty"`
	GitCommit    string `json:"git_commit,omitempty"`
}

type serviceSolr struct {
	transport    solrTransport
	url          string
	version      string
	majorVersion int
	versionKnown bool
}

type serviceTranslations struct {
	bundle *i18n.Bundle
}

type serviceContext struct {
	randomSource *rand.Rand
	config       *serviceConfig
	translations serviceTranslations
	version      serviceVersion
	solr         serviceSolr
	nav          navStore
	hooks        *hookRegistry
}

type stringValidator struct {
	values  []string
	invalid bool
}

func (v *stringValidator) requireValue(value string, label string) {
	if value == "" {
		log.Printf("[VALIDATE] missing %s", label)
		v.invalid = true
		return
	}

	v.values = append(v.values, value)
}

func (v *stringValidator) Invalid() bool {
	return v.invalid
}

func (p *serviceContext) initVersion() {
	buildVersion := "unknown"
	files, _ := filepath.Glob("buildtag.*")
	if len(files) == 1 {
		buildVersion = strings.Replace(files[0], "buildtag.", "", 1)
	}

	p.version = serviceVersion{
		BuildVersion: buildVersion,
		GoVersion:    fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH),
		GitCommit:    gitCommit,
	}

	log.Printf("[SERVICE] version.BuildVersion = [%s]", p.version.BuildVersion)
	log.Printf("[SERVICE] version.GoVersion    = [%s]", p.version.GoVersion)
	log.Printf("[SERVICE] version.GitCommit    = [%s]", p.version.GitCommit)
}

func (p *serviceContext) initSolr() {
	// client setup

	connTimeout := timeoutWithMinimum(p.config.Solr.ConnTimeout, 5)
	readTimeout := timeoutWithMinimum(p.config.Solr.ReadTimeout, 5)

	serviceClient := &http.Client{
		Timeout: time.Duration(readTimeout) * time.Second,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   time.Duration(connTimeout) * time.Second,
				KeepAlive: 60 * time.Second,
			}).DialContext,
			MaxIdleConns:        100, // we are hitting one solr host, so
			MaxIdleConnsPerHost: 100, // these two values can be the same
			IdleConnTimeout:     90 * time.Second,
		},
	}

	healthcheckClient := &http.Client{
		Timeout: time.Duration(connTimeout) * time.Second,
	}

	p.solr = serviceSolr{
		url: strings.TrimSuffix(p.config.Solr.URL, "/"),
		transport: &httpSolrTransport{
			serviceClient:     serviceClient,
			healthcheckClient: healthcheckClient,
			baseURL:           strings.TrimSuffix(p.config.Solr.URL, "/"),
		},
	}

	// server version: configured value wins; otherwise ask the server.
	// failure leaves the version unknown, selecting legacy date faceting.

	version := p.config.Solr.Version

	if version == "" && p.solr.url != "" {
		discovered, err := discoverSolrVersion(healthcheckClient, p.solr.url)
		if err != nil {
			log.Printf("[SERVICE] solr version discovery failed: %s", err.Error())
		} else {
			version = discovered
		}
	}

	p.solr.version = version
	p.solr.majorVersion, p.solr.versionKnown = parseSolrMajorVersion(version)

	log.Printf("[SERVICE] solr.url     = [%s]", p.solr.url)
	log.Printf("[SERVICE] solr.version = [%s] (known: %v)", p.solr.version, p.solr.versionKnown)
}

func (p *serviceContext) initTranslations() {
	defaultLang := language.English

	bundle := i18n.NewBundle(defaultLang)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	files, _ := filepath.Glob("i18n/*.toml")
	for _, f := range files {
		bundle.MustLoadMessageFile(f)
	}

	p.translations = serviceTranslations{
		bundle: bundle,
	}
}

func (p *serviceContext) initNavStore() {
	store, err := newNavStore(p.config)
	if err != nil {
		log.Printf("[SERVICE] failed to initialize navigation store: %s", err.Error())
		os.Exit(1)
	}

	p.nav = store

	if p.config.Nav.RedisURL != "" {
		log.Printf("[SERVICE] navigation store = [redis]")
	} else {
		log.Printf("[SERVICE] navigation store = [memory]")
	}
}

func (p *serviceContext) validateConfig() {
	// ensure the existence and validity of required values

	invalid := false

	var required stringValidator

	required.requireValue(p.config.Service.Port, "service port")
	required.requireValue(p.config.Solr.URL, "solr url")
	required.requireValue(p.config.Query.BaseQuery, "base query")
	required.requireValue(p.config.Objects.IDField, "object id field")
	required.requireValue(p.config.Objects.ContentModelField, "content model field")
	required.requireValue(p.config.Objects.DatastreamField, "datastream field")
	required.requireValue(p.config.Objects.LabelField, "object label field")

	if p.config.Query.NumResults < 1 {
		log.Printf("[VALIDATE] num_results must be positive")
		invalid = true
	}

	for i, f := range p.config.Fields.FacetFields {
		if f.Field == "" {
			log.Printf("[VALIDATE] facet field %d: missing solr field", i)
			invalid = true
		}

		if f.Settings.SortBy != "" && f.Settings.SortBy != "count" && f.Settings.SortBy != "index" {
			log.Printf("[VALIDATE] facet field %d: sort_by must be count or index", i)
			invalid = true
		}
	}

	for i, f := range p.config.Fields.ResultFields {
		if f.Field == "" {
			log.Printf("[VALIDATE] result field %d: missing solr field", i)
			invalid = true
		}
	}

	if invalid || required.Invalid() {
		log.Printf("[VALIDATE] exiting due to missing/incorrect field value(s) above")
		os.Exit(1)
	}
}

func initializeService(cfg *serviceConfig) *serviceContext {
	p := serviceContext{}

	p.config = cfg
	p.randomSource = rand.New(rand.NewSource(time.Now().UnixNano()))
	p.hooks = newHookRegistry()

	p.initTranslations()
	p.initVersion()
	p.initSolr()
	p.initNavStore()

	p.validateConfig()

	return &p
}
