package main

import (
	"bytes"
	"encoding/json"
	"log"
	"os"
	"sort"
	"strings"
)

type serviceConfigService struct {
	Port   string `json:"port,omitempty"`
	JWTKey string `json:"jwt_key,omitempty"`
}

type serviceConfigSolr struct {
	// base URL of the Solr core, e.g. "http://localhost:8080/solr/collection1"
	URL string `json:"url,omitempty"`
	// known server version, e.g. "4.10.2".  when empty, the version is
	// discovered from the server at startup; when that fails, date faceting
	// falls back to the legacy parameter family.
	Version        string `json:"version,omitempty"`
	RequestHandler string `json:"request_handler,omitempty"`
	// whether the configured request handler is itself set up for dismax
	RequestHandlerDismax bool   `json:"request_handler_dismax,omitempty"`
	ConnTimeout          string `json:"conn_timeout,omitempty"`
	ReadTimeout          string `json:"read_timeout,omitempty"`
}

type serviceConfigQuery struct {
	BaseQuery string `json:"base_query,omitempty"`
	BaseSort  string `json:"base_sort,omitempty"`
	// newline-delimited list of filter queries applied to every search
	BaseFilter string `json:"base_filter,omitempty"`
	// comma/whitespace-delimited list of namespaces results are restricted to
	NamespaceRestriction string `json:"namespace_restriction,omitempty"`
	// weighted dismax query fields
	QueryFields      string `json:"query_fields,omitempty"`
	UseUIQueryFields bool   `json:"use_ui_query_fields,omitempty"`
	NumResults       int    `json:"num_results,omitempty"`
	FacetMinCount    int    `json:"facet_min_count,omitempty"`
	FacetMaxLimit    int    `json:"facet_max_limit"`
	PrimaryDisplay   string `json:"primary_display,omitempty"`
	// when set, normalized records carry only the configured result fields
	LimitResultFields bool `json:"limit_result_fields,omitempty"`
	// substitute search field labels into the current-query display
	PlainQueryDisplay bool `json:"plain_query_display,omitempty"`
	// enable next/previous result navigation tokens for every search
	SearchNavigation bool `json:"search_navigation,omitempty"`
	// display format for date facet filter values (Go time layout)
	FacetDateFormat string `json:"facet_date_format,omitempty"`
}

type serviceConfigFieldSettings struct {
	// "count" or "index"; empty means the default implied by facet_max_limit
	SortBy string `json:"sort_by,omitempty"`
	// range (or legacy date) faceted field
	Range bool `json:"range,omitempty"`
	// the underlying Solr type is a date type
	DateField     bool   `json:"date_field,omitempty"`
	RangeStart    string `json:"range_start,omitempty"`
	RangeEnd      string `json:"range_end,omitempty"`
	RangeGap      string `json:"range_gap,omitempty"`
	SliderEnabled bool   `json:"slider_enabled,omitempty"`
	// display format for this field's date values (Go time layout)
	DateFormat string `json:"date_format,omitempty"`
}

type serviceConfigField struct {
	Field string `json:"field,omitempty"`
	Label string `json:"label,omitempty"`
	// restricted fields require an authenticated session
	Restricted bool                       `json:"restricted,omitempty"`
	Settings   serviceConfigFieldSettings `json:"settings,omitempty"`
}

type serviceConfigFields struct {
	FacetFields  []serviceConfigField `json:"facet_fields,omitempty"`
	SearchFields []serviceConfigField `json:"search_fields,omitempty"`
	ResultFields []serviceConfigField `json:"result_fields,omitempty"`
	// snippet-eligible highlighting fields
	HighlightFields []string `json:"highlight_fields,omitempty"`
}

type serviceConfigObjects struct {
	IDField           string `json:"id_field,omitempty"`
	ContentModelField string `json:"content_model_field,omitempty"`
	DatastreamField   string `json:"datastream_field,omitempty"`
	LabelField        string `json:"label_field,omitempty"`
	ObjectPathPrefix  string `json:"object_path_prefix,omitempty"`
	DefaultImagePath  string `json:"default_image_path,omitempty"`
}

type serviceConfigNav struct {
	// when set, navigation state is stashed in redis; otherwise in memory
	RedisURL   string `json:"redis_url,omitempty"`
	TTLSeconds int    `json:"ttl_seconds,omitempty"`
}

type serviceConfig struct {
	Service serviceConfigService `json:"service,omitempty"`
	Solr    serviceConfigSolr    `json:"solr,omitempty"`
	Query   serviceConfigQuery   `json:"query,omitempty"`
	Fields  serviceConfigFields  `json:"fields,omitempty"`
	Objects serviceConfigObjects `json:"objects,omitempty"`
	Nav     serviceConfigNav     `json:"nav,omitempty"`
}

func defaultConfig() serviceConfig {
	return serviceConfig{
		Service: serviceConfigService{
			Port: "8080",
		},
		Solr: serviceConfigSolr{
			ConnTimeout: "5",
			ReadTimeout: "5",
		},
		Query: serviceConfigQuery{
			BaseQuery:       "*:*",
			QueryFields:     "dc.title^5 dc.subject^2 dc.description^2 dc.creator^2 dc.contributor^1 dc.type",
			NumResults:      20,
			FacetMinCount:   2,
			FacetMaxLimit:   20,
			PrimaryDisplay:  "default",
			FacetDateFormat: "2006",
		},
		Objects: serviceConfigObjects{
			IDField:           "PID",
			ContentModelField: "RELS_EXT_hasModel_uri_ms",
			DatastreamField:   "fedora_datastreams_ms",
			LabelField:        "fgs_label_s",
			ObjectPathPrefix:  "islandora/object/",
			DefaultImagePath:  "images/defaultimg.png",
		},
		Nav: serviceConfigNav{
			TTLSeconds: 3600,
		},
	}
}

func getSortedJSONEnvVars() []string {
	var keys []string

	for _, keyval := range os.Environ() {
		key := strings.Split(keyval, "=")[0]
		if strings.HasPrefix(key, "ISLANDORA_SOLR_WS_JSON_") {
			keys = append(keys, key)
		}
	}

	sort.Strings(keys)

	return keys
}

func loadConfig() *serviceConfig {
	// defaults first; env JSON fragments override only the values they supply
	cfg := defaultConfig()

	envs := getSortedJSONEnvVars()

	valid := true

	for _, env := range envs {
		log.Printf("[CONFIG] loading %s ...", env)
		if val := os.Getenv(env); val != "" {
			dec := json.NewDecoder(bytes.NewReader([]byte(val)))
			dec.DisallowUnknownFields()

			if err := dec.Decode(&cfg); err != nil {
				log.Printf("error decoding %s: %s", env, err.Error())
				valid = false
			}
		}
	}

	if valid == false {
		log.Printf("exiting due to json decode error(s) above")
		os.Exit(1)
	}

	// optional convenience overrides to simplify deployment config
	if url := os.Getenv("ISLANDORA_SOLR_WS_SOLR_URL"); url != "" {
		cfg.Solr.URL = url
	}

	if port := os.Getenv("ISLANDORA_SOLR_WS_PORT"); port != "" {
		cfg.Service.Port = port
	}

	b, err := json.Marshal(cfg)
	if err != nil {
		log.Printf("error encoding service config json: %s", err.Error())
		os.Exit(1)
	}

	log.Printf("[CONFIG] composite json:")
	log.Printf("\n%s", string(b))

	return &cfg
}
