package main

import (
	"net/url"
	"reflect"
	"testing"

	"github.com/uvalib/virgo4-jwt/v4jwt"
)

func TestBuildQueryEmptyQuerySentinels(t *testing.T) {
	svc := newTestService(newTestConfig())
	s := newTestSearch(svc)

	// each of these inputs decodes to one of the values that mean "no query"
	inputs := []string{"", " ", "%20", "%252F", "%25252F", "%25252F-"}

	for _, input := range inputs {
		q := s.buildQuery(input, url.Values{})

		if q.RawQuery != " " {
			t.Errorf("query [%s]: RawQuery = [%s], want [ ]", input, q.RawQuery)
		}

		if q.EffectiveQuery != "*:*" {
			t.Errorf("query [%s]: EffectiveQuery = [%s], want [*:*]", input, q.EffectiveQuery)
		}

		if q.isEmptyQuery() == false {
			t.Errorf("query [%s]: isEmptyQuery() = false, want true", input)
		}
	}
}

func TestBuildQueryEmptyQueryClearsDismax(t *testing.T) {
	svc := newTestService(newTestConfig())
	s := newTestSearch(svc)

	params := url.Values{}
	params.Set("type", "dismax")

	q := s.buildQuery("", params)

	if q.DefType != "" {
		t.Errorf("DefType = [%s], want empty", q.DefType)
	}

	if got := q.Params.Get("defType"); got != "" {
		t.Errorf("defType param = [%s], want unset", got)
	}
}

func TestBuildQueryDefaults(t *testing.T) {
	svc := newTestService(newTestConfig())
	s := newTestSearch(svc)

	q := s.buildQuery("cats", url.Values{})

	if q.RawQuery != "cats" {
		t.Errorf("RawQuery = [%s], want [cats]", q.RawQuery)
	}

	if q.EffectiveQuery != "" {
		t.Errorf("EffectiveQuery = [%s], want empty", q.EffectiveQuery)
	}

	if q.Limit != 20 {
		t.Errorf("Limit = %d, want 20", q.Limit)
	}

	if q.Start != 0 {
		t.Errorf("Start = %d, want 0", q.Start)
	}

	if q.Display != "default" {
		t.Errorf("Display = [%s], want [default]", q.Display)
	}

	if len(q.Filters) != 0 {
		t.Errorf("Filters = %v, want none", q.Filters)
	}

	if got := q.Params.Get("facet"); got != "true" {
		t.Errorf("facet param = [%s], want [true]", got)
	}

	if got := q.Params.Get("facet.mincount"); got != "2" {
		t.Errorf("facet.mincount param = [%s], want [2]", got)
	}

	if got := q.Params.Get("facet.limit"); got != "20" {
		t.Errorf("facet.limit param = [%s], want [20]", got)
	}
}

func TestBuildQueryRestoresSlashes(t *testing.T) {
	svc := newTestService(newTestConfig())
	s := newTestSearch(svc)

	q := s.buildQuery("dc.title%3A(some~slsh~thing)", url.Values{})

	if q.RawQuery != "dc.title:(some/thing)" {
		t.Errorf("RawQuery = [%s], want [dc.title:(some/thing)]", q.RawQuery)
	}
}

func TestBuildQueryArrayKeyNormalization(t *testing.T) {
	svc := newTestService(newTestConfig())
	s := newTestSearch(svc)

	params := url.Values{}
	params.Add("f[]", `genre:"fiction"`)

	q := s.buildQuery("cats", params)

	want := []string{`genre:"fiction"`}

	if reflect.DeepEqual(q.InternalParams["f"], want) == false {
		t.Errorf("InternalParams[f] = %v, want %v", q.InternalParams["f"], want)
	}

	if reflect.DeepEqual(q.Filters, want) == false {
		t.Errorf("Filters = %v, want %v", q.Filters, want)
	}
}

func TestBuildQueryPaging(t *testing.T) {
	svc := newTestService(newTestConfig())
	s := newTestSearch(svc)

	tests := []struct {
		page      string
		limit     string
		wantStart int
		wantLimit int
	}{
		{"", "", 0, 20},
		{"2", "", 40, 20},
		{"3", "10", 30, 10},
		{"-1", "", 0, 20},
		{"bogus", "0", 0, 20},
	}

	for _, test := range tests {
		params := url.Values{}
		if test.page != "" {
			params.Set("page", test.page)
		}
		if test.limit != "" {
			params.Set("limit", test.limit)
		}

		q := s.buildQuery("cats", params)

		if q.Start != test.wantStart || q.Limit != test.wantLimit {
			t.Errorf("page [%s] limit [%s]: start/limit = %d/%d, want %d/%d",
				test.page, test.limit, q.Start, q.Limit, test.wantStart, test.wantLimit)
		}
	}
}

func TestBuildQueryHookMayChangeLimit(t *testing.T) {
	svc := newTestService(newTestConfig())
	s := newTestSearch(svc)

	svc.hooks.onQueryBuilt(func(q *solrQuery) {
		q.Limit = 10
	})

	params := url.Values{}
	params.Set("page", "3")

	q := s.buildQuery("cats", params)

	// the start offset reflects the limit as adjusted by the callback
	if q.Start != 30 {
		t.Errorf("Start = %d, want 30", q.Start)
	}
}

func TestBuildQuerySort(t *testing.T) {
	svc := newTestService(newTestConfig())
	s := newTestSearch(svc)

	tests := []struct {
		name      string
		sorts     []string
		wantParam string
		wantSort  []solrSortClause
	}{
		{
			name:      "bare field defaults to ascending",
			sorts:     []string{"fgs_label_s"},
			wantParam: "fgs_label_s asc",
			wantSort:  []solrSortClause{{Field: "fgs_label_s", Order: "asc"}},
		},
		{
			name:      "explicit order honored",
			sorts:     []string{"fgs_label_s desc"},
			wantParam: "fgs_label_s desc",
			wantSort:  []solrSortClause{{Field: "fgs_label_s", Order: "desc"}},
		},
		{
			name:      "quoted field with spaces",
			sorts:     []string{`"some field" desc`},
			wantParam: `"some field" desc`,
			wantSort:  []solrSortClause{{Field: `"some field"`, Order: "desc"}},
		},
	}

	for _, test := range tests {
		params := url.Values{}
		params["sort"] = test.sorts

		q := s.buildQuery("cats", params)

		if got := q.Params.Get("sort"); got != test.wantParam {
			t.Errorf("%s: sort param = [%s], want [%s]", test.name, got, test.wantParam)
		}

		if reflect.DeepEqual(q.Sort, test.wantSort) == false {
			t.Errorf("%s: Sort = %v, want %v", test.name, q.Sort, test.wantSort)
		}
	}
}

func TestBuildQueryMultipleSortsPassThrough(t *testing.T) {
	svc := newTestService(newTestConfig())
	s := newTestSearch(svc)

	params := url.Values{}
	params["sort"] = []string{"fgs_label_s asc", "PID desc"}

	q := s.buildQuery("cats", params)

	if reflect.DeepEqual(q.Params["sort"], params["sort"]) == false {
		t.Errorf("sort params = %v, want %v", q.Params["sort"], params["sort"])
	}

	wantSort := []solrSortClause{
		{Field: "fgs_label_s", Order: "asc"},
		{Field: "PID", Order: "desc"},
	}

	if reflect.DeepEqual(q.Sort, wantSort) == false {
		t.Errorf("Sort = %v, want %v", q.Sort, wantSort)
	}
}

func TestBuildQueryBaseSort(t *testing.T) {
	cfg := newTestConfig()
	cfg.Query.BaseSort = "fgs_label_s asc"

	svc := newTestService(cfg)
	s := newTestSearch(svc)

	q := s.buildQuery("cats", url.Values{})

	if got := q.Params.Get("sort"); got != "fgs_label_s asc" {
		t.Errorf("sort param = [%s], want [fgs_label_s asc]", got)
	}
}

func TestBuildQueryFilterOrdering(t *testing.T) {
	cfg := newTestConfig()
	cfg.Query.BaseFilter = "status:active\nsite:main"

	svc := newTestService(cfg)
	s := newTestSearch(svc)

	params := url.Values{}
	params.Add("f", `genre:"fiction"`)
	params.Add("hidden_filter", "hidden:yes")

	q := s.buildQuery("cats", params)

	// url filters come first, then the configured and hidden base filters
	want := []string{`genre:"fiction"`, "status:active", "site:main", "hidden:yes"}

	if reflect.DeepEqual(q.Filters, want) == false {
		t.Errorf("Filters = %v, want %v", q.Filters, want)
	}

	if reflect.DeepEqual(q.Params["fq"], want) == false {
		t.Errorf("fq params = %v, want %v", q.Params["fq"], want)
	}
}

func TestBuildQueryNamespaceRestriction(t *testing.T) {
	cfg := newTestConfig()
	cfg.Query.NamespaceRestriction = "islandora, demo"

	svc := newTestService(cfg)
	s := newTestSearch(svc)

	q := s.buildQuery("cats", url.Values{})

	if len(q.Filters) != 1 {
		t.Fatalf("Filters = %v, want one entry", q.Filters)
	}

	want := `PID:islandora\:* OR PID:demo\:*`

	if q.Filters[0] != want {
		t.Errorf("namespace filter = [%s], want [%s]", q.Filters[0], want)
	}
}

func TestBuildQueryDismaxQueryFields(t *testing.T) {
	tests := []struct {
		name            string
		handlerDismax   bool
		useUIFields     bool
		wantQueryFields bool
	}{
		{"plain handler gets our fields", false, false, true},
		{"dismax handler keeps its own fields", true, false, false},
		{"ui fields override the handler", true, true, true},
	}

	for _, test := range tests {
		cfg := newTestConfig()
		cfg.Solr.RequestHandlerDismax = test.handlerDismax
		cfg.Query.UseUIQueryFields = test.useUIFields

		svc := newTestService(cfg)
		s := newTestSearch(svc)

		params := url.Values{}
		params.Set("type", "dismax")

		q := s.buildQuery("cats", params)

		if q.DefType != "dismax" {
			t.Errorf("%s: DefType = [%s], want [dismax]", test.name, q.DefType)
		}

		got := q.Params.Get("qf")

		if test.wantQueryFields == true && got != cfg.Query.QueryFields {
			t.Errorf("%s: qf param = [%s], want [%s]", test.name, got, cfg.Query.QueryFields)
		}

		if test.wantQueryFields == false && got != "" {
			t.Errorf("%s: qf param = [%s], want unset", test.name, got)
		}
	}
}

func TestBuildQueryRestrictedFacetFields(t *testing.T) {
	cfg := newTestConfig()
	cfg.Fields.FacetFields = []serviceConfigField{
		{Field: "genre", Label: "Genre"},
		{Field: "donor", Label: "Donor", Restricted: true},
	}

	svc := newTestService(cfg)
	s := newTestSearch(svc)

	q := s.buildQuery("cats", url.Values{})

	if reflect.DeepEqual(q.Params["facet.field"], []string{"genre"}) == false {
		t.Errorf("anonymous facet.field = %v, want [genre]", q.Params["facet.field"])
	}

	// an authenticated client sees restricted fields too
	s.client.claims = &v4jwt.V4Claims{UserID: "user1"}

	q = s.buildQuery("cats", url.Values{})

	if reflect.DeepEqual(q.Params["facet.field"], []string{"genre", "donor"}) == false {
		t.Errorf("authenticated facet.field = %v, want [genre donor]", q.Params["facet.field"])
	}
}

func TestBuildQueryFacetSortOverrides(t *testing.T) {
	cfg := newTestConfig()
	cfg.Fields.FacetFields = []serviceConfigField{
		{Field: "genre", Settings: serviceConfigFieldSettings{SortBy: "index"}},
		{Field: "type", Settings: serviceConfigFieldSettings{SortBy: "count"}},
	}

	svc := newTestService(cfg)
	s := newTestSearch(svc)

	q := s.buildQuery("cats", url.Values{})

	// facet_max_limit is positive, so "count" is the default and only the
	// "index" override is emitted
	if got := q.Params.Get("f.genre.facet.sort"); got != "index" {
		t.Errorf("f.genre.facet.sort = [%s], want [index]", got)
	}

	if got := q.Params.Get("f.type.facet.sort"); got != "" {
		t.Errorf("f.type.facet.sort = [%s], want unset", got)
	}
}

func TestBuildQueryHighlighting(t *testing.T) {
	cfg := newTestConfig()
	cfg.Fields.HighlightFields = []string{"dc.title", "dc.description"}

	svc := newTestService(cfg)
	s := newTestSearch(svc)

	q := s.buildQuery("cats", url.Values{})

	if got := q.Params.Get("hl"); got != "true" {
		t.Errorf("hl param = [%s], want [true]", got)
	}

	if got := q.Params.Get("hl.fl"); got != "dc.title,dc.description" {
		t.Errorf("hl.fl param = [%s], want [dc.title,dc.description]", got)
	}

	if got := q.Params.Get("hl.fragsize"); got != "400" {
		t.Errorf("hl.fragsize param = [%s], want [400]", got)
	}

	if got := q.Params.Get("hl.simple.pre"); got != `<span class="islandora-solr-highlight">` {
		t.Errorf("hl.simple.pre param = [%s]", got)
	}
}

func TestBuildQueryNoHighlightingWithoutFields(t *testing.T) {
	svc := newTestService(newTestConfig())
	s := newTestSearch(svc)

	q := s.buildQuery("cats", url.Values{})

	if got := q.Params.Get("hl"); got != "" {
		t.Errorf("hl param = [%s], want unset", got)
	}
}
