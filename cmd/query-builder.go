package main

import (
	"fmt"
	"log"
	"net/url"
	"strings"
)

// the fixed set of query values that mean "no query at all": a bare space,
// and the various encoded-slash artifacts left behind by upstream URL
// handling.
var differentKindsOfNothing = []string{" ", "%20", "%252F", "%2F", "%252F-", ""}

type solrSortClause struct {
	Field string
	Order string
}

// solrQuery is the fully built request state: constructed once per request
// by buildQuery, mutated only by the query-built hook during the build
// phase, and read-only afterward.
type solrQuery struct {
	// the user's literal query text, URL-decoded and slash-restored.
	// a single space when the user supplied nothing meaningful.
	RawQuery string

	// substituted base query sent in place of an empty RawQuery.
	// when set, this is the query term that goes to Solr.
	EffectiveQuery string

	// "dismax" or "edismax" when requested; empty otherwise
	DefType string

	Start int
	Limit int

	Sort    []solrSortClause
	Filters []string

	// selected presentation identifier
	Display string

	// the flattened Solr request parameters
	Params url.Values

	// URL parameters as received, minus the reserved "q" and "page"
	InternalParams url.Values

	page int
}

// InternalSolrQuery returns the substituted base query.
//
// Deprecated: use EffectiveQuery.  retained for callers of the old field
// name; logs a deprecation warning on every use.
func (q *solrQuery) InternalSolrQuery() string {
	log.Printf("[DEPRECATED] InternalSolrQuery() is deprecated; use EffectiveQuery")
	return q.EffectiveQuery
}

func (q *solrQuery) isEmptyQuery() bool {
	return sliceContainsString(differentKindsOfNothing, q.RawQuery)
}

// visibleFacetFields returns the configured facet fields this client may
// see.  restricted fields require an authenticated session.
func (s *searchContext) visibleFacetFields() []serviceConfigField {
	var fields []serviceConfigField

	for _, f := range s.svc.config.Fields.FacetFields {
		if f.Restricted == true && s.client.isAuthenticated() == false {
			continue
		}

		fields = append(fields, f)
	}

	return fields
}

// buildQuery translates the raw query string and URL parameters into a
// fully formed Solr request.  malformed input degrades to defaults rather
// than failing.
func (s *searchContext) buildQuery(query string, params url.Values) *solrQuery {
	cfg := &s.svc.config.Query

	q := &solrQuery{
		Params:         url.Values{},
		InternalParams: url.Values{},
	}

	// the pager offset comes from the reserved "page" parameter
	q.page = integerWithFallback(params.Get("page"), 0, 0)

	// keep everything but the reserved parameters as query-shaping input.
	// legacy callers send array parameters as "f[]"-style keys; normalize
	// the shape here so nothing deeper branches on it.
	for key, vals := range params {
		key = strings.TrimSuffix(key, "[]")
		if key == "q" || key == "page" {
			continue
		}
		q.InternalParams[key] = append(q.InternalParams[key], vals...)
	}

	// dismax/edismax request type
	if typ := q.InternalParams.Get("type"); typ == "dismax" || typ == "edismax" {
		q.DefType = typ
		q.Params.Set("defType", typ)
	}

	// some characters break the search; ":" and "/" are examples
	decoded, err := url.QueryUnescape(query)
	if err != nil {
		decoded = query
	}
	q.RawQuery = restoreSlashes(decoded)

	if sliceContainsString(differentKindsOfNothing, q.RawQuery) {
		// keep a single space so downstream code can tell "no query" from a
		// zero-length string
		q.RawQuery = " "
		q.EffectiveQuery = cfg.BaseQuery

		// dismax cannot run against a wildcard base query
		q.DefType = ""
		q.Params.Del("defType")
	}

	s.buildSort(q)

	// display profile
	if display := q.InternalParams.Get("display"); display != "" {
		q.Display = display
	} else {
		q.Display = cfg.PrimaryDisplay
	}

	// paging
	q.Limit = integerWithFallback(q.InternalParams.Get("limit"), 1, cfg.NumResults)
	q.Start = max(0, q.page) * q.Limit

	s.buildFacetParams(q)
	s.buildHighlightParams(q)
	s.buildFilterParams(q)

	// dismax query fields: only inject ours when configured to override the
	// request handler, or when the handler has none of its own
	if q.DefType == "dismax" || q.DefType == "edismax" {
		if cfg.UseUIQueryFields == true || s.svc.config.Solr.RequestHandlerDismax == false {
			q.Params.Set("qf", cfg.QueryFields)
		}
	}

	// the single extension seam permitted to mutate the in-progress query
	s.svc.hooks.invokeQueryBuilt(q)

	// always last: the hook may have changed the limit
	q.Start = max(0, q.page) * q.Limit

	return q
}

func (s *searchContext) buildSort(q *solrQuery) {
	sorts, ok := q.InternalParams["sort"]

	if ok == false || len(sorts) == 0 {
		// no sort supplied; apply the configured base sort when non-empty
		baseSort := strings.TrimSpace(s.svc.config.Query.BaseSort)
		if baseSort != "" {
			q.Params.Set("sort", baseSort)
			q.Sort = parseSortClauses(baseSort)
		}
		return
	}

	if len(sorts) > 1 {
		// multiple sorts pass through as-is; each entry is assumed to
		// already be "field order"
		q.Params["sort"] = append([]string{}, sorts...)
		for _, entry := range sorts {
			q.Sort = append(q.Sort, parseSortClauses(entry)...)
		}
		return
	}

	// scalar sort: honor a trailing asc/desc token, default to ascending
	parts := splitOutsideQuotes(sorts[0])

	if len(parts) > 1 && (parts[1] == "asc" || parts[1] == "desc") {
		q.Params.Set("sort", sorts[0])
		q.Sort = []solrSortClause{{Field: parts[0], Order: parts[1]}}
	} else {
		q.Params.Set("sort", parts[0]+" asc")
		q.Sort = []solrSortClause{{Field: parts[0], Order: "asc"}}
	}
}

func parseSortClauses(s string) []solrSortClause {
	var clauses []solrSortClause

	parts := splitOutsideQuotes(s)

	for i := 0; i < len(parts); i++ {
		clause := solrSortClause{Field: parts[i], Order: "asc"}

		if i+1 < len(parts) && (parts[i+1] == "asc" || parts[i+1] == "desc") {
			clause.Order = parts[i+1]
			i++
		}

		clauses = append(clauses, clause)
	}

	return clauses
}

func (s *searchContext) buildFacetParams(q *solrQuery) {
	cfg := &s.svc.config.Query

	facetFields := s.visibleFacetFields()

	q.Params.Set("facet", "true")
	q.Params.Set("facet.mincount", fmt.Sprintf("%d", cfg.FacetMinCount))
	q.Params.Set("facet.limit", fmt.Sprintf("%d", cfg.FacetMaxLimit))

	if s.svc.config.Solr.RequestHandler != "" {
		q.Params.Set("qt", s.svc.config.Solr.RequestHandler)
	}

	var rangeFields []serviceConfigField

	for _, f := range facetFields {
		if f.Settings.Range == true {
			// date/range fields get their own parameter family; keep them
			// out of the generic facet.field list
			rangeFields = append(rangeFields, f)
			continue
		}

		q.Params.Add("facet.field", f.Field)
	}

	s.applyDateRangeFacets(q, rangeFields)

	// per-field sort overrides: only when they differ from the default
	// order implied by facet.limit
	defaultSort := "count"
	if cfg.FacetMaxLimit <= 0 {
		defaultSort = "index"
	}

	for _, f := range facetFields {
		if f.Settings.SortBy != "" && f.Settings.SortBy != defaultSort {
			q.Params.Set(fmt.Sprintf("f.%s.facet.sort", f.Field), f.Settings.SortBy)
		}
	}
}

func (s *searchContext) buildHighlightParams(q *solrQuery) {
	fields := nonemptyValues(s.svc.config.Fields.HighlightFields)

	if len(fields) == 0 {
		return
	}

	q.Params.Set("hl", "true")
	q.Params.Set("hl.fl", strings.Join(fields, ","))
	q.Params.Set("hl.fragsize", "400")
	q.Params.Set("hl.simple.pre", `<span class="islandora-solr-highlight">`)
	q.Params.Set("hl.simple.post", "</span>")
}

func (s *searchContext) buildFilterParams(q *solrQuery) {
	cfg := &s.svc.config.Query

	baseFilters := splitLines(cfg.BaseFilter)

	// hidden filters apply without showing up in the visible trail
	baseFilters = append(baseFilters, q.InternalParams["hidden_filter"]...)

	urlFilters := q.InternalParams["f"]

	switch {
	case len(urlFilters) > 0:
		q.Filters = append([]string{}, urlFilters...)
		q.Filters = append(q.Filters, baseFilters...)
	case len(baseFilters) > 0:
		q.Filters = baseFilters
	}

	// restrict results to the configured namespaces with one disjunctive
	// filter entry
	if list := strings.TrimSpace(cfg.NamespaceRestriction); list != "" {
		var clauses []string

		for _, namespace := range splitList(list) {
			clauses = append(clauses, fmt.Sprintf(`%s:%s\:*`, s.svc.config.Objects.IDField, namespace))
		}

		if len(clauses) > 0 {
			q.Filters = append(q.Filters, strings.Join(clauses, " OR "))
		}
	}

	if len(q.Filters) > 0 {
		q.Params["fq"] = append([]string{}, q.Filters...)
	}
}
