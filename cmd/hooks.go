package main

import (
	"strings"
)

// extension points for embedding code.  callbacks run synchronously in
// registration order.  only query-built hooks may mutate paging parameters;
// the builder recomputes the start offset after they run so a changed limit
// stays consistent.

type queryBuiltHook func(q *solrQuery)

type resultsFetchedHook func(envelope map[string]interface{})

type resultNormalizedHook func(record *resultRecord, q *solrQuery)

type allResultsNormalizedHook func(records []*resultRecord, q *solrQuery)

type breadcrumbsBuiltHook func(crumbs *[]breadcrumb, q *solrQuery)

type linkAttributesBuiltHook func(attrs *linkAttributes, q *solrQuery)

type hookRegistry struct {
	queryBuilt           []queryBuiltHook
	resultsFetched       []resultsFetchedHook
	resultNormalized     map[string][]resultNormalizedHook // keyed by content model name
	allResultsNormalized []allResultsNormalizedHook
	breadcrumbsBuilt     []breadcrumbsBuiltHook
	linkAttributesBuilt  []linkAttributesBuiltHook
}

func newHookRegistry() *hookRegistry {
	return &hookRegistry{
		resultNormalized: make(map[string][]resultNormalizedHook),
	}
}

func (h *hookRegistry) onQueryBuilt(hook queryBuiltHook) {
	h.queryBuilt = append(h.queryBuilt, hook)
}

func (h *hookRegistry) onResultsFetched(hook resultsFetchedHook) {
	h.resultsFetched = append(h.resultsFetched, hook)
}

func (h *hookRegistry) onResultNormalized(contentModel string, hook resultNormalizedHook) {
	h.resultNormalized[contentModel] = append(h.resultNormalized[contentModel], hook)
}

func (h *hookRegistry) onAllResultsNormalized(hook allResultsNormalizedHook) {
	h.allResultsNormalized = append(h.allResultsNormalized, hook)
}

func (h *hookRegistry) onBreadcrumbsBuilt(hook breadcrumbsBuiltHook) {
	h.breadcrumbsBuilt = append(h.breadcrumbsBuilt, hook)
}

func (h *hookRegistry) onLinkAttributesBuilt(hook linkAttributesBuiltHook) {
	h.linkAttributesBuilt = append(h.linkAttributesBuilt, hook)
}

func (h *hookRegistry) invokeQueryBuilt(q *solrQuery) {
	for _, hook := range h.queryBuilt {
		hook(q)
	}
}

func (h *hookRegistry) invokeResultsFetched(envelope map[string]interface{}) {
	for _, hook := range h.resultsFetched {
		hook(envelope)
	}
}

// invokeResultNormalized runs once per content model tag attached to the
// record, with the "info:fedora/" URI prefix stripped from the tag.
func (h *hookRegistry) invokeResultNormalized(record *resultRecord, q *solrQuery) {
	for _, uri := range record.ContentModels {
		name := strings.TrimPrefix(uri, "info:fedora/")

		for _, hook := range h.resultNormalized[name] {
			hook(record, q)
		}
	}
}

func (h *hookRegistry) invokeAllResultsNormalized(records []*resultRecord, q *solrQuery) {
	for _, hook := range h.allResultsNormalized {
		hook(records, q)
	}
}

func (h *hookRegistry) invokeBreadcrumbsBuilt(crumbs *[]breadcrumb, q *solrQuery) {
	for _, hook := range h.breadcrumbsBuilt {
		hook(crumbs, q)
	}
}

func (h *hookRegistry) invokeLinkAttributesBuilt(attrs *linkAttributes, q *solrQuery) {
	for _, hook := range h.linkAttributesBuilt {
		hook(attrs, q)
	}
}
