package main

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// resultRecord is one normalized search result.  the raw document is kept
// verbatim under SolrDoc and later reduced by the field-visibility pass.
type resultRecord struct {
	PID                string                 `json:"PID"`
	ObjectURL          string                 `json:"object_url"`
	SolrDoc            solrDocument           `json:"solr_doc"`
	Label              string                 `json:"object_label,omitempty"`
	ContentModels      []string               `json:"content_models,omitempty"`
	Datastreams        []string               `json:"datastreams,omitempty"`
	ThumbnailURL       string                 `json:"thumbnail_url"`
	ObjectURLParams    map[string]interface{} `json:"object_url_params"`
	ThumbnailURLParams map[string]interface{} `json:"thumbnail_url_params"`
}

// the datastream identifier whose presence means a thumbnail exists
const thumbnailDatastream = "TN"

func (s *searchContext) navigationEnabled(q *solrQuery) bool {
	if s.svc.config.Query.SearchNavigation == true {
		return true
	}

	return boolValue(q.InternalParams.Get("search_navigation"))
}

// normalizeResults maps raw Solr documents into result records: identifiers,
// thumbnail reference, label, content model and datastream lists, and
// navigation metadata.  when alterResults is set, the per-content-model and
// whole-batch extension points run, followed by field-visibility filtering.
func (s *searchContext) normalizeResults(q *solrQuery, docs []solrDocument, alterResults bool) []*resultRecord {
	records := []*resultRecord{}

	if len(docs) == 0 {
		return records
	}

	objCfg := &s.svc.config.Objects

	// when navigation is enabled, stash the full query state under a fresh
	// random token so a later request can resume next/previous traversal
	navParams := map[string]interface{}{}

	if s.navigationEnabled(q) == true {
		token := uuid.NewString()

		entry := navEntry{
			Path:           s.path,
			Query:          q.RawQuery,
			EffectiveQuery: q.EffectiveQuery,
			Limit:          q.Limit,
			Params:         q.Params,
			InternalParams: q.InternalParams,
		}

		if navErr := s.svc.nav.Set(context.Background(), token, entry); navErr != nil {
			s.err("failed to stash navigation state: %s", navErr.Error())
		} else {
			navParams["solr_nav"] = map[string]interface{}{
				"id":   token,
				"page": q.page,
			}
		}
	}

	for i, doc := range docs {
		pid := firstElementOf(stringValues(doc[objCfg.IDField]))

		record := &resultRecord{
			PID:       pid,
			ObjectURL: objCfg.ObjectPathPrefix + pid,
			SolrDoc:   doc,
		}

		record.ContentModels = stringValues(doc[objCfg.ContentModelField])

		datastreams, hasDatastreams := doc[objCfg.DatastreamField]
		record.Datastreams = stringValues(datastreams)

		if labels := stringValues(doc[objCfg.LabelField]); len(labels) > 0 {
			record.Label = strings.Join(labels, ", ")
		}

		// a document with no datastream list is assumed to have a
		// thumbnail; one with a list lacking the thumbnail datastream
		// falls back to the default image
		if hasDatastreams == false || sliceContainsString(record.Datastreams, thumbnailDatastream) {
			record.ThumbnailURL = record.ObjectURL + "/datastream/" + thumbnailDatastream + "/view"
		} else {
			record.ThumbnailURL = objCfg.DefaultImagePath
		}

		record.ObjectURLParams = recordNavParams(navParams, i)
		record.ThumbnailURLParams = recordNavParams(navParams, i)

		records = append(records, record)
	}

	if alterResults == true {
		for _, record := range records {
			s.svc.hooks.invokeResultNormalized(record, q)
		}

		s.svc.hooks.invokeAllResultsNormalized(records, q)

		s.applyFieldVisibility(records)
	}

	return records
}

// recordNavParams attaches this record's ordinal offset to a copy of the
// shared navigation link parameters.
func recordNavParams(navParams map[string]interface{}, offset int) map[string]interface{} {
	params := map[string]interface{}{}

	nav, ok := navParams["solr_nav"].(map[string]interface{})
	if ok == false {
		return params
	}

	entry := map[string]interface{}{}
	for key, val := range nav {
		entry[key] = val
	}
	entry["offset"] = offset

	params["solr_nav"] = entry

	return params
}

// visibleResultFields returns the label map of result fields this client
// may see in full.
func (s *searchContext) visibleResultFields() map[string]string {
	fields := make(map[string]string)

	for _, f := range s.svc.config.Fields.ResultFields {
		if f.Restricted == true && s.client.isAuthenticated() == false {
			continue
		}

		fields[f.Field] = f.Label
	}

	return fields
}

// applyFieldVisibility reduces each record's raw document to the visible
// field set.  configured fields absent from the permitted set are
// permission-restricted and always dropped; unconfigured fields pass
// through unless result fields are limited to the configured list.
func (s *searchContext) applyFieldVisibility(records []*resultRecord) {
	filtered := s.visibleResultFields()

	var noPermission []string

	for _, f := range s.svc.config.Fields.ResultFields {
		if _, ok := filtered[f.Field]; ok == false {
			noPermission = append(noPermission, f.Field)
		}
	}

	for _, record := range records {
		doc := record.SolrDoc
		rows := solrDocument{}

		// defined fields first
		for field := range filtered {
			if val, ok := doc[field]; ok && val != nil {
				rows[field] = val
			}
		}

		// then any remaining raw fields, unless limited to configured ones
		if s.svc.config.Query.LimitResultFields == false {
			for field, val := range doc {
				if _, ok := rows[field]; ok {
					continue
				}
				if sliceContainsString(noPermission, field) {
					continue
				}
				rows[field] = val
			}
		}

		record.SolrDoc = rows
	}
}
