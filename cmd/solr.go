package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// executeQuery issues the built query against the index and replaces the
// raw document list in the response envelope with normalized objects.  the
// rest of the envelope (counts, facet counts, highlighting) passes through
// unchanged.  transport failures are recoverable: the caller gets an error
// to report alongside an empty result, not a crash.
func (s *searchContext) executeQuery(q *solrQuery, alterResults bool, usePost bool) (map[string]interface{}, error) {
	// the substituted base query wins over the (empty) user query
	solrTerm := q.RawQuery
	if q.EffectiveQuery != "" {
		solrTerm = q.EffectiveQuery
	}

	method := "GET"
	if usePost == true {
		method = "POST"
	}

	if s.client.opts.verbose == true {
		s.log("[SOLR] req: q = [%s], start = %d, rows = %d, params = [%s]", solrTerm, q.Start, q.Limit, q.Params.Encode())
	} else {
		s.log("[SOLR] req: q = [%s], start = %d, rows = %d", solrTerm, q.Start, q.Limit)
	}

	start := time.Now()
	body, reqErr := s.transport.Search(solrTerm, q.Start, q.Limit, q.Params, method)
	elapsedMS := int64(time.Since(start) / time.Millisecond)

	if reqErr != nil {
		s.err("Failed response from %s %s - %s. Elapsed Time: %d (ms)", method, s.svc.config.Solr.URL, reqErr.Error(), elapsedMS)
		return nil, fmt.Errorf("error searching Solr index: %s", reqErr.Error())
	}

	var envelope map[string]interface{}

	if decErr := json.Unmarshal(body, &envelope); decErr != nil {
		s.err("Failed response from %s %s - %s. Elapsed Time: %d (ms)", method, s.svc.config.Solr.URL, decErr.Error(), elapsedMS)
		return nil, fmt.Errorf("error searching Solr index: failed to decode response")
	}

	s.log("Successful Solr response from %s %s. Elapsed Time: %d (ms)", method, s.svc.config.Solr.URL, elapsedMS)

	// notify read-only observers of the raw result
	s.svc.hooks.invokeResultsFetched(envelope)

	docs, convErr := s.convertResponseDocuments(envelope)
	if convErr != nil {
		return nil, convErr
	}

	records := s.normalizeResults(q, docs.Docs, alterResults)

	// swap the raw document list for the normalized object list, leaving
	// the rest of the envelope untouched
	if response, ok := envelope["response"].(map[string]interface{}); ok {
		delete(response, "docs")
		response["objects"] = records
	}

	s.log("[SOLR] res: { start = %d, rows = %d, total = %d }", docs.Start, len(docs.Docs), docs.NumFound)

	return envelope, nil
}

func (s *searchContext) convertResponseDocuments(envelope map[string]interface{}) (*solrResponseDocuments, error) {
	// the envelope is held as a raw map so unknown blocks pass through to
	// the caller; decode just the "response" block into typed structures.

	var docs solrResponseDocuments

	raw, ok := envelope["response"].(map[string]interface{})
	if ok == false {
		return nil, errors.New("Solr response envelope contained no response block")
	}

	cfg := &mapstructure.DecoderConfig{
		Metadata:   nil,
		Result:     &docs,
		TagName:    "json",
		ZeroFields: true,
	}

	dec, _ := mapstructure.NewDecoder(cfg)

	if mapDecErr := dec.Decode(raw); mapDecErr != nil {
		s.log("mapstructure.Decode() failed: %s", mapDecErr.Error())
		return nil, errors.New("Failed to decode Solr response block")
	}

	return &docs, nil
}

// ping probes the index for availability.  secure-transport URLs are an
// explicit unsupported-configuration error; an unparseable URL is a normal
// "unavailable" outcome, not an error.  round-trip time is biased up by a
// small epsilon so a genuine zero-millisecond response is never confused
// with "unavailable".
func (s *searchContext) ping(solrURL string) (float64, bool, error) {
	if strings.HasPrefix(solrURL, "https://") {
		return 0, false, errors.New("SSL connections to Solr are not supported")
	}

	u, parseErr := url.Parse(solrURL)
	if parseErr != nil {
		return 0, false, nil
	}

	host := u.Hostname()
	portStr := u.Port()

	if host == "" || portStr == "" {
		return 0, false, nil
	}

	port, portErr := strconv.Atoi(portStr)
	if portErr != nil {
		return 0, false, nil
	}

	elapsedMS, pingErr := s.transport.Ping(host, port, u.Path)
	if pingErr != nil {
		s.log("ping failed: %s", pingErr.Error())
		return 0, false, nil
	}

	return elapsedMS + 0.01, true, nil
}
