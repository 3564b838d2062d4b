package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// searchContext ties one request to the service: the client, the transport
// to the index, and the request path (used for navigation stashes and
// breadcrumb links).

type searchContext struct {
	svc       *serviceContext
	client    *clientContext
	transport solrTransport
	path      string
}

type searchResponse struct {
	status int         // http status code
	data   interface{} // data to return as JSON
	err    error       // error, if any
}

func (s *searchContext) init(svc *serviceContext, c *clientContext) {
	s.svc = svc
	s.client = c
	s.transport = svc.solr.transport

	if c.ginCtx != nil {
		s.path = c.ginCtx.Request.URL.Path
	}
}

func (s *searchContext) log(format string, args ...interface{}) {
	s.client.log(format, args...)
}

func (s *searchContext) err(format string, args ...interface{}) {
	s.client.err(format, args...)
}

// handleSearchRequest runs the full pipeline: build the query from URL
// parameters, execute it, and shape the envelope for the caller.  index
// failures yield an empty result with a reported error, not a failed
// request.
func (s *searchContext) handleSearchRequest(c *gin.Context) searchResponse {
	query := c.Query("q")
	params := c.Request.URL.Query()

	// the standard request handler chokes on a truly empty query string
	if s.svc.config.Solr.RequestHandler == "standard" {
		if query == "" || query == " " {
			query = "%252F"
		}
	}

	s.log("[SEARCH] query: [%s]", query)

	q := s.buildQuery(query, params)

	usePost := c.Request.Method == "POST"

	envelope, execErr := s.executeQuery(q, true, usePost)

	if execErr != nil {
		// recoverable: report the error and an empty result
		empty := gin.H{
			"error": execErr.Error(),
			"response": gin.H{
				"numFound": 0,
				"start":    q.Start,
				"objects":  []*resultRecord{},
			},
			"breadcrumbs": s.getBreadcrumbs(q),
		}

		return searchResponse{status: http.StatusOK, data: empty, err: execErr}
	}

	envelope["breadcrumbs"] = s.getBreadcrumbs(q)
	envelope["current_query"] = s.currentQuery(q)

	if s.client.opts.debug == true {
		envelope["query_state"] = gin.H{
			"raw_query":       q.RawQuery,
			"effective_query": q.EffectiveQuery,
			"def_type":        q.DefType,
			"start":           q.Start,
			"limit":           q.Limit,
			"display":         q.Display,
			"params":          q.Params,
		}
	}

	return searchResponse{status: http.StatusOK, data: envelope}
}

// handlePingRequest probes the index and reports availability.
func (s *searchContext) handlePingRequest() searchResponse {
	ms, available, pingErr := s.ping(s.svc.config.Solr.URL)

	if pingErr != nil {
		return searchResponse{status: http.StatusInternalServerError, err: pingErr}
	}

	if available == false {
		return searchResponse{status: http.StatusServiceUnavailable, data: gin.H{"available": false}}
	}

	s.log("[PING] solr responded in %0.2f ms", ms)

	return searchResponse{status: http.StatusOK, data: gin.H{"available": true, "elapsed_ms": ms}}
}
