package main

import (
	"fmt"
)

// date/range facet parameter assembly.  Solr removed date faceting in
// version 6, so the parameter family depends on the server version: the
// legacy "facet.date" family for pre-6 (or unknown) servers, and the
// modern "facet.range" family otherwise.  a field is never emitted in both
// families.

const (
	facetDateDefaultStart = "NOW/YEAR-20YEARS"
	facetDateDefaultEnd   = "NOW"
	facetDateDefaultGap   = "+1YEAR"
)

// solrHasDateFacets reports whether the legacy date facet family applies:
// either we do not know the server version, or its major version is below 6.
func (s *searchContext) solrHasDateFacets() bool {
	return s.svc.solr.versionKnown == false || s.svc.solr.majorVersion < 6
}

func (s *searchContext) applyDateRangeFacets(q *solrQuery, fields []serviceConfigField) {
	if len(fields) == 0 {
		return
	}

	legacy := s.solrHasDateFacets()

	for _, f := range fields {
		start := f.Settings.RangeStart
		end := f.Settings.RangeEnd
		gap := f.Settings.RangeGap

		if legacy == true {
			q.Params.Add("facet.date", f.Field)

			if start != "" {
				q.Params.Set(fmt.Sprintf("f.%s.facet.date.start", f.Field), start)
			}
			if end != "" {
				q.Params.Set(fmt.Sprintf("f.%s.facet.date.end", f.Field), end)
			}
			if gap != "" {
				q.Params.Set(fmt.Sprintf("f.%s.facet.date.gap", f.Field), gap)
			}
		} else {
			q.Params.Add("facet.range", f.Field)

			// backfill date defaults for date-typed fields only; other
			// range fields never receive implicit date bounds
			if f.Settings.DateField == true {
				if start == "" {
					start = facetDateDefaultStart
				}
				if end == "" {
					end = facetDateDefaultEnd
				}
				if gap == "" {
					gap = facetDateDefaultGap
				}
			}

			if start != "" {
				q.Params.Set(fmt.Sprintf("f.%s.facet.range.start", f.Field), start)
			}
			if end != "" {
				q.Params.Set(fmt.Sprintf("f.%s.facet.range.end", f.Field), end)
			}
			if gap != "" {
				q.Params.Set(fmt.Sprintf("f.%s.facet.range.gap", f.Field), gap)
			}
		}

		// a slider control needs empty buckets back to know the full domain
		if f.Settings.SliderEnabled == true {
			q.Params.Set(fmt.Sprintf("f.%s.facet.mincount", f.Field), "0")
		}
	}

	if legacy == true {
		// global defaults, applied once rather than per field
		q.Params.Set("facet.date.start", facetDateDefaultStart)
		q.Params.Set("facet.date.end", facetDateDefaultEnd)
		q.Params.Set("facet.date.gap", facetDateDefaultGap)
	}
}
