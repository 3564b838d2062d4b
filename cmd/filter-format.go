package main

import (
	"regexp"
	"strings"
	"time"
)

// rendering of raw filter-query strings into human-readable labels, used by
// the current-query display and the breadcrumb trail.

var filterOperatorRE = regexp.MustCompile(` (OR|AND) `)

// solr timestamp layouts seen in range filters, most specific first
var solrTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02",
	"2006",
}

func parseSolrTime(s string) (time.Time, bool) {
	for _, layout := range solrTimeLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// dateFormatFor returns the configured display format for a date facet
// field, falling back to the site-wide facet date format.
func (s *searchContext) dateFormatFor(field string) string {
	for _, f := range s.svc.config.Fields.FacetFields {
		if f.Field == field && f.Settings.DateFormat != "" {
			return f.Settings.DateFormat
		}
	}

	return s.svc.config.Query.FacetDateFormat
}

// singleDateFormatFor returns the display format for a non-range date field
// with a configured format, or empty.
func (s *searchContext) singleDateFormatFor(field string) string {
	for _, f := range s.svc.config.Fields.FacetFields {
		if f.Field == field && f.Settings.Range == false && f.Settings.DateFormat != "" {
			return f.Settings.DateFormat
		}
	}

	return ""
}

// formatFilter renders one raw filter-query string into a display label.
// compound filters keep their operand and operator order; simple filters
// reduce to their value, with date-faceted values rendered as a formatted
// range.
func (s *searchContext) formatFilter(filter string, q *solrQuery) string {
	operands := filterOperatorRE.Split(filter, -1)

	if len(operands) > 1 {
		// compound filter: strip each operand down to its unquoted value
		// and rejoin in original order with the original operators

		var operators []string
		for _, match := range filterOperatorRE.FindAllStringSubmatch(filter, -1) {
			operators = append(operators, match[1])
		}

		var out strings.Builder

		for i, operand := range operands {
			_, value := splitFilterClause(operand)
			value = strings.ReplaceAll(value, `"`, "")
			value = strings.ReplaceAll(value, "info:fedora/", "")

			out.WriteString(value)

			if i < len(operators) {
				out.WriteString(" " + operators[i] + " ")
			}
		}

		return stripSlashes(strings.TrimSpace(out.String()))
	}

	field, value := splitFilterClause(filter)
	value = strings.Trim(value, `"`)

	// a leading exclusion marker is stripped for lookup only; callers track
	// inclusion/exclusion separately
	solrField := strings.TrimPrefix(field, "-")

	switch {
	case sliceContainsString(q.Params["facet.date"], solrField):
		// legacy date facet: the value is a "[start TO end]" range
		format := s.dateFormatFor(solrField)

		rangeStr := strings.TrimSuffix(strings.TrimPrefix(value, "["), "]")
		bounds := strings.SplitN(rangeStr, " TO ", 2)

		if len(bounds) == 2 {
			from, fromOK := parseSolrTime(bounds[0])
			to, toOK := parseSolrTime(bounds[1])

			if fromOK && toOK {
				// shift both bounds forward a day to counter the
				// inclusive/exclusive boundary mismatch in the underlying
				// range semantics
				from = from.Add(24 * time.Hour)
				to = to.Add(24 * time.Hour)

				value = from.Format(format) + " - " + to.Format(format)
			}
		}

	default:
		if format := s.singleDateFormatFor(solrField); format != "" {
			if t, ok := parseSolrTime(stripSlashes(value)); ok {
				value = t.Format(format)
			}
		}
	}

	return stripSlashes(value)
}

// splitFilterClause splits "field:value" at the first separator.  a clause
// with no separator yields an empty field and the clause as value.
func splitFilterClause(clause string) (string, string) {
	idx := strings.Index(clause, ":")

	if idx < 0 {
		return "", clause
	}

	return clause[:idx], strings.TrimSpace(clause[idx+1:])
}
