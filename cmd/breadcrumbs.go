package main

import (
	"net/url"
	"strings"
)

// structured breadcrumb trail and current-query display, built from the
// query state for presentation code.  link targets are expressed as query
// parameter sets; turning them into markup is the theme layer's problem.

type linkAttributes map[string]interface{}

type breadcrumb struct {
	// human-readable label (formatted filter value or query text)
	Label string `json:"label"`
	// set for exclusion ("-field:value") filters
	Exclude bool `json:"exclude,omitempty"`
	// URL parameters narrowing the search to this crumb
	Query url.Values `json:"query,omitempty"`
	// URL parameters with this crumb removed
	RemoveQuery url.Values `json:"remove_query,omitempty"`
	// link attributes, after the link-attribute hooks have run
	Attributes linkAttributes `json:"attributes,omitempty"`
}

type filterDisplay struct {
	// "=" for inclusion filters, "≠" for exclusion filters
	Symbol      string         `json:"symbol"`
	Label       string         `json:"label"`
	RemoveQuery url.Values     `json:"remove_query,omitempty"`
	Attributes  linkAttributes `json:"attributes,omitempty"`
}

type currentQueryDisplay struct {
	Query   string          `json:"query,omitempty"`
	Filters []filterDisplay `json:"filters,omitempty"`
}

func copyValues(src url.Values) url.Values {
	dst := url.Values{}

	for key, vals := range src {
		dst[key] = append([]string{}, vals...)
	}

	return dst
}

// valuesWithout returns params with one occurrence of the given filter
// removed from "f" (and "f" dropped entirely when that leaves it empty).
func valuesWithout(params url.Values, filter string) url.Values {
	out := copyValues(params)

	var kept []string
	removed := false

	for _, val := range out["f"] {
		if removed == false && val == filter {
			removed = true
			continue
		}
		kept = append(kept, val)
	}

	if len(kept) > 0 {
		out["f"] = kept
	} else {
		out.Del("f")
	}

	return out
}

func (s *searchContext) removeLinkAttributes(q *solrQuery, title string, class string) linkAttributes {
	attrs := linkAttributes{
		"title": s.client.localize("Remove") + " " + title,
		"class": class,
		"rel":   "nofollow",
	}

	s.svc.hooks.invokeLinkAttributesBuilt(&attrs, q)

	return attrs
}

// getBreadcrumbs builds the breadcrumb trail for the current query state:
// one crumb per active filter (most recent first), one for the query text,
// and a Home crumb, most general first.
func (s *searchContext) getBreadcrumbs(q *solrQuery) []breadcrumb {
	var crumbs []breadcrumb

	params := q.InternalParams
	fq := params["f"]

	if len(fq) > 0 {
		// each filter crumb narrows the search to the filters seen so far
		accumulated := url.Values{}

		for _, filter := range fq {
			exclude := strings.HasPrefix(filter, "-")

			accumulated.Add("f", filter)

			narrow := copyValues(params)
			narrow.Del("f")
			narrow["f"] = append([]string{}, accumulated["f"]...)

			crumbs = append(crumbs, breadcrumb{
				Label:       s.formatFilter(filter, q),
				Exclude:     exclude,
				Query:       narrow,
				RemoveQuery: valuesWithout(params, filter),
				Attributes:  s.removeLinkAttributes(q, filter, "islandora-solr-breadcrumb-filter"),
			})
		}

		// newest filter first
		reverseCrumbs(crumbs)
	}

	if q.isEmptyQuery() == false {
		narrow := copyValues(params)
		narrow.Del("f")

		remove := copyValues(params)
		if len(remove["f"]) == 0 {
			remove.Del("f")
		}

		crumbs = append(crumbs, breadcrumb{
			Label:       breadcrumbQueryText(q.RawQuery),
			Query:       narrow,
			RemoveQuery: remove,
			Attributes:  s.removeLinkAttributes(q, q.RawQuery, "islandora-solr-breadcrumb-query"),
		})
	}

	crumbs = append(crumbs, breadcrumb{
		Label: s.client.localize("Home"),
	})

	// most general crumb first
	reverseCrumbs(crumbs)

	s.svc.hooks.invokeBreadcrumbsBuilt(&crumbs, q)

	return crumbs
}

func reverseCrumbs(crumbs []breadcrumb) {
	for i, j := 0, len(crumbs)-1; i < j; i, j = i+1, j-1 {
		crumbs[i], crumbs[j] = crumbs[j], crumbs[i]
	}
}

// breadcrumbQueryText strips Solr field prefixes and grouping brackets from
// the raw query so the crumb reads like plain search terms.
func breadcrumbQueryText(rawQuery string) string {
	var terms []string

	for _, token := range splitOutsideQuotes(rawQuery) {
		if idx := strings.Index(token, ":"); idx > 0 {
			token = token[idx+1:]
		}

		token = strings.TrimSpace(token)
		token = strings.ReplaceAll(token, "(", "")
		token = strings.ReplaceAll(token, ")", "")

		terms = append(terms, token)
	}

	return stripSlashes(strings.Join(terms, " "))
}

// currentQuery renders the active query and filters as display entries with
// remove links, for the "current query" block.
func (s *searchContext) currentQuery(q *solrQuery) *currentQueryDisplay {
	display := &currentQueryDisplay{
		Filters: []filterDisplay{},
	}

	if q.isEmptyQuery() == false {
		queryText := stripSlashes(q.RawQuery)

		// substitute human-readable search field labels unless disabled
		if s.svc.config.Query.PlainQueryDisplay == false {
			for _, f := range s.svc.config.Fields.SearchFields {
				if f.Label != "" {
					queryText = strings.ReplaceAll(queryText, f.Field+":(", f.Label+":(")
				}
			}
		}

		display.Query = queryText
	}

	for _, filter := range q.InternalParams["f"] {
		symbol := "="
		if strings.HasPrefix(filter, "-") {
			symbol = "≠"
		}

		display.Filters = append(display.Filters, filterDisplay{
			Symbol:      symbol,
			Label:       s.formatFilter(filter, q),
			RemoveQuery: valuesWithout(q.InternalParams, filter),
			Attributes:  s.removeLinkAttributes(q, filter, "remove-filter"),
		})
	}

	return display
}
