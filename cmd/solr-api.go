package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type solrDocument map[string]interface{}

// the typed portion of the Solr response envelope.  everything else in the
// envelope passes through to the caller untouched.
type solrResponseDocuments struct {
	NumFound int            `json:"numFound"`
	Start    int            `json:"start"`
	MaxScore float64        `json:"maxScore,omitempty"`
	Docs     []solrDocument `json:"docs,omitempty"`
}

// solrTransport is the wire seam to the index.  the service talks to Solr
// exclusively through this interface; tests substitute an in-memory
// implementation.
type solrTransport interface {
	Search(query string, start int, limit int, params url.Values, method string) ([]byte, error)
	Ping(host string, port int, path string) (float64, error)
}

type httpSolrTransport struct {
	serviceClient     *http.Client
	healthcheckClient *http.Client
	baseURL           string
}

func (t *httpSolrTransport) Search(query string, start int, limit int, params url.Values, method string) ([]byte, error) {
	values := url.Values{}

	for key, vals := range params {
		for _, val := range vals {
			values.Add(key, val)
		}
	}

	values.Set("q", query)
	values.Set("start", strconv.Itoa(start))
	values.Set("rows", strconv.Itoa(limit))
	values.Set("wt", "json")

	selectURL := fmt.Sprintf("%s/select", strings.TrimSuffix(t.baseURL, "/"))

	var req *http.Request
	var reqErr error

	if method == "POST" {
		req, reqErr = http.NewRequest("POST", selectURL, strings.NewReader(values.Encode()))
		if req != nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	} else {
		req, reqErr = http.NewRequest("GET", fmt.Sprintf("%s?%s", selectURL, values.Encode()), nil)
	}

	if reqErr != nil {
		return nil, fmt.Errorf("failed to create Solr request: %s", reqErr.Error())
	}

	res, resErr := t.serviceClient.Do(req)
	if resErr != nil {
		return nil, resErr
	}

	defer res.Body.Close()

	body, readErr := io.ReadAll(res.Body)
	if readErr != nil {
		return nil, fmt.Errorf("failed to read Solr response: %s", readErr.Error())
	}

	return body, nil
}

func (t *httpSolrTransport) Ping(host string, port int, path string) (float64, error) {
	pingURL := fmt.Sprintf("http://%s:%d%s/admin/ping?wt=json", host, port, strings.TrimSuffix(path, "/"))

	start := time.Now()

	res, err := t.healthcheckClient.Get(pingURL)
	if err != nil {
		return 0, err
	}

	defer res.Body.Close()

	elapsedMS := float64(time.Since(start)) / float64(time.Millisecond)

	if res.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("ping returned http status %d", res.StatusCode)
	}

	var ping struct {
		Status string `json:"status"`
	}

	if decErr := json.NewDecoder(res.Body).Decode(&ping); decErr != nil {
		return 0, fmt.Errorf("failed to decode ping response: %s", decErr.Error())
	}

	if ping.Status != "OK" {
		return 0, fmt.Errorf("ping returned status [%s]", ping.Status)
	}

	return elapsedMS, nil
}

// discoverSolrVersion asks the server for its version when configuration
// does not supply one.  any failure leaves the version unknown, which the
// facet builder treats as pre-6.
func discoverSolrVersion(client *http.Client, baseURL string) (string, error) {
	infoURL := fmt.Sprintf("%s/admin/info/system?wt=json", strings.TrimSuffix(baseURL, "/"))

	res, err := client.Get(infoURL)
	if err != nil {
		return "", err
	}

	defer res.Body.Close()

	var info struct {
		Lucene struct {
			SolrSpecVersion string `json:"solr-spec-version"`
		} `json:"lucene"`
	}

	if decErr := json.NewDecoder(res.Body).Decode(&info); decErr != nil {
		return "", fmt.Errorf("failed to decode system info response: %s", decErr.Error())
	}

	if info.Lucene.SolrSpecVersion == "" {
		return "", fmt.Errorf("system info response contained no version")
	}

	return info.Lucene.SolrSpecVersion, nil
}

// parseSolrMajorVersion extracts the major version from a version string
// such as "4.10.2".  the second value reports whether parsing succeeded.
func parseSolrMajorVersion(version string) (int, bool) {
	major := strings.Split(strings.TrimSpace(version), ".")[0]

	val, err := strconv.Atoi(major)
	if err != nil {
		return 0, false
	}

	return val, true
}
