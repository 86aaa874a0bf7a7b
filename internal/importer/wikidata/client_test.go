package wikidata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(url string) *Client {
	c := NewClient(url, "test-agent/1.0")
	c.SetRetryDelay(time.Millisecond)
	return c
}

func entityJSON(id, category string) string {
	return fmt.Sprintf(`"%s":{"claims":{"P373":[{"mainsnak":{"datavalue":{"value":"%s"}}}]}}`, id, category)
}

func TestFetchCommonsCategories_ReadsP373(t *testing.T) {
	var gotUA, gotIDs, gotProps string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotIDs = r.URL.Query().Get("ids")
		gotProps = r.URL.Query().Get("props")
		fmt.Fprintf(w, `{"entities":{%s,%s}}`,
			entityJSON("Q1", "Brussels"), entityJSON("Q2", "Antwerp"))
	}))
	defer srv.Close()

	categories := newTestClient(srv.URL).FetchCommonsCategories(context.Background(), []string{"Q1", "Q2"})

	if gotUA != "test-agent/1.0" {
		t.Errorf("User-Agent = %q", gotUA)
	}
	if gotIDs != "Q1|Q2" {
		t.Errorf("ids param = %q, want pipe-separated with Q prefixes", gotIDs)
	}
	if gotProps != "claims" {
		t.Errorf("props = %q, want claims", gotProps)
	}
	if categories["Q1"] != "Brussels" || categories["Q2"] != "Antwerp" {
		t.Errorf("unexpected categories %v", categories)
	}
}

func TestFetchCommonsCategories_BatchSplitting(t *testing.T) {
	var batches []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids := strings.Split(r.URL.Query().Get("ids"), "|")
		batches = append(batches, len(ids))
		fmt.Fprint(w, `{"entities":{}}`)
	}))
	defer srv.Close()

	ids := make([]string, 120)
	for i := range ids {
		ids[i] = fmt.Sprintf("Q%d", i+1)
	}
	newTestClient(srv.URL).FetchCommonsCategories(context.Background(), ids)

	if len(batches) != 3 || batches[0] != 50 || batches[1] != 50 || batches[2] != 20 {
		t.Errorf("batch sizes = %v, want [50 50 20]", batches)
	}
}

func TestFetchCommonsCategories_DeduplicatesInput(t *testing.T) {
	var gotIDs string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIDs = r.URL.Query().Get("ids")
		fmt.Fprint(w, `{"entities":{}}`)
	}))
	defer srv.Close()

	newTestClient(srv.URL).FetchCommonsCategories(context.Background(), []string{"Q5", "Q5", "Q7", "Q5"})
	if gotIDs != "Q5|Q7" {
		t.Errorf("ids = %q, want Q5|Q7", gotIDs)
	}
}

func TestFetchCommonsCategories_MissingAndClaimlessSkipped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"entities":{%s,"Q2":{"missing":true},"Q3":{"claims":{}}}}`,
			entityJSON("Q1", "Ghent"))
	}))
	defer srv.Close()

	categories := newTestClient(srv.URL).FetchCommonsCategories(context.Background(), []string{"Q1", "Q2", "Q3"})

	if len(categories) != 1 || categories["Q1"] != "Ghent" {
		t.Errorf("expected only Q1, got %v", categories)
	}
}

// A failed batch contributes nothing; later batches still run.
func TestFetchCommonsCategories_BatchFailureContinues(t *testing.T) {
	var batch int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		batch++
		if strings.Contains(r.URL.Query().Get("ids"), "Q1|") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprintf(w, `{"entities":{%s}}`, entityJSON("Q51", "Liège"))
	}))
	defer srv.Close()

	ids := make([]string, 51)
	for i := range ids {
		ids[i] = fmt.Sprintf("Q%d", i+1)
	}
	categories := newTestClient(srv.URL).FetchCommonsCategories(context.Background(), ids)

	if len(categories) != 1 || categories["Q51"] != "Liège" {
		t.Errorf("expected the second batch to survive, got %v", categories)
	}
}

// Every key in the result keeps its Q prefix.
func TestFetchCommonsCategories_PrefixPreserved(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"entities":{%s}}`, entityJSON("Q42", "Namur"))
	}))
	defer srv.Close()

	categories := newTestClient(srv.URL).FetchCommonsCategories(context.Background(), []string{"Q42"})
	for id := range categories {
		if !strings.HasPrefix(id, "Q") {
			t.Errorf("id %q lost its Q prefix", id)
		}
	}
	if _, ok := categories["Q42"]; !ok {
		t.Errorf("Q42 missing from %v", categories)
	}
}
