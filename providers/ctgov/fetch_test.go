package ctgov

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"trial-hand/config"
)

func testStudy(nctID string) Study {
	var s Study
	s.ProtocolSection.IdentificationModule.NCTID = nctID
	s.ProtocolSection.ConditionsModule.Conditions = []string{"Hidradenitis Suppurativa"}
	return s
}

func testFetcher(baseURL string, pageSize, maxStudies int) *Fetcher {
	cfg := &config.Config{
		CtgovBaseURL:    baseURL,
		CtgovPageSize:   pageSize,
		CtgovMaxStudies: maxStudies,
	}
	return NewFetcher(cfg, zap.NewNop())
}

func TestFetchAllSinglePage(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query.cond")
		assert.Equal(t, "/studies", r.URL.Path)
		json.NewEncoder(w).Encode(SearchResponse{
			Studies: []Study{testStudy("NCT00000001"), testStudy("NCT00000002")},
		})
	}))
	defer server.Close()

	f := testFetcher(server.URL, 50, 500)
	studies, err := f.FetchAll(context.Background(), "HS")
	require.NoError(t, err)

	assert.Len(t, studies, 2)
	assert.Equal(t, "NCT00000001", studies[0].NCTID())
	// Die Required-Keywords des Tenants bilden eine OR-Query.
	assert.Equal(t, "hidradenitis suppurativa OR hidradenitis", gotQuery)
}

func TestFetchAllFollowsPagination(t *testing.T) {
	var tokens []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("pageToken")
		tokens = append(tokens, token)
		resp := SearchResponse{Studies: []Study{testStudy(fmt.Sprintf("NCT%08d", len(tokens)))}}
		if token == "" {
			resp.NextPageToken = "page-2"
		} else if token == "page-2" {
			resp.NextPageToken = "page-3"
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	f := testFetcher(server.URL, 1, 500)
	studies, err := f.FetchAll(context.Background(), "HS")
	require.NoError(t, err)

	assert.Len(t, studies, 3)
	assert.Equal(t, []string{"", "page-2", "page-3"}, tokens)
}

func TestFetchAllStopsAtStudyCap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Jede Seite liefert 2 Studien und verspricht immer eine nächste Seite.
		json.NewEncoder(w).Encode(SearchResponse{
			Studies:       []Study{testStudy("NCTA"), testStudy("NCTB")},
			NextPageToken: "more",
		})
	}))
	defer server.Close()

	f := testFetcher(server.URL, 2, 3)
	studies, err := f.FetchAll(context.Background(), "HS")
	require.NoError(t, err)

	// Akkumulation stoppt bei Erreichen des Caps und wird exakt zugeschnitten.
	assert.Len(t, studies, 3)
}

func TestFetchAllServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	f := testFetcher(server.URL, 50, 500)
	_, err := f.FetchAll(context.Background(), "HS")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestFetchAllUnknownTenant(t *testing.T) {
	f := testFetcher("http://unused.invalid", 50, 500)
	_, err := f.FetchAll(context.Background(), "XX")
	require.Error(t, err)
}

func TestFetchAllContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(SearchResponse{})
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := testFetcher(server.URL, 50, 500)
	_, err := f.FetchAll(ctx, "HS")
	require.Error(t, err)
}
