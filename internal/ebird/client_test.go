package ebird

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestSearchSightingsRequestShape(t *testing.T) {
	var gotPath, gotQuery, gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotQuery = r.URL.RawQuery
		gotToken = r.Header.Get("X-eBirdApiToken")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[
			{"speciesCode":"amerob","comName":"American Robin","sciName":"Turdus migratorius",
			 "locName":"Stanley Park","obsDt":"2024-05-01 08:15","howMany":3,"lat":49.3,"lng":-123.1,
			 "obsValid":true,"obsReviewed":false,"locationPrivate":false,"subId":"S1","exoticCategory":"N"}
		]`)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL + "/", APIKey: "secret", Logger: quietLogger()})
	sightings := c.SearchSightings(context.Background(), "CA-BC")

	if gotPath != "/data/obs/CA-BC/recent" {
		t.Errorf("path = %q", gotPath)
	}
	if gotQuery != "maxResults=20" {
		t.Errorf("query = %q", gotQuery)
	}
	if gotToken != "secret" {
		t.Errorf("api token header = %q", gotToken)
	}
	if len(sightings) != 1 {
		t.Fatalf("Expected 1 sighting, got %d", len(sightings))
	}
	s := sightings[0]
	if s.CommonName != "American Robin" || s.SpeciesCode != "amerob" || s.HowMany != 3 || !s.Valid {
		t.Errorf("Unexpected sighting %+v", s)
	}
}

func TestSearchSightingsEscapesRegion(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_, _ = io.WriteString(w, `[]`)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, MaxResults: 5, Logger: quietLogger()})
	sightings := c.SearchSightings(context.Background(), "US/NY")

	if gotPath != "/data/obs/US%2FNY/recent" {
		t.Errorf("path = %q", gotPath)
	}
	if sightings == nil || len(sightings) != 0 {
		t.Errorf("Expected empty non-nil slice, got %#v", sightings)
	}
}

func TestSearchSightingsFailuresYieldEmpty(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "upstream error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "bad region", http.StatusBadRequest)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `{"errors":`)
			},
		},
		{
			name: "object instead of list",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `{"title":"Not Found"}`)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewClient(Config{BaseURL: srv.URL, Logger: quietLogger()})
			sightings := c.SearchSightings(context.Background(), "ZZ")
			if sightings == nil || len(sightings) != 0 {
				t.Errorf("Expected empty non-nil slice, got %#v", sightings)
			}
		})
	}
}

func TestSearchSightingsUnreachableUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	c := NewClient(Config{BaseURL: base, Logger: quietLogger()})
	if sightings := c.SearchSightings(context.Background(), "CA"); len(sightings) != 0 {
		t.Errorf("Expected no sightings, got %d", len(sightings))
	}
}

func TestGetSpeciesDetail(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_, _ = io.WriteString(w, `[
			{"speciesCode":"grbher3","comName":"Great Blue Heron","sciName":"Ardea herodias","locName":"Lake"},
			{"speciesCode":"grbher3","comName":"Great Blue Heron","sciName":"Ardea herodias","locName":"River"}
		]`)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Logger: quietLogger()})
	detail := c.GetSpeciesDetail(context.Background(), "CA", "grbher3")

	if gotPath != "/data/obs/CA/recent/grbher3" {
		t.Errorf("path = %q", gotPath)
	}
	if detail.CommonName != "Great Blue Heron" || detail.ScientificName != "Ardea herodias" {
		t.Errorf("Unexpected names %+v", detail)
	}
	if len(detail.Observations) != 2 || detail.Observations[1].LocationName != "River" {
		t.Errorf("Unexpected observations %+v", detail.Observations)
	}
}

func TestGetSpeciesDetailFailureYieldsZeroValue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Logger: quietLogger()})
	detail := c.GetSpeciesDetail(context.Background(), "CA", "nope")
	if !detail.IsEmpty() || detail.CommonName != "" {
		t.Errorf("Expected zero-value detail, got %+v", detail)
	}
}
