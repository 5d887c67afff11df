package config

import "testing"

func TestValidate_InvalidPort(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 0},
		OpenSearch: OpenSearchConfig{
			Addrs: []string{"http://localhost:9200"},
		},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingOpenSearchAddrs(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		OpenSearch: OpenSearchConfig{
			Addrs: []string{},
		},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing opensearch addrs")
	}
}

func TestValidate_CacheEnabledWithoutAddrs(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		OpenSearch: OpenSearchConfig{
			Addrs: []string{"http://localhost:9200"},
		},
		Cache: CacheConfig{Enabled: true},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for enabled cache without addrs")
	}
}

func TestValidate_CacheDisabledWithoutAddrs(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		OpenSearch: OpenSearchConfig{
			Addrs: []string{"http://localhost:9200"},
		},
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 10 {
		t.Errorf("expected WriteTimeoutSec=10, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.OpenSearch.Index != "records" {
		t.Errorf("expected Index='records', got %q", cfg.OpenSearch.Index)
	}
	if cfg.OpenSearch.TimeoutSec != 10 {
		t.Errorf("expected TimeoutSec=10, got %d", cfg.OpenSearch.TimeoutSec)
	}
	if cfg.Database.Path != "records.db" {
		t.Errorf("expected Path='records.db', got %q", cfg.Database.Path)
	}
	if cfg.Cache.TTLSec != 3600 {
		t.Errorf("expected TTLSec=3600, got %d", cfg.Cache.TTLSec)
	}
	if cfg.Pagination.SearchPerPage != 10 {
		t.Errorf("expected SearchPerPage=10, got %d", cfg.Pagination.SearchPerPage)
	}
	if cfg.Pagination.BrowsePerPage != 25 {
		t.Errorf("expected BrowsePerPage=25, got %d", cfg.Pagination.BrowsePerPage)
	}
	if cfg.Search.HighlightPreTag != "<mark>" || cfg.Search.HighlightPostTag != "</mark>" {
		t.Errorf("expected <mark> tags, got %q/%q", cfg.Search.HighlightPreTag, cfg.Search.HighlightPostTag)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:       HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		OpenSearch: OpenSearchConfig{Index: "archive", TimeoutSec: 5},
		Pagination: PaginationConfig{SearchPerPage: 50, BrowsePerPage: 100},
		Search:     SearchConfig{HighlightPreTag: "<em>", HighlightPostTag: "</em>"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.OpenSearch.Index != "archive" {
		t.Errorf("expected Index='archive', got %q", cfg.OpenSearch.Index)
	}
	if cfg.Pagination.SearchPerPage != 50 {
		t.Errorf("expected SearchPerPage=50, got %d", cfg.Pagination.SearchPerPage)
	}
	if cfg.Search.HighlightPreTag != "<em>" {
		t.Errorf("expected HighlightPreTag='<em>', got %q", cfg.Search.HighlightPreTag)
	}
}
