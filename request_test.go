package sslpin

import (
	"encoding/json"
	"net/url"
	"testing"
)

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		params url.Values
		want   string
	}{
		{"single", "https://x.test/p", url.Values{"a": {"1"}}, "https://x.test/p?a=1"},
		{"sorted_keys", "https://x.test/p", url.Values{"b": {"2"}, "a": {"1"}}, "https://x.test/p?a=1&b=2"},
		{"repeated_values", "https://x.test/p", url.Values{"id": {"1", "2"}}, "https://x.test/p?id=1&id=2"},
		{"percent_encoding", "https://x.test/p", url.Values{"q": {"a b&c"}}, "https://x.test/p?q=a+b%26c"},
		{"existing_query", "https://x.test/p?x=0", url.Values{"a": {"1"}}, "https://x.test/p?x=0&a=1"},
		{"drops_fragment", "https://x.test/p#top", url.Values{"a": {"1"}}, "https://x.test/p?a=1"},
		{"empty_params", "https://x.test/p#top", url.Values{}, "https://x.test/p#top"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildURL(tt.raw, tt.params); got != tt.want {
				t.Errorf("BuildURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequestConfig_FullURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  RequestConfig
		want string
	}{
		{"no_params_plain_concat", RequestConfig{BaseURL: "https://x.test", URL: "/p"}, "https://x.test/p"},
		{"no_separator_inserted", RequestConfig{BaseURL: "https://x.test", URL: "p"}, "https://x.testp"},
		{"empty_base", RequestConfig{URL: "https://x.test/p"}, "https://x.test/p"},
		{"params", RequestConfig{BaseURL: "https://x.test", URL: "/p", Params: url.Values{"a": {"1"}}}, "https://x.test/p?a=1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.FullURL(); got != tt.want {
				t.Errorf("FullURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHeaderSet_Resolve(t *testing.T) {
	headers := HeaderSet{
		Common: map[string]string{"Accept": "application/json", "content-type": "text/plain"},
		PerMethod: map[Method]map[string]string{
			MethodPost:   {"X-Idempotency-Key": "k1", "CONTENT-TYPE": "application/xml"},
			MethodDelete: nil,
			MethodPut:    {},
		},
	}

	tests := []struct {
		name   string
		method Method
		want   map[string]string
	}{
		{"per_method", MethodPost, map[string]string{"X-Idempotency-Key": "k1", HeaderContentType: ContentTypeJSON}},
		{"fallback_to_common", MethodGet, map[string]string{"Accept": "application/json", HeaderContentType: ContentTypeJSON}},
		{"nil_entry_falls_back", MethodDelete, map[string]string{"Accept": "application/json", HeaderContentType: ContentTypeJSON}},
		{"empty_entry_replaces", MethodPut, map[string]string{HeaderContentType: ContentTypeJSON}},
		{"no_method_uses_common", MethodNone, map[string]string{"Accept": "application/json", HeaderContentType: ContentTypeJSON}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := headers.Resolve(tt.method)
			if len(got) != len(tt.want) {
				t.Fatalf("Resolve() = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("header %q = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestHeaderSet_ResolveCopies(t *testing.T) {
	common := map[string]string{"Accept": "application/json"}
	h := HeaderSet{Common: common}

	got := h.Resolve(MethodGet)
	got["Accept"] = "text/html"
	got["X-Extra"] = "1"

	if len(common) != 1 || common["Accept"] != "application/json" {
		t.Errorf("caller headers mutated: %v", common)
	}
	if (HeaderSet{}).Resolve(MethodGet)[HeaderContentType] != ContentTypeJSON {
		t.Error("empty header set must still force Content-Type")
	}
}

func TestMethod(t *testing.T) {
	tests := []struct {
		in   string
		want Method
	}{
		{"", MethodNone},
		{"GET", MethodGet},
		{"post", MethodPost},
		{"Put", MethodPut},
		{"delete", MethodDelete},
	}
	for _, tt := range tests {
		got, err := ParseMethod(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseMethod(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseMethod("PATCH"); err == nil {
		t.Error("expected error for PATCH")
	}

	if MethodGet.String() != "GET" || MethodNone.String() != "" {
		t.Errorf("unexpected String(): %q %q", MethodGet, MethodNone)
	}
	if !MethodNone.Valid() || !MethodDelete.Valid() || Method(42).Valid() {
		t.Error("unexpected Valid() results")
	}
}

func TestRequestConfig_JSONMethodKeys(t *testing.T) {
	var cfg RequestConfig
	data := `{"url":"/p","headers":{"common":{"Accept":"*/*"},"per_method":{"get":{"X-Get":"1"},"POST":{"X-Post":"1"}}}}`
	if err := json.Unmarshal([]byte(data), &cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if cfg.Headers.PerMethod[MethodGet]["X-Get"] != "1" || cfg.Headers.PerMethod[MethodPost]["X-Post"] != "1" {
		t.Errorf("per-method headers not keyed by Method: %v", cfg.Headers.PerMethod)
	}

	out, err := json.Marshal(cfg.Headers)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back HeaderSet
	if err := json.Unmarshal(out, &back); err != nil || back.PerMethod[MethodGet]["X-Get"] != "1" {
		t.Errorf("round trip failed: %s, %v", out, err)
	}
}
