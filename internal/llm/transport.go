package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// newHTTPClient builds the HTTP client shared by the providers. A zero
// timeout means no client-level deadline; callers bound individual
// requests with contexts instead.
func newHTTPClient(config Config, timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: proxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
		},
	}
}

// postJSON sends one JSON request and decodes a 200 response into out.
// Non-200 responses go through apiError, which receives the raw body so
// each provider can decode its own error envelope.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, in, out any, apiError func(status int, body []byte) error) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for name, value := range headers {
		req.Header.Set(name, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return apiError(resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// proxyFunc resolves the outbound proxy for provider requests. With no
// explicit proxy configured it defers to the standard environment
// variables, which keeps local endpoints like Ollama reachable without
// extra setup. Hosts on the no-proxy list always connect directly.
func proxyFunc(httpProxy, httpsProxy, noProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	direct := splitHostList(noProxy)

	return func(req *http.Request) (*url.URL, error) {
		if hostMatchesAny(req.URL.Hostname(), direct) {
			return nil, nil
		}
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}

func splitHostList(raw string) []string {
	var hosts []string
	for _, h := range strings.Split(raw, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

// hostMatchesAny reports whether host equals an entry or is a
// subdomain of one. Entries may carry a leading dot.
func hostMatchesAny(host string, entries []string) bool {
	for _, entry := range entries {
		entry = strings.TrimPrefix(entry, ".")
		if strings.EqualFold(host, entry) || strings.HasSuffix(strings.ToLower(host), "."+strings.ToLower(entry)) {
			return true
		}
	}
	return false
}
