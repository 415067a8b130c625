package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type kernelClient struct {
	baseURL string
	http    *http.Client
}

func newClient() *kernelClient {
	return &kernelClient{
		baseURL: serverURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *kernelClient) do(method, path string, body, v any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal error: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(respBody))
	}
	if v == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func (c *kernelClient) getJSON(path string, v any) error  { return c.do(http.MethodGet, path, nil, v) }
func (c *kernelClient) putJSON(path string, body, v any) error {
	return c.do(http.MethodPut, path, body, v)
}
func (c *kernelClient) patchJSON(path string, body, v any) error {
	return c.do(http.MethodPatch, path, body, v)
}
