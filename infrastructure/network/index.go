package network

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"invigil.io/infrastructure/logger"
)

type NetworkController struct {
	BaseUrl string
	Timeout time.Duration
	Client  *http.Client

	once sync.Once
}

func NewNetworkController(baseUrl string, timeout time.Duration) *NetworkController {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &NetworkController{BaseUrl: baseUrl, Timeout: timeout, Client: &http.Client{Timeout: timeout}}
}

// client is safe for concurrent callers; a controller built without NewNetworkController gets its client on first use.
func (nc *NetworkController) client() *http.Client {
	nc.once.Do(func() {
		if nc.Client != nil {
			return
		}
		timeout := nc.Timeout
		if timeout == 0 {
			timeout = 10 * time.Second
		}
		nc.Client = &http.Client{Timeout: timeout}
	})
	return nc.Client
}

func (nc *NetworkController) Get(ctx context.Context, path string, headers *map[string]string) (*[]byte, *int, error) {
	return nc.do(ctx, http.MethodGet, path, headers, nil)
}

// Post sends body as json. The status code is returned alongside the raw response for non 2xx replies.
func (nc *NetworkController) Post(ctx context.Context, path string, headers *map[string]string, body any) (*[]byte, *int, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, nil, err
		}
		reader = bytes.NewReader(payload)
	}
	return nc.do(ctx, http.MethodPost, path, headers, reader)
}

func (nc *NetworkController) do(ctx context.Context, method string, path string, headers *map[string]string, body io.Reader) (*[]byte, *int, error) {
	if nc.BaseUrl == "" {
		return nil, nil, fmt.Errorf("no base url configured for %s", path)
	}
	url := strings.TrimRight(nc.BaseUrl, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if headers != nil {
		for key, value := range *headers {
			req.Header.Set(key, value)
		}
	}
	res, err := nc.client().Do(req)
	if err != nil {
		logger.Warning("network request failed", logger.LoggerOptions{Key: "url", Data: url}, logger.LoggerOptions{Key: "error", Data: err})
		return nil, nil, err
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &res.StatusCode, err
	}
	return &data, &res.StatusCode, nil
}
