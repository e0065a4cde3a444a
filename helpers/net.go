package helpers

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// NetGetHeaders performs a GET request with extra request headers and
// returns the response headers alongside the body
func NetGetHeaders(ctx context.Context, url string, useragent string, headers map[string]string) ([]byte, http.Header, error) {
	return netGet(ctx, url, useragent, headers, 15*time.Second)
}

func netGet(ctx context.Context, url string, useragent string, headers map[string]string, timeout time.Duration) ([]byte, http.Header, error) {
	// Allocate client
	client := &http.Client{
		Timeout: timeout,
	}

	// Prepare request
	request, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, nil, err
	}

	// Set custom UA
	request.Header.Set("User-Agent", useragent)
	for key, value := range headers {
		request.Header.Set(key, value)
	}

	// Do request
	response, err := client.Do(request)
	if err != nil {
		return nil, nil, err
	}
	defer response.Body.Close()

	// Only continue if code was 200
	if response.StatusCode != 200 {
		return nil, response.Header, errors.New("expected status 200; got " + strconv.Itoa(response.StatusCode))
	}

	// Read body
	buf := bytes.NewBuffer(nil)
	_, err = io.Copy(buf, response.Body)
	if err != nil {
		return nil, response.Header, err
	}

	return buf.Bytes(), response.Header, nil
}
