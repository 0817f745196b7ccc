package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// request performs one authenticated API call and streams the JSON reply.
func request(method, url, token string, payload interface{}, out io.Writer) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
	}
	_, err = io.Copy(out, resp.Body)
	return err
}

func runListSpots(apiURL, token string, out io.Writer) error {
	return request(http.MethodGet, apiURL+"/api/spots", token, nil, out)
}

func runCheck(apiURL, token string, spotID int64, out io.Writer) error {
	url := fmt.Sprintf("%s/api/spots/%d/check", apiURL, spotID)
	return request(http.MethodPost, url, token, nil, out)
}

func runResetAll(apiURL, token string, out io.Writer) error {
	return request(http.MethodPost, apiURL+"/api/spots/reset-all", token, nil, out)
}

func runCreateToken(apiURL, token, name string, out io.Writer) error {
	payload := map[string]string{"name": name}
	return request(http.MethodPost, apiURL+"/api/tokens", token, payload, out)
}
