package mq

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"eventra/logger"

	"github.com/quic-go/quic-go/http3"
)

var indexURL string

func Init(url string) {
	indexURL = url
}

// Index describes an entity change for the external search indexer.
type Index struct {
	EntityType string `json:"entity_type"`
	Action     string `json:"action"`
	EntityId   string `json:"entity_id"`
	ItemId     string `json:"item_id"`
	ItemType   string `json:"item_type"`
}

// Emit notifies the indexer about an entity change. Fire and forget:
// callers run it in a goroutine and a lost notification is acceptable.
func Emit(eventName string, content Index) error {
	if indexURL == "" {
		return nil
	}

	jsonData, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("error marshalling JSON: %v", err)
	}

	if err := quicPost(indexURL, jsonData); err != nil {
		logger.L.Warnw("Failed to emit index event", "event", eventName, "error", err)
		return err
	}
	return nil
}

func quicPost(url string, jsonData []byte) error {
	client := &http.Client{
		Transport: &http3.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, // Self-signed cert on the indexer
		},
	}

	// 3 attempts with exponential backoff
	maxRetries := 3
	baseDelay := time.Second

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(jsonData))
		if err != nil {
			return fmt.Errorf("error creating request: %v", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
		} else {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if resp.StatusCode < 500 {
				return nil
			}
			lastErr = fmt.Errorf("indexer returned status %d", resp.StatusCode)
		}

		if attempt < maxRetries {
			time.Sleep(baseDelay * (1 << (attempt - 1)))
		}
	}
	return lastErr
}
