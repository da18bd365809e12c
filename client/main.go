// Dev/test client for dev/test/troubleshooting.
// Uploads one image to the caption relay and prints the caption.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"caption-relay/api"
	"caption-relay/models"

	"github.com/apex/log"
)

var (
	serviceURL = flag.String("url", "http://127.0.0.1:8080", "Caption relay base URL.")
	imagePath  = flag.String("image", "", "Path of the image to caption.")
	prompt     = flag.String("prompt", "", "Optional prompt; the service default is used when empty.")
	timeout    = flag.Duration("timeout", 90*time.Second, "Overall request timeout.")
	showRaw    = flag.Bool("raw", false, "Also print the provider's raw payload.")
)

func main() {
	flag.Parse()
	if *imagePath == "" {
		log.Error("-image is required")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	resp, err := requestCaption(ctx, http.DefaultClient, *serviceURL, *imagePath, *prompt)
	if err != nil {
		log.Errorf("Caption failed: %v", err)
		os.Exit(1)
	}

	fmt.Println(resp.Caption)
	if *showRaw {
		fmt.Println(string(resp.Raw))
	}
}

func requestCaption(ctx context.Context, client *http.Client, baseURL, path, prompt string) (*models.CaptionResponse, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, api.FieldImage, filepath.Base(path)))
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if prompt != "" {
		if err := writer.WriteField(api.FieldPrompt, prompt); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(baseURL, "/")+api.CaptionEndpoint, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	log.WithFields(log.Fields{
		"image": path,
		"bytes": len(data),
		"type":  contentType,
	}).Info("caption.request")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call the relay: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp models.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			return nil, fmt.Errorf("%s: %s", resp.Status, errResp.Error)
		}
		return nil, fmt.Errorf("%s: %s", resp.Status, string(respBody))
	}

	var out models.CaptionResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &out, nil
}
