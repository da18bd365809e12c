package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"caption-relay/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeImage(t *testing.T, name string, data []byte) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestRequestCaption_UploadsImageAndPrompt(t *testing.T) {
	var gotType, gotPrompt string
	var gotData []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, api.CaptionEndpoint, r.URL.Path)
		file, header, err := r.FormFile(api.FieldImage)
		if !assert.NoError(t, err) {
			return
		}
		defer file.Close()
		gotData, _ = io.ReadAll(file)
		gotType = header.Header.Get("Content-Type")
		gotPrompt = r.FormValue(api.FieldPrompt)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"caption":"A cat.","raw":{"candidates":[]}}`))
	}))
	defer srv.Close()

	path := writeImage(t, "cat.png", []byte("png-bytes"))
	resp, err := requestCaption(context.Background(), srv.Client(), srv.URL+"/", path, "Who is this?")
	require.NoError(t, err)

	assert.Equal(t, "A cat.", resp.Caption)
	assert.JSONEq(t, `{"candidates":[]}`, string(resp.Raw))
	assert.Equal(t, []byte("png-bytes"), gotData)
	assert.Equal(t, "image/png", gotType)
	assert.Equal(t, "Who is this?", gotPrompt)
}

func TestRequestCaption_ReportsServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":"Generative API error (503): overloaded"}`))
	}))
	defer srv.Close()

	path := writeImage(t, "cat.jpg", []byte("jpg"))
	_, err := requestCaption(context.Background(), srv.Client(), srv.URL, path, "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "overloaded")
}

func TestRequestCaption_MissingFile(t *testing.T) {
	_, err := requestCaption(context.Background(), http.DefaultClient, "http://127.0.0.1:1", filepath.Join(t.TempDir(), "nope.png"), "")
	assert.Error(t, err)
}
