package gitsync

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContentsClient(url string) *ContentsClient {
	c := NewContentsClient("me", "job-search-pipeline", "main", "tok")
	c.baseURL = url
	return c
}

func TestContents_GetMissingFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	content, sha, err := newTestContentsClient(srv.URL).Get(context.Background(), "data/processed/job_state.json")
	require.NoError(t, err)
	assert.Nil(t, content)
	assert.Empty(t, sha)
}

func TestContents_UpdateRetriesOnConflict(t *testing.T) {
	puts := 0
	sha := "sha-1"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(map[string]string{
				"content": base64.StdEncoding.EncodeToString([]byte(`{"applied":{}}`)),
				"sha":     sha,
			})
		case http.MethodPut:
			puts++
			var payload map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, sha, payload["sha"])
			if puts == 1 {
				//concurrent remote write happened: reject, bump revision
				sha = "sha-2"
				w.WriteHeader(http.StatusConflict)
				return
			}
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	err := newTestContentsClient(srv.URL).Update(context.Background(), "data/processed/job_state.json",
		"Update job state", func(current []byte) ([]byte, error) {
			return append(current, '\n'), nil
		})
	require.NoError(t, err)
	assert.Equal(t, 2, puts)
}

func TestContents_UpdateGivesUpAfterBoundedRetries(t *testing.T) {
	puts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(map[string]string{
				"content": base64.StdEncoding.EncodeToString([]byte("{}")),
				"sha":     "sha-1",
			})
		case http.MethodPut:
			puts++
			w.WriteHeader(http.StatusConflict)
		}
	}))
	defer srv.Close()

	err := newTestContentsClient(srv.URL).Update(context.Background(), "data/processed/job_state.json",
		"Update job state", func(current []byte) ([]byte, error) {
			return append(current, '\n'), nil
		})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gave up")
	assert.Equal(t, maxWriteAttempts, puts)
}

func TestContents_UpdateNoChangeSkipsWrite(t *testing.T) {
	puts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(map[string]string{
				"content": base64.StdEncoding.EncodeToString([]byte("{}")),
				"sha":     "sha-1",
			})
		case http.MethodPut:
			puts++
		}
	}))
	defer srv.Close()

	err := newTestContentsClient(srv.URL).Update(context.Background(), "data/processed/job_state.json",
		"Update job state", func(current []byte) ([]byte, error) {
			return current, nil
		})
	require.NoError(t, err)
	assert.Zero(t, puts)
}
