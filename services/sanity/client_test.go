package sanity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Config{Dataset: "production", Token: "t"}, nil)
	assert.Error(t, err)
	_, err = NewClient(Config{ProjectID: "p", Token: "t"}, nil)
	assert.Error(t, err)
	_, err = NewClient(Config{ProjectID: "p", Dataset: "production"}, nil)
	assert.Error(t, err)

	c, err := NewClient(Config{ProjectID: "abc123", Dataset: "production", Token: "t"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://abc123.api.sanity.io/v2024-01-01/data/mutate/production", c.mutateURL())
}

func TestClient_CreateOrReplace(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2024-01-01/data/mutate/staging", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"transactionId":"tx1","results":[{"id":"helpCategory-billing-en","operation":"create"}]}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL, Dataset: "staging", APIVersion: "v2024-01-01", Token: "secret"}, srv.Client())
	require.NoError(t, err)

	err = c.CreateOrReplace(context.Background(), Document{"_id": "helpCategory-billing-en", "_type": "helpCategory"})
	require.NoError(t, err)

	mutations, ok := got["mutations"].([]any)
	require.True(t, ok)
	require.Len(t, mutations, 1)
	doc := mutations[0].(map[string]any)["createOrReplace"].(map[string]any)
	assert.Equal(t, "helpCategory-billing-en", doc["_id"])
}

func TestClient_CreateOrReplace_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL, Dataset: "production", Token: "bad"}, srv.Client())
	require.NoError(t, err)

	err = c.CreateOrReplace(context.Background(), Document{"_id": "x", "_type": "helpArticle"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "Unauthorized")

	assert.Error(t, c.CreateOrReplace(context.Background(), Document{"_type": "helpArticle"}))
}
