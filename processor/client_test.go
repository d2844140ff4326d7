package processor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Charge_Success(t *testing.T) {
	var got transferRequest
	var gotPath, gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(transferResponse{Status: "succeeded"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret-key")
	declined, err := client.Charge(context.Background(), "/v1/customers/alice/cards/1", decimal.RequireFromString("10.71"), "alice")

	require.NoError(t, err)
	assert.Empty(t, declined)
	assert.Equal(t, "/v1/debits", gotPath)
	assert.Equal(t, "Bearer secret-key", gotAuth)
	assert.Equal(t, "/v1/customers/alice/cards/1", got.FundingAccountURI)
	assert.Equal(t, int64(1071), got.AmountCents)
	assert.Equal(t, "alice", got.Description)
	assert.NotEmpty(t, got.IdempotencyKey)
}

func TestClient_Charge_Declined(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(transferResponse{Status: "failed", Message: "insufficient funds on card"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret-key")
	declined, err := client.Charge(context.Background(), "/v1/customers/carl/cards/1", decimal.RequireFromString("0.50"), "carl")

	require.NoError(t, err)
	assert.Equal(t, "insufficient funds on card", declined)
}

func TestClient_Charge_RefusedWithClientError(t *testing.T) {
	t.Run("with message", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusPaymentRequired)
			json.NewEncoder(w).Encode(transferResponse{Message: "card expired"})
		}))
		defer server.Close()

		client := NewClient(server.URL, "secret-key")
		declined, err := client.Charge(context.Background(), "/v1/customers/d/cards/1", decimal.RequireFromString("0.50"), "dana")

		require.NoError(t, err)
		assert.Equal(t, "card expired", declined)
	})

	t.Run("without message", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := NewClient(server.URL, "secret-key")
		declined, err := client.Charge(context.Background(), "/v1/customers/d/cards/1", decimal.RequireFromString("0.50"), "dana")

		require.NoError(t, err)
		assert.Equal(t, "processor refused with status 404", declined)
	})
}

func TestClient_Charge_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret-key")
	declined, err := client.Charge(context.Background(), "/v1/customers/e/cards/1", decimal.RequireFromString("5.00"), "erin")

	require.Error(t, err)
	assert.Empty(t, declined)
}

func TestClient_Charge_TransportFault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := NewClient(server.URL, "secret-key")
	_, err := client.Charge(context.Background(), "/v1/customers/e/cards/1", decimal.RequireFromString("5.00"), "erin")

	require.Error(t, err)
}

func TestClient_Credit_UsesCreditsEndpoint(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(transferResponse{Status: "succeeded"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret-key")
	declined, err := client.Credit(context.Background(), "/v1/customers/f/banks/1", decimal.RequireFromString("20.00"), "fred")

	require.NoError(t, err)
	assert.Empty(t, declined)
	assert.Equal(t, "/v1/credits", gotPath)
}
