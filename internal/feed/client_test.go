package feed

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dipdup-net/go-lib/config"
	"github.com/ethereum/go-ethereum/common"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

func TestClientTips(t *testing.T) {
	receiver := common.HexToAddress("0x8ba1f109551bd432803012645ac136ddd64dba72")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var req graphqlRequest
		require.NoError(t, json.Unmarshal(body, &req))
		require.Equal(t, "0x8ba1f109551bd432803012645ac136ddd64dba72", req.Variables["receiver"])

		_, err = w.Write([]byte(`{
			"data": {
				"tips": [
					{
						"sender": "0x71c7656ec7ab88b098defb751b7401b5f6d8976f",
						"name": "alice",
						"message": "keep it up",
						"amount": "10000000000000000",
						"timestamp": "1665158400",
						"txHash": "0x6e5a2c9d9f48b4f0d2c9a6370fa06d3c9d3c22260d6f13a0e8c41ab8c15a77b9"
					},
					{
						"sender": "0x71c7656ec7ab88b098defb751b7401b5f6d8976f",
						"name": "",
						"message": "",
						"amount": "20000000000000000",
						"timestamp": "1665244800",
						"txHash": "0x0e0b3c4e7b6a52f05e240de2d2f06eafc0e2e6a1edb0b1fa4a674c4e881ecadb"
					}
				]
			}
		}`))
		require.NoError(t, err)
	}))
	defer server.Close()

	client := NewClient(config.DataSource{URL: server.URL})
	records, err := client.Tips(context.Background(), receiver)
	require.NoError(t, err)
	require.Len(t, records, 2)

	require.Equal(t, "alice", records[0].Name)
	require.Equal(t, "keep it up", records[0].Message)
	require.Equal(t, "10000000000000000", records[0].Amount.String())
	require.EqualValues(t, 1665158400, records[0].Timestamp)
	require.Equal(t, common.HexToAddress("0x71c7656ec7ab88b098defb751b7401b5f6d8976f"), records[0].Sender)
}

func TestClientTipsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, err := w.Write([]byte(`{"data": {"tips": []}}`))
		require.NoError(t, err)
	}))
	defer server.Close()

	client := NewClient(config.DataSource{URL: server.URL})
	records, err := client.Tips(context.Background(), common.Address{})
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestClientTipsErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "http error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
		}, {
			name: "graphql error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"errors": [{"message": "indexing in progress"}]}`))
			},
		}, {
			name: "invalid amount",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"data": {"tips": [{"sender": "0x71c7656ec7ab88b098defb751b7401b5f6d8976f", "amount": "lots"}]}}`))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewClient(config.DataSource{URL: server.URL})
			_, err := client.Tips(context.Background(), common.Address{})
			require.ErrorIs(t, err, ErrFeedQuery)
		})
	}
}
