package feed

import (
	"bytes"
	"context"
	"io"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dipdup-net/go-lib/config"
	"github.com/ethereum/go-ethereum/common"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// errors
var (
	ErrFeedQuery = errors.New("feed query")
)

// response size limit
const maxResponseSize = 20971520

const tipsQuery = `query Tips($receiver: String!) {
	tips(where: {receiver: $receiver}, orderBy: timestamp, orderDirection: desc) {
		sender
		name
		message
		amount
		timestamp
		txHash
	}
}`

// Source - the tip-feed query collaborator: returns the historical tip
// records for an address. May be empty and may be stale relative to the
// ledger balance.
type Source interface {
	Tips(ctx context.Context, receiver common.Address) ([]Record, error)
}

// Client - subgraph-backed Source.
type Client struct {
	url        string
	httpClient *http.Client
	timeout    time.Duration
}

// NewClient -
func NewClient(cfg config.DataSource) *Client {
	timeout := time.Second * 10
	if cfg.Timeout > 0 {
		timeout = time.Second * time.Duration(cfg.Timeout)
	}

	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 100
	t.MaxConnsPerHost = 100
	t.MaxIdleConnsPerHost = 100

	return &Client{
		url: cfg.URL,
		httpClient: &http.Client{
			Transport: t,
		},
		timeout: timeout,
	}
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type tipRow struct {
	Sender    string `json:"sender"`
	Name      string `json:"name"`
	Message   string `json:"message"`
	Amount    string `json:"amount"`
	Timestamp string `json:"timestamp"`
	TxHash    string `json:"txHash"`
}

type tipsResponse struct {
	Data struct {
		Tips []tipRow `json:"tips"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Tips -
func (c *Client) Tips(ctx context.Context, receiver common.Address) ([]Record, error) {
	reqCtx, cancelReq := context.WithTimeout(ctx, c.timeout)
	defer cancelReq()

	body, err := json.Marshal(graphqlRequest{
		Query: tipsQuery,
		Variables: map[string]any{
			"receiver": strings.ToLower(receiver.Hex()),
		},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(ErrFeedQuery, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(ErrFeedQuery, "invalid status code: %d", resp.StatusCode)
	}

	var response tipsResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&response); err != nil {
		return nil, errors.Wrap(ErrFeedQuery, err.Error())
	}
	if len(response.Errors) > 0 {
		return nil, errors.Wrap(ErrFeedQuery, response.Errors[0].Message)
	}

	records := make([]Record, 0, len(response.Data.Tips))
	for i := range response.Data.Tips {
		record, err := response.Data.Tips[i].toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (row tipRow) toRecord() (Record, error) {
	if !common.IsHexAddress(row.Sender) {
		return Record{}, errors.Wrapf(ErrFeedQuery, "invalid sender: %s", row.Sender)
	}

	amount, ok := new(big.Int).SetString(row.Amount, 10)
	if !ok {
		return Record{}, errors.Wrapf(ErrFeedQuery, "invalid amount: %s", row.Amount)
	}

	timestamp, err := strconv.ParseInt(row.Timestamp, 10, 64)
	if err != nil {
		return Record{}, errors.Wrapf(ErrFeedQuery, "invalid timestamp: %s", row.Timestamp)
	}

	return Record{
		Sender:    common.HexToAddress(row.Sender),
		Name:      row.Name,
		Message:   row.Message,
		Amount:    amount,
		Timestamp: timestamp,
		TxHash:    common.HexToHash(row.TxHash),
	}, nil
}
