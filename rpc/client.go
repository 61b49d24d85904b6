// Package rpc implements the read-only chain-state accessor over the Sui
// JSON-RPC API.
package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/sljivkov/pythsui/domain"
	"github.com/sljivkov/pythsui/logger"
)

const defaultMaxRetries = 3

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// objectResult mirrors the response shape of sui_getObject and
// suix_getDynamicFieldObject.
type objectResult struct {
	Data *struct {
		ObjectID string `json:"objectId"`
		Type     string `json:"type"`
		Content  *struct {
			Type   string         `json:"type"`
			Fields map[string]any `json:"fields"`
		} `json:"content"`
	} `json:"data"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
}

// Codes reported inside a successful response when the requested object or
// dynamic field does not exist.
func isAbsentCode(code string) bool {
	switch code {
	case "notExists", "deleted", "dynamicFieldNotFound":
		return true
	}

	return false
}

// Some node versions report a missing dynamic field as a JSON-RPC level
// error instead of an in-result code.
func isAbsentRPCError(rpcErr *rpcError) bool {
	return rpcErr.Code == -32602 && strings.Contains(strings.ToLower(rpcErr.Message), "dynamic field not found")
}

// Client implements domain.StateReader against one JSON-RPC endpoint.
// Transient transport failures and server errors are retried with bounded
// exponential backoff; everything else is surfaced unchanged.
type Client struct {
	http       *resty.Client
	log        *logrus.Entry
	maxRetries uint64
	nextID     atomic.Int64
}

// NewClient creates a reader for the given endpoint.
func NewClient(url string, timeout time.Duration) (self *Client) {
	self = new(Client)
	self.log = logger.NewSublogger("rpc-client")
	self.maxRetries = defaultMaxRetries
	self.http = resty.New().
		SetBaseURL(url).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(0).
		OnAfterResponse(self.onStatusToError)

	return
}

// Converts HTTP status to errors
func (self *Client) onStatusToError(c *resty.Client, resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}
	if resp.StatusCode() > 399 && resp.StatusCode() < 500 {
		self.log.WithField("status", resp.StatusCode()).
			WithField("url", resp.Request.URL).
			Debug("Bad request")
	}

	return fmt.Errorf("unexpected status: %s", resp.Status())
}

func (self *Client) call(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	body := &rpcRequest{
		JSONRPC: "2.0",
		ID:      self.nextID.Add(1),
		Method:  method,
		Params:  params,
	}

	var out rpcResponse

	operation := func() error {
		resp, err := self.http.R().
			SetContext(ctx).
			SetBody(body).
			SetResult(&out).
			Post("")
		if err != nil {
			// Client-side mistakes do not get better on retry.
			if resp != nil && resp.StatusCode() > 399 && resp.StatusCode() < 500 {
				return backoff.Permanent(err)
			}

			return err
		}

		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), self.maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, fmt.Errorf("rpc call %s failed: %w", method, err)
	}

	if out.Error != nil {
		if isAbsentRPCError(out.Error) {
			return nil, nil
		}

		return nil, fmt.Errorf("rpc call %s failed: %s (code %d)", method, out.Error.Message, out.Error.Code)
	}

	return out.Result, nil
}

func (self *Client) fetchObject(ctx context.Context, method string, params []any) (*domain.ObjectData, error) {
	raw, err := self.call(ctx, method, params)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var result objectResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", method, err)
	}

	if result.Error != nil && isAbsentCode(result.Error.Code) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, fmt.Errorf("rpc call %s failed: object error %s", method, result.Error.Code)
	}
	if result.Data == nil {
		return nil, nil
	}

	data := &domain.ObjectData{
		ID:   domain.ObjectID(result.Data.ObjectID),
		Type: result.Data.Type,
	}
	if result.Data.Content != nil {
		data.Fields = result.Data.Content.Fields
		if data.Type == "" {
			data.Type = result.Data.Content.Type
		}
	}

	return data, nil
}

// GetObject fetches one object with its structured content. A missing object
// is reported as (nil, nil).
func (self *Client) GetObject(ctx context.Context, id domain.ObjectID) (*domain.ObjectData, error) {
	self.log.WithField("id", id).Debug("Fetching object")

	return self.fetchObject(ctx, "sui_getObject", []any{
		string(id),
		map[string]bool{"showContent": true, "showType": true},
	})
}

// GetDynamicFieldObject fetches one entry of a keyed on-chain collection. A
// missing entry is reported as (nil, nil).
func (self *Client) GetDynamicFieldObject(
	ctx context.Context, parent domain.ObjectID, name domain.DynamicFieldName,
) (*domain.ObjectData, error) {
	self.log.WithField("parent", parent).WithField("key", name.Type).Debug("Fetching dynamic field")

	return self.fetchObject(ctx, "suix_getDynamicFieldObject", []any{string(parent), name})
}
