package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sljivkov/pythsui/domain"
)

func rpcHandler(t *testing.T, wantMethod string, result string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "2.0", req.JSONRPC)
		assert.Equal(t, wantMethod, req.Method)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"result":%s}`, req.ID, result)
	}
}

func TestGetObject(t *testing.T) {
	result := `{"data":{
		"objectId":"0xabc",
		"type":"0x2::package::UpgradeCap",
		"content":{"dataType":"moveObject","type":"0x2::package::UpgradeCap","fields":{"package":"0xdef"}}
	}}`

	server := httptest.NewServer(rpcHandler(t, "sui_getObject", result))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)

	data, err := client.GetObject(context.Background(), "0xabc")
	assert.NoError(t, err)
	assert.NotNil(t, data)
	assert.Equal(t, domain.ObjectID("0xabc"), data.ID)
	assert.Equal(t, "0x2::package::UpgradeCap", data.Type)
	assert.Equal(t, "0xdef", data.Fields["package"])
}

func TestGetObjectAbsent(t *testing.T) {
	server := httptest.NewServer(rpcHandler(t, "sui_getObject", `{"error":{"code":"notExists","object_id":"0xabc"}}`))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)

	data, err := client.GetObject(context.Background(), "0xabc")
	assert.NoError(t, err)
	assert.Nil(t, data)
}

func TestGetDynamicFieldObjectAbsent(t *testing.T) {
	result := `{"error":{"code":"dynamicFieldNotFound","parent_object_id":"0xtable"}}`

	server := httptest.NewServer(rpcHandler(t, "suix_getDynamicFieldObject", result))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)

	data, err := client.GetDynamicFieldObject(context.Background(), "0xtable", domain.DynamicFieldName{
		Type:  "vector<u8>",
		Value: "price_info",
	})
	assert.NoError(t, err)
	assert.Nil(t, data)
}

func TestGetDynamicFieldObjectAbsentAtRpcLevel(t *testing.T) {
	// Some node versions report a missing dynamic field as a JSON-RPC
	// error rather than an in-result code; that is still an absent entry,
	// not a transport failure.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "suix_getDynamicFieldObject", req.Method)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w,
			`{"jsonrpc":"2.0","id":%d,"error":{"code":-32602,"message":"dynamic field not found on parent 0xtable"}}`,
			req.ID)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)

	data, err := client.GetDynamicFieldObject(context.Background(), "0xtable", domain.DynamicFieldName{
		Type:  "vector<u8>",
		Value: "price_info",
	})
	assert.NoError(t, err)
	assert.Nil(t, data)
}

func TestGetDynamicFieldObjectSendsName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "suix_getDynamicFieldObject", req.Method)
		assert.Equal(t, "0xparent", req.Params[0])

		name := req.Params[1].(map[string]any)
		assert.Equal(t, "vector<u8>", name["type"])
		assert.Equal(t, "price_info", name["value"])

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"result":{"data":{"objectId":"0xtable"}}}`, req.ID)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)

	data, err := client.GetDynamicFieldObject(context.Background(), "0xparent", domain.DynamicFieldName{
		Type:  "vector<u8>",
		Value: "price_info",
	})
	assert.NoError(t, err)
	assert.Equal(t, domain.ObjectID("0xtable"), data.ID)
}

func TestRetryOnServerError(t *testing.T) {
	attempts := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)

			return
		}

		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"result":{"data":{"objectId":"0xabc"}}}`, req.ID)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)

	data, err := client.GetObject(context.Background(), "0xabc")
	assert.NoError(t, err)
	assert.NotNil(t, data)
	assert.Equal(t, 2, attempts)
}

func TestRpcErrorIsNotRetried(t *testing.T) {
	attempts := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++

		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"error":{"code":-32602,"message":"Invalid params"}}`, req.ID)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)

	_, err := client.GetObject(context.Background(), "0xabc")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid params")
	assert.Equal(t, 1, attempts)
}
