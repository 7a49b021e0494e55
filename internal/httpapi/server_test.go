package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdaSouls/Cardano-Backend/internal/domain/model"
	"github.com/AdaSouls/Cardano-Backend/internal/errsink"
	"github.com/AdaSouls/Cardano-Backend/internal/store"
)

type fakeContents struct {
	getContentsFn func(ctx context.Context, userID string, forceRefresh bool, method string) (*model.ContentResult, error)
}

func (f *fakeContents) GetContents(ctx context.Context, userID string, forceRefresh bool, method string) (*model.ContentResult, error) {
	return f.getContentsFn(ctx, userID, forceRefresh, method)
}

type fakeInvalidator struct {
	marked  []string
	flushed bool
	fail    bool
}

func (f *fakeInvalidator) MarkWalletDirty(ctx context.Context, address string) bool {
	f.marked = append(f.marked, address)
	return !f.fail
}

func (f *fakeInvalidator) FlushAll(ctx context.Context) bool {
	f.flushed = true
	return !f.fail
}

type fakeAssets struct {
	listFn      func(ctx context.Context) ([]model.AssetDescriptor, error)
	upsertFn    func(ctx context.Context, asset *model.AssetDescriptor) (bool, error)
	deleteFn    func(ctx context.Context, address string) error
	invalidated bool
}

func (f *fakeAssets) ListAssets(ctx context.Context) ([]model.AssetDescriptor, error) {
	return f.listFn(ctx)
}

func (f *fakeAssets) Upsert(ctx context.Context, asset *model.AssetDescriptor) (bool, error) {
	return f.upsertFn(ctx, asset)
}

func (f *fakeAssets) Delete(ctx context.Context, address string) error {
	return f.deleteFn(ctx, address)
}

func (f *fakeAssets) Invalidate(ctx context.Context) { f.invalidated = true }

type fakeUsers struct {
	walletFn func(ctx context.Context, userID string) (string, error)
}

func (f *fakeUsers) PrimaryWalletAddress(ctx context.Context, userID string) (string, error) {
	return f.walletFn(ctx, userID)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func postJSON(t *testing.T, handler http.Handler, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(buf))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestGetContent(t *testing.T) {
	contents := &fakeContents{
		getContentsFn: func(ctx context.Context, userID string, forceRefresh bool, method string) (*model.ContentResult, error) {
			assert.Equal(t, "user-1", userID)
			assert.True(t, forceRefresh)
			assert.Equal(t, "alchemy", method)
			return &model.ContentResult{
				UserID:    userID,
				Address:   "0xwallet",
				Method:    method,
				FromCache: true,
				Timing:    1500 * time.Millisecond,
				Assets: []model.ChainAssets{
					{ChainID: "ethereum:mainnet", NFTs: []model.OwnedNFT{{ContractAddress: "0xaaa", TokenID: "0x1"}}},
				},
				GameAssets: []model.GameAsset{{Type: "asset", AssetID: "sword", InternalTokenID: 7}},
			}, nil
		},
	}
	srv := NewServer(contents, &fakeInvalidator{}, &fakeAssets{}, &fakeUsers{}, testLogger())

	w := postJSON(t, srv.Handler(), "/wallet/getContent",
		map[string]any{"userId": "user-1", "forceRefresh": true, "method": "alchemy"}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp getContentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "user-1", resp.UserID)
	require.NotNil(t, resp.Address)
	assert.Equal(t, "0xwallet", *resp.Address)
	assert.True(t, resp.FromCacheNft)
	assert.InDelta(t, 1500, resp.TimingNft, 0.001)
	require.Len(t, resp.NftWalletDiscovery, 1)
	require.Len(t, resp.Assets, 1)
	assert.Equal(t, "sword", resp.Assets[0].AssetID)
}

func TestGetContentNoWalletAddressIsNull(t *testing.T) {
	contents := &fakeContents{
		getContentsFn: func(ctx context.Context, userID string, forceRefresh bool, method string) (*model.ContentResult, error) {
			return &model.ContentResult{UserID: userID, Method: method}, nil
		},
	}
	srv := NewServer(contents, &fakeInvalidator{}, &fakeAssets{}, &fakeUsers{}, testLogger())

	w := postJSON(t, srv.Handler(), "/wallet/getContent", map[string]any{"userId": "user-2"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"address":null`)

	var resp getContentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Nil(t, resp.Address)
}

func TestGetContentRequiresUserID(t *testing.T) {
	srv := NewServer(&fakeContents{}, &fakeInvalidator{}, &fakeAssets{}, &fakeUsers{}, testLogger())

	w := postJSON(t, srv.Handler(), "/wallet/getContent", map[string]any{}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Equal(t, "badRequest", resp.Reason)
}

func TestGetContentServiceError(t *testing.T) {
	contents := &fakeContents{
		getContentsFn: func(ctx context.Context, userID string, forceRefresh bool, method string) (*model.ContentResult, error) {
			return nil, errors.New("boom")
		},
	}
	srv := NewServer(contents, &fakeInvalidator{}, &fakeAssets{}, &fakeUsers{}, testLogger())

	w := postJSON(t, srv.Handler(), "/wallet/getContent", map[string]any{"userId": "user-1"}, nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "internalError", resp.Reason)
}

func TestMarkWalletByAddress(t *testing.T) {
	inv := &fakeInvalidator{}
	srv := NewServer(&fakeContents{}, inv, &fakeAssets{}, &fakeUsers{}, testLogger())

	w := postJSON(t, srv.Handler(), "/wallet/markWallet", map[string]any{"walletAddress": "0xWallet"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"0xWallet"}, inv.marked)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["success"])
	assert.Equal(t, "0xWallet", resp["wallet"])
}

func TestMarkWalletResolvesFromUserID(t *testing.T) {
	inv := &fakeInvalidator{}
	users := &fakeUsers{walletFn: func(ctx context.Context, userID string) (string, error) {
		require.Equal(t, "user-1", userID)
		return "0xresolved", nil
	}}
	srv := NewServer(&fakeContents{}, inv, &fakeAssets{}, users, testLogger())

	w := postJSON(t, srv.Handler(), "/wallet/markWallet", map[string]any{"userId": "user-1"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"0xresolved"}, inv.marked)
}

func TestMarkWalletNoWallet(t *testing.T) {
	users := &fakeUsers{walletFn: func(ctx context.Context, userID string) (string, error) {
		return "", nil
	}}
	srv := NewServer(&fakeContents{}, &fakeInvalidator{}, &fakeAssets{}, users, testLogger())

	w := postJSON(t, srv.Handler(), "/wallet/markWallet", map[string]any{"userId": "user-1"}, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestMarkWalletRequiresTarget(t *testing.T) {
	srv := NewServer(&fakeContents{}, &fakeInvalidator{}, &fakeAssets{}, &fakeUsers{}, testLogger())

	w := postJSON(t, srv.Handler(), "/wallet/markWallet", map[string]any{}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFunctionCodeGate(t *testing.T) {
	inv := &fakeInvalidator{}
	srv := NewServer(&fakeContents{}, inv, &fakeAssets{}, &fakeUsers{}, testLogger(),
		WithFunctionCode("sekrit"))
	handler := srv.Handler()

	// No code: rejected.
	w := postJSON(t, handler, "/wallet/flushCache", map[string]any{}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, inv.flushed)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "unauthorized", resp.Reason)

	// Wrong code: rejected.
	w = postJSON(t, handler, "/wallet/flushCache", map[string]any{"code": "guess"}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Code in body: accepted.
	w = postJSON(t, handler, "/wallet/flushCache", map[string]any{"code": "sekrit"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, inv.flushed)

	// Code in header: accepted.
	w = postJSON(t, handler, "/wallet/flushCache", map[string]any{},
		map[string]string{"X-Function-Code": "sekrit"})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestListAssets(t *testing.T) {
	assets := &fakeAssets{
		listFn: func(ctx context.Context) ([]model.AssetDescriptor, error) {
			return []model.AssetDescriptor{{Address: "0xaaa", ChainID: "ethereum:mainnet"}}, nil
		},
	}
	srv := NewServer(&fakeContents{}, &fakeInvalidator{}, assets, &fakeUsers{}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/admin/v1/assets", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp []model.AssetDescriptor
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "0xaaa", resp[0].Address)
}

func TestUpsertAsset(t *testing.T) {
	var got *model.AssetDescriptor
	assets := &fakeAssets{
		upsertFn: func(ctx context.Context, asset *model.AssetDescriptor) (bool, error) {
			got = asset
			return true, nil
		},
	}
	srv := NewServer(&fakeContents{}, &fakeInvalidator{}, assets, &fakeUsers{}, testLogger())

	w := postJSON(t, srv.Handler(), "/admin/v1/assets", map[string]any{
		"address":   "0xAAA",
		"chain":     "Ethereum:Mainnet",
		"tokenType": "erc721",
		"gameData":  []map[string]any{{"gameId": "g1", "assetId": "sword", "tokenId": 7}},
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	require.NotNil(t, got)
	assert.Equal(t, model.ChainID("ethereum:mainnet"), got.ChainID)
	require.Len(t, got.GameData, 1)
	assert.Equal(t, int64(7), got.GameData[0].TokenID)
}

func TestUpsertAssetValidation(t *testing.T) {
	srv := NewServer(&fakeContents{}, &fakeInvalidator{}, &fakeAssets{}, &fakeUsers{}, testLogger())
	handler := srv.Handler()

	w := postJSON(t, handler, "/admin/v1/assets", map[string]any{"address": "0xaaa"}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(t, handler, "/admin/v1/assets", map[string]any{
		"address": "0xaaa", "chain": "solana:mainnet", "tokenType": "erc721",
	}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteAsset(t *testing.T) {
	assets := &fakeAssets{
		deleteFn: func(ctx context.Context, address string) error {
			if address == "0xgone" {
				return store.ErrNotFound
			}
			return nil
		},
	}
	srv := NewServer(&fakeContents{}, &fakeInvalidator{}, assets, &fakeUsers{}, testLogger())
	handler := srv.Handler()

	req := httptest.NewRequest(http.MethodDelete, "/admin/v1/assets?address=0xaaa", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodDelete, "/admin/v1/assets?address=0xgone", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)

	req = httptest.NewRequest(http.MethodDelete, "/admin/v1/assets", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInvalidateAssets(t *testing.T) {
	assets := &fakeAssets{}
	srv := NewServer(&fakeContents{}, &fakeInvalidator{}, assets, &fakeUsers{}, testLogger())

	w := postJSON(t, srv.Handler(), "/admin/v1/assets/invalidate", map[string]any{}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, assets.invalidated)
}

type fakeFailureLog struct {
	failures []errsink.Failure
}

func (f *fakeFailureLog) Recent(limit int) []errsink.Failure {
	if limit > len(f.failures) {
		limit = len(f.failures)
	}
	return f.failures[:limit]
}

func TestListFailures(t *testing.T) {
	fl := &fakeFailureLog{failures: []errsink.Failure{
		{ID: "f1", Scope: "wallet.fanout", Message: "boom"},
		{ID: "f2", Scope: "wallet.fanout", Message: "boom again"},
	}}
	srv := NewServer(&fakeContents{}, &fakeInvalidator{}, &fakeAssets{}, &fakeUsers{}, testLogger(),
		WithFailureLog(fl))
	handler := srv.Handler()

	req := httptest.NewRequest(http.MethodGet, "/admin/v1/failures?limit=1", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp []errsink.Failure
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "f1", resp[0].ID)

	req = httptest.NewRequest(http.MethodGet, "/admin/v1/failures?limit=bogus", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListFailuresUnavailable(t *testing.T) {
	srv := NewServer(&fakeContents{}, &fakeInvalidator{}, &fakeAssets{}, &fakeUsers{}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/admin/v1/failures", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHealthz(t *testing.T) {
	srv := NewServer(&fakeContents{}, &fakeInvalidator{}, &fakeAssets{}, &fakeUsers{}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}
