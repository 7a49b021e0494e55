package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/AdaSouls/Cardano-Backend/internal/domain/model"
	"github.com/AdaSouls/Cardano-Backend/internal/errsink"
	"github.com/AdaSouls/Cardano-Backend/internal/metrics"
	"github.com/AdaSouls/Cardano-Backend/internal/store"
)

const maxRequestBodyBytes = 1 << 20 // 1 MB

// ContentService answers wallet content requests.
type ContentService interface {
	GetContents(ctx context.Context, userID string, forceRefresh bool, method string) (*model.ContentResult, error)
}

// CacheInvalidator drops cached wallet contents.
type CacheInvalidator interface {
	MarkWalletDirty(ctx context.Context, address string) bool
	FlushAll(ctx context.Context) bool
}

// AssetAdmin manages the registered asset catalogue.
type AssetAdmin interface {
	ListAssets(ctx context.Context) ([]model.AssetDescriptor, error)
	Upsert(ctx context.Context, asset *model.AssetDescriptor) (bool, error)
	Delete(ctx context.Context, address string) error
	Invalidate(ctx context.Context)
}

// FailureLog exposes recently recorded failures for the admin surface.
type FailureLog interface {
	Recent(limit int) []errsink.Failure
}

// HealthReporter reports backend reachability for the health endpoint.
type HealthReporter interface {
	Connected(ctx context.Context) bool
}

// Server is the service's HTTP surface: the wallet content endpoints the
// games call, plus the asset admin API.
type Server struct {
	contents    ContentService
	invalidator CacheInvalidator
	assets      AssetAdmin
	users       store.UserDirectory
	failures    FailureLog
	health      HealthReporter
	masterCode  string
	logger      *slog.Logger
}

func NewServer(contents ContentService, invalidator CacheInvalidator, assets AssetAdmin, users store.UserDirectory, logger *slog.Logger, opts ...ServerOption) *Server {
	s := &Server{
		contents:    contents,
		invalidator: invalidator,
		assets:      assets,
		users:       users,
		logger:      logger.With("component", "httpapi"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ServerOption configures optional dependencies for the server.
type ServerOption func(*Server)

// WithFunctionCode enables the shared-secret gate on mutating endpoints.
// An empty code leaves the gate open.
func WithFunctionCode(code string) ServerOption {
	return func(s *Server) { s.masterCode = code }
}

// WithFailureLog mounts the recent-failures admin endpoint.
func WithFailureLog(fl FailureLog) ServerOption {
	return func(s *Server) { s.failures = fl }
}

// WithHealthReporter includes cache reachability in health responses.
func WithHealthReporter(h HealthReporter) ServerOption {
	return func(s *Server) { s.health = h }
}

// Handler returns the HTTP handler for the service API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /wallet/getContent", s.instrument("getContent", s.handleGetContent))
	mux.HandleFunc("POST /wallet/markWallet", s.instrument("markWallet", s.handleMarkWallet))
	mux.HandleFunc("POST /wallet/flushCache", s.instrument("flushCache", s.handleFlushCache))

	mux.HandleFunc("GET /admin/v1/assets", s.instrument("listAssets", s.handleListAssets))
	mux.HandleFunc("POST /admin/v1/assets", s.instrument("upsertAsset", s.handleUpsertAsset))
	mux.HandleFunc("DELETE /admin/v1/assets", s.instrument("deleteAsset", s.handleDeleteAsset))
	mux.HandleFunc("POST /admin/v1/assets/invalidate", s.instrument("invalidateAssets", s.handleInvalidateAssets))
	mux.HandleFunc("GET /admin/v1/failures", s.instrument("listFailures", s.handleListFailures))

	mux.HandleFunc("GET /healthz", s.instrument("healthz", s.handleHealthz))
	return mux
}

// statusRecorder captures the response code for the request counter.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		metrics.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
	}
}

// errorResponse is the structured error payload every endpoint emits.
type errorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Reason  string `json:"reason"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message, reason string) {
	writeJSON(w, status, errorResponse{Status: status, Message: message, Reason: reason})
}

// decodeJSONBody reads and decodes a JSON request body into v.
// Returns false (and writes an error response) if decoding fails.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "badRequest")
		return false
	}
	return true
}

// checkCode enforces the shared-secret function code on mutating endpoints.
// The code may arrive in the X-Function-Code header or the body's code field.
func (s *Server) checkCode(w http.ResponseWriter, r *http.Request, bodyCode string) bool {
	if s.masterCode == "" {
		return true
	}
	if r.Header.Get("X-Function-Code") == s.masterCode || bodyCode == s.masterCode {
		return true
	}
	writeError(w, http.StatusUnauthorized, "invalid function code", "unauthorized")
	return false
}

// --- Wallet endpoints ---

type getContentRequest struct {
	UserID       string `json:"userId"`
	ForceRefresh bool   `json:"forceRefresh"`
	Method       string `json:"method"`
}

type getContentResponse struct {
	UserID             string              `json:"userId"`
	Address            *string             `json:"address"`
	Method             string              `json:"method"`
	FromCacheNft       bool                `json:"fromCacheNft"`
	TimingNft          float64             `json:"timingNft"`
	NftWalletDiscovery []model.ChainAssets `json:"nftWalletDiscovery"`
	Assets             []model.GameAsset   `json:"assets"`
}

func (s *Server) handleGetContent(w http.ResponseWriter, r *http.Request) {
	var req getContentRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId is required", "badRequest")
		return
	}

	result, err := s.contents.GetContents(r.Context(), req.UserID, req.ForceRefresh, req.Method)
	if err != nil {
		s.logger.Error("get wallet contents failed", "user", req.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "could not get wallet contents", "internalError")
		return
	}

	// A user without a wallet reports address as null, not an empty string.
	var address *string
	if result.Address != "" {
		address = &result.Address
	}

	writeJSON(w, http.StatusOK, getContentResponse{
		UserID:             result.UserID,
		Address:            address,
		Method:             result.Method,
		FromCacheNft:       result.FromCache,
		TimingNft:          float64(result.Timing) / float64(time.Millisecond),
		NftWalletDiscovery: result.Assets,
		Assets:             result.GameAssets,
	})
}

type markWalletRequest struct {
	WalletAddress string `json:"walletAddress"`
	UserID        string `json:"userId"`
	Code          string `json:"code"`
}

func (s *Server) handleMarkWallet(w http.ResponseWriter, r *http.Request) {
	var req markWalletRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if !s.checkCode(w, r, req.Code) {
		return
	}

	address := req.WalletAddress
	if address == "" {
		if req.UserID == "" {
			writeError(w, http.StatusBadRequest, "walletAddress or userId is required", "badRequest")
			return
		}
		resolved, err := s.users.PrimaryWalletAddress(r.Context(), req.UserID)
		if err != nil {
			s.logger.Error("resolve wallet failed", "user", req.UserID, "error", err)
			writeError(w, http.StatusInternalServerError, "could not resolve wallet", "internalError")
			return
		}
		if resolved == "" {
			writeError(w, http.StatusNotFound, "user has no linked wallet", "notFound")
			return
		}
		address = resolved
	}

	if !s.invalidator.MarkWalletDirty(r.Context(), address) {
		writeError(w, http.StatusInternalServerError, "could not mark wallet", "internalError")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"wallet": address, "success": "ok"})
}

type flushCacheRequest struct {
	Code string `json:"code"`
}

func (s *Server) handleFlushCache(w http.ResponseWriter, r *http.Request) {
	var req flushCacheRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if !s.checkCode(w, r, req.Code) {
		return
	}

	if !s.invalidator.FlushAll(r.Context()) {
		writeError(w, http.StatusInternalServerError, "could not flush cache", "internalError")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"success": "ok"})
}

// --- Asset admin endpoints ---

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := s.assets.ListAssets(r.Context())
	if err != nil {
		s.logger.Error("list assets failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list assets", "internalError")
		return
	}
	writeJSON(w, http.StatusOK, assets)
}

type upsertAssetRequest struct {
	Address         string              `json:"address"`
	Chain           string              `json:"chain"`
	TokenType       string              `json:"tokenType"`
	Name            string              `json:"name"`
	OperatorAddress string              `json:"operatorAddress"`
	GameData        []model.GameMapping `json:"gameData"`
	Code            string              `json:"code"`
}

func (s *Server) handleUpsertAsset(w http.ResponseWriter, r *http.Request) {
	var req upsertAssetRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if !s.checkCode(w, r, req.Code) {
		return
	}
	if req.Address == "" || req.Chain == "" || req.TokenType == "" {
		writeError(w, http.StatusBadRequest, "address, chain, and tokenType are required", "badRequest")
		return
	}

	chainID, err := model.ParseChainID(req.Chain)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "badRequest")
		return
	}

	asset := &model.AssetDescriptor{
		Address:         req.Address,
		ChainID:         chainID,
		TokenType:       model.TokenType(req.TokenType),
		Name:            req.Name,
		OperatorAddress: req.OperatorAddress,
		GameData:        req.GameData,
	}

	created, err := s.assets.Upsert(r.Context(), asset)
	if err != nil {
		s.logger.Error("upsert asset failed", "address", req.Address, "error", err)
		writeError(w, http.StatusInternalServerError, "could not upsert asset", "internalError")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]any{"address": asset.Address, "created": created})
}

func (s *Server) handleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	if !s.checkCode(w, r, "") {
		return
	}
	address := r.URL.Query().Get("address")
	if address == "" {
		writeError(w, http.StatusBadRequest, "address query param is required", "badRequest")
		return
	}

	if err := s.assets.Delete(r.Context(), address); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "asset not found", "notFound")
			return
		}
		s.logger.Error("delete asset failed", "address", address, "error", err)
		writeError(w, http.StatusInternalServerError, "could not delete asset", "internalError")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"address": address, "success": "ok"})
}

func (s *Server) handleInvalidateAssets(w http.ResponseWriter, r *http.Request) {
	if !s.checkCode(w, r, "") {
		return
	}
	s.assets.Invalidate(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"success": "ok"})
}

func (s *Server) handleListFailures(w http.ResponseWriter, r *http.Request) {
	if s.failures == nil {
		writeError(w, http.StatusServiceUnavailable, "failure log not available", "unavailable")
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit", "badRequest")
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, s.failures.Recent(limit))
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"status": "ok"}
	if s.health != nil {
		resp["cacheConnected"] = s.health.Connected(r.Context())
	}
	writeJSON(w, http.StatusOK, resp)
}
