// Package erpclient implementa el puerto ERPClient contra el JSON-RPC del
// ERP remoto. Usa net/http de la stdlib; sin reintentos: un fallo transitorio
// se trata igual que uno permanente y se propaga al llamador.
package erpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/jfarias/trazabilidad-api/internal/application/ports"
	"github.com/jfarias/trazabilidad-api/internal/domain"
	"github.com/jfarias/trazabilidad-api/pkg/config"
	"github.com/jfarias/trazabilidad-api/pkg/logger"
)

// Client cliente JSON-RPC autenticado por sesión (uid cacheado tras el
// primer login).
type Client struct {
	httpClient *http.Client
	url        string
	db         string
	user       string
	password   string
	log        *logger.Logger

	mu    sync.Mutex
	uid   int64
	reqID atomic.Int64
}

// New construye el cliente. El timeout viene de configuración (el ERP puede
// tardar varios segundos en barridos grandes).
func New(cfg config.ERPConfig, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		url:        cfg.URL,
		db:         cfg.DB,
		user:       cfg.User,
		password:   cfg.Password,
		log:        log,
	}
}

// ── Protocolo JSON-RPC ────────────────────────────────────────────────────────

type rpcRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
	ID      int64     `json:"id"`
}

type rpcParams struct {
	Service string `json:"service"`
	Method  string `json:"method"`
	Args    []any  `json:"args"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Message string `json:"message"`
	} `json:"data"`
}

func (e *rpcError) Error() string {
	if e.Data.Message != "" {
		return e.Data.Message
	}
	return e.Message
}

func (c *Client) call(ctx context.Context, service, method string, args []any) (json.RawMessage, error) {
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  "call",
		Params:  rpcParams{Service: service, Method: method, Args: args},
		ID:      c.reqID.Add(1),
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/jsonrpc", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: leer respuesta: %v", domain.ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", domain.ErrUpstream, resp.StatusCode)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return nil, fmt.Errorf("%w: respuesta no es JSON-RPC: %v", domain.ErrUpstream, err)
	}
	if rpcResp.Error != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, rpcResp.Error)
	}
	return rpcResp.Result, nil
}

// authenticate hace login una sola vez y cachea el uid de sesión.
func (c *Client) authenticate(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.uid != 0 {
		return c.uid, nil
	}
	raw, err := c.call(ctx, "common", "login", []any{c.db, c.user, c.password})
	if err != nil {
		return 0, err
	}
	var uid int64
	if err := json.Unmarshal(raw, &uid); err != nil || uid == 0 {
		return 0, fmt.Errorf("%w: credenciales rechazadas", domain.ErrUpstream)
	}
	c.uid = uid
	c.log.Info().Int64("uid", uid).Str("db", c.db).Msg("sesión ERP iniciada")
	return uid, nil
}

// executeKw envoltorio estándar: object.execute_kw(db, uid, pwd, colección, método, args, kwargs).
func (c *Client) executeKw(ctx context.Context, collection, method string, args []any, kwargs map[string]any) (json.RawMessage, error) {
	uid, err := c.authenticate(ctx)
	if err != nil {
		return nil, err
	}
	if kwargs == nil {
		kwargs = map[string]any{}
	}
	return c.call(ctx, "object", "execute_kw",
		[]any{c.db, uid, c.password, collection, method, args, kwargs})
}

// ── Implementación del puerto ─────────────────────────────────────────────────

// SearchRead busca filas por filtro.
func (c *Client) SearchRead(ctx context.Context, collection string, filter ports.Filter, fields []string, limit int, order string) ([]ports.Row, error) {
	kwargs := map[string]any{"fields": fields}
	if limit > 0 {
		kwargs["limit"] = limit
	}
	if order != "" {
		kwargs["order"] = order
	}
	raw, err := c.executeKw(ctx, collection, "search_read", []any{marshalFilter(filter)}, kwargs)
	if err != nil {
		return nil, err
	}
	return rowsFromRaw(raw)
}

// Read lee filas por id.
func (c *Client) Read(ctx context.Context, collection string, ids []int64, fields []string) ([]ports.Row, error) {
	raw, err := c.executeKw(ctx, collection, "read", []any{ids}, map[string]any{"fields": fields})
	if err != nil {
		return nil, err
	}
	return rowsFromRaw(raw)
}

// Execute invoca un método arbitrario de la colección.
func (c *Client) Execute(ctx context.Context, collection, method string, args ...any) (any, error) {
	raw, err := c.executeKw(ctx, collection, method, args, nil)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: decodificar resultado de %s.%s: %v", domain.ErrUpstream, collection, method, err)
	}
	return out, nil
}

// SearchReadBatch pagina un barrido completo en lotes de batchSize.
func (c *Client) SearchReadBatch(ctx context.Context, collection string, filter ports.Filter, fields []string, batchSize int, order string) ([]ports.Row, error) {
	if batchSize <= 0 {
		batchSize = 500
	}
	var all []ports.Row
	for offset := 0; ; offset += batchSize {
		kwargs := map[string]any{
			"fields": fields,
			"limit":  batchSize,
			"offset": offset,
		}
		if order != "" {
			kwargs["order"] = order
		}
		raw, err := c.executeKw(ctx, collection, "search_read", []any{marshalFilter(filter)}, kwargs)
		if err != nil {
			return nil, err
		}
		page, err := rowsFromRaw(raw)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < batchSize {
			return all, nil
		}
	}
}

// marshalFilter convierte el filtro a la forma de dominio del ERP:
// [[campo, operador, valor], ...].
func marshalFilter(filter ports.Filter) []any {
	out := make([]any, 0, len(filter))
	for _, c := range filter {
		out = append(out, []any{c.Field, c.Op, c.Value})
	}
	return out
}

func rowsFromRaw(raw json.RawMessage) ([]ports.Row, error) {
	var rows []map[string]any
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("%w: decodificar filas: %v", domain.ErrUpstream, err)
	}
	out := make([]ports.Row, 0, len(rows))
	for _, r := range rows {
		out = append(out, ports.Row(r))
	}
	return out, nil
}
