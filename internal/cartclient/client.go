// Package cartclient はカートAPIへのHTTPクライアント。
// 全リクエストにX-Session-IDヘッダとJSONボディを付ける。
// リトライはしない（add等は盲目的に再試行すると二重追加になる）。
package cartclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const headerSessionID = "X-Session-ID"

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// レスポンスの形はサーバーのCartResponseに合わせる
type CartItemPayload struct {
	ID           int64     `json:"id"`
	ProductID    int64     `json:"product_id"`
	ENName       string    `json:"e_name"`
	ARName       string    `json:"ar_name"`
	Images       string    `json:"images"`
	RegularPrice float64   `json:"regular_price"`
	SalePrice    float64   `json:"sale_price"`
	Stock        int64     `json:"stock"`
	InStock      bool      `json:"in_stock"`
	Quantity     int64     `json:"quantity"`
	AddedAt      time.Time `json:"added_at"`
}

type CartPayload struct {
	ID        int64             `json:"id"`
	SessionID string            `json:"session_id"`
	CreatedAt time.Time         `json:"created_at"`
	Items     []CartItemPayload `json:"items"`
}

type TotalPayload struct {
	Subtotal    float64 `json:"subtotal"`
	DeliveryFee float64 `json:"delivery_fee"`
	Tax         float64 `json:"tax"`
	Total       float64 `json:"total"`
}

type Confirmation struct {
	Message string `json:"message"`
}

// GetOrCreateCart はセッションのカートを取得（無ければサーバー側で作成）。
func (c *Client) GetOrCreateCart(ctx context.Context, sessionID string) (CartPayload, error) {
	var out CartPayload
	err := c.do(ctx, http.MethodPost, "/cart/get-or-create", sessionID,
		map[string]any{"session_id": sessionID}, &out)
	return out, err
}

// AddItem は商品を追加する。quantityは正の整数。在庫判定はサーバーが正。
func (c *Client) AddItem(ctx context.Context, sessionID string, productID int64, quantity int64) (CartPayload, error) {
	var out CartPayload
	if quantity < 1 {
		return out, fmt.Errorf("cartclient: quantity must be positive")
	}
	err := c.do(ctx, http.MethodPost, "/cart/add", sessionID,
		map[string]any{"session_id": sessionID, "product_id": productID, "quantity": quantity}, &out)
	return out, err
}

// UpdateItem は数量変更。quantity=0はこのAPIでは受け付けない（RemoveItemへ）。
func (c *Client) UpdateItem(ctx context.Context, sessionID string, cartItemID int64, quantity int64) (CartPayload, error) {
	var out CartPayload
	if quantity < 1 {
		return out, fmt.Errorf("cartclient: quantity must be at least 1")
	}
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/cart/item/%d", cartItemID), sessionID,
		map[string]any{"quantity": quantity}, &out)
	return out, err
}

// RemoveItem は明細を削除する。
func (c *Client) RemoveItem(ctx context.Context, sessionID string, cartItemID int64) (Confirmation, error) {
	var out Confirmation
	err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/cart/item/%d", cartItemID), sessionID, nil, &out)
	return out, err
}

// GetCartTotal は合計の内訳を取得する。読み取り専用。
func (c *Client) GetCartTotal(ctx context.Context, sessionID string) (TotalPayload, error) {
	var out TotalPayload
	err := c.do(ctx, http.MethodGet, "/cart/total?session_id="+sessionID, sessionID, nil, &out)
	return out, err
}

// ClearCart はカートの明細を全削除する。
func (c *Client) ClearCart(ctx context.Context, sessionID string) (Confirmation, error) {
	var out Confirmation
	err := c.do(ctx, http.MethodPost, "/cart/clear", sessionID,
		map[string]any{"session_id": sessionID}, &out)
	return out, err
}

// doはリクエスト発行＋厳密デコード。
// 非2xxはTransportError、デコード失敗はDecodeErrorを返す。
func (c *Client) do(ctx context.Context, method string, path string, sessionID string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set(headerSessionID, sessionID)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newTransportError(resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return &DecodeError{Path: path, Err: err}
	}
	return nil
}
