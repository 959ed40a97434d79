package cartclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// TransportError は非2xx応答。statusとレスポンスボディ由来のメッセージを持つ。
type TransportError struct {
	Status  int
	Message string
	Body    string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("cart api: status %d: %s", e.Status, e.Message)
}

// DecodeError は2xx応答のボディが期待した形にデコードできなかった場合。
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cart api: decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func AsTransportError(err error) (*TransportError, bool) {
	var te *TransportError
	ok := errors.As(err, &te)
	return te, ok
}

// エラーボディが {"error": "..."} 形ならそのメッセージを使い、
// だめなら生テキスト、空なら汎用メッセージにする。
func newTransportError(status int, raw []byte) *TransportError {
	body := strings.TrimSpace(string(raw))
	msg := body

	var shaped struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &shaped); err == nil && shaped.Error != "" {
		msg = shaped.Error
	}

	if msg == "" {
		msg = "request failed"
	}

	return &TransportError{Status: status, Message: msg, Body: body}
}
