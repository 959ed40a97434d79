package guestcart

import (
	"encoding/json"
	"errors"
	"os"
	"sync"

	"go.uber.org/zap"
)

// Store はゲストカートの状態を1つのJSONファイルに永続化する。
// 遷移はReduceに任せ、ここでは排他と保存だけを担う。
type Store struct {
	mu     sync.Mutex
	state  State
	path   string
	logger *zap.SugaredLogger
}

func NewStore(path string, logger *zap.SugaredLogger) *Store {
	return &Store{
		state:  Initial(),
		path:   path,
		logger: logger,
	}
}

// Load は保存済みスナップショットがあれば読み込む。無ければ空のまま。
func (st *Store) Load() error {
	st.mu.Lock()
	defer st.mu.Unlock()

	raw, err := os.ReadFile(st.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	var snap State
	if err := json.Unmarshal(raw, &snap); err != nil {
		// 壊れたスナップショットは捨てて空から始める
		st.logger.Warnw("guest cart snapshot corrupted, starting empty", "path", st.path, "error", err)
		st.state = Initial()
		return nil
	}

	loaded, err := Reduce(st.state, LoadCart{State: snap})
	if err != nil {
		return err
	}
	st.state = loaded
	return nil
}

// Dispatch はアクションを適用し、変更があれば保存する。
// 不変条件で拒否された場合は警告ログだけ出して状態は保つ。
func (st *Store) Dispatch(a Action) State {
	st.mu.Lock()
	defer st.mu.Unlock()

	next, err := Reduce(st.state, a)
	if err != nil {
		st.logger.Warnw("guest cart action rejected", "error", err)
		return st.state
	}
	st.state = next

	if err := st.persist(a); err != nil {
		st.logger.Errorw("guest cart persist failed", "path", st.path, "error", err)
	}
	return st.state
}

func (st *Store) State() State {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.state
}

// ClearCartはスナップショットも消す。それ以外は上書き保存。
func (st *Store) persist(a Action) error {
	if _, isClear := a.(ClearCart); isClear {
		err := os.Remove(st.path)
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	// 開閉フラグは保存対象外（JSONタグで落ちる）
	raw, err := json.Marshal(st.state)
	if err != nil {
		return err
	}
	return os.WriteFile(st.path, raw, 0o644)
}
