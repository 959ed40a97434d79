// Package cartsync はリモートカートとUI状態の同期の中核。
// 変更系は必ず「リモート呼び出し→全体refetch」で、ローカルにパッチは当てない。
package cartsync

import (
	"context"
	"strings"
	"sync"

	"app/internal/cartclient"
	"app/internal/cartview"

	"golang.org/x/sync/errgroup"
)

// 在庫不足のときにユーザーへ見せる文言（アラビア語ストアの定型文）
const stockFriendlyMessage = "عذراً، الكمية المطلوبة غير متوفرة في المخزون"

// Transport はcartclient.Clientの操作面。テストで差し替える。
type Transport interface {
	GetOrCreateCart(ctx context.Context, sessionID string) (cartclient.CartPayload, error)
	AddItem(ctx context.Context, sessionID string, productID int64, quantity int64) (cartclient.CartPayload, error)
	UpdateItem(ctx context.Context, sessionID string, cartItemID int64, quantity int64) (cartclient.CartPayload, error)
	RemoveItem(ctx context.Context, sessionID string, cartItemID int64) (cartclient.Confirmation, error)
	GetCartTotal(ctx context.Context, sessionID string) (cartclient.TotalPayload, error)
	ClearCart(ctx context.Context, sessionID string) (cartclient.Confirmation, error)
}

// Syncer はキャッシュ済みCartViewと選択集合を1インスタンスで所有する。
type Syncer struct {
	transport     Transport
	sessionID     string
	uploadBaseURL string
	notifier      Notifier
	counter       *Counter

	mu       sync.Mutex
	view     *cartview.CartView
	selected map[int64]bool
	loading  bool
	fetchErr error // 初回フェッチ失敗のみ保持（エラーページ用）
}

func NewSyncer(transport Transport, sessionID string, uploadBaseURL string, notifier Notifier, counter *Counter) *Syncer {
	return &Syncer{
		transport:     transport,
		sessionID:     sessionID,
		uploadBaseURL: uploadBaseURL,
		notifier:      notifier,
		counter:       counter,
		selected:      map[int64]bool{},
	}
}

// View は現在のキャッシュ（未フェッチ/クリア後はnil）。
func (s *Syncer) View() *cartview.CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

func (s *Syncer) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err は初回フェッチの失敗。操作の失敗はここには入らない。
func (s *Syncer) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetchErr
}

func (s *Syncer) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

// FetchCart はリモートカートを取得して正規化し、キャッシュを丸ごと置き換える。
// 選択集合は「全選択」にリセットする。session未設定ならno-op。
func (s *Syncer) FetchCart(ctx context.Context) error {
	if s.sessionID == "" {
		return nil
	}

	s.setLoading(true)
	defer s.setLoading(false)

	cart, err := s.transport.GetOrCreateCart(ctx, s.sessionID)
	if err != nil {
		s.mu.Lock()
		if s.view == nil {
			s.fetchErr = err
		}
		s.mu.Unlock()
		s.notifier.Error(displayMessage(err))
		return err
	}

	total, err := s.transport.GetCartTotal(ctx, s.sessionID)
	if err != nil {
		// 合計が取れなくても明細は見せる（内訳ゼロのまま）
		total = cartclient.TotalPayload{}
	}

	view := cartview.TransformCart(cart, total, s.uploadBaseURL)

	s.mu.Lock()
	s.view = &view
	s.fetchErr = nil
	s.selected = map[int64]bool{}
	for _, it := range view.Items {
		s.selected[it.ID] = true
	}
	s.mu.Unlock()

	s.counter.Set(countItems(view))
	return nil
}

// AddToCart は追加してrefetchする。失敗は通知した上で必ず呼び出し元へ返す
// （画面遷移の中断などはUI側が判断する）。
func (s *Syncer) AddToCart(ctx context.Context, productID int64, quantity int64) error {
	if quantity < 1 {
		quantity = 1
	}

	s.setLoading(true)
	defer s.setLoading(false)

	if _, err := s.transport.AddItem(ctx, s.sessionID, productID, quantity); err != nil {
		s.notifier.Error(displayMessage(err))
		return err
	}

	if err := s.FetchCart(ctx); err != nil {
		return err
	}

	s.notifier.Success("added to cart")
	return nil
}

// UpdateQuantity は数量変更後にrefetchする。1未満はno-op。
func (s *Syncer) UpdateQuantity(ctx context.Context, cartItemID int64, quantity int64) error {
	if quantity < 1 {
		s.notifier.Warn("quantity must be at least 1")
		return nil
	}

	s.setLoading(true)
	defer s.setLoading(false)

	if _, err := s.transport.UpdateItem(ctx, s.sessionID, cartItemID, quantity); err != nil {
		s.notifier.Error(displayMessage(err))
		return err
	}

	return s.FetchCart(ctx)
}

// RemoveItem は削除してrefetchする。
// 選択集合からはrefetch前に先に外す（古い選択のチラつき防止）。
func (s *Syncer) RemoveItem(ctx context.Context, cartItemID int64) error {
	s.mu.Lock()
	delete(s.selected, cartItemID)
	s.mu.Unlock()

	s.setLoading(true)
	defer s.setLoading(false)

	if _, err := s.transport.RemoveItem(ctx, s.sessionID, cartItemID); err != nil {
		s.notifier.Error(displayMessage(err))
		return err
	}

	return s.FetchCart(ctx)
}

// RemoveSelected は選択中の明細を並行に削除する。
// アトミックではない：一部失敗しても成功した削除は巻き戻さず、
// refetchでサーバーの実状態に収束させる。
func (s *Syncer) RemoveSelected(ctx context.Context) error {
	ids := s.SelectedIDs()
	if len(ids) == 0 {
		s.notifier.Warn("no items selected")
		return nil
	}

	s.setLoading(true)
	defer s.setLoading(false)

	g, gctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			_, err := s.transport.RemoveItem(gctx, s.sessionID, id)
			return err
		})
	}
	joinErr := g.Wait()

	s.mu.Lock()
	s.selected = map[int64]bool{}
	s.mu.Unlock()

	// 失敗の有無にかかわらず実状態に合わせる
	if err := s.FetchCart(ctx); err != nil {
		return err
	}

	if joinErr != nil {
		s.notifier.Error(displayMessage(joinErr))
		return joinErr
	}

	s.notifier.Success("selected items removed")
	return nil
}

// Clear はカートを空にする。結果は自明なのでrefetchせず直接反映する。
func (s *Syncer) Clear(ctx context.Context) error {
	s.setLoading(true)
	defer s.setLoading(false)

	if _, err := s.transport.ClearCart(ctx, s.sessionID); err != nil {
		s.notifier.Error(displayMessage(err))
		return err
	}

	s.mu.Lock()
	s.view = nil
	s.selected = map[int64]bool{}
	s.mu.Unlock()

	s.counter.Set(0)
	s.notifier.Success("cart cleared")
	return nil
}

// RefreshTotal は合計内訳だけを取り直す。キャッシュ済み明細には触らない。
func (s *Syncer) RefreshTotal(ctx context.Context) (cartclient.TotalPayload, error) {
	total, err := s.transport.GetCartTotal(ctx, s.sessionID)
	if err != nil {
		s.notifier.Error(displayMessage(err))
		return cartclient.TotalPayload{}, err
	}
	return total, nil
}

// SelectItem は明細単位の選択トグル。ローカルのみでネットワークは触らない。
func (s *Syncer) SelectItem(cartItemID int64, selected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if selected {
		s.selected[cartItemID] = true
	} else {
		delete(s.selected, cartItemID)
	}
}

// SelectAll は全選択⇔全解除のトグル。
func (s *Syncer) SelectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.view == nil {
		return
	}

	allSelected := true
	for _, it := range s.view.Items {
		if !s.selected[it.ID] {
			allSelected = false
			break
		}
	}

	s.selected = map[int64]bool{}
	if !allSelected {
		for _, it := range s.view.Items {
			s.selected[it.ID] = true
		}
	}
}

func (s *Syncer) IsSelected(cartItemID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected[cartItemID]
}

func (s *Syncer) SelectedIDs() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, len(s.selected))
	if s.view != nil {
		// 表示順を保つ
		for _, it := range s.view.Items {
			if s.selected[it.ID] {
				ids = append(ids, it.ID)
			}
		}
		return ids
	}
	for id := range s.selected {
		ids = append(ids, id)
	}
	return ids
}

// Checkout はチェックアウト前のプリフライト。決済や画面遷移自体は呼び出し元の仕事。
func (s *Syncer) Checkout(ctx context.Context) (cartclient.TotalPayload, error) {
	if len(s.SelectedIDs()) == 0 {
		s.notifier.Warn("no items selected")
		return cartclient.TotalPayload{}, nil
	}

	total, err := s.RefreshTotal(ctx)
	if err != nil {
		return cartclient.TotalPayload{}, err
	}

	s.notifier.Success("proceeding to checkout")
	return total, nil
}

func countItems(view cartview.CartView) int64 {
	var n int64 = 0
	for _, it := range view.Items {
		n += it.Quantity
	}
	return n
}

// displayMessage はエラーをユーザー向け文言に変換する。
// 在庫不足はローカライズ済みの定型文に差し替える。
func displayMessage(err error) string {
	if te, ok := cartclient.AsTransportError(err); ok {
		if strings.Contains(strings.ToLower(te.Message), "stock") {
			return stockFriendlyMessage
		}
		return te.Message
	}
	return err.Error()
}
