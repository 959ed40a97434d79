// Package cartview はカートAPIの生レスポンスをUI向けのビューに整形する。
// 全関数は純粋（I/Oなし・決定的）。画像の解釈に失敗しても明細は捨てない。
package cartview

import (
	"encoding/json"
	"strings"
	"time"

	"app/internal/cartclient"
)

// 画像が1枚も無いときのセンチネル
const NoImage = "/images/no-image.png"

type Item struct {
	ID           int64
	ProductID    int64
	ENName       string
	ARName       string
	ImageURL     string
	RegularPrice float64
	SalePrice    float64
	Stock        int64
	InStock      bool
	Quantity     int64
	AddedAt      time.Time
}

// UnitPriceはセール価格優先の実売価格。
func (it Item) UnitPrice() float64 {
	if it.SalePrice > 0 {
		return it.SalePrice
	}
	return it.RegularPrice
}

// CartView はUIが消費する正規化済みカート。
// 部分更新はせず、フェッチのたびに丸ごと作り直す。
type CartView struct {
	CartID      int64
	SessionID   string
	CreatedAt   time.Time
	Items       []Item
	Subtotal    float64
	DeliveryFee float64
	Tax         float64
	Total       float64
}

// ParseImages はJSONエンコード済み配列か生の文字列を受け取り、
// 画像パスの並びに解釈する。決して失敗しない（だめなら空）。
func ParseImages(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}
	}

	// JSON配列として読めたらそれを使う
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err == nil {
		out := make([]string, 0, len(list))
		for _, s := range list {
			if strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
		return out
	}

	// だめなら1枚ものとして扱う
	return []string{raw}
}

// FirstImage は先頭の画像、無ければセンチネルを返す。
func FirstImage(raw string) string {
	images := ParseImages(raw)
	if len(images) == 0 {
		return NoImage
	}
	return images[0]
}

// BuildImageURL はimageRefをbaseURL配下のURLに組み立てる。
// すでに絶対URLなら二重にprefixしない。
func BuildImageURL(imageRef string, baseURL string) string {
	if imageRef == "" {
		return NoImage
	}
	if strings.HasPrefix(imageRef, "http://") || strings.HasPrefix(imageRef, "https://") {
		return imageRef
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(imageRef, "/")
}

// TransformCart は生のカートpayloadと合計内訳からCartViewを作る。
// subtotalは (salePrice ?? regularPrice) × quantity の総和で再計算する。
func TransformCart(cart cartclient.CartPayload, total cartclient.TotalPayload, uploadBaseURL string) CartView {
	items := make([]Item, 0, len(cart.Items))
	var subtotal float64 = 0

	for _, it := range cart.Items {
		imageURL := NoImage
		if ref := FirstImage(it.Images); ref != NoImage {
			imageURL = BuildImageURL(ref, uploadBaseURL)
		}

		v := Item{
			ID:           it.ID,
			ProductID:    it.ProductID,
			ENName:       it.ENName,
			ARName:       it.ARName,
			ImageURL:     imageURL,
			RegularPrice: it.RegularPrice,
			SalePrice:    it.SalePrice,
			Stock:        it.Stock,
			InStock:      it.InStock,
			Quantity:     it.Quantity,
			AddedAt:      it.AddedAt,
		}
		items = append(items, v)
		subtotal += v.UnitPrice() * float64(v.Quantity)
	}

	return CartView{
		CartID:      cart.ID,
		SessionID:   cart.SessionID,
		CreatedAt:   cart.CreatedAt,
		Items:       items,
		Subtotal:    subtotal,
		DeliveryFee: total.DeliveryFee,
		Tax:         total.Tax,
		Total:       subtotal + total.DeliveryFee + total.Tax,
	}
}
