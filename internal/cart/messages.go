package cart

import (
	"errors"

	"vietfood/internal/domain"
)

const (
	LangJa = "ja"
	LangVi = "vi"
)

// Messages are the localised strings written to State.Error.
type Messages struct {
	Lang              string
	NotFound          string
	InsufficientStock string
	InvalidQuantity   string
	LookupFailed      string
	AddFailed         string
	LoadFailed        string
}

var MessagesJa = Messages{
	Lang:              LangJa,
	NotFound:          "商品が見つかりません",
	InsufficientStock: "在庫が不足しています",
	InvalidQuantity:   "数量は1以上99以下である必要があります",
	LookupFailed:      "商品情報の取得に失敗しました",
	AddFailed:         "カートへの追加に失敗しました",
	LoadFailed:        "カートの読み込みに失敗しました",
}

var MessagesVi = Messages{
	Lang:              LangVi,
	NotFound:          "Không tìm thấy sản phẩm",
	InsufficientStock: "Không đủ hàng trong kho",
	InvalidQuantity:   "Số lượng phải từ 1 đến 99",
	LookupFailed:      "Không thể lấy thông tin sản phẩm",
	AddFailed:         "Không thể thêm vào giỏ hàng",
	LoadFailed:        "Không thể tải giỏ hàng",
}

// MessagesFor returns the catalog for lang, defaulting to Japanese.
func MessagesFor(lang string) Messages {
	if lang == LangVi {
		return MessagesVi
	}
	return MessagesJa
}

// For maps an error returned by Cart to its UI message.
func (m Messages) For(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrNotFound):
		return m.NotFound
	case errors.Is(err, domain.ErrInsufficientStock):
		return m.InsufficientStock
	case errors.Is(err, domain.ErrInvalidInput):
		return m.InvalidQuantity
	case errors.Is(err, domain.ErrLookupFailed):
		return m.LookupFailed
	default:
		return m.AddFailed
	}
}
