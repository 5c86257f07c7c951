package cart

// Action is a cart transition. The set is closed: only the types in this
// file implement it.
type Action interface {
	isAction()
}

type SetLoading struct {
	Loading bool
}

// SetError records a UI-facing message; an empty message clears it.
type SetError struct {
	Message string
}

// SetItems replaces the items wholesale, used when hydrating from storage.
type SetItems struct {
	Items []LineItem
}

// AddItem merges into the line matching (ProductID, VariantID) or appends a
// new line with LineItemID.
type AddItem struct {
	LineItemID string
	ProductID  string
	VariantID  string
	Quantity   int
	Product    ProductSnapshot
	Variant    *VariantSnapshot
}

// UpdateQuantity sets the quantity of a line; zero or less removes it.
type UpdateQuantity struct {
	LineItemID string
	Quantity   int
}

type RemoveItem struct {
	LineItemID string
}

type ClearCart struct{}

func (SetLoading) isAction()     {}
func (SetError) isAction()       {}
func (SetItems) isAction()       {}
func (AddItem) isAction()        {}
func (UpdateQuantity) isAction() {}
func (RemoveItem) isAction()     {}
func (ClearCart) isAction()      {}

// affectsItems reports whether the action can change the item list and
// therefore needs persisting.
func affectsItems(a Action) bool {
	switch a.(type) {
	case SetItems, AddItem, UpdateQuantity, RemoveItem, ClearCart:
		return true
	default:
		return false
	}
}
