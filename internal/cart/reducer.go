package cart

// Reduce computes the next state. It has no side effects and never mutates
// the items of the state it is given. Totals are recomputed from scratch on
// every item change.
func Reduce(state State, action Action) State {
	switch a := action.(type) {
	case SetLoading:
		state.IsLoading = a.Loading
		return state

	case SetError:
		state.Error = a.Message
		state.IsLoading = false
		return state

	case SetItems:
		next := withItems(state, cloneItems(a.Items))
		next.IsLoading = false
		next.Error = ""
		return next

	case AddItem:
		return addItem(state, a)

	case UpdateQuantity:
		items := make([]LineItem, 0, len(state.Items))
		for _, item := range state.Items {
			if item.ID == a.LineItemID {
				item.Quantity = max(0, a.Quantity)
			}
			if item.Quantity > 0 {
				items = append(items, item)
			}
		}
		next := withItems(state, items)
		next.Error = ""
		return next

	case RemoveItem:
		items := make([]LineItem, 0, len(state.Items))
		for _, item := range state.Items {
			if item.ID != a.LineItemID {
				items = append(items, item)
			}
		}
		next := withItems(state, items)
		next.Error = ""
		return next

	case ClearCart:
		next := withItems(state, []LineItem{})
		next.Error = ""
		return next

	default:
		return state
	}
}

func addItem(state State, a AddItem) State {
	if a.Quantity <= 0 {
		return state
	}
	items := cloneItems(state.Items)
	merged := false
	for i := range items {
		if items[i].matches(a.ProductID, a.VariantID) {
			items[i].Quantity += a.Quantity
			merged = true
			break
		}
	}
	if !merged {
		var variant *VariantSnapshot
		if a.Variant != nil {
			v := *a.Variant
			variant = &v
		}
		items = append(items, LineItem{
			ID:        a.LineItemID,
			ProductID: a.ProductID,
			VariantID: a.VariantID,
			Quantity:  a.Quantity,
			Product:   a.Product,
			Variant:   variant,
		})
	}
	next := withItems(state, items)
	next.Error = ""
	return next
}
