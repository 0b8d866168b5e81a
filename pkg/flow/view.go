// Package flow projects lifecycle state onto the panel the UI should render
// and keeps a subset of that state mirrored in the page's query string so a
// reloaded or shared link reconstructs the same panel.
package flow

import "github.com/b3dotfun/anyspend-go/pkg/lifecycle"

// View is the current panel. It is a projection of order presence, order
// status and explicit navigation, never a source of truth.
type View string

const (
	ViewMain                View = "main"
	ViewHistory             View = "history"
	ViewOrderDetails        View = "order_details"
	ViewLoading             View = "loading"
	ViewFiatPayment         View = "fiat_payment"
	ViewRecipientSelection  View = "recipient_selection"
	ViewCryptoPaymentMethod View = "crypto_payment_method"
)

// ViewFor computes the panel for a lifecycle snapshot. Explicit navigation
// (history, recipient selection, payment-method picker) wins over the
// stage-derived panel while it is on the stack.
func ViewFor(nav *Navigator, snap lifecycle.Snapshot) View {
	if nav != nil {
		if v, ok := nav.Current(); ok {
			return v
		}
	}

	switch snap.Stage {
	case lifecycle.StageIdle:
		return ViewMain
	case lifecycle.StageCreating, lifecycle.StageLoading:
		return ViewLoading
	case lifecycle.StageAwaitingCollector:
		return ViewFiatPayment
	default:
		return ViewOrderDetails
	}
}
