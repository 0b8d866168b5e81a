package payment

import "sync"

// RecipientResolver derives the effective destination address from its
// sources by precedence: explicit prop > user selection > connected wallet >
// stored default. Sources are re-evaluated whenever they change; an explicit
// user selection is never clobbered.
type RecipientResolver struct {
	mu            sync.Mutex
	explicit      string
	userSelection string
	walletAddress string
	storedDefault string
	seeded        bool
}

// NewRecipientResolver returns an empty resolver.
func NewRecipientResolver() *RecipientResolver {
	return &RecipientResolver{}
}

// Effective returns the current destination address, or "" when no source
// has produced one.
func (r *RecipientResolver) Effective() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case r.explicit != "":
		return r.explicit
	case r.userSelection != "":
		return r.userSelection
	case r.walletAddress != "":
		return r.walletAddress
	default:
		return r.storedDefault
	}
}

// SetExplicit pins the caller-provided recipient. Highest precedence.
func (r *RecipientResolver) SetExplicit(addr string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.explicit = addr
}

// Select records the user's choice. Sticky until ClearSelection.
func (r *RecipientResolver) Select(addr string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.userSelection = addr
}

// ClearSelection drops the user's choice, e.g. on flow restart.
func (r *RecipientResolver) ClearSelection() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.userSelection = ""
}

// SetWalletAddress tracks the connected wallet, "" on disconnect.
func (r *RecipientResolver) SetWalletAddress(addr string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.walletAddress = addr
}

// SeedFromRecents applies the cold-start convenience: with no wallet, no
// explicit recipient and no prior selection, the first stored recent becomes
// the initial selection. Applies at most once per resolver.
func (r *RecipientResolver) SeedFromRecents(recents []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.seeded {
		return
	}
	r.seeded = true

	if r.explicit != "" || r.userSelection != "" || r.walletAddress != "" {
		return
	}
	if len(recents) > 0 {
		r.userSelection = recents[0]
	}
}
