package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecipientResolver_Precedence(t *testing.T) {
	r := NewRecipientResolver()
	assert.Equal(t, "", r.Effective())

	r.SeedFromRecents([]string{"0xstored"})
	assert.Equal(t, "0xstored", r.Effective())

	r.SetWalletAddress("0xwallet")
	// The seeded value was recorded as a selection, which outranks the wallet.
	assert.Equal(t, "0xstored", r.Effective())

	r.ClearSelection()
	assert.Equal(t, "0xwallet", r.Effective())

	r.Select("0xchosen")
	assert.Equal(t, "0xchosen", r.Effective())

	r.SetExplicit("0xpinned")
	assert.Equal(t, "0xpinned", r.Effective())
}

func TestRecipientResolver_WalletChangeNeverClobbersSelection(t *testing.T) {
	r := NewRecipientResolver()
	r.Select("0xchosen")

	r.SetWalletAddress("0xwallet1")
	r.SetWalletAddress("0xwallet2")
	assert.Equal(t, "0xchosen", r.Effective())

	// Disconnect leaves the selection intact too.
	r.SetWalletAddress("")
	assert.Equal(t, "0xchosen", r.Effective())
}

func TestRecipientResolver_SeedAppliesAtMostOnce(t *testing.T) {
	r := NewRecipientResolver()

	r.SeedFromRecents([]string{"0xfirst"})
	assert.Equal(t, "0xfirst", r.Effective())

	r.ClearSelection()
	r.SeedFromRecents([]string{"0xsecond"})
	assert.Equal(t, "", r.Effective())
}

func TestRecipientResolver_SeedSkippedWhenAnotherSourceSet(t *testing.T) {
	r := NewRecipientResolver()
	r.SetWalletAddress("0xwallet")

	r.SeedFromRecents([]string{"0xstored"})
	assert.Equal(t, "0xwallet", r.Effective())
}
