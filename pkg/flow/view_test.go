package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/b3dotfun/anyspend-go/pkg/lifecycle"
)

func TestViewFor_StageDerived(t *testing.T) {
	cases := []struct {
		stage lifecycle.Stage
		want  View
	}{
		{lifecycle.StageIdle, ViewMain},
		{lifecycle.StageCreating, ViewLoading},
		{lifecycle.StageLoading, ViewLoading},
		{lifecycle.StageAwaitingCollector, ViewFiatPayment},
		{lifecycle.StageAwaitingPayment, ViewOrderDetails},
		{lifecycle.StageAwaitingDeposit, ViewOrderDetails},
		{lifecycle.StageProcessing, ViewOrderDetails},
		{lifecycle.StageExecuted, ViewOrderDetails},
	}
	for _, tc := range cases {
		got := ViewFor(NewNavigator(), lifecycle.Snapshot{Stage: tc.stage})
		assert.Equal(t, tc.want, got, "stage %s", tc.stage)
	}
}

func TestViewFor_ExplicitNavigationWins(t *testing.T) {
	nav := NewNavigator()
	nav.Push(ViewHistory)

	got := ViewFor(nav, lifecycle.Snapshot{Stage: lifecycle.StageProcessing})
	assert.Equal(t, ViewHistory, got)

	nav.Pop()
	got = ViewFor(nav, lifecycle.Snapshot{Stage: lifecycle.StageProcessing})
	assert.Equal(t, ViewOrderDetails, got)
}

func TestNavigator_Stack(t *testing.T) {
	nav := NewNavigator()

	_, ok := nav.Current()
	assert.False(t, ok)

	nav.Push(ViewHistory)
	nav.Push(ViewRecipientSelection)
	assert.Equal(t, 2, nav.Depth())

	v, ok := nav.Current()
	assert.True(t, ok)
	assert.Equal(t, ViewRecipientSelection, v)

	v, ok = nav.Pop()
	assert.True(t, ok)
	assert.Equal(t, ViewRecipientSelection, v)

	nav.Reset()
	assert.Equal(t, 0, nav.Depth())
	_, ok = nav.Pop()
	assert.False(t, ok)
}
