package page

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegionSetAndClear(t *testing.T) {
	doc := NewDocument()
	r := doc.Region(".gallery")

	assert.Equal(t, "", r.HTML())
	r.SetHTML("<figure></figure>")
	assert.Equal(t, "<figure></figure>", doc.Region(".gallery").HTML())
	r.Clear()
	assert.Equal(t, "", r.HTML())
}

func TestFireRunsListenersInOrder(t *testing.T) {
	doc := NewDocument()
	var got []string
	doc.On("#modal", Click, func(context.Context, Event) { got = append(got, "a") })
	doc.On("#modal", Click, func(context.Context, Event) { got = append(got, "b") })
	doc.On("#modal", Submit, func(context.Context, Event) { got = append(got, "submit") })

	n := doc.Fire(context.Background(), "#modal", Event{Kind: Click})

	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestSubscriptionCancel(t *testing.T) {
	doc := NewDocument()
	calls := 0
	sub := doc.On("#form", Submit, func(context.Context, Event) { calls++ })
	assert.Equal(t, 1, doc.ListenerCount("#form", Submit))

	sub.Cancel()
	sub.Cancel()

	assert.Equal(t, 0, doc.ListenerCount("#form", Submit))
	assert.Equal(t, 0, doc.Fire(context.Background(), "#form", Event{Kind: Submit}))
	assert.Equal(t, 0, calls)
}

func TestHandlerMayDetachItself(t *testing.T) {
	doc := NewDocument()
	var sub *Subscription
	sub = doc.On("#modal", Click, func(context.Context, Event) { sub.Cancel() })

	assert.Equal(t, 1, doc.Fire(context.Background(), "#modal", Event{Kind: Click}))
	assert.Equal(t, 0, doc.ListenerCount("#modal", Click))
}

func TestScopeClose(t *testing.T) {
	doc := NewDocument()
	scope := NewScope()
	scope.Add(doc.On("#form", Submit, func(context.Context, Event) {}))
	scope.Add(doc.On("#photo", Change, func(context.Context, Event) {}))
	assert.Equal(t, 2, scope.Len())

	scope.Close()
	scope.Close()

	assert.Equal(t, 0, scope.Len())
	assert.Equal(t, 0, doc.ListenerCount("#form", Submit))
	assert.Equal(t, 0, doc.ListenerCount("#photo", Change))
}

func TestScopeCloseRunsCleanupsOnce(t *testing.T) {
	doc := NewDocument()
	scope := NewScope()
	var order []string
	scope.Add(doc.On("#form", Submit, func(context.Context, Event) {}))
	scope.OnClose(func() {
		order = append(order, "first")
		assert.Equal(t, 0, doc.ListenerCount("#form", Submit))
	})
	scope.OnClose(func() { order = append(order, "second") })

	scope.Close()
	scope.Close()

	assert.Equal(t, []string{"second", "first"}, order)
}

func TestTargetHasRole(t *testing.T) {
	tg := Target{Roles: []string{"delete", "thumb"}}

	assert.True(t, tg.HasRole("delete"))
	assert.False(t, tg.HasRole("close"))
}
