package aggregate

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLatestDropsSupersededResponses(t *testing.T) {
	var l Latest[string]

	march := l.Issue()
	april := l.Issue()

	// April resolves first, then the slower March response arrives.
	assert.True(t, l.Offer(april, "april"))
	assert.False(t, l.Offer(march, "march"))

	v, ticket := l.Value()
	assert.Equal(t, "april", v)
	assert.Equal(t, april, ticket)
}

func TestLatestRejectsOlderEvenBeforeNewerResolves(t *testing.T) {
	var l Latest[int]
	first := l.Issue()
	_ = l.Issue()

	assert.False(t, l.Offer(first, 1))
	v, ticket := l.Value()
	assert.Zero(t, v)
	assert.Zero(t, ticket)
}

func TestLatestRejectsDuplicateOffer(t *testing.T) {
	var l Latest[int]
	ticket := l.Issue()
	assert.True(t, l.Offer(ticket, 1))
	assert.False(t, l.Offer(ticket, 2))
	v, _ := l.Value()
	assert.Equal(t, 1, v)
}

func TestLatestConcurrentOffers(t *testing.T) {
	var l Latest[uint64]
	tickets := make([]uint64, 50)
	for i := range tickets {
		tickets[i] = l.Issue()
	}

	var wg sync.WaitGroup
	for _, tk := range tickets {
		wg.Add(1)
		go func(tk uint64) {
			defer wg.Done()
			l.Offer(tk, tk)
		}(tk)
	}
	wg.Wait()

	v, ticket := l.Value()
	last := tickets[len(tickets)-1]
	assert.Equal(t, last, v)
	assert.Equal(t, last, ticket)
}
