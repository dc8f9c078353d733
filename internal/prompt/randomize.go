package prompt

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/dmorgan81/storybot/internal/log"
	"github.com/samber/do"
	"github.com/samber/lo"
)

var DefaultTopics = []string{
	"A cat playing the piano",
	"A lighthouse keeper who befriends a whale",
	"A robot learning to paint",
	"A dragon afraid of the dark",
}

// Randomizer picks example topics for the input placeholder.
type Randomizer struct {
	topics []string

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewRandomizer(i *do.Injector) (*Randomizer, error) {
	topics := do.MustInvokeNamed[[]string](i, "topics")
	return NewRandomizerFrom(topics), nil
}

func NewRandomizerFrom(topics []string) *Randomizer {
	topics = lo.Uniq(lo.Compact(lo.Map(topics, func(t string, _ int) string {
		return strings.TrimSpace(t)
	})))
	if len(topics) == 0 {
		topics = DefaultTopics
	}
	rnd := rand.New(rand.NewSource(time.Now().UTC().UnixNano()))
	return &Randomizer{topics: topics, rnd: rnd}
}

func (r *Randomizer) Suggest(ctx context.Context) string {
	log.FromContextOrDiscard(ctx).WithGroup("randomizer").Debug("picking example topic")
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.topics[r.rnd.Intn(len(r.topics))]
}
