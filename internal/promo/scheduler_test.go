package promo

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-mart/internal/catalog"
	"github.com/noah-isme/backend-mart/internal/events"
)

type stubShop struct {
	mu          sync.Mutex
	flashFires  int
	suggestions int
	flashOK     bool
	suggestOK   bool
}

func (s *stubShop) StartRandomFlashSale(rng *rand.Rand) (catalog.Product, bool) {
	// Draw from the generator like a real session picking its product, so
	// running this suite with -race covers the scheduler's rand handling.
	_ = rng.Intn(5)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flashFires++
	return catalog.Product{ID: catalog.KeyboardID, Price: 8000}, s.flashOK
}

func (s *stubShop) StartSuggestionSale() (catalog.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suggestions++
	return catalog.Product{ID: catalog.MouseID, Price: 19000}, s.suggestOK
}

func (s *stubShop) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flashFires, s.suggestions
}

func TestSchedulerFiresBothPromotions(t *testing.T) {
	shop := &stubShop{flashOK: true, suggestOK: true}

	var mu sync.Mutex
	topics := map[string]int{}
	bus := &events.Bus{Notifiers: []events.Notifier{
		events.NotifierFunc(func(_ context.Context, ev events.Event) error {
			mu.Lock()
			defer mu.Unlock()
			topics[ev.Topic]++
			return nil
		}),
	}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := &Scheduler{
		Shop:      shop,
		SessionID: "session-1",
		Cfg: Config{
			FlashSaleMaxDelay:      time.Millisecond,
			FlashSaleInterval:      5 * time.Millisecond,
			SuggestionSaleMaxDelay: time.Millisecond,
			SuggestionSaleInterval: 5 * time.Millisecond,
		},
		Bus:    bus,
		Logger: zerolog.Nop(),
		Rand:   rand.New(rand.NewSource(1)),
	}

	done := make(chan struct{})
	go func() {
		sched.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for {
		flash, suggest := shop.counts()
		if flash >= 2 && suggest >= 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("promotions did not fire in time: flash=%d suggest=%d", flash, suggest)
		case <-time.After(2 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}

	mu.Lock()
	defer mu.Unlock()
	if topics[events.TopicFlashSaleStarted] == 0 {
		t.Fatal("expected flash sale events")
	}
	if topics[events.TopicSuggestionSaleStarted] == 0 {
		t.Fatal("expected suggestion sale events")
	}
}

func TestSchedulerSkipsEventWhenNothingFires(t *testing.T) {
	shop := &stubShop{}

	var mu sync.Mutex
	emitted := 0
	bus := &events.Bus{Notifiers: []events.Notifier{
		events.NotifierFunc(func(_ context.Context, _ events.Event) error {
			mu.Lock()
			defer mu.Unlock()
			emitted++
			return nil
		}),
	}}

	ctx, cancel := context.WithCancel(context.Background())
	sched := &Scheduler{
		Shop:      shop,
		SessionID: "session-2",
		Cfg: Config{
			FlashSaleInterval:      5 * time.Millisecond,
			SuggestionSaleInterval: 5 * time.Millisecond,
		},
		Bus:    bus,
		Logger: zerolog.Nop(),
		Rand:   rand.New(rand.NewSource(1)),
	}

	done := make(chan struct{})
	go func() {
		sched.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for {
		flash, suggest := shop.counts()
		if flash >= 2 && suggest >= 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("scheduler never attempted promotions")
		case <-time.After(2 * time.Millisecond):
		}
	}

	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	if emitted != 0 {
		t.Fatalf("expected no events when promotions decline, got %d", emitted)
	}
}

func TestSchedulerWaitsFullIntervalBeforeFirstFire(t *testing.T) {
	shop := &stubShop{flashOK: true, suggestOK: true}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := &Scheduler{
		Shop:      shop,
		SessionID: "session-3",
		Cfg: Config{
			FlashSaleInterval:      200 * time.Millisecond,
			SuggestionSaleInterval: 200 * time.Millisecond,
		},
		Logger: zerolog.Nop(),
		Rand:   rand.New(rand.NewSource(1)),
	}

	done := make(chan struct{})
	go func() {
		sched.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	flash, suggest := shop.counts()
	if flash != 0 || suggest != 0 {
		t.Fatalf("expected no attempts before the first interval, got flash=%d suggest=%d", flash, suggest)
	}

	cancel()
	<-done
}

func TestSchedulerNilShopReturns(t *testing.T) {
	sched := &Scheduler{Logger: zerolog.Nop()}
	done := make(chan struct{})
	go func() {
		sched.Run(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected immediate return without a shop")
	}
}
