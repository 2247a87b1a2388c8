package promo

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-mart/internal/catalog"
	"github.com/noah-isme/backend-mart/internal/events"
	"github.com/noah-isme/backend-mart/internal/obs"
)

// Shop is the slice of session behaviour the scheduler drives. Both calls
// pick their own target product and report whether a promotion fired.
type Shop interface {
	StartRandomFlashSale(rng *rand.Rand) (catalog.Product, bool)
	StartSuggestionSale() (catalog.Product, bool)
}

// Config holds promotion cadence. Each promotion waits a random initial
// delay in [0, MaxDelay) and then attempts to fire on every interval tick.
type Config struct {
	FlashSaleMaxDelay      time.Duration
	FlashSaleInterval      time.Duration
	SuggestionSaleMaxDelay time.Duration
	SuggestionSaleInterval time.Duration
}

// Scheduler runs the flash sale and suggestion sale timers for one session.
type Scheduler struct {
	Shop      Shop
	SessionID string
	Cfg       Config
	Bus       *events.Bus
	Logger    zerolog.Logger
	Rand      *rand.Rand
}

// Run starts both promotion loops and blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	if s.Shop == nil {
		return
	}
	rng := s.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	// rand.Rand is not safe for concurrent use. Draw everything the flash
	// loop needs from the injected source here, then hand that loop its own
	// derived generator.
	flashDelay := randomDelay(rng, s.Cfg.FlashSaleMaxDelay)
	suggestDelay := randomDelay(rng, s.Cfg.SuggestionSaleMaxDelay)
	flashRng := rand.New(rand.NewSource(rng.Int63()))

	flashDone := make(chan struct{})
	go func() {
		defer close(flashDone)
		s.loop(ctx, flashDelay, s.Cfg.FlashSaleInterval, func() (catalog.Product, bool) {
			return s.Shop.StartRandomFlashSale(flashRng)
		}, events.TopicFlashSaleStarted, "flash_sale")
	}()

	s.loop(ctx, suggestDelay, s.Cfg.SuggestionSaleInterval, func() (catalog.Product, bool) {
		return s.Shop.StartSuggestionSale()
	}, events.TopicSuggestionSaleStarted, "suggestion_sale")

	<-flashDone
}

func (s *Scheduler) loop(ctx context.Context, delay, interval time.Duration, fire func() (catalog.Product, bool), topic, kind string) {
	if interval <= 0 {
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	// The first attempt happens a full interval after the delay, never at
	// the delay itself.
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if product, ok := fire(); ok {
			s.fired(ctx, topic, kind, product)
		}
	}
}

func (s *Scheduler) fired(ctx context.Context, topic, kind string, product catalog.Product) {
	if obs.PromoFiresTotal != nil {
		obs.PromoFiresTotal.WithLabelValues(kind).Inc()
	}
	s.Logger.Info().
		Str("session_id", s.SessionID).
		Str("kind", kind).
		Str("product_id", product.ID).
		Int64("price", int64(product.Price)).
		Msg("promotion fired")
	if _, err := s.Bus.Emit(ctx, topic, s.SessionID, product); err != nil {
		s.Logger.Warn().Err(err).Str("topic", topic).Msg("emit promo event")
	}
}

func randomDelay(rng *rand.Rand, max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(rng.Int63n(int64(max)))
}
