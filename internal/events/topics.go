package events

// Topic constants for domain events emitted by the shop.
const (
	TopicSessionCreated        = "session.created"
	TopicSessionExpired        = "session.expired"
	TopicCartUpdated           = "cart.updated"
	TopicFlashSaleStarted      = "promo.flash_sale.started"
	TopicSuggestionSaleStarted = "promo.suggestion_sale.started"
)

// DefaultTopics returns the canonical list of emitted topics.
func DefaultTopics() []string {
	return []string{
		TopicSessionCreated,
		TopicSessionExpired,
		TopicCartUpdated,
		TopicFlashSaleStarted,
		TopicSuggestionSaleStarted,
	}
}
