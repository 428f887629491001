package events

// Topic constants for domain events emitted by the quoting platform.
const (
	TopicQuoteComputed      = "quote.computed"
	TopicQuoteExported      = "quote.exported"
	TopicRateTablePublished = "ratetable.published"
)

// DefaultTopics returns the canonical list of emitted topics.
func DefaultTopics() []string {
	return []string{
		TopicQuoteComputed,
		TopicQuoteExported,
		TopicRateTablePublished,
	}
}
