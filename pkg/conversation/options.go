package conversation

import (
	"time"

	"github.com/AmlanDas-dot/Innovastra/pkg/suggest"
)

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces the controller's time source. Tests use this to pin
// recency scoring to a fixed instant.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithDebounce sets the quiet period a selection must hold before a context
// injection fires. Zero is allowed and makes injection immediate.
//
// Example:
//
//	ctl := conversation.New(store, provider, extractor,
//	    conversation.WithDebounce(100*time.Millisecond),
//	)
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.debounceDelay = d
		}
	}
}

// WithSuggestConfig replaces the suggestion policy. The policy must stay
// fixed for the lifetime of the controller.
func WithSuggestConfig(cfg suggest.Config) Option {
	return func(c *Controller) {
		c.suggestCfg = cfg
	}
}

// WithGuidePrompt replaces the system prompt used for conversational
// replies while capturing.
func WithGuidePrompt(prompt string) Option {
	return func(c *Controller) {
		if prompt != "" {
			c.guidePrompt = prompt
		}
	}
}
