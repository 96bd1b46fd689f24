package conversation

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AmlanDas-dot/Innovastra/pkg/inference"
	"github.com/AmlanDas-dot/Innovastra/pkg/llm"
	"github.com/AmlanDas-dot/Innovastra/pkg/memory"
	"github.com/AmlanDas-dot/Innovastra/pkg/suggest"
)

// DefaultDebounce is the quiet period a selection must hold before a context
// injection fires. Long enough to absorb a burst of clicks while
// multi-selecting, short enough to feel immediate.
const DefaultDebounce = 400 * time.Millisecond

// Extractor infers draft fields from a dialogue transcript.
//
// *inference.Extractor is the production implementation. The controller
// treats extraction as best-effort: any error means "no inference this
// turn", never a failed conversation.
type Extractor interface {
	Extract(ctx context.Context, transcript string) (memory.Fields, error)
}

// Controller owns one capture dialogue: the turn log, the draft being
// distilled from it, the state machine gating user actions, and the
// suggestion and context-injection machinery around the memory store.
//
// The controller is the only component that mutates the dialogue log, the
// draft and the state tag. All mutation happens through named operations
// with documented preconditions; a guarded operation returns a sentinel
// error and changes nothing.
//
// Two flags carry the turn-producing concurrency discipline. sendInFlight
// covers any call that produces a dialogue turn through the generation
// service; injectInFlight covers the context-injection sub-protocol. The
// two are mutually exclusive in both directions, and a blocked attempt is
// dropped, not queued. Save holds a third flag across its persistence
// round trip so one draft can never become two records. Shared state is
// only touched under the mutex after a call resolves, and every resolution
// is checked against the epoch counter so a reply issued before a reset
// can never land in the fresh dialogue.
//
// Example:
//
//	ctl := conversation.New(store, provider, inference.NewExtractor(provider))
//	defer ctl.Close()
//
//	if err := ctl.Submit(ctx, "I'm thinking about moving to Berlin"); err != nil {
//	    log.Fatal(err)
//	}
//	for _, turn := range ctl.Turns() {
//	    fmt.Printf("%s: %s\n", turn.Speaker, turn.Text)
//	}
type Controller struct {
	mu sync.Mutex

	store     *memory.Store
	provider  llm.Provider
	extractor Extractor

	suggestCfg  suggest.Config
	guidePrompt string
	now         func() time.Time

	state     State
	draft     memory.Fields
	turns     []Turn
	selection []string
	suggested []int

	sendInFlight   bool
	injectInFlight bool
	saveInFlight   bool

	// epoch counts resets. Replies and injections carry the epoch they
	// started under and are dropped when it no longer matches.
	epoch uint64

	debounce      *time.Timer
	debounceDelay time.Duration
	lastInjected  map[string]struct{}

	// debounceGen numbers the timer arms. A fire carrying a stale
	// generation was superseded by a later Select and is dropped, even
	// when it beat the timer's Stop.
	debounceGen uint64
}

// New creates a Controller in StateCapturing with a freshly greeted
// dialogue log.
//
// Parameters:
//   - store: The decision memory store backing suggestions and Save
//   - provider: The generation service for assistant replies
//   - extractor: The field inference service (inference.NewExtractor in
//     production, a fake in tests)
//   - opts: Optional settings (WithClock, WithDebounce, WithSuggestConfig)
func New(store *memory.Store, provider llm.Provider, extractor Extractor, opts ...Option) *Controller {
	c := &Controller{
		store:         store,
		provider:      provider,
		extractor:     extractor,
		suggestCfg:    suggest.DefaultConfig(),
		guidePrompt:   inference.DefaultGuidePrompt,
		now:           time.Now,
		state:         StateCapturing,
		turns:         []Turn{{Speaker: SpeakerAssistant, Text: Greeting}},
		debounceDelay: DefaultDebounce,
		lastInjected:  map[string]struct{}{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Submit feeds one piece of user free text into the dialogue.
//
// What happens depends on the state:
//   - StateCapturing: the text becomes a user turn, the generation service
//     answers over the full transcript, and the draft is updated by
//     background field inference. Once MinUserTurns user turns exist and
//     the draft names a decision plus one of intent, reasoning or
//     alternatives, the machine advances to StateReview.
//   - StateReview, StateEditing, StateConfirm: free text is rejected with
//     ErrLocked; progress in these states goes through explicit actions.
//   - StateReflecting: the text is a question to the advisor. A
//     ThinkingPlaceholder turn is appended and replaced in place by the
//     reply. Reflection never touches the draft.
//
// Empty input is ignored. A generation failure is absorbed into
// FallbackReply; Submit returns an error only when a guard declines to run.
//
// Returns:
//   - error: nil, ErrBusy or ErrLocked
func (c *Controller) Submit(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	c.mu.Lock()
	switch c.state {
	case StateReview, StateEditing, StateConfirm:
		c.mu.Unlock()
		return ErrLocked

	case StateReflecting:
		if c.sendInFlight || c.injectInFlight {
			c.mu.Unlock()
			return ErrBusy
		}
		c.sendInFlight = true
		c.turns = append(c.turns, Turn{Speaker: SpeakerUser, Text: text})
		c.turns = append(c.turns, Turn{Speaker: SpeakerAssistant, Text: ThinkingPlaceholder})
		slot := len(c.turns) - 1
		prompt := inference.ReflectionPrompt(c.draft, text)
		epoch := c.epoch
		c.mu.Unlock()

		c.reflect(ctx, prompt, slot, epoch)
		return nil
	}

	// StateCapturing.
	if c.sendInFlight || c.injectInFlight {
		c.mu.Unlock()
		return ErrBusy
	}
	c.sendInFlight = true
	c.turns = append(c.turns, Turn{Speaker: SpeakerUser, Text: text})
	messages := c.messagesLocked()
	transcript := transcriptOf(c.turns)
	epoch := c.epoch
	c.mu.Unlock()

	c.exchange(ctx, messages, epoch)
	c.infer(ctx, transcript, epoch)

	// The auto-transition is evaluated after every completed turn, whether
	// or not inference produced anything for it.
	c.mu.Lock()
	if epoch == c.epoch {
		c.advanceLocked()
	}
	c.mu.Unlock()
	return nil
}

// exchange runs one generation round trip and appends the assistant reply.
// The send flag is held for exactly this long; field inference runs after
// it is released.
func (c *Controller) exchange(ctx context.Context, messages []llm.Message, epoch uint64) {
	defer c.releaseSend()

	reply, err := c.provider.GenerateWithMessages(ctx, messages)
	if err != nil || strings.TrimSpace(reply) == "" {
		if err != nil {
			logrus.WithField("op", "Submit").WithError(err).Warn("generation failed, substituting the fallback reply")
		}
		reply = FallbackReply
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch {
		logrus.WithField("op", "Submit").Debug("dropping a reply issued before the last reset")
		return
	}
	c.turns = append(c.turns, Turn{Speaker: SpeakerAssistant, Text: strings.TrimSpace(reply)})
}

// reflect resolves the advisory round trip started by Submit in
// StateReflecting, replacing the placeholder turn with the reply.
func (c *Controller) reflect(ctx context.Context, prompt string, slot int, epoch uint64) {
	defer c.releaseSend()

	reply, err := c.provider.Generate(ctx, prompt)
	if err != nil || strings.TrimSpace(reply) == "" {
		if err != nil {
			logrus.WithField("op", "Submit").WithError(err).Warn("reflection failed, substituting the fallback reply")
		}
		reply = FallbackReply
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch {
		logrus.WithField("op", "Submit").Debug("dropping a reflection issued before the last reset")
		return
	}
	if slot < len(c.turns) && c.turns[slot].Text == ThinkingPlaceholder {
		c.turns[slot].Text = strings.TrimSpace(reply)
	}
}

// infer runs best-effort field inference over the transcript and merges the
// result into the draft. Inference is skipped while an injection is in
// flight so it cannot react to a self-generated context turn, and its
// result is discarded when it cannot be decoded or arrives after a reset.
func (c *Controller) infer(ctx context.Context, transcript string, epoch uint64) {
	if c.extractor == nil {
		return
	}

	c.mu.Lock()
	if c.injectInFlight || epoch != c.epoch {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	fields, err := c.extractor.Extract(ctx, transcript)
	if err != nil {
		logrus.WithField("op", "Submit").WithError(err).Debug("no field inference for this turn")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch {
		return
	}
	c.draft.Merge(fields)
	c.recomputeLocked()
}

// advanceLocked applies the capturing to review auto-transition: enough
// user turns, a named decision, and at least one of intent, reasoning or
// alternatives filled in.
func (c *Controller) advanceLocked() {
	if c.state != StateCapturing {
		return
	}
	if c.userTurnsLocked() < MinUserTurns {
		return
	}
	if c.draft.Decision == "" {
		return
	}
	if c.draft.Intent == "" && c.draft.Reasoning == "" && c.draft.Alternatives == "" {
		return
	}
	c.state = StateReview
}

// Edit moves review or confirm to editing, re-enabling SetField.
func (c *Controller) Edit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateReview && c.state != StateConfirm {
		return ErrLocked
	}
	c.state = StateEditing
	return nil
}

// Confirm moves review or editing to confirm. The draft is read-only until
// Save, Back or RequestAdvisory.
func (c *Controller) Confirm() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateReview && c.state != StateEditing {
		return ErrLocked
	}
	c.state = StateConfirm
	return nil
}

// Back returns editing, confirm or reflecting to review.
func (c *Controller) Back() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case StateEditing, StateConfirm, StateReflecting:
		c.state = StateReview
		return nil
	default:
		return ErrLocked
	}
}

// RequestAdvisory moves any gated state with a non-empty draft to
// reflecting, where free text is answered by the advisor instead of
// feeding the draft.
func (c *Controller) RequestAdvisory() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case StateReview, StateEditing, StateConfirm:
	default:
		return ErrLocked
	}
	if c.draft.IsEmpty() {
		return ErrEmptyDraft
	}
	c.state = StateReflecting
	return nil
}

// SetField writes one draft field directly. Allowed while capturing or
// editing; every other state rejects direct mutation. A field set while
// capturing counts toward the review auto-transition just like an inferred
// one.
//
// Returns:
//   - error: nil, ErrLocked, or memory.ErrUnknownField
func (c *Controller) SetField(name, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateCapturing && c.state != StateEditing {
		return ErrLocked
	}
	if err := c.draft.Set(name, strings.TrimSpace(value)); err != nil {
		return err
	}
	c.recomputeLocked()
	c.advanceLocked()
	return nil
}

// Save persists the draft as a new decision memory and resets the
// conversation.
//
// Save is valid from any state as long as one draft field is non-empty. A
// Save issued while an earlier one is still persisting is declined with
// ErrBusy, so the same draft cannot be stored twice. On success it clears
// the draft and the selection, reseeds the dialogue log with a fresh
// greeting, bumps the epoch so in-flight replies are dropped on arrival,
// and returns the machine to StateCapturing.
//
// Parameters:
//   - ctx: Context for the persistence and summary calls
//
// Returns:
//   - *memory.Memory: The stored record
//   - error: ErrEmptyDraft, ErrBusy, or a storage error from the memory
//     store
func (c *Controller) Save(ctx context.Context) (*memory.Memory, error) {
	c.mu.Lock()
	if c.draft.IsEmpty() {
		c.mu.Unlock()
		return nil, ErrEmptyDraft
	}
	if c.saveInFlight {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	c.saveInFlight = true
	draft := c.draft
	c.mu.Unlock()
	defer c.releaseSave()

	rec, err := c.store.Create(ctx, draft)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
	return rec, nil
}

// Discard throws the draft away and resets the conversation the same way
// Save does, minus the stored record.
func (c *Controller) Discard() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

// Select replaces the ordered selection of memory IDs pulled into the
// conversation as context.
//
// Each call cancels and re-arms the debounce timer; once the selection has
// held still for the debounce window, one assistant context turn is
// synthesized per distinct selection set. A selection equal to the last
// injected one, compared as a set, never fires again, and an attempt that
// collides with an in-flight send or injection is dropped, not queued.
func (c *Controller) Select(ids ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]struct{}, len(ids))
	selection := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		selection = append(selection, id)
	}
	c.selection = selection

	if c.debounce != nil {
		c.debounce.Stop()
	}
	c.debounceGen++
	gen := c.debounceGen
	c.debounce = time.AfterFunc(c.debounceDelay, func() { c.inject(gen) })
}

// inject fires when a selection has survived the debounce window. It drops
// a fire that was superseded by a newer arm, re-checks every guard under
// the lock, snapshots the records to describe, and runs the synthesis
// round trip with the inject flag held.
func (c *Controller) inject(gen uint64) {
	c.mu.Lock()
	if gen != c.debounceGen {
		c.mu.Unlock()
		return
	}
	if c.sendInFlight || c.injectInFlight {
		c.mu.Unlock()
		logrus.WithField("op", "Select").Debug("dropping a context injection while another call is in flight")
		return
	}
	if len(c.selection) == 0 || c.sameAsLastInjectedLocked() {
		c.mu.Unlock()
		return
	}

	set := make(map[string]struct{}, len(c.selection))
	selected := make([]memory.Memory, 0, len(c.selection))
	for _, id := range c.selection {
		set[id] = struct{}{}
		if m, ok := c.store.Get(id); ok {
			selected = append(selected, m)
		}
	}
	if len(selected) == 0 {
		c.mu.Unlock()
		return
	}
	c.injectInFlight = true
	epoch := c.epoch
	c.mu.Unlock()

	c.injectTurn(selected, set, epoch)
}

// injectTurn synthesizes and appends the context turn for the snapshot
// taken by inject.
func (c *Controller) injectTurn(selected []memory.Memory, set map[string]struct{}, epoch uint64) {
	defer c.releaseInject()

	reply, err := c.provider.Generate(context.Background(), inference.InjectionPrompt(selected))
	if err != nil || strings.TrimSpace(reply) == "" {
		if err != nil {
			logrus.WithField("op", "Select").WithError(err).Warn("context synthesis failed, using the local fallback")
		}
		reply = inference.InjectionFallback(selected)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch {
		logrus.WithField("op", "Select").Debug("dropping a context injection issued before the last reset")
		return
	}
	c.turns = append(c.turns, Turn{Speaker: SpeakerAssistant, Text: strings.TrimSpace(reply)})
	c.lastInjected = set
}

// State returns the current state tag.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Draft returns a copy of the draft fields.
func (c *Controller) Draft() memory.Fields {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Turns returns a copy of the dialogue log.
func (c *Controller) Turns() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	turns := make([]Turn, len(c.turns))
	copy(turns, c.turns)
	return turns
}

// Selection returns a copy of the selected memory IDs in selection order.
func (c *Controller) Selection() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, len(c.selection))
	copy(ids, c.selection)
	return ids
}

// Suggestions returns the indices of the currently suggested records, best
// first, into the slice returned by Store().All(). The indices are
// recomputed against the live collection on every call, so a delete or
// archive made directly through Store() is already reflected.
func (c *Controller) Suggestions() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recomputeLocked()
	out := make([]int, len(c.suggested))
	copy(out, c.suggested)
	return out
}

// DisplayOrder returns every stored record's index in display order:
// selected records first in selection order, then suggested records, then
// the rest, the latter two groups in store order.
func (c *Controller) DisplayOrder() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recomputeLocked()

	memories := c.store.All()
	index := make(map[string]int, len(memories))
	for i, m := range memories {
		index[m.ID] = i
	}
	selected := make([]int, 0, len(c.selection))
	for _, id := range c.selection {
		if i, ok := index[id]; ok {
			selected = append(selected, i)
		}
	}
	return suggest.Order(len(memories), selected, c.suggested)
}

// Store returns the underlying memory store for collection reads such as
// listing and archiving.
func (c *Controller) Store() *memory.Store {
	return c.store
}

// Close stops the debounce timer and releases the generation service and
// the store's storage backend.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.debounce != nil {
		c.debounce.Stop()
		c.debounce = nil
	}
	c.debounceGen++
	c.mu.Unlock()

	var errs []error
	if err := c.provider.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := c.store.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// resetLocked restores the fresh-conversation state: empty draft, empty
// selection, a newly greeted log, StateCapturing, and a bumped epoch.
func (c *Controller) resetLocked() {
	c.draft = memory.Fields{}
	c.selection = nil
	c.lastInjected = map[string]struct{}{}
	c.turns = []Turn{{Speaker: SpeakerAssistant, Text: Greeting}}
	c.state = StateCapturing
	c.epoch++
	if c.debounce != nil {
		c.debounce.Stop()
		c.debounce = nil
	}
	c.debounceGen++
	c.recomputeLocked()
}

// recomputeLocked refreshes the suggestion indices from the current draft
// and collection. Mutators call it after changing the draft; the read
// accessors call it again on every read, because the collection can change
// underneath the controller through Store().
func (c *Controller) recomputeLocked() {
	c.suggested = suggest.Suggest(c.draft, c.store.All(), c.store.Vectors(), c.now(), c.suggestCfg)
}

func (c *Controller) releaseSend() {
	c.mu.Lock()
	c.sendInFlight = false
	c.mu.Unlock()
}

func (c *Controller) releaseInject() {
	c.mu.Lock()
	c.injectInFlight = false
	c.mu.Unlock()
}

func (c *Controller) releaseSave() {
	c.mu.Lock()
	c.saveInFlight = false
	c.mu.Unlock()
}

// sameAsLastInjectedLocked compares the current selection against the last
// injected one as sets: order differences never re-fire an injection.
func (c *Controller) sameAsLastInjectedLocked() bool {
	if len(c.selection) != len(c.lastInjected) {
		return false
	}
	for _, id := range c.selection {
		if _, ok := c.lastInjected[id]; !ok {
			return false
		}
	}
	return true
}

func (c *Controller) userTurnsLocked() int {
	n := 0
	for _, t := range c.turns {
		if t.Speaker == SpeakerUser {
			n++
		}
	}
	return n
}

// messagesLocked maps the dialogue log onto chat messages behind the guide
// system prompt. Turn speakers are valid message roles as is.
func (c *Controller) messagesLocked() []llm.Message {
	messages := make([]llm.Message, 0, len(c.turns)+1)
	messages = append(messages, llm.Message{Role: "system", Content: c.guidePrompt})
	for _, t := range c.turns {
		messages = append(messages, llm.Message{Role: t.Speaker, Content: t.Text})
	}
	return messages
}

// transcriptOf renders the log as plain labeled lines for the extraction
// service.
func transcriptOf(turns []Turn) string {
	var b strings.Builder
	for _, t := range turns {
		b.WriteString(t.Speaker)
		b.WriteString(": ")
		b.WriteString(t.Text)
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}
