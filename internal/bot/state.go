package bot

import (
	"sync"

	"fjacquet/receipt-bot/internal/models"
)

// Step is where a chat is inside a multi-turn flow.
type Step int

const (
	StepIdle Step = iota
	StepAwaitingDate
	StepAwaitingStore
	StepAwaitingItemName
	StepAwaitingItemPrice
	StepAwaitingCategory
	StepAwaitingNextAction
	StepAwaitingRecurringStore
	StepAwaitingRecurringAmount
	StepAwaitingRecurringDescription
	StepAwaitingRecurringCategory
	StepAwaitingJSON
)

var stepNames = [...]string{
	"idle",
	"awaiting_date",
	"awaiting_store",
	"awaiting_item_name",
	"awaiting_item_price",
	"awaiting_category",
	"awaiting_next_action",
	"awaiting_recurring_store",
	"awaiting_recurring_amount",
	"awaiting_recurring_description",
	"awaiting_recurring_category",
	"awaiting_json",
}

func (s Step) String() string {
	if int(s) < len(stepNames) {
		return stepNames[s]
	}
	return "unknown"
}

// Conversation is the in-progress state of one chat.
type Conversation struct {
	Step Step

	// Receipt flow.
	Receipt     models.Receipt
	PendingName string
	// CurrentItem indexes Receipt.Items for the item awaiting a category.
	CurrentItem int

	// Recurring flow.
	Recurring models.RecurringExpense
}

func (c Conversation) clone() Conversation {
	if c.Receipt.Items != nil {
		items := make([]models.Item, len(c.Receipt.Items))
		copy(items, c.Receipt.Items)
		c.Receipt.Items = items
	}
	return c
}

// StateStore keeps one Conversation per chat. Entries are created when a
// flow starts and removed when it completes, is cancelled or fails.
type StateStore struct {
	mu     sync.Mutex
	states map[int64]Conversation
}

// NewStateStore returns an empty store.
func NewStateStore() *StateStore {
	return &StateStore{states: make(map[int64]Conversation)}
}

// Get returns a copy of the chat's conversation.
func (s *StateStore) Get(chatID int64) (Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.states[chatID]
	if !ok {
		return Conversation{}, false
	}
	return c.clone(), true
}

// Put replaces the chat's conversation.
func (s *StateStore) Put(chatID int64, c Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[chatID] = c.clone()
}

// Clear drops the chat's conversation.
func (s *StateStore) Clear(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, chatID)
}

// Len is the number of chats with an active flow.
func (s *StateStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}
