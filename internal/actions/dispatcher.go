package actions

import "sync"

// CollectingDispatcher buffers uttered messages for a single invocation.
type CollectingDispatcher struct {
	mu       sync.Mutex
	messages []Message
}

func NewCollectingDispatcher() *CollectingDispatcher {
	return &CollectingDispatcher{messages: make([]Message, 0, 1)}
}

func (d *CollectingDispatcher) UtterMessage(message Message) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.messages = append(d.messages, message)
}

func (d *CollectingDispatcher) Messages() []Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	cp := make([]Message, len(d.messages))
	copy(cp, d.messages)
	return cp
}
