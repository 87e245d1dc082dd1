package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const DefaultDisplay = 4 * time.Second

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	CreatedAt time.Time `json:"created_at"`
}

// Subscriber receives the active notifications, oldest first, each time the
// set changes.
type Subscriber func(active []Notification)

// Center is the notification hub owned by the application root. It has at most
// one subscriber; subscribing replaces the previous one.
type Center struct {
	mu         sync.Mutex
	deliver    sync.Mutex
	display    time.Duration
	subscriber Subscriber
	subID      string
	active     []Notification
	timers     map[string]*time.Timer
	closed     bool
}

func NewCenter(display time.Duration) *Center {
	if display <= 0 {
		display = DefaultDisplay
	}
	return &Center{
		display: display,
		timers:  make(map[string]*time.Timer),
	}
}

// Subscribe registers fn and returns a function that removes it, provided it
// is still the current subscriber.
func (c *Center) Subscribe(fn Subscriber) func() {
	c.mu.Lock()
	id := uuid.NewString()
	c.subscriber = fn
	c.subID = id
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.subID == id {
			c.subscriber = nil
			c.subID = ""
		}
	}
}

func (c *Center) Publish(message string, severity Severity) Notification {
	n := Notification{
		ID:        uuid.NewString(),
		Message:   message,
		Severity:  severity,
		CreatedAt: time.Now().UTC(),
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return n
	}
	c.active = append(c.active, n)
	c.timers[n.ID] = time.AfterFunc(c.display, func() { c.Dismiss(n.ID) })
	c.mu.Unlock()

	c.notify()
	return n
}

func (c *Center) Dismiss(id string) {
	c.mu.Lock()
	index := -1
	for i, n := range c.active {
		if n.ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		c.mu.Unlock()
		return
	}
	c.active = append(c.active[:index], c.active[index+1:]...)
	if timer, ok := c.timers[id]; ok {
		timer.Stop()
		delete(c.timers, id)
	}
	c.mu.Unlock()

	c.notify()
}

func (c *Center) Active() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notification(nil), c.active...)
}

// Close stops pending dismiss timers and ignores later publishes.
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for id, timer := range c.timers {
		timer.Stop()
		delete(c.timers, id)
	}
	c.active = nil
	c.subscriber = nil
}

func (c *Center) notify() {
	c.deliver.Lock()
	defer c.deliver.Unlock()

	c.mu.Lock()
	fn := c.subscriber
	snapshot := append([]Notification(nil), c.active...)
	c.mu.Unlock()

	if fn != nil {
		fn(snapshot)
	}
}
