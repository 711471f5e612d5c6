package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const EventToast = "notify:toast"

const maxRecent = 50

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

type Toast struct {
	ID        string `json:"id"`
	Level     Level  `json:"level"`
	Message   string `json:"message"`
	CreatedAt string `json:"createdAt"`
}

type Emitter func(eventName string, payload any)

// Center fans user-visible notifications out to the frontend and keeps a
// bounded recent list for late subscribers.
type Center struct {
	mu      sync.Mutex
	emitter Emitter
	recent  []Toast
}

func NewCenter() *Center {
	return &Center{}
}

func (c *Center) SetEmitter(emitter Emitter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.emitter = emitter
}

func (c *Center) Notify(level Level, message string) Toast {
	toast := Toast{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	c.mu.Lock()
	c.recent = append(c.recent, toast)
	if len(c.recent) > maxRecent {
		c.recent = c.recent[len(c.recent)-maxRecent:]
	}
	emitter := c.emitter
	c.mu.Unlock()

	if emitter != nil {
		emitter(EventToast, toast)
	}

	return toast
}

func (c *Center) Info(message string) Toast    { return c.Notify(LevelInfo, message) }
func (c *Center) Success(message string) Toast { return c.Notify(LevelSuccess, message) }
func (c *Center) Error(message string) Toast   { return c.Notify(LevelError, message) }

func (c *Center) Recent() []Toast {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Toast(nil), c.recent...)
}
