package userlist

import "sync"

// MemoryClipboard is an in-process clipboard used by headless deployments
// and tests. The OS clipboard integration lives with the desktop shell,
// outside this service.
type MemoryClipboard struct {
	mu   sync.Mutex
	text string
}

// NewMemoryClipboard creates an empty in-process clipboard.
func NewMemoryClipboard() *MemoryClipboard {
	return &MemoryClipboard{}
}

// Write stores the text.
func (c *MemoryClipboard) Write(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = text
	return nil
}

// Text returns the last written text.
func (c *MemoryClipboard) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}
