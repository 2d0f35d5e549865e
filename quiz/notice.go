package quiz

import "sync"

type NoticeKind string

const (
	NoticeInfo    NoticeKind = "info"
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a non-blocking user message, delivered with the next response.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

// maxNotices bounds the queue for clients that never poll.
const maxNotices = 32

// Notices is a small drain-on-read queue shared by a controller and its tracker.
// Async persistence callbacks push into it from other goroutines.
type Notices struct {
	mu    sync.Mutex
	items []Notice
}

func (n *Notices) push(kind NoticeKind, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.items) == maxNotices {
		n.items = n.items[1:]
	}
	n.items = append(n.items, Notice{Kind: kind, Message: msg})
}

// Drain returns and clears the pending notices.
func (n *Notices) Drain() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.items
	n.items = nil
	if out == nil {
		out = []Notice{}
	}
	return out
}
