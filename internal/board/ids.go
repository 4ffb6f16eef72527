package board

import (
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"
)

// taskIDs issues ids of the form <slug>-<unix-nanos>. The numeric part is
// strictly increasing across calls, so later tasks always carry later ids.
type taskIDs struct {
	mu   sync.Mutex
	last int64
}

func (g *taskIDs) next(title string, at time.Time) string {
	g.mu.Lock()
	n := at.UnixNano()
	if n <= g.last {
		n = g.last + 1
	}
	g.last = n
	g.mu.Unlock()
	return fmt.Sprintf("%s-%d", slug(title), n)
}

func slug(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
		if b.Len() >= 24 {
			break
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		return "task"
	}
	return s
}
