package telemetry

// Log is a bounded ring of human-readable event lines, oldest first.
// A zero-capacity Log discards everything.
type Log struct {
	lines []string
	next  int
	count int
}

// NewLog creates a log holding at most capacity lines.
func NewLog(capacity int) *Log {
	if capacity < 0 {
		capacity = 0
	}
	return &Log{lines: make([]string, capacity)}
}

// Add appends a line, evicting the oldest when full.
func (l *Log) Add(line string) {
	if len(l.lines) == 0 {
		return
	}
	l.lines[l.next] = line
	l.next = (l.next + 1) % len(l.lines)
	if l.count < len(l.lines) {
		l.count++
	}
}

// Lines returns a copy of the retained lines, oldest first.
func (l *Log) Lines() []string {
	out := make([]string, 0, l.count)
	start := (l.next - l.count + len(l.lines)) % max(len(l.lines), 1)
	for i := 0; i < l.count; i++ {
		out = append(out, l.lines[(start+i)%len(l.lines)])
	}
	return out
}

// Len returns the number of retained lines.
func (l *Log) Len() int {
	return l.count
}

// Cap returns the maximum number of retained lines.
func (l *Log) Cap() int {
	return len(l.lines)
}
