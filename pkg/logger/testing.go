package logger

import "sync"

// Entry is one recorded log line.
type Entry struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

// Recorder is a Logger that captures entries in memory for assertions.
// Safe for concurrent use.
type Recorder struct {
	mu      *sync.Mutex
	entries *[]Entry
	fields  map[string]interface{}
}

// NewRecorder creates an empty recording logger.
func NewRecorder() *Recorder {
	entries := make([]Entry, 0)
	return &Recorder{mu: &sync.Mutex{}, entries: &entries, fields: map[string]interface{}{}}
}

// Entries returns a copy of everything logged so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(*r.entries))
	copy(out, *r.entries)
	return out
}

func (r *Recorder) record(level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fields := make(map[string]interface{}, len(r.fields))
	for k, v := range r.fields {
		fields[k] = v
	}
	*r.entries = append(*r.entries, Entry{Level: level, Message: msg, Fields: fields})
}

func (r *Recorder) Debug(msg string) { r.record("debug", msg) }
func (r *Recorder) Info(msg string)  { r.record("info", msg) }
func (r *Recorder) Warn(msg string)  { r.record("warn", msg) }
func (r *Recorder) Error(msg string) { r.record("error", msg) }
func (r *Recorder) Fatal(msg string) { r.record("fatal", msg) }

func (r *Recorder) WithField(key string, value interface{}) Logger {
	r.mu.Lock()
	defer r.mu.Unlock()
	fields := make(map[string]interface{}, len(r.fields)+1)
	for k, v := range r.fields {
		fields[k] = v
	}
	fields[key] = value
	return &Recorder{mu: r.mu, entries: r.entries, fields: fields}
}

func (r *Recorder) WithFields(fields map[string]interface{}) Logger {
	out := Logger(r)
	for k, v := range fields {
		out = out.WithField(k, v)
	}
	return out
}
