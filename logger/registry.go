package logger

import "sync"

// named holds loggers registered by component name.
var named sync.Map // map[string]*Logger

// Register stores a logger under name, replacing any previous one.
func Register(name string, l *Logger) {
	named.Store(name, l)
}

// Get returns the logger registered under name, or the global logger
// tagged with name as its component.
func Get(name string) *Logger {
	if l, ok := named.Load(name); ok {
		return l.(*Logger)
	}
	return GetGlobalLogger().WithComponent(name)
}
