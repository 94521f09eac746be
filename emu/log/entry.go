package log

import (
	"fmt"
	"maps"
	"slices"
)

type Fields map[string]any

// Entry is a printf style log entry carrying a few fields. It goes through the
// same path as EntryZ, the fields are only formatted when the entry is
// emitted.
type Entry struct {
	mod    Module
	fields Fields
}

func (entry Entry) WithFields(fields Fields) Entry {
	merged := make(Fields, len(entry.fields)+len(fields))
	maps.Copy(merged, entry.fields)
	maps.Copy(merged, fields)
	return Entry{mod: entry.mod, fields: merged}
}

func (entry Entry) WithField(key string, value any) Entry {
	return entry.WithFields(Fields{key: value})
}

func (entry Entry) logf(lvl Level, format string, args ...any) {
	z := entry.mod.logz(lvl, fmt.Sprintf(format, args...))
	if z == nil {
		return
	}
	for _, k := range slices.Sorted(maps.Keys(entry.fields)) {
		switch v := entry.fields[k].(type) {
		case error:
			z.Error(k, v)
		case string:
			z.String(k, v)
		default:
			z.String(k, fmt.Sprint(v))
		}
	}
	z.End()
}

func (entry Entry) Debugf(format string, args ...any) { entry.logf(DebugLevel, format, args...) }
func (entry Entry) Infof(format string, args ...any)  { entry.logf(InfoLevel, format, args...) }
func (entry Entry) Warnf(format string, args ...any)  { entry.logf(WarnLevel, format, args...) }
func (entry Entry) Errorf(format string, args ...any) { entry.logf(ErrorLevel, format, args...) }
func (entry Entry) Fatalf(format string, args ...any) { entry.logf(FatalLevel, format, args...) }
