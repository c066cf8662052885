// Package logging provides the leveled structured logger used across the
// line index. A logger writes one line per message:
//
//	2024-03-01T12:30:00.000 [WARN] lineindex: index out of sync {collection=3f2c..., component=lines}
//
// Example:
//
//	log := logging.New(logging.Config{Level: logging.LevelDebug, Output: os.Stderr})
//	log.WithComponent("replay").Info("ran %d steps", n)
//
// Nop returns a logger that writes nothing; a nil *Logger is also silent.
package logging
