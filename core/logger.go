package core

// Logger is the logging contract shared by the apps and services.
// args may carry errors, maps of extra data or the current auth identity.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
