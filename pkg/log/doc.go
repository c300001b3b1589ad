// Package log is the logging seam shared by actionq packages.
//
// Components depend on the Logger interface only. The CLI builds a zerolog
// backed logger from its flags:
//
//	logger, err := log.New(log.Options{Level: "debug", JSON: true})
//
// Library users who already run zerolog can wrap their own instance with
// FromZerolog. Without either, the client logs nothing.
//
// Scope a logger to a component with With:
//
//	apiLog := log.With(logger, log.String("component", "api"))
package log
