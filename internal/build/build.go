// Package build holds build-time information.
package build

// Version is the ferry release, stamped with
// -ldflags "-X go.trai.ch/ferry/internal/build.Version=<tag>".
var Version = "dev"
