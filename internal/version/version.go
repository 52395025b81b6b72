package version

// Version is the primestat app version, set at build time via -ldflags.
var Version string
