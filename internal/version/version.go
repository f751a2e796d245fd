package version

// AppName is the bot's display name.
const AppName = "Quaver"

// Version is overridden at build time via -ldflags "-X quaver/internal/version.Version=...".
var Version = "dev"
