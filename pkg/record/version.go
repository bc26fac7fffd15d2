package record

// Version is the release of the record module reported by the CLI.
const Version = "0.1.0"
