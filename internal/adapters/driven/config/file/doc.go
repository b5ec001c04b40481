// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML configuration with dotted keys
//   - PromptStore: per-prompt override files with built-in fallbacks
package file
