// Package file provides file-based implementations of driven port interfaces.
//
// Adapters:
//   - ConfigStore: TOML settings at ~/.pdfqa/config.toml
//   - PromptStore: answer prompt with optional ~/.pdfqa/prompts/answer.txt override
package file
