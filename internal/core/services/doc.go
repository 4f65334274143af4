// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters): IndexService turns a PDF into a
// persisted, queryable index, AnswerService grounds LLM answers in the
// chunks it retrieves, and SettingsService reads and writes configuration.
package services
