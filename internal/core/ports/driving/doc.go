// Package driving defines interfaces that external actors (CLI, MCP) use
// to interact with core services. These are the "driving" ports in hexagonal
// architecture terminology - they drive the application.
//
// The two programmatic entry points are IndexService.BuildOrLoad, which
// returns an explicit Index handle, and AnswerService.Answer, which takes
// that handle. There is no ambient index state.
//
// Implementations of these interfaces live in internal/core/services.
package driving
