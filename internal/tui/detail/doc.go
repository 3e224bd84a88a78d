// Package detail provides the lazy second-level detail cache behind expandable
// comparison rows.
//
// A Cache is scoped to one category of one comparison session. Expanding a row
// whose detail has never been fetched returns a tea.Cmd that performs the fetch;
// the resulting LoadedMsg is applied with Complete from the model's Update.
// Each key is fetched at most once per cache generation:
//   - collapsing keeps fetched detail for a fast re-expand
//   - expanding while a fetch is in flight does not issue a second fetch
//   - fetch failures are logged and cached as an empty result
//
// Reset starts a new generation. Completions from an older generation are
// dropped so detail from a previous session never shows up in the next one.
package detail
