// Package core holds the explorer's state and presentation logic.
//
// It has no HTTP or HTML dependencies; web handlers and tests drive it the
// same way.
//
// # Sessions and caching
//
// Each browser session owns at most one loaded table. [Service.Upload]
// parses an [UploadedFile] through a [Cache] keyed by session and content
// hash, then installs the result with the [SessionStore]. A failed parse
// leaves the previous table in place. A background sweeper
// ([Service.StartSessionSweeper]) evicts idle sessions and their cache
// entries. Parsing is bounded by a [ParseLimiter].
//
// # Update function
//
// [Update] turns a [State] and a chart.Request into a [View]: summary,
// five-row preview, picker options, selector visibility, the chart spec
// and its SVG. It performs no I/O and holds no state.
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages by [MapError]. Codes
// are grouped by family:
//
//   - FILE001-FILE004: upload and parse failures
//   - CHART001: chart cannot be drawn from the selected columns
//   - SES001: no dataset loaded
//   - UPL002-UPL005: busy, cancelled, timed out
//   - RATE001: rate limited
package core
