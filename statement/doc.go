// Package statement executes parameterized SQL templates against adapter
// connections.
//
// The executor binds an ordered list of value-model parameters per
// invocation through the backend's native bind protocol; parameters are
// never interpolated into SQL text, so this path is immune to SQL injection
// regardless of the content of any bound text or JSON value.
//
// Template compilation is cached per connection inside the adapter; the
// executor's job is positional binding, parameter-count preflight, the
// per-call query timeout, tracing spans and slow-statement logging.
package statement
