// Package testutil contains helper builders and canonical specs used across
// tests to reduce boilerplate when constructing core model objects (specs,
// actor states, audit entries) and asserting behaviors. These helpers are
// intentionally minimal and avoid adding third-party dependencies. They are
// not intended for production usage.
package testutil
