// Package testutil contains helper builders used across tests to reduce
// boilerplate when constructing conversations and scripted model replies.
// Not intended for production usage.
package testutil
