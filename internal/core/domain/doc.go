// Package domain contains the core entities and errors of the retrieval
// engine. It has no dependencies on adapters or infrastructure.
package domain
