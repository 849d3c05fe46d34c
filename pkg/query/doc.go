// Package query defines the loosely structured condition objects exchanged
// between a document store host and the hooks that run before it executes a
// query.
//
// Conditions follow the MongoDB filter vocabulary:
//
//	{"firstName": "victor"}                      // equality
//	{"alias": {"$in": ["victor", "david"]}}      // membership
//	{"$text": {"$search": "victor david"}}       // full-text search
package query
