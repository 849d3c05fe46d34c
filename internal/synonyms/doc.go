// Package synonyms builds and caches bidirectional synonym dictionaries.
//
// A Source is an asymmetric, externally authored mapping from a canonical word
// to its synonyms:
//
//	{"victor": ["vick", "vic"], "david": ["dave", "davy", "vida"]}
//
// Build closes it into a symmetric Dictionary in which every word of an entry,
// key or value, looks up the complete set of words sharing that entry:
//
//	victor -> [victor vick vic]
//	vic    -> [victor vick vic]
//
// Lookup keys are lowercased and optionally stemmed. Words are only connected
// through a shared entry; links are not chased across independent entries.
//
// A Registry memoizes built dictionaries by identity so that every caller asking
// for the same name shares one read-only *Dictionary.
package synonyms
