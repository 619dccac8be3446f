// Package resolve dispatches per-field resolution of fetched records.
//
// A scalar non-list field resolves immediately from the record's stored
// data. Everything else - scalar lists stored out-of-line, to-one and
// to-many relations - produces a deferred fetch descriptor with a
// deterministic group key, so a batch collector can coalesce the fetches of
// many sibling records into one backend call. The dispatcher itself never
// touches storage and never issues a call per invocation.
package resolve
