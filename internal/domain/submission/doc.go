// Package submission keeps the values of accepted form submissions.
//
// The Store is a form.Writer: its Handler, bound as an action handler,
// persists every widget marked "persist" into a Record keyed by the
// submission id the request carries. Records are held in memory, oldest
// evicted first once the limit is reached.
package submission
