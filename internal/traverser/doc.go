// Package traverser answers dependency questions about a resolved graph:
// what a target links, embeds, copies and searches, under which platform
// conditions, and which external targets are needed where.
//
// Every query is a pure function of the graph. A Traverser memoizes
// intermediate results for its lifetime and is safe for concurrent use.
package traverser
