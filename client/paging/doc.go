// Package paging accumulates page number paginated API responses.
//
// Pages are appended in fetch order and never reordered or deduplicated;
// items added or removed upstream between two page fetches may appear twice
// or be skipped at a page boundary.
package paging
