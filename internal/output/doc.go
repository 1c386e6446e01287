// Package output renders command results as tables or machine-readable text.
//
// Handlers build ordered Records; Render turns them into table, json, csv,
// markdown, or yaml. Field order is preserved in every format.
package output
