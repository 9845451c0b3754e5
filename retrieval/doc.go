// Package retrieval ranks stored chunks against a query.
//
// The engine embeds the query, scores every index entry by cosine
// similarity, drops chunks shorter than the configured noise floor,
// multiplies scores of short chunks by a penalty factor, and returns the
// survivors deduplicated by chunk id in a deterministic order. Ties break
// on chunk index, then chunk id, so a repeated query over an unchanged
// index always produces the same ranking.
package retrieval
