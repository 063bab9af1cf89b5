// Package matching scores lost items against found items (and vice versa)
// and ranks the candidates.
//
// Scoring combines four components into a weighted score on a 0-100 scale:
//   - name similarity (weight 0.4)
//   - exact category match (weight 0.3)
//   - location similarity (weight 0.2)
//   - case-insensitive colour match (weight 0.1)
//
// Only candidates scoring strictly above Threshold are returned. All functions
// are pure and safe for concurrent use on a shared pool.
package matching
