// Package docsynth builds a single, internally consistent documentation
// artifact from several heterogeneous sources: crawled documentation sites,
// code repositories and PDF extracts. It crawls, categorizes, matches symbols
// across sources, reports the discrepancies it finds and renders a merged
// result.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, goquery/, gemini/).
package docsynth
