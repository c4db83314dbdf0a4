// Package extractors provides implementations of the Extractor interface
// for the supported document formats. Each extractor knows how to decode
// a raw byte stream of one or more formats into plain text.
//
// Extractors are registered with the Registry at startup.
package extractors
