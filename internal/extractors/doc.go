// Package extractors provides implementations of the TextExtractor interface
// for the document formats zenji can ingest. Each extractor knows how to turn
// the bytes of one family of file extensions into ordered page text.
//
// Extractors are registered with the Registry at startup.
package extractors
