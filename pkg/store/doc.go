// Package store is the encode/decode orchestrator of dnastore.
//
// A Storage chunks its input into packets, protects each packet with the
// configured FEC scheme, renders it with the configured symbol strategy and
// re-scrambles it under successive nonces until the configured constraints
// hold. The packet runs are concatenated behind a length prefix and a
// bootstrap header:
//
//	[LengthPrefix(16)][Header][Chunk 0][Chunk 1]...[Chunk n-1]
//
// Every chunk run has the same length, so chunk i can be located and
// decoded on its own (DecodeChunk, SequenceReader) and containers can be
// produced and consumed as streams (EncodeStream, DecodeStream).
//
// # Decoding
//
// Decoding never consults the Storage's encoder options. Each call reads
// the header and builds its own decoder configuration, so a container
// written with any method, strategy or chunk size decodes with any Storage.
//
// # Errors
//
// Failures are *fault.Error values. Checksum and index disagreements abort
// the whole call; partial output is never returned as success:
//
//	data, err := s.Decode(seq)
//	if errors.Is(err, fault.ErrIndexMismatch) {
//	    // a chunk is missing, reordered or truncated
//	}
package store
