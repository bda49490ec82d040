// Package codec provides packet framing for the dnastore pipeline.
//
// The codec package splits input into fixed-size chunks and frames each one
// as a packet carrying its position, its valid length, an integrity
// checksum and a scrambling nonce. Packets are the unit that error
// correction and symbol mapping operate on.
//
// # Packet Format
//
// Packets are serialized in a binary format with the following structure:
//
//	whiten([Index(4)][DeclaredLength(4)][CRC32(4)][Nonce(4)]) || scramble(Payload, Nonce)
//
// Fields:
//   - Index: 32-bit position of the chunk in the input (big-endian)
//   - DeclaredLength: 32-bit count of valid payload bytes before padding (big-endian)
//   - CRC32: IEEE CRC32 over the scrambled payload (big-endian)
//   - Nonce: 32-bit keystream selector, 0 means the payload is not scrambled
//   - Payload: chunk data zero-padded to the chunk size
//
// The total packet size is: 16 bytes (header) + chunk size
//
// # Whitening and Scrambling
//
// The 16 header bytes are XORed with a fixed public mask before they leave
// the framer, so an all-zero index or nonce does not turn into a long run of
// one symbol. The payload is XORed with a ChaCha20 keystream derived from
// the nonce alone. Changing the nonce changes every rendered symbol of the
// payload without changing what it decodes to, which is what the
// constraint rejection loop relies on.
//
// # CRC32 Calculation
//
// The checksum covers the payload after scrambling and before header
// whitening. Unpack recomputes it over the received payload bytes and
// rejects the packet on any mismatch.
//
// # Usage
//
//	packets, err := codec.Chunk(data, 128)
//	if err != nil {
//	    return err
//	}
//
//	wire, err := packets[0].Encode()
//	if err != nil {
//	    return err
//	}
//
//	packet, err := codec.NewPacketCodec().Unpack(wire)
//	if err != nil {
//	    return err // checksum mismatch or short input
//	}
//
// # Thread Safety
//
// PacketCodec instances are safe for concurrent use. Packets are not
// modified by encoding; WithNonce returns a copy.
package codec
