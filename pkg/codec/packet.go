package codec

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/ssargent/dnastore/pkg/fault"
)

// HeaderSize is the size of the whitened packet header in bytes
const HeaderSize = 16

// whiteningMask is XORed over the serialized header. Rendered with the
// 2-bit map it never repeats a symbol, so zero-valued fields (index 0,
// nonce 0) add no homopolymer runs. Nonzero fields can: the index and
// length bytes stay the same across nonces, and some indices whiten to a
// run no retry can break (index 33 under rs and none holds a run longer
// than 4). This caps how many chunks meet a tight homopolymer limit.
var whiteningMask = [HeaderSize]byte{
	0x1E, 0x49, 0x24, 0xDE,
	0xC8, 0x4E, 0xEC, 0x6E,
	0x48, 0x62, 0xC9, 0x1C,
	0x8C, 0x4D, 0xED, 0x33,
}

// Packet is one framed chunk of the input
type Packet struct {
	Index          uint32 // position in the chunk sequence
	DeclaredLength uint32 // valid bytes before padding
	Checksum       uint32 // CRC32 over the scrambled payload
	Nonce          uint32 // keystream selector, 0 = unscrambled
	Payload        []byte // chunk data; padded on Pack, truncated on Unpack
}

// PacketCodec frames chunks into packets and parses them back
type PacketCodec struct{}

// NewPacketCodec creates a new packet codec instance
func NewPacketCodec() *PacketCodec {
	return &PacketCodec{}
}

// Pack serializes one packet
// Format: whiten([Index(4)][DeclaredLength(4)][CRC32(4)][Nonce(4)]) || scramble(Payload, Nonce)
func (c *PacketCodec) Pack(index uint32, payload []byte, declaredLength, nonce uint32) ([]byte, error) {
	if int(declaredLength) > len(payload) {
		return nil, fault.New(fault.InvalidInput, "packet.pack", "declared length %d exceeds payload size %d", declaredLength, len(payload))
	}

	buf := make([]byte, HeaderSize+len(payload))
	scrambled := buf[HeaderSize:]
	if err := Scramble(scrambled, payload, nonce); err != nil {
		return nil, err
	}

	binary.BigEndian.PutUint32(buf[0:], index)
	binary.BigEndian.PutUint32(buf[4:], declaredLength)
	binary.BigEndian.PutUint32(buf[8:], crc32.ChecksumIEEE(scrambled))
	binary.BigEndian.PutUint32(buf[12:], nonce)
	whiten(buf[:HeaderSize])

	return buf, nil
}

// Unpack parses a packet, verifies its checksum and returns the
// unscrambled payload truncated to the declared length.
func (c *PacketCodec) Unpack(data []byte) (*Packet, error) {
	if len(data) < HeaderSize {
		return nil, fault.New(fault.LengthError, "packet.unpack", "data too short for packet header: %d < %d", len(data), HeaderSize)
	}

	header := make([]byte, HeaderSize)
	copy(header, data[:HeaderSize])
	whiten(header)

	p := &Packet{
		Index:          binary.BigEndian.Uint32(header[0:]),
		DeclaredLength: binary.BigEndian.Uint32(header[4:]),
		Checksum:       binary.BigEndian.Uint32(header[8:]),
		Nonce:          binary.BigEndian.Uint32(header[12:]),
	}

	scrambled := data[HeaderSize:]
	if sum := crc32.ChecksumIEEE(scrambled); sum != p.Checksum {
		return nil, fault.New(fault.CorruptionDetected, "packet.unpack", "CRC32 mismatch in chunk %d: %08x != %08x", p.Index, p.Checksum, sum)
	}
	if int(p.DeclaredLength) > len(scrambled) {
		return nil, fault.New(fault.CorruptionDetected, "packet.unpack", "declared length %d exceeds payload size %d", p.DeclaredLength, len(scrambled))
	}

	payload := make([]byte, len(scrambled))
	if err := Scramble(payload, scrambled, p.Nonce); err != nil {
		return nil, err
	}
	p.Payload = payload[:p.DeclaredLength]

	return p, nil
}

// Encode packs p with its current nonce
func (p *Packet) Encode() ([]byte, error) {
	return NewPacketCodec().Pack(p.Index, p.Payload, p.DeclaredLength, p.Nonce)
}

// WithNonce returns a copy of p that scrambles with nonce. The payload is
// shared, so the decoded content is unchanged.
func (p *Packet) WithNonce(nonce uint32) *Packet {
	out := *p
	out.Nonce = nonce
	return &out
}

// Size returns the encoded packet size
func (p *Packet) Size() int {
	return HeaderSize + len(p.Payload)
}

func (p *Packet) String() string {
	return fmt.Sprintf("packet{index=%d len=%d nonce=%d}", p.Index, p.DeclaredLength, p.Nonce)
}

// Chunk splits data into chunkSize pieces, zero padding the last one.
// Every packet starts at nonce 0.
func Chunk(data []byte, chunkSize int) ([]*Packet, error) {
	if chunkSize <= 0 {
		return nil, fault.New(fault.InvalidInput, "packet.chunk", "chunk size must be positive, got %d", chunkSize)
	}

	count := (len(data) + chunkSize - 1) / chunkSize
	packets := make([]*Packet, 0, count)
	for i := 0; i < count; i++ {
		packets = append(packets, NewPacket(uint32(i), data[i*chunkSize:min((i+1)*chunkSize, len(data))], chunkSize))
	}
	return packets, nil
}

// NewPacket builds the nonce-0 packet for one piece of input
func NewPacket(index uint32, piece []byte, chunkSize int) *Packet {
	payload := make([]byte, chunkSize)
	n := copy(payload, piece)
	return &Packet{
		Index:          index,
		DeclaredLength: uint32(n),
		Payload:        payload,
	}
}

func whiten(header []byte) {
	for i := range header {
		header[i] ^= whiteningMask[i]
	}
}
