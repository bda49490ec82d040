package codec_test

import (
	"errors"
	"fmt"
	"log"

	"github.com/ssargent/dnastore/pkg/codec"
	"github.com/ssargent/dnastore/pkg/fault"
)

// ExampleChunk demonstrates splitting input into packets
func ExampleChunk() {
	packets, err := codec.Chunk([]byte("Hello DNA Storage!"), 8)
	if err != nil {
		log.Fatal(err)
	}

	for _, p := range packets {
		fmt.Printf("%s size=%d\n", p, p.Size())
	}

	// Output:
	// packet{index=0 len=8 nonce=0} size=24
	// packet{index=1 len=8 nonce=0} size=24
	// packet{index=2 len=2 nonce=0} size=24
}

// ExamplePacketCodec_Unpack demonstrates a packet round trip with scrambling
func ExamplePacketCodec_Unpack() {
	c := codec.NewPacketCodec()

	wire, err := c.Pack(4, []byte("payload\x00"), 7, 3)
	if err != nil {
		log.Fatal(err)
	}

	p, err := c.Unpack(wire)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Encoded %d bytes\n", len(wire))
	fmt.Printf("Index: %d\n", p.Index)
	fmt.Printf("Nonce: %d\n", p.Nonce)
	fmt.Printf("Payload: %s\n", p.Payload)

	// Output:
	// Encoded 24 bytes
	// Index: 4
	// Nonce: 3
	// Payload: payload
}

// ExamplePacketCodec_errorHandling demonstrates checksum failures
func ExamplePacketCodec_errorHandling() {
	c := codec.NewPacketCodec()

	wire, err := c.Pack(0, []byte("data"), 4, 0)
	if err != nil {
		log.Fatal(err)
	}
	wire[len(wire)-1] ^= 0xFF

	_, err = c.Unpack(wire)
	fmt.Println(errors.Is(err, fault.ErrCorruptionDetected))

	// Output:
	// true
}
