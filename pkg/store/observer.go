package store

import "time"

// Observer receives codec events. pkg/metrics provides a Prometheus
// implementation.
type Observer interface {
	// ObserveOperation records one Encode/Decode style call
	ObserveOperation(op string, d time.Duration, err error)
	// ObservePacket records how many nonces a packet needed
	ObservePacket(attempts int)
	// ObserveCorrection records a packet whose FEC had to repair bits
	ObserveCorrection(method string)
}

type nopObserver struct{}

func (nopObserver) ObserveOperation(string, time.Duration, error) {}
func (nopObserver) ObservePacket(int)                             {}
func (nopObserver) ObserveCorrection(string)                      {}
