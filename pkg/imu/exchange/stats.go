package exchange

// Stats counts frames over a session.
type Stats struct {
	// Transmitted counts requests written to the transport.
	Transmitted uint64 `json:"transmitted"`
	// Received counts responses whose sync marker matched.
	Received uint64 `json:"received"`
	// Valid counts received responses passing the CRC check.
	Valid uint64 `json:"valid"`
}

// CRCErrors is the number of received frames failing the CRC check,
// including truncated ones.
func (s Stats) CRCErrors() uint64 {
	return s.Received - s.Valid
}

// CRCErrorRate is CRCErrors/Received. ok is false before anything is
// received.
func (s Stats) CRCErrorRate() (rate float64, ok bool) {
	if s.Received == 0 {
		return 0, false
	}
	return float64(s.CRCErrors()) / float64(s.Received), true
}
