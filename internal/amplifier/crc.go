// internal/amplifier/crc.go
package amplifier

// crcPoly is the feedback mask applied on every set output bit.
const crcPoly byte = 0x8C

// CRC8 computes the amplifier checksum over the frame body
// (bytes 0..FrameSize-2). Longer input is truncated to the body.
//
// Bit-serial, 8-bit register, no initial or final complement. Each byte
// is shifted out starting at bit 0; this is the reflected Dallas/Maxim
// CRC-8 and the only checksum the device accepts.
func CRC8(p []byte) byte {
	if len(p) > FrameSize-1 {
		p = p[:FrameSize-1]
	}

	var crc byte
	for _, b := range p {
		for i := 0; i < 8; i++ {
			feedback := (crc ^ b) & 1
			crc >>= 1
			if feedback != 0 {
				crc ^= crcPoly
			}
			b >>= 1
		}
	}
	return crc
}
