package drda

import (
	"encoding/binary"
	"io"
	"net"
)

// maxReadAttempts bounds the retry loop in readFull: give up after 16
// zero-byte reads in a row rather than looping forever against a server
// that stalls mid-frame.
const maxReadAttempts = 16

// readFull reads exactly len(buf) bytes from conn, retrying short reads
// until buf is full; it gives up after maxReadAttempts consecutive
// zero-byte reads.
func readFull(conn net.Conn, buf []byte) error {
	read := 0
	attempts := 0
	for read < len(buf) {
		n, err := conn.Read(buf[read:])
		read += n
		if err != nil {
			if err == io.EOF && read == len(buf) {
				break
			}
			return &TransportError{Op: "read", Err: err}
		}
		if n == 0 {
			attempts++
			if attempts >= maxReadAttempts {
				return &TransportError{Op: "read", Err: io.ErrNoProgress}
			}
			continue
		}
		attempts = 0
	}
	return nil
}

// writeFull writes all of buf to conn, retrying short writes the same way
// readFull retries short reads.
func writeFull(conn net.Conn, buf []byte) error {
	written := 0
	attempts := 0
	for written < len(buf) {
		n, err := conn.Write(buf[written:])
		written += n
		if err != nil {
			return &TransportError{Op: "write", Err: err}
		}
		if n == 0 {
			attempts++
			if attempts >= maxReadAttempts {
				return &TransportError{Op: "write", Err: io.ErrNoProgress}
			}
			continue
		}
		attempts = 0
	}
	return nil
}

// byteOrder returns the binary.ByteOrder matching a dialect's declared
// endianness (Derby is big-endian, Db2 is little-endian).
func (d *dialect) byteOrder() binary.ByteOrder {
	if d.littleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

func putUint16(order binary.ByteOrder, v uint16) []byte {
	b := make([]byte, 2)
	order.PutUint16(b, v)
	return b
}

func putUint32(order binary.ByteOrder, v uint32) []byte {
	b := make([]byte, 4)
	order.PutUint32(b, v)
	return b
}
