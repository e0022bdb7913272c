package drda

import (
	"encoding/binary"
	"net"
)

// DSS types (low nibble of the flag byte), per the DDM architecture.
const (
	dssTypeRequest       = 0x1
	dssTypeReply         = 0x2
	dssTypeObject        = 0x3
	dssTypeCommunication = 0x4
	dssTypeRequestNR     = 0x5 // no-reply request; writeDSS never emits it
)

const (
	dssFlagChained  = 0b01000000
	dssFlagSameCorr = 0b00010000
	dssFormatByte   = 0xD0
)

// dssHeader is the 6-byte frame header every DSS starts with: 2-byte
// length, a fixed 0xD0 format byte, a flag byte (dss type + chaining
// bits), and a 2-byte correlation id. Framing is always big-endian
// regardless of dialect; only the SQL data payload's byte order follows
// the dialect.
type dssHeader struct {
	length        uint16
	dssType       byte
	chained       bool
	sameCorrID    bool
	correlationID uint16
}

func readDSSHeader(conn net.Conn) (*dssHeader, error) {
	buf := make([]byte, 6)
	if err := readFull(conn, buf); err != nil {
		return nil, err
	}
	if buf[2] != dssFormatByte {
		return nil, &ProtocolError{Context: "DSS header missing 0xD0 format byte"}
	}
	flags := buf[3]
	return &dssHeader{
		length:        binary.BigEndian.Uint16(buf[0:2]),
		dssType:       flags & 0x0F,
		chained:       flags&dssFlagChained != 0,
		sameCorrID:    flags&dssFlagSameCorr != 0,
		correlationID: binary.BigEndian.Uint16(buf[4:6]),
	}, nil
}

// ddmObject is one code-point-tagged DDM object read out of a DSS.
type ddmObject struct {
	codePoint uint16
	body      []byte
}

// readDSSObject reads the 4-byte object header (2-byte length + 2-byte
// code point) plus the body filling the rest of a non-continuation DSS.
func readDSSObject(conn net.Conn) (*ddmObject, error) {
	hdr := make([]byte, 4)
	if err := readFull(conn, hdr); err != nil {
		return nil, err
	}
	objLen := int(binary.BigEndian.Uint16(hdr[0:2]))
	codePoint := binary.BigEndian.Uint16(hdr[2:4])
	bodyLen := objLen - 4
	if bodyLen < 0 {
		return nil, &ProtocolError{Context: "negative DDM object body length"}
	}
	body := make([]byte, bodyLen)
	if bodyLen > 0 {
		if err := readFull(conn, body); err != nil {
			return nil, err
		}
	}
	return &ddmObject{codePoint: codePoint, body: body}, nil
}

// readQRYDTAContinuation reads one QRYDTA continuation block, the
// dss_length==0xFFFF case where the payload spans sub-blocks. Db2 and
// Derby each send a fixed pair of chunk sizes sandwiching a 2-byte
// "next length" field; a next length of 0x7ffe means more continuation
// blocks follow. The lengths are empirical constants observed on the
// wire rather than derived from QRYBLKSZ.
func readQRYDTAContinuation(conn net.Conn, t dbType) (data []byte, more bool, err error) {
	objHdr := make([]byte, 4)
	if err = readFull(conn, objHdr); err != nil {
		return nil, false, err
	}
	objLen := int(binary.BigEndian.Uint16(objHdr[0:2]))
	codePoint := binary.BigEndian.Uint16(objHdr[2:4])
	if codePoint != cpQRYDTA {
		return nil, false, &ProtocolError{Context: "expected QRYDTA continuation code point"}
	}

	switch t {
	case DBTypeDb2:
		if objLen != 32772 {
			return nil, false, &ProtocolError{Context: "unexpected Db2 QRYDTA continuation length"}
		}
		chunk := make([]byte, 32757)
		if err = readFull(conn, chunk); err != nil {
			return nil, false, err
		}
		nextLenBuf := make([]byte, 2)
		if err = readFull(conn, nextLenBuf); err != nil {
			return nil, false, err
		}
		nextLen := binary.BigEndian.Uint16(nextLenBuf)
		extra := make([]byte, 0)
		if nextLen > 2 {
			extra = make([]byte, int(nextLen)-2)
			if err = readFull(conn, extra); err != nil {
				return nil, false, err
			}
		}
		more = nextLen == 0x7ffe
		return append(chunk, extra...), more, nil
	default: // Derby
		if objLen != 32776 {
			return nil, false, &ProtocolError{Context: "unexpected Derby QRYDTA continuation length"}
		}
		secondaryLenBuf := make([]byte, 4)
		if err = readFull(conn, secondaryLenBuf); err != nil {
			return nil, false, err
		}
		if binary.BigEndian.Uint32(secondaryLenBuf) != 61515 {
			return nil, false, &ProtocolError{Context: "unexpected Derby QRYDTA secondary length"}
		}
		chunk := make([]byte, 32753)
		if err = readFull(conn, chunk); err != nil {
			return nil, false, err
		}
		nextLenBuf := make([]byte, 2)
		if err = readFull(conn, nextLenBuf); err != nil {
			return nil, false, err
		}
		nextLen := binary.BigEndian.Uint16(nextLenBuf)
		extra := make([]byte, 0)
		if nextLen > 2 {
			extra = make([]byte, int(nextLen)-2)
			if err = readFull(conn, extra); err != nil {
				return nil, false, err
			}
		}
		more = nextLen == 0x7ffe
		return append(chunk, extra...), more, nil
	}
}

// writeDSS frames and writes a fully-packed DDM object (as produced by
// packObject) as one DSS. It reads the object's own code point out of its
// header to choose the DSS type rather than taking a separate code point
// argument: SQLSTT/SQLATTR/SQLDTA objects use dssTypeObject, everything
// else dssTypeRequest. The chained bit is set unless this is the last
// packet of a request; the same-correlation bit is set (and corrID held
// steady by the caller) when the next DSS shares this one's correlation
// id.
func writeDSS(conn net.Conn, obj []byte, corrID uint16, chained, sameCorrID bool) error {
	if len(obj) < 4 {
		return &ProtocolError{Context: "DDM object too short to frame"}
	}
	codePoint := binary.BigEndian.Uint16(obj[2:4])
	dssType := byte(dssTypeRequest)
	switch codePoint {
	case cpSQLSTT, cpSQLATTR, cpSQLDTA:
		dssType = dssTypeObject
	}
	flags := dssType
	if chained {
		flags |= dssFlagChained
	}
	if sameCorrID {
		flags |= dssFlagSameCorr
	}
	dssLen := len(obj) + 6
	buf := make([]byte, 0, dssLen)
	buf = append(buf, putUint16(binary.BigEndian, uint16(dssLen))...)
	buf = append(buf, dssFormatByte, flags)
	buf = append(buf, putUint16(binary.BigEndian, corrID)...)
	buf = append(buf, obj...)
	return writeFull(conn, buf)
}

// packObject wraps body in a DDM object header: a 2-byte big-endian total
// length (body plus the 4-byte header itself) followed by the 2-byte code
// point.
func packObject(codePoint uint16, body []byte) []byte {
	obj := make([]byte, 0, 4+len(body))
	obj = append(obj, putUint16(binary.BigEndian, uint16(len(body)+4))...)
	obj = append(obj, putUint16(binary.BigEndian, codePoint)...)
	obj = append(obj, body...)
	return obj
}

// correlationTracker keeps the per-batch correlation counter: requests
// that share a correlation id with the next request in the same batch
// hold the counter, everything else increments it.
type correlationTracker struct {
	cur uint16
}

func (t *correlationTracker) id(sameAsNext bool) uint16 {
	id := t.cur
	if !sameAsNext {
		t.cur++
	}
	return id
}
