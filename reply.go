package drda

import (
	"encoding/binary"
	"net"
	"strings"
)

// accsecrd is the server's reply to ACCSEC: the security mechanism it
// actually wants to use (which may differ from what the client offered)
// and, under SECMEC 9, its Diffie-Hellman public key.
type accsecrd struct {
	SecMec uint16
	SecTkn []byte
}

// sqlcard is the parsed SQLCARD reply object: a SQL completion/error
// report every statement-executing command returns.
type sqlcard struct {
	SQLCode    int32
	SQLState   string
	SQLErrProc string
	SQLErrd    [6]byte
	RDBName    string
	Message    string
}

// parseSQLCARD decodes a SQLCARD object body: SQLCAGRP (sqlcode,
// sqlstate, sqlerrproc), SQLCAXGRP (sqlerrd, sqlwarn), 18 reserved bytes,
// then the VCM-prefixed RDB name and the mixed/single error-message
// slots, terminated by a 0xFF SQLDIAGGRP marker. A leading 0xFF means an
// empty card. All strings are UTF-8 regardless of dialect; only sqlcode
// follows the dialect's byte order. Returns the parsed card (nil when
// empty) and the bytes following it, for callers like parseSQLDARD that
// keep walking the same object.
func parseSQLCARD(obj []byte, d *dialect) (*sqlcard, []byte, error) {
	if len(obj) < 1 {
		return nil, obj, &ProtocolError{Context: "SQLCARD empty"}
	}
	if obj[0] == 0xFF {
		return nil, obj[1:], nil
	}
	if len(obj) < 54 {
		return nil, obj, &ProtocolError{Context: "SQLCARD too short"}
	}
	card := &sqlcard{}
	card.SQLCode = int32(d.byteOrder().Uint32(obj[1:5]))
	card.SQLState = strings.TrimRight(string(obj[5:10]), " \x00")
	card.SQLErrProc = strings.TrimRight(string(obj[10:18]), " \x00")
	copy(card.SQLErrd[:], obj[19:25])

	rest := obj[54:]
	rdbname, rest, err := parseString(rest)
	if err != nil {
		return card, nil, nil
	}
	card.RDBName = rdbname
	msgMixed, rest, err := parseString(rest)
	if err != nil {
		return card, nil, nil
	}
	msgSingle, rest, err := parseString(rest)
	if err != nil {
		return card, nil, nil
	}
	if msgMixed != "" {
		card.Message = strings.TrimSpace(msgMixed)
	} else {
		card.Message = strings.TrimSpace(msgSingle)
	}
	if len(rest) > 0 && rest[0] == 0xFF {
		rest = rest[1:]
	}
	return card, rest, nil
}

// parseString reads one VCM: a 2-byte big-endian length then that many
// UTF-8 bytes.
func parseString(b []byte) (string, []byte, error) {
	if len(b) < 2 {
		return "", b, &ProtocolError{Context: "VCM field truncated"}
	}
	n := int(binary.BigEndian.Uint16(b[0:2]))
	if len(b) < 2+n {
		return "", b, &ProtocolError{Context: "VCM field length exceeds buffer"}
	}
	return string(b[2 : 2+n]), b[2+n:], nil
}

// parseName reads a VCM/VCS pair (the mixed- and single-byte spellings of
// one identifier) and returns whichever is non-empty.
func parseName(b []byte) (string, []byte, error) {
	s1, b, err := parseString(b)
	if err != nil {
		return "", b, err
	}
	s2, b, err := parseString(b)
	if err != nil {
		return "", b, err
	}
	if s1 != "" {
		return s1, b, nil
	}
	return s2, b, nil
}

// parseColumnDB2 decodes one SQLDARD column descriptor in the Db2 layout:
// a 16-byte fixed header (precision, scale, an 8-byte length, sqltype,
// ccsid), then either 6 undocumented bytes, a 3-byte SQLDOPTGRP flag, the
// name/label/comments triple and 7 trailing bytes (when hasName), or 29
// skipped bytes (when the SQLDARD describes parameters).
func parseColumnDB2(b []byte, order binary.ByteOrder, hasName bool) (ColumnDescription, []byte, error) {
	if len(b) < 16 {
		return ColumnDescription{}, b, &ProtocolError{Context: "Db2 column descriptor too short"}
	}
	col := ColumnDescription{
		Precision: int16(order.Uint16(b[0:2])),
		Scale:     int16(order.Uint16(b[2:4])),
		Length:    int32(order.Uint64(b[4:12])),
		SQLType:   int32(order.Uint16(b[12:14])),
	}
	rest := b[16:]
	if hasName {
		if len(rest) < 9 {
			return col, rest, &ProtocolError{Context: "Db2 column descriptor truncated"}
		}
		rest = rest[6:]
		if rest[0] != 0x00 {
			return col, rest, &ProtocolError{Context: "Db2 SQLDOPTGRP marker missing"}
		}
		rest = rest[3:]
		name, r, err := parseName(rest)
		if err != nil {
			return col, r, err
		}
		label, r, err := parseName(r)
		if err != nil {
			return col, r, err
		}
		_, r, err = parseName(r) // comments
		if err != nil {
			return col, r, err
		}
		if name == "" {
			name = label
		}
		col.Name = name
		if len(r) < 7 {
			return col, r, &ProtocolError{Context: "Db2 column descriptor missing trailer"}
		}
		rest = r[7:]
	} else {
		if len(rest) < 29 {
			return col, rest, &ProtocolError{Context: "Db2 column descriptor missing trailer"}
		}
		rest = rest[29:]
	}
	col.Nullable = col.SQLType%2 == 1
	return col, rest, nil
}

// parseColumnDerby decodes one SQLDARD column descriptor in the Derby
// layout: the same 16-byte fixed header, an SQLDOPTGRP with
// name/label/comments, an optional SQLUDTGRP, and an SQLDXGRP of
// rdbnam/colname/basename/schema/name.
func parseColumnDerby(b []byte, order binary.ByteOrder) (ColumnDescription, []byte, error) {
	if len(b) < 16 {
		return ColumnDescription{}, b, &ProtocolError{Context: "Derby column descriptor too short"}
	}
	col := ColumnDescription{
		Precision: int16(order.Uint16(b[0:2])),
		Scale:     int16(order.Uint16(b[2:4])),
		Length:    int32(order.Uint64(b[4:12])),
		SQLType:   int32(order.Uint16(b[12:14])),
	}
	rest := b[16:]
	if len(rest) < 3 || rest[0] != 0x00 {
		return col, rest, &ProtocolError{Context: "Derby SQLDOPTGRP marker missing"}
	}
	rest = rest[3:]
	name, rest, err := parseName(rest)
	if err != nil {
		return col, rest, err
	}
	_, rest, err = parseName(rest) // label
	if err != nil {
		return col, rest, err
	}
	_, rest, err = parseName(rest) // comments
	if err != nil {
		return col, rest, err
	}

	// SQLUDTGRP is present only when its not-null flag is clear.
	if len(rest) < 1 {
		return col, rest, &ProtocolError{Context: "Derby column descriptor truncated"}
	}
	if rest[0] == 0x00 {
		if len(rest) < 5 {
			return col, rest, &ProtocolError{Context: "Derby SQLUDTGRP truncated"}
		}
		rest = rest[5:]
		_, rest, err = parseString(rest) // udt rdb
		if err != nil {
			return col, rest, err
		}
		_, rest, err = parseName(rest) // udt schema
		if err != nil {
			return col, rest, err
		}
		_, rest, err = parseName(rest) // udt name
		if err != nil {
			return col, rest, err
		}
	} else {
		rest = rest[1:]
	}

	// SQLDXGRP
	if len(rest) < 9 || rest[0] != 0x00 {
		return col, rest, &ProtocolError{Context: "Derby SQLDXGRP marker missing"}
	}
	rest = rest[9:]
	_, rest, err = parseString(rest) // rdbnam
	if err != nil {
		return col, rest, err
	}
	for i := 0; i < 4; i++ { // colname, basename, schema, name
		var v string
		v, rest, err = parseName(rest)
		if err != nil {
			return col, rest, err
		}
		if name == "" {
			name = v
		}
	}
	col.Name = name
	col.Nullable = col.SQLType%2 == 1
	return col, rest, nil
}

// parseSQLDARD decodes a SQLDARD reply object: a SQLCARD prefix, an
// optional SQLDHGRP header, a column count, then one descriptor per
// column dispatched by dialect. A 0xFF first byte means the descriptors
// name no columns and describe statement parameters instead. Returns the
// columns and the embedded card (nil when empty or error-free parsing
// consumed an empty card).
func parseSQLDARD(obj []byte, d *dialect) ([]ColumnDescription, *sqlcard, error) {
	if len(obj) < 1 {
		return nil, nil, &ProtocolError{Context: "SQLDARD empty"}
	}
	hasName := obj[0] == 0x00
	card, rest, err := parseSQLCARD(obj, d)
	if err != nil {
		return nil, card, err
	}
	if card != nil && card.SQLCode < 0 {
		return nil, card, nil
	}
	if len(rest) < 1 {
		return nil, card, &ProtocolError{Context: "SQLDARD missing SQLDHGRP"}
	}
	// SQLDHGRP is present only when its not-null flag is clear.
	if rest[0] == 0x00 {
		if len(rest) < 13 {
			return nil, card, &ProtocolError{Context: "SQLDARD SQLDHGRP truncated"}
		}
		rest = rest[13:]
		_, rest, err = parseString(rest) // rdbnam
		if err != nil {
			return nil, card, err
		}
		_, rest, err = parseName(rest) // schema
		if err != nil {
			return nil, card, err
		}
	} else {
		rest = rest[1:]
	}
	if len(rest) < 2 {
		return nil, card, &ProtocolError{Context: "SQLDARD missing column count"}
	}
	order := d.byteOrder()
	count := int(order.Uint16(rest[0:2]))
	rest = rest[2:]
	cols := make([]ColumnDescription, 0, count)
	for i := 0; i < count; i++ {
		var col ColumnDescription
		if d.dbType == DBTypeDb2 {
			col, rest, err = parseColumnDB2(rest, order, hasName)
		} else {
			col, rest, err = parseColumnDerby(rest, order)
		}
		if err != nil {
			return cols, card, err
		}
		cols = append(cols, col)
	}
	return cols, card, nil
}

// qryCol is one QRYDSC triplet: the DRDA wire type and its two parameter
// bytes, exactly as transmitted. These drive decodeField for every QRYDTA
// row that follows.
type qryCol struct {
	typ    byte
	p1, p2 byte
}

// parseQRYDSC decodes a QRYDSC object: a 1-byte total length, the fixed
// 0x76 0xD0 triplet-header marker, then one 3-byte (drda-type, param1,
// param2) triplet per column.
func parseQRYDSC(obj []byte) ([]qryCol, error) {
	if len(obj) < 3 || obj[1] != 0x76 || obj[2] != 0xD0 {
		return nil, &ProtocolError{Context: "QRYDSC missing 0x76D0 marker"}
	}
	total := int(obj[0])
	if total > len(obj) {
		total = len(obj)
	}
	if total < 3 {
		total = 3
	}
	entries := obj[3:total]
	cols := make([]qryCol, 0, len(entries)/3)
	for len(entries) >= 3 {
		cols = append(cols, qryCol{typ: entries[0], p1: entries[1], p2: entries[2]})
		entries = entries[3:]
	}
	return cols, nil
}

// parseQRYDTARows decodes the row stream inside one QRYDTA object body
// against the current QRYDSC triplets. A (0xFF, 0x00) prefix marks a
// present row; any other prefix ends the block.
func parseQRYDTARows(body []byte, cols []qryCol, d *dialect) ([][]any, error) {
	c := newByteCursor(body)
	var rows [][]any
	for c.remaining() >= 2 {
		prefix, err := c.read(2)
		if err != nil {
			return rows, err
		}
		if prefix[0] != 0xFF || prefix[1] != 0x00 {
			break
		}
		row := make([]any, len(cols))
		for i, col := range cols {
			v, err := decodeField(col.typ, col.p1, col.p2, d, c)
			if err != nil {
				return rows, err
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// responseResult is the accumulated outcome of reading a chained DSS
// response stream until an unchained, non-more-data terminal object.
type responseResult struct {
	Description       []ColumnDescription
	ParamsDescription []ColumnDescription
	Rows              [][]any
	ServerMessage     string
}

// readResponse drives the chained-DSS reply loop: read DSS while chained,
// dispatch on code point, send CNTQRY and keep reading while the server
// signals more query data, buffer any SQLCARD error and return it only
// once the whole response has been consumed so the socket is never left
// mid-chain. Row data always decodes against the QRYDSC triplets; the
// SQLDARD only feeds the column description surfaced to callers.
func readResponse(conn net.Conn, dia *dialect, pkgCtx pkgContext, corr *correlationTracker) (*responseResult, error) {
	result := &responseResult{}
	var bufferedErr error
	var qrydsc []qryCol
	moreData := false

	for {
		for {
			hdr, err := readDSSHeader(conn)
			if err != nil {
				return result, err
			}
			var obj *ddmObject
			if hdr.length == 0xFFFF {
				data, more, err := readQRYDTAContinuation(conn, dia.dbType)
				if err != nil {
					return result, err
				}
				obj = &ddmObject{codePoint: cpQRYDTA, body: data}
				moreData = moreData || more
			} else {
				obj, err = readDSSObject(conn)
				if err != nil {
					return result, err
				}
			}

			switch obj.codePoint {
			case cpSQLERRRM:
				result.ServerMessage = dia.decodeString(obj.body)
			case cpSQLCARD:
				card, _, err := parseSQLCARD(obj.body, dia)
				if err == nil && card != nil && card.SQLCode < 0 && bufferedErr == nil {
					bufferedErr = &OperationalError{SQLCode: card.SQLCode, SQLState: card.SQLState, Message: card.Message}
				}
			case cpSQLDARD:
				cols, card, err := parseSQLDARD(obj.body, dia)
				if err != nil {
					return result, err
				}
				if card != nil && card.SQLCode < 0 && bufferedErr == nil {
					bufferedErr = &OperationalError{SQLCode: card.SQLCode, SQLState: card.SQLState, Message: card.Message}
				}
				if len(obj.body) > 0 && obj.body[0] == 0xFF {
					result.ParamsDescription = cols
				} else {
					result.Description = cols
				}
			case cpOPNQRYRM:
				if dia.dbType == DBTypeDb2 {
					moreData = true
				}
			case cpENDQRYRM:
				moreData = false
			case cpQRYDSC:
				qrydsc, err = parseQRYDSC(obj.body)
				if err != nil {
					return result, err
				}
			case cpQRYDTA:
				if qrydsc == nil {
					return result, &ProtocolError{Context: "QRYDTA before QRYDSC"}
				}
				rows, err := parseQRYDTARows(obj.body, qrydsc, dia)
				if err != nil {
					return result, err
				}
				result.Rows = append(result.Rows, rows...)
			case cpRDBNFNRM:
				return result, &DatabaseError{Message: "database not found"}
			}

			if !hdr.chained {
				break
			}
		}

		if !moreData {
			break
		}
		moreData = false
		cntqry := packCNTQRY(pkgCtx.database, pkgCtx.pkgid, pkgCtx.pkgcnstkn, pkgCtx.pkgsn)
		if err := writeDSS(conn, cntqry, corr.id(false), false, false); err != nil {
			return result, err
		}
	}

	if bufferedErr != nil {
		return result, bufferedErr
	}
	return result, nil
}

// parseObjectFromBytes reads one DDM object's 4-byte header plus body out
// of an in-memory byte slice, returning the remaining bytes after it:
// the same shape as readDSSObject but operating on already-buffered data
// rather than a live net.Conn, used to walk an object's own sub-items.
func parseObjectFromBytes(b []byte) (*ddmObject, []byte, error) {
	if len(b) < 4 {
		return nil, b, &ProtocolError{Context: "nested DDM object header truncated"}
	}
	objLen := int(binary.BigEndian.Uint16(b[0:2]))
	codePoint := binary.BigEndian.Uint16(b[2:4])
	bodyLen := objLen - 4
	if bodyLen < 0 || len(b) < objLen {
		return nil, b, &ProtocolError{Context: "nested DDM object length exceeds buffer"}
	}
	return &ddmObject{codePoint: codePoint, body: b[4:objLen]}, b[objLen:], nil
}

// parseACCSECRD reads the ACCSECRD reply to ACCSEC, walking sub-items for
// SECMEC/SECTKN and returning DatabaseError on RDBNFNRM. Any EXCSATRD
// chained ahead of the ACCSECRD is consumed and ignored.
func parseACCSECRD(conn net.Conn) (*accsecrd, error) {
	info := &accsecrd{}
	for {
		hdr, err := readDSSHeader(conn)
		if err != nil {
			return nil, err
		}
		obj, err := readDSSObject(conn)
		if err != nil {
			return nil, err
		}
		switch obj.codePoint {
		case cpACCSECRD:
			rest := obj.body
			for len(rest) >= 4 {
				sub, remainder, err := parseObjectFromBytes(rest)
				if err != nil {
					break
				}
				switch sub.codePoint {
				case cpSECMEC:
					if len(sub.body) >= 2 {
						info.SecMec = binary.BigEndian.Uint16(sub.body)
					}
				case cpSECTKN:
					info.SecTkn = sub.body
				}
				rest = remainder
			}
		case cpRDBNFNRM:
			return nil, &DatabaseError{Message: "database not found"}
		}
		if !hdr.chained {
			break
		}
	}
	return info, nil
}
