package drda

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"time"
)

const (
	clientExtName     = "go-drda"
	clientServerName  = "go-drda"
	clientReleaseLevel = "1.0.0"
	clientClassName   = "QDRDAGO10"
)

// packNullString encodes a nullable string field: a single 0xFF byte for
// NULL, or a 0x00 not-null marker followed by a 4-byte big-endian length
// and the bytes themselves.
func packNullString(b []byte) []byte {
	if b == nil {
		return []byte{0xFF}
	}
	out := make([]byte, 0, 5+len(b))
	out = append(out, 0x00)
	out = append(out, putUint32(binary.BigEndian, uint32(len(b)))...)
	out = append(out, b...)
	return out
}

func mgrLvLsBody(pairs [][2]uint16) []byte {
	body := make([]byte, 0, len(pairs)*4)
	for _, p := range pairs {
		body = append(body, putUint16(binary.BigEndian, p[0])...)
		body = append(body, putUint16(binary.BigEndian, p[1])...)
	}
	return body
}

// packEXCSAT builds the EXCSAT request: client identity strings plus the
// manager-level-list announcing which DDM managers and levels this client
// speaks.
func packEXCSAT(dia *dialect) []byte {
	body := packObject(cpEXTNAM, dia.encodeString(clientExtName))
	body = append(body, packObject(cpSRVNAM, dia.encodeString(clientServerName))...)
	body = append(body, packObject(cpSRVRLSLV, dia.encodeString(clientReleaseLevel))...)
	body = append(body, packObject(cpMGRLVLLS, mgrLvLsBody([][2]uint16{
		{cpAGENT, 10},
		{cpSQLAM, 11},
		{cpCMNTCPIP, 5},
		{cpRDB, 12},
		{cpSECMGR, 9},
		{cpUNICODEMGR, 1208},
	}))...)
	body = append(body, packObject(cpSRVCLSNM, dia.encodeString(clientClassName))...)
	return packObject(cpEXCSAT, body)
}

// packEXCSATMgrLvLs builds a follow-up EXCSAT announcing a single extra
// manager level (CCSIDMGR), sent chained with EXCSQLSET while setting
// session variables after ACCRDB.
func packEXCSATMgrLvLs(pairs [][2]uint16) []byte {
	return packObject(cpEXCSAT, packObject(cpMGRLVLLS, mgrLvLsBody(pairs)))
}

// packACCSEC builds the ACCSEC request offering (or confirming) a security
// mechanism, optionally carrying a Diffie-Hellman public key as SECTKN
// under SECMEC 9.
func packACCSEC(dia *dialect, secmec uint16, rdbnam string, sectkn []byte) []byte {
	body := packObject(cpSECMEC, putUint16(binary.BigEndian, secmec))
	body = append(body, packObject(cpRDBNAM, dia.encodeString(rdbnam))...)
	if sectkn != nil {
		body = append(body, packObject(cpSECTKN, sectkn)...)
	}
	return packObject(cpACCSEC, body)
}

// packSECCHK builds the SECCHK request: under SECMEC 9 the user/password
// are DES-encrypted with the session key derived from the DH exchange,
// otherwise they travel in the dialect's native encoding.
func packSECCHK(dia *dialect, secmec uint16, rdbnam, user, password string, encryptedUser, encryptedPassword []byte) []byte {
	body := packObject(cpSECMEC, putUint16(binary.BigEndian, secmec))
	body = append(body, packObject(cpRDBNAM, dia.encodeString(rdbnam))...)
	if secmec == secmecEUSRIDPWD {
		body = append(body, packObject(cpUSRID, encryptedUser)...)
		body = append(body, packObject(cpPASSWORD, encryptedPassword)...)
	} else {
		body = append(body, packObject(cpUSRID, dia.encodeString(user))...)
		body = append(body, packObject(cpPASSWORD, dia.encodeString(password))...)
	}
	return packObject(cpSECCHK, body)
}

// crrtknBytes and typdefovrBytes are the fixed CRRTKN and TYPDEFOVR
// blobs every ACCRDB sends: an arbitrary but fixed correlation token and
// type-definition override, not derived per connection.
var (
	crrtknBytes, _    = hex.DecodeString("d5c6f0f0f0f0f0f12ec3f0c1f50155630d5a11")
	typdefovrBytes, _ = hex.DecodeString("0006119c04b80006119d04b00006119e04b8")
)

// packACCRDB builds the ACCRDB request that actually opens the target
// database. TYPDEFNAM is always "QTDSQLX86"; both server families accept
// it alongside the TYPDEFOVR CCSID overrides sent here.
func packACCRDB(dia *dialect, rdbnam string) []byte {
	body := packObject(cpRDBNAM, dia.encodeString(rdbnam))
	body = append(body, packObject(cpRDBACCCL, putUint16(binary.BigEndian, cpSQLAM))...)
	body = append(body, packObject(cpPRDID, dia.encodeString(dia.prdid))...)
	body = append(body, packObject(cpTYPDEFNAM, dia.encodeString("QTDSQLX86"))...)
	body = append(body, packObject(cpCRRTKN, crrtknBytes)...)
	body = append(body, packObject(cpTYPDEFOVR, typdefovrBytes)...)
	return packObject(cpACCRDB, body)
}

// packRDBCMM builds the empty-bodied RDBCMM ("commit") request.
func packRDBCMM() []byte {
	return packObject(cpRDBCMM, nil)
}

// packPKGNAMCSN builds the 64-byte PKGNAMCSN body (exactly 68 bytes once
// packObject adds its 4-byte header): the database name space-padded or
// truncated to 18 chars, the fixed
// collection id "NULLID", an 18-char package id, an 8-byte consistency
// token, and a 2-byte big-endian package section number.
func packPKGNAMCSN(database, pkgid, pkgcnstkn string, pkgsn uint16) []byte {
	body := make([]byte, 0, 64)
	body = append(body, []byte(padDatabaseName(database))...)
	body = append(body, []byte(fmt.Sprintf("%-18s", "NULLID"))...)
	body = append(body, []byte(fmt.Sprintf("%-18s", pkgid))...)
	if pkgcnstkn == "" {
		body = append(body, []byte{1, 1, 1, 1, 1, 1, 1, 1}...)
	} else {
		body = append(body, []byte(fmt.Sprintf("%8s", pkgcnstkn))...)
	}
	body = append(body, putUint16(binary.BigEndian, pkgsn)...)
	return packObject(cpPKGNAMCSN, body)
}

// packEXCSQLIMM builds EXCSQLIMM: PKGNAMCSN plus RDBCMTOK signalling an
// implicit commit follows the immediate statement.
func packEXCSQLIMM(database, pkgid, pkgcnstkn string, pkgsn uint16) []byte {
	body := packPKGNAMCSN(database, pkgid, pkgcnstkn, pkgsn)
	body = append(body, packObject(cpRDBCMTOK, []byte{241})...)
	return packObject(cpEXCSQLIMM, body)
}

// packEXCSQLSTT builds EXCSQLSTT the same way as EXCSQLIMM but for a
// previously prepared statement.
func packEXCSQLSTT(database, pkgid, pkgcnstkn string, pkgsn uint16) []byte {
	body := packPKGNAMCSN(database, pkgid, pkgcnstkn, pkgsn)
	body = append(body, packObject(cpRDBCMTOK, []byte{241})...)
	return packObject(cpEXCSQLSTT, body)
}

// packPRPSQLSTT builds PRPSQLSTT ("prepare"), requesting the SQLDA back.
func packPRPSQLSTT(database, pkgid, pkgcnstkn string, pkgsn uint16) []byte {
	body := packPKGNAMCSN(database, pkgid, pkgcnstkn, pkgsn)
	body = append(body, packObject(cpRTNSQLDA, []byte{241})...)
	return packObject(cpPRPSQLSTT, body)
}

// packDSCSQLSTT builds DSCSQLSTT ("describe"), requesting the input SQLDA.
func packDSCSQLSTT(database, pkgid, pkgcnstkn string, pkgsn uint16) []byte {
	body := packPKGNAMCSN(database, pkgid, pkgcnstkn, pkgsn)
	body = append(body, packObject(cpTYPSQLDA, []byte{1})...)
	return packObject(cpDSCSQLSTT, body)
}

// packEXCSQLSET builds EXCSQLSET (used for SET CLIENT/SET CURRENT LOCALE
// session statements), carrying nothing but PKGNAMCSN.
func packEXCSQLSET(database, pkgid, pkgcnstkn string, pkgsn uint16) []byte {
	return packObject(cpEXCSQLSET, packPKGNAMCSN(database, pkgid, pkgcnstkn, pkgsn))
}

// packOPNQRY builds OPNQRY ("open query"), with a max block size and
// extent and an implicit-close-on-exhaustion flag.
func packOPNQRY(database, pkgid, pkgcnstkn string, pkgsn uint16) []byte {
	body := packPKGNAMCSN(database, pkgid, pkgcnstkn, pkgsn)
	body = append(body, packObject(cpQRYBLKSZ, putUint32(binary.BigEndian, 65535))...)
	body = append(body, packObject(cpMAXBLKEXT, putUint16(binary.BigEndian, 65535))...)
	body = append(body, packObject(cpQRYCLSIMP, []byte{1})...)
	return packObject(cpOPNQRY, body)
}

// packOPNQRYWithParams is OPNQRY plus DYNDTAFMT, signalling that a SQLDTA
// object carrying bound parameters follows in the same request batch.
func packOPNQRYWithParams(database, pkgid, pkgcnstkn string, pkgsn uint16) []byte {
	body := packPKGNAMCSN(database, pkgid, pkgcnstkn, pkgsn)
	body = append(body, packObject(cpQRYBLKSZ, putUint32(binary.BigEndian, 65535))...)
	body = append(body, packObject(cpMAXBLKEXT, putUint16(binary.BigEndian, 65535))...)
	body = append(body, packObject(cpQRYCLSIMP, []byte{1})...)
	body = append(body, packObject(cpDYNDTAFMT, []byte{0xf1})...)
	return packObject(cpOPNQRY, body)
}

// packCNTQRY builds CNTQRY ("continue query"), requesting the next block
// of rows for an already-open cursor.
func packCNTQRY(database, pkgid, pkgcnstkn string, pkgsn uint16) []byte {
	body := packPKGNAMCSN(database, pkgid, pkgcnstkn, pkgsn)
	body = append(body, packObject(cpQRYBLKSZ, putUint32(binary.BigEndian, 65535))...)
	body = append(body, packObject(cpQRYINSID, putUint64BigEndian(0))...)
	body = append(body, packObject(cpRTNEXTDTA, []byte{2})...)
	body = append(body, packObject(cpFREPRVREF, []byte{0xf0})...)
	return packObject(cpCNTQRY, body)
}

func putUint64BigEndian(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

// packSQLSTT builds the SQLSTT object carrying the SQL text itself: a
// null-string of the statement text followed by an always-null second
// string. SQL text is always UTF-8; the session encoding applies only to
// the handshake identifier fields.
func packSQLSTT(sql string) []byte {
	body := packNullString([]byte(sql))
	body = append(body, packNullString(nil)...)
	return packObject(cpSQLSTT, body)
}

// packSQLATTR builds the SQLATTR object the same way as SQLSTT, carrying
// a statement-attribute string instead of the statement text.
func packSQLATTR(attr string) []byte {
	body := packNullString([]byte(attr))
	body = append(body, packNullString(nil)...)
	return packObject(cpSQLATTR, body)
}

// paramDescriptor describes one bound parameter for FDODSC/FDODTA
// encoding, taken from a DSCSQLSTT-reported input SQLDA.
type paramDescriptor struct {
	SQLType   int32
	Precision int16
	Scale     int16
	Length    int32
}

// fdodscEntry returns the 3-byte FDOCA descriptor triplet for one
// parameter's declared type.
func fdodscEntry(p paramDescriptor) ([]byte, error) {
	switch p.SQLType &^ 1 {
	case db2SQLTypeVarchar, db2SQLTypeLong, db2SQLTypeChar:
		return []byte{0x39, 0x3f, 0xff}, nil
	case db2SQLTypeDecimal:
		return []byte{0x0f, byte(p.Precision), byte(p.Scale)}, nil
	case db2SQLTypeSmall:
		return []byte{0x05, 0x00, byte(p.Length)}, nil
	case db2SQLTypeInteger:
		return []byte{0x03, 0x00, byte(p.Length)}, nil
	case db2SQLTypeBigint:
		return []byte{0x17, 0x00, byte(p.Length)}, nil
	case db2SQLTypeFloat:
		// 0x0D is the 4-byte float wire type, 0x0B the 8-byte one.
		if p.Length == 4 {
			return []byte{0x0d, 0x00, byte(p.Length)}, nil
		}
		return []byte{0x0b, 0x00, byte(p.Length)}, nil
	case db2SQLTypeDate:
		return []byte{0x21, 0x00, 0x0a}, nil
	case db2SQLTypeTime:
		return []byte{0x23, 0x00, 0x08}, nil
	case db2SQLTypeTimestamp:
		return []byte{0x25, 0x00, 0x20}, nil
	default:
		return nil, fmt.Errorf("drda: no FDODSC encoding for sqltype %d", p.SQLType)
	}
}

// fdodtaEntry encodes one bound parameter's value: a 0x00 not-null marker
// byte followed by the value bytes. Integer and float values are packed
// little-endian regardless of dialect; the FDODSC triplets declare the
// little-endian FDOCA representations.
func fdodtaEntry(p paramDescriptor, v any) ([]byte, error) {
	switch p.SQLType &^ 1 {
	case db2SQLTypeVarchar, db2SQLTypeLong, db2SQLTypeChar:
		s, _ := v.(string)
		u16 := utf16beEncode(s)
		// The prefix counts UTF-16 units, not bytes.
		out := append([]byte{0x00}, putUint16(binary.BigEndian, uint16(len(u16)/2))...)
		return append(out, u16...), nil
	case db2SQLTypeDecimal:
		return encodePackedDecimal(v, int(p.Precision), int(p.Scale))
	case db2SQLTypeSmall:
		n, _ := toInt64(v)
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, uint16(int16(n)))
		return append([]byte{0x00}, b...), nil
	case db2SQLTypeInteger:
		n, _ := toInt64(v)
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, uint32(int32(n)))
		return append([]byte{0x00}, b...), nil
	case db2SQLTypeBigint:
		n, _ := toInt64(v)
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, uint64(n))
		return append([]byte{0x00}, b...), nil
	case db2SQLTypeFloat:
		f, _ := toFloat64(v)
		var b []byte
		if p.Length == 4 {
			b = make([]byte, 4)
			binary.LittleEndian.PutUint32(b, math.Float32bits(float32(f)))
		} else {
			b = make([]byte, 8)
			binary.LittleEndian.PutUint64(b, math.Float64bits(f))
		}
		return append([]byte{0x00}, b...), nil
	case db2SQLTypeDate:
		t, _ := v.(time.Time)
		return append([]byte{0x00}, []byte(t.Format("2006-01-02"))...), nil
	case db2SQLTypeTime:
		t, _ := v.(time.Time)
		return append([]byte{0x00}, []byte(t.Format("15:04:05"))...), nil
	case db2SQLTypeTimestamp:
		t, _ := v.(time.Time)
		// Space-padded to the 32 bytes the descriptor declares.
		s := t.Format("2006-01-02-15.04.05.000000") + "      "
		return append([]byte{0x00}, []byte(s)...), nil
	default:
		return nil, fmt.Errorf("drda: no FDODTA encoding for sqltype %d", p.SQLType)
	}
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	default:
		return 0, false
	}
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	default:
		return 0, false
	}
}

func utf16beEncode(s string) []byte {
	out := make([]byte, 0, len(s)*2)
	for _, r := range s {
		if r <= 0xFFFF {
			out = append(out, byte(r>>8), byte(r))
			continue
		}
		r -= 0x10000
		hi := 0xD800 + (r >> 10)
		lo := 0xDC00 + (r & 0x3FF)
		out = append(out, byte(hi>>8), byte(hi), byte(lo>>8), byte(lo))
	}
	return out
}

// encodePackedDecimal packs a Decimal (or numeric Go value, stringified
// via fmt.Sprint) into a 0x00 not-null marker byte followed by BCD digits
// plus a trailing sign nibble; the bytes after the marker are what
// decodePackedDecimal reads back.
func encodePackedDecimal(v any, precision, scale int) ([]byte, error) {
	s := fmt.Sprint(v)
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	intPart, fracPart := s, ""
	if i := indexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}
	for len(fracPart) < scale {
		fracPart += "0"
	}
	digits := intPart + fracPart
	for len(digits) < precision {
		digits = "0" + digits
	}
	if len(digits) > precision {
		digits = digits[len(digits)-precision:]
	}

	nibbles := make([]byte, 0, precision+1)
	for _, r := range digits {
		nibbles = append(nibbles, byte(r-'0'))
	}
	sign := byte(0x0C)
	if neg {
		sign = 0x0D
	}
	nibbles = append(nibbles, sign)
	if len(nibbles)%2 != 0 {
		nibbles = append([]byte{0}, nibbles...)
	}
	out := make([]byte, 0, len(nibbles)/2+1)
	out = append(out, 0x00)
	for i := 0; i < len(nibbles); i += 2 {
		out = append(out, nibbles[i]<<4|nibbles[i+1])
	}
	return out, nil
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

// packSQLDTA builds the SQLDTA object carrying bound parameter values: an
// FDODSC descriptor object (triplet header plus one descriptor entry per
// parameter) and an FDODTA value object (one encoded value per
// parameter, even-length padded with a leading zero byte).
func packSQLDTA(params []paramDescriptor, values []any) ([]byte, error) {
	n := len(params)
	fdodsc := []byte{byte((1 + n) * 3), 0x76, 0xD0}
	var fdodta []byte
	for i, p := range params {
		entry, err := fdodscEntry(p)
		if err != nil {
			return nil, err
		}
		fdodsc = append(fdodsc, entry...)
		valBytes, err := fdodtaEntry(p, values[i])
		if err != nil {
			return nil, err
		}
		fdodta = append(fdodta, valBytes...)
	}
	fdodsc = append(fdodsc, []byte{0x06, 0x71, 0xe4, 0xd0, 0x00, 0x01}...)
	if len(fdodta)%2 != 0 {
		fdodta = append([]byte{0x00}, fdodta...)
	}
	body := packObject(cpFDODSC, fdodsc)
	body = append(body, packObject(cpFDODTA, fdodta)...)
	return packObject(cpSQLDTA, body), nil
}
