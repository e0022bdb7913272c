package drda

import (
	"testing"
)

func TestPackPKGNAMCSN_Width(t *testing.T) {
	// Every emitted PKGNAMCSN is exactly 68 bytes (64-byte body + 4-byte
	// object header); the database field is space-padded on the right or
	// truncated to 18 chars.
	type args struct {
		database  string
		pkgid     string
		pkgcnstkn string
		pkgsn     uint16
	}
	tests := []struct {
		name string
		args args
	}{
		{"short Derby-style names", args{"testdb", "SQLC2026", "AAAAAfAd", 201}},
		{"db name at the 18-char limit", args{"exactly_eighteen18", "SYSSH200", "SYSLVL01", 65}},
		{"empty pkgcnstkn falls back to the fixed token", args{"db", "PKG", "", 1}},
		{"db name longer than 18 chars gets truncated", args{"this_database_name_is_way_too_long", "SQLC2026", "AAAAAfAd", 201}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := packPKGNAMCSN(tt.args.database, tt.args.pkgid, tt.args.pkgcnstkn, tt.args.pkgsn)
			if len(obj) != 68 {
				t.Fatalf("len(obj) = %d, want 68", len(obj))
			}
			if len(obj) != 64+4 {
				t.Errorf("object total length should be body(64) + header(4)")
			}
		})
	}
}

func TestPackPKGNAMCSN_CodePoint(t *testing.T) {
	obj := packPKGNAMCSN("testdb", "SQLC2026", "AAAAAfAd", 201)
	if packedCodePoint(obj) != cpPKGNAMCSN {
		t.Errorf("code point = %#x, want %#x", packedCodePoint(obj), cpPKGNAMCSN)
	}
}

func TestPackEXCSAT_WrapsClientIdentity(t *testing.T) {
	obj := packEXCSAT(&derbyDialect)
	if packedCodePoint(obj) != cpEXCSAT {
		t.Fatalf("code point = %#x, want %#x", packedCodePoint(obj), cpEXCSAT)
	}
	if len(obj) <= 4 {
		t.Fatalf("EXCSAT body is empty")
	}
}

func TestFdodscEntry_KnownTypes(t *testing.T) {
	type args struct {
		p paramDescriptor
	}
	tests := []struct {
		name    string
		args    args
		wantLen int
	}{
		{"varchar", args{paramDescriptor{SQLType: db2SQLTypeNVarchar}}, 3},
		{"decimal", args{paramDescriptor{SQLType: db2SQLTypeNDecimal, Precision: 11, Scale: 2}}, 3},
		{"integer", args{paramDescriptor{SQLType: db2SQLTypeNInteger, Length: 4}}, 3},
		{"bigint", args{paramDescriptor{SQLType: db2SQLTypeNBigint, Length: 8}}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fdodscEntry(tt.args.p)
			if err != nil {
				t.Fatalf("fdodscEntry() error = %v", err)
			}
			if len(got) != tt.wantLen {
				t.Errorf("len(got) = %d, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestFdodscEntry_UnknownType(t *testing.T) {
	_, err := fdodscEntry(paramDescriptor{SQLType: 99999})
	if err == nil {
		t.Fatal("expected an error for an unsupported sqltype, got nil")
	}
}

func TestFdodscEntry_FloatWidthCodes(t *testing.T) {
	// A 4-byte float is described with the 0x0D (FLOAT4) code and an
	// 8-byte float with 0x0B (FLOAT8); FDODSC parameter codes and DRDA
	// result-triplet codes share these two values.
	got4, err := fdodscEntry(paramDescriptor{SQLType: db2SQLTypeNFloat, Length: 4})
	if err != nil {
		t.Fatalf("fdodscEntry(float4) error = %v", err)
	}
	if got4[0] != 0x0d {
		t.Errorf("float4 descriptor code = %#x, want 0x0d", got4[0])
	}
	got8, err := fdodscEntry(paramDescriptor{SQLType: db2SQLTypeNFloat, Length: 8})
	if err != nil {
		t.Fatalf("fdodscEntry(float8) error = %v", err)
	}
	if got8[0] != 0x0b {
		t.Errorf("float8 descriptor code = %#x, want 0x0b", got8[0])
	}
}

func TestPackSQLDTA_Structure(t *testing.T) {
	params := []paramDescriptor{
		{SQLType: db2SQLTypeNVarchar},
		{SQLType: db2SQLTypeNInteger, Length: 4},
	}
	values := []any{"abcdefghijklmnopq", int64(1)}

	sqldta, err := packSQLDTA(params, values)
	if err != nil {
		t.Fatalf("packSQLDTA() error = %v", err)
	}
	if packedCodePoint(sqldta) != cpSQLDTA {
		t.Fatalf("code point = %#x, want %#x", packedCodePoint(sqldta), cpSQLDTA)
	}

	body := sqldta[4:]
	fdodscObj, rest, err := parseObjectFromBytes(body)
	if err != nil {
		t.Fatalf("parseObjectFromBytes(fdodsc) error = %v", err)
	}
	if fdodscObj.codePoint != cpFDODSC {
		t.Fatalf("code point = %#x, want %#x", fdodscObj.codePoint, cpFDODSC)
	}
	// Triplet header: total length byte, 0x76 0xD0 marker, then one
	// 3-byte descriptor per parameter and the fixed 6-byte trailer.
	if fdodscObj.body[0] != byte((1+len(params))*3) {
		t.Errorf("FDODSC total = %d, want %d", fdodscObj.body[0], (1+len(params))*3)
	}
	if fdodscObj.body[1] != 0x76 || fdodscObj.body[2] != 0xD0 {
		t.Errorf("FDODSC marker = %x %x, want 76 d0", fdodscObj.body[1], fdodscObj.body[2])
	}
	if len(fdodscObj.body) != 3+3*len(params)+6 {
		t.Errorf("len(FDODSC body) = %d, want %d", len(fdodscObj.body), 3+3*len(params)+6)
	}

	fdodtaObj, _, err := parseObjectFromBytes(rest)
	if err != nil {
		t.Fatalf("parseObjectFromBytes(fdodta) error = %v", err)
	}
	if fdodtaObj.codePoint != cpFDODTA {
		t.Fatalf("code point = %#x, want %#x", fdodtaObj.codePoint, cpFDODTA)
	}
	if len(fdodtaObj.body)%2 != 0 {
		t.Errorf("FDODTA body length %d is odd, want even-length padding", len(fdodtaObj.body))
	}
}
