package drda

import (
	"bytes"
	"testing"
)

func TestDHSessionKey_Symmetric(t *testing.T) {
	// dhSessionKey(dhPublic(a), b) == dhSessionKey(dhPublic(b), a)
	// for random a, b in [2, p).
	a, err := dhGeneratePrivate()
	if err != nil {
		t.Fatalf("dhGeneratePrivate(a) error = %v", err)
	}
	b, err := dhGeneratePrivate()
	if err != nil {
		t.Fatalf("dhGeneratePrivate(b) error = %v", err)
	}

	pubA := dhPublic(a)
	pubB := dhPublic(b)

	keyFromA := dhSessionKey(pubB, a)
	keyFromB := dhSessionKey(pubA, b)

	if !bytes.Equal(keyFromA, keyFromB) {
		t.Errorf("session keys differ: %x != %x", keyFromA, keyFromB)
	}
	if len(keyFromA) != 32 {
		t.Errorf("session key length = %d, want 32", len(keyFromA))
	}
}

func TestDHPublic_Length(t *testing.T) {
	tests := []struct {
		name string
	}{
		{"first keypair"},
		{"second keypair"},
		{"third keypair"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			priv, err := dhGeneratePrivate()
			if err != nil {
				t.Fatalf("dhGeneratePrivate() error = %v", err)
			}
			pub := dhPublic(priv)
			if len(pub) != 32 {
				t.Errorf("len(pub) = %d, want 32", len(pub))
			}
		})
	}
}

func TestDesEncryptSecTkn_RejectsShortSectkn(t *testing.T) {
	priv, err := dhGeneratePrivate()
	if err != nil {
		t.Fatalf("dhGeneratePrivate() error = %v", err)
	}
	_, err = desEncryptSecTkn(make([]byte, 16), priv, []byte("APP"))
	if !IsProtocolError(err) {
		t.Errorf("expected ProtocolError for a 16-byte SECTKN, got %v", err)
	}
}

func TestDesEncryptSecTkn_OutputIsBlockAligned(t *testing.T) {
	priv, err := dhGeneratePrivate()
	if err != nil {
		t.Fatalf("dhGeneratePrivate() error = %v", err)
	}
	sectkn := make([]byte, 32)
	for i := range sectkn {
		sectkn[i] = byte(i)
	}

	tests := []struct {
		name      string
		plaintext []byte
	}{
		{"shorter than one block", []byte("APP")},
		{"exactly one block", []byte("12345678")},
		{"spans two blocks", []byte("this is longer than eight bytes")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := desEncryptSecTkn(sectkn, priv, tt.plaintext)
			if err != nil {
				t.Fatalf("desEncryptSecTkn() error = %v", err)
			}
			if len(out)%8 != 0 {
				t.Errorf("len(out) = %d, not a multiple of the DES block size", len(out))
			}
		})
	}
}

func TestPkcs5Pad(t *testing.T) {
	type args struct {
		b         []byte
		blockSize int
	}
	tests := []struct {
		name    string
		args    args
		wantLen int
	}{
		{"empty input pads to full block", args{[]byte{}, 8}, 8},
		{"one byte short of a block", args{make([]byte, 7), 8}, 8},
		{"exactly one block still pads", args{make([]byte, 8), 8}, 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pkcs5Pad(tt.args.b, tt.args.blockSize)
			if len(got) != tt.wantLen {
				t.Errorf("len(pkcs5Pad()) = %d, want %d", len(got), tt.wantLen)
			}
			padByte := got[len(got)-1]
			for i := len(got) - int(padByte); i < len(got); i++ {
				if got[i] != padByte {
					t.Errorf("padding byte at %d = %#x, want %#x", i, got[i], padByte)
				}
			}
		})
	}
}
