package drda

import (
	"crypto/cipher"
	"crypto/des"
	"crypto/rand"
	"fmt"
	"math/big"
)

// Diffie-Hellman parameters for DRDA's SECMEC 9 (EUSRIDPWD): a fixed
// 256-bit prime and generator both server families expect.
var (
	dhPrime, _ = new(big.Int).SetString("C62112D73EE613F0947AB31F0F6846A1BFF5B3A4CA0D60BC1E4C7A0D8C16B3E3", 16)
	dhBase, _  = new(big.Int).SetString("4690FA1F7B9E1D4442C86C9114603FDECF071EDCEC5F626E21E256AED9EA34E4", 16)
)

// dhGeneratePrivate returns a random private exponent in [2, prime).
func dhGeneratePrivate() (*big.Int, error) {
	max := new(big.Int).Sub(dhPrime, big.NewInt(2))
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return nil, fmt.Errorf("drda: generating DH private key: %w", err)
	}
	return n.Add(n, big.NewInt(2)), nil
}

// dhPublic computes g^private mod p, the value sent to the server as
// SECTKN.
func dhPublic(private *big.Int) []byte {
	pub := new(big.Int).Exp(dhBase, private, dhPrime)
	return leftPad(pub.Bytes(), 32)
}

// dhSessionKey computes the shared secret g^(serverPrivate*private) mod p
// from the server's public key and this side's private key, as a 32-byte
// big-endian value.
func dhSessionKey(serverPublic []byte, private *big.Int) []byte {
	pub := new(big.Int).SetBytes(serverPublic)
	shared := new(big.Int).Exp(pub, private, dhPrime)
	return leftPad(shared.Bytes(), 32)
}

func leftPad(b []byte, n int) []byte {
	if len(b) >= n {
		return b[len(b)-n:]
	}
	out := make([]byte, n)
	copy(out[n-len(b):], b)
	return out
}

// pkcs5Pad pads b to a multiple of blockSize using PKCS5/PKCS7 padding.
// crypto/cipher has no padding helper, so this is the usual hand-rolled
// few lines every Go DES/AES-CBC caller writes.
func pkcs5Pad(b []byte, blockSize int) []byte {
	padLen := blockSize - len(b)%blockSize
	padding := make([]byte, padLen)
	for i := range padding {
		padding[i] = byte(padLen)
	}
	return append(b, padding...)
}

// desEncryptSecTkn DES-CBC/PKCS5-encrypts plaintext under the key/iv
// derived from a SECMEC 9 exchange: the IV is bytes 12:20 of the server's
// 32-byte SECTKN, the key is bytes 12:20 of the computed session key.
// DES is what the protocol mandates for this mechanism, not a choice.
func desEncryptSecTkn(serverSecTkn []byte, private *big.Int, plaintext []byte) ([]byte, error) {
	if len(serverSecTkn) != 32 {
		return nil, &ProtocolError{Context: "SECMEC 9 SECTKN must be 32 bytes"}
	}
	sessionKey := dhSessionKey(serverSecTkn, private)
	iv := serverSecTkn[12:20]
	key := sessionKey[12:20]

	block, err := des.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("drda: DES cipher init: %w", err)
	}
	padded := pkcs5Pad(plaintext, des.BlockSize)
	out := make([]byte, len(padded))
	mode := cipher.NewCBCEncrypter(block, iv)
	mode.CryptBlocks(out, padded)
	return out, nil
}
