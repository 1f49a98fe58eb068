package socialite

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"testing"
)

func TestCanonicalQuery_SortsAndExcludes(t *testing.T) {
	params := map[string]string{
		"b":     "2",
		"a":     "1",
		"sign":  "IGNORED",
		"empty": "",
		"c":     "3",
	}
	if got := canonicalQuery(params); got != "a=1&b=2&c=3" {
		t.Fatalf("canonicalQuery: got %q", got)
	}
	if got := canonicalQuery(params, "c"); got != "a=1&b=2" {
		t.Fatalf("canonicalQuery with exclude: got %q", got)
	}
}

func TestCanonicalConcat(t *testing.T) {
	params := map[string]string{"method": "x", "app_key": "k", "sign": "no"}
	if got := canonicalConcat(params); got != "app_keykmethodx" {
		t.Fatalf("canonicalConcat: got %q", got)
	}
}

func TestSignMD5Upper(t *testing.T) {
	// md5("abc") = 900150983cd24fb0d6963f7d28e17f72
	if got := signMD5Upper("abc"); got != "900150983CD24FB0D6963F7D28E17F72" {
		t.Fatalf("signMD5Upper: got %q", got)
	}
}

func TestSignHMACSHA256_Deterministic(t *testing.T) {
	a := signHMACSHA256("1700000000000", "secret")
	b := signHMACSHA256("1700000000000", "secret")
	if a != b {
		t.Fatalf("signature must be deterministic")
	}
	if a == signHMACSHA256("1700000000000", "otra") {
		t.Fatalf("different secrets must differ")
	}
	if _, err := base64.StdEncoding.DecodeString(a); err != nil {
		t.Fatalf("signature is not base64: %v", err)
	}
}

func TestSignRSA256_VerifiesWithPublicKey(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	content := "app_id=2016&charset=UTF-8&method=alipay.system.oauth.token"
	sig, err := signRSA256(content, key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	rawSig, err := base64.StdEncoding.DecodeString(sig)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	sum := sha256.Sum256([]byte(content))
	if err := rsa.VerifyPKCS1v15(&key.PublicKey, crypto.SHA256, sum[:], rawSig); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestParseRSAPrivateKey_PEMAndBareDER(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	der := x509.MarshalPKCS1PrivateKey(key)

	pemText := string(pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: der}))
	if _, err := parseRSAPrivateKey(pemText); err != nil {
		t.Fatalf("PEM form: %v", err)
	}

	// la forma "pelada" que entregan las consolas: solo el cuerpo base64
	bare := base64.StdEncoding.EncodeToString(der)
	if _, err := parseRSAPrivateKey(bare); err != nil {
		t.Fatalf("bare DER form: %v", err)
	}

	if _, err := parseRSAPrivateKey("not-a-key"); err == nil {
		t.Fatalf("garbage must fail")
	}
}
