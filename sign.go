package socialite

import (
	"crypto"
	"crypto/hmac"
	"crypto/md5"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"sort"
	"strings"
)

// Signed-request providers (alipay, taobao, qcloud) compute a signature
// over the other request parameters sorted by key. The canonicalization
// differs per provider but always excludes the sign field itself and
// empty values; these helpers are the shared primitive the dialects
// parameterize with their signing algorithm.

// canonicalQuery renders params as "k=v&k2=v2", keys sorted, excluding
// the listed keys and empty values. Values are NOT url-encoded; the
// gateways sign the plain form.
func canonicalQuery(params map[string]string, exclude ...string) string {
	keys := canonicalKeys(params, exclude)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}
	return strings.Join(pairs, "&")
}

// canonicalConcat renders params as "k1v1k2v2...", keys sorted — the
// form taobao's MD5 scheme signs.
func canonicalConcat(params map[string]string, exclude ...string) string {
	keys := canonicalKeys(params, exclude)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(params[k])
	}
	return b.String()
}

func canonicalKeys(params map[string]string, exclude []string) []string {
	skip := map[string]bool{"sign": true}
	for _, k := range exclude {
		skip[k] = true
	}
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if skip[k] || v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// signRSA256 signs content with RSASSA-PKCS1-v1_5 over SHA-256 and
// returns the base64 signature (alipay RSA2).
func signRSA256(content string, key *rsa.PrivateKey) (string, error) {
	sum := sha256.Sum256([]byte(content))
	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, sum[:])
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

// parseRSAPrivateKey accepts a PEM block or the bare base64 DER body
// most provider consoles hand out, in PKCS#1 or PKCS#8 form.
func parseRSAPrivateKey(s string) (*rsa.PrivateKey, error) {
	s = strings.TrimSpace(s)

	var der []byte
	if block, _ := pem.Decode([]byte(s)); block != nil {
		der = block.Bytes
	} else {
		raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(s, "\n", ""))
		if err != nil {
			return nil, fmt.Errorf("rsa key is neither PEM nor base64 DER: %w", err)
		}
		der = raw
	}

	if key, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, err
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("private key is %T, not RSA", parsed)
	}
	return key, nil
}

// signHMACSHA256 returns base64(HMAC-SHA256(content, secret)) — the
// dingtalk/qcloud scheme.
func signHMACSHA256(content, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(content))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// signMD5Upper returns uppercase hex MD5 of content (taobao's
// secret+concat+secret scheme).
func signMD5Upper(content string) string {
	sum := md5.Sum([]byte(content))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}
