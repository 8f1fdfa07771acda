package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// HashIP 计算访客 IP 指纹：SHA256(ip + salt)，不可逆
func HashIP(ip, salt string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(ip) + salt))
	return hex.EncodeToString(sum[:])
}

// accountFingerprint 账号侧 IP 指纹，IP 缺失时为空（不参与推荐作弊比对）
func accountFingerprint(ip, salt string) string {
	if strings.TrimSpace(ip) == "" {
		return ""
	}
	return HashIP(ip, salt)
}

// IPCipher 访客 IP 可逆加密（仅管理端取证解密）
type IPCipher struct {
	key []byte
}

// NewIPCipher 由 64 位 hex 密钥创建加密器，密钥为空时返回 nil
func NewIPCipher(hexKey string) (*IPCipher, error) {
	hexKey = strings.TrimSpace(hexKey)
	if hexKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("decode ip encryption key: %w", err)
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("ip encryption key must be %d bytes", chacha20poly1305.KeySize)
	}
	return &IPCipher{key: key}, nil
}

// Encrypt 加密 IP，输出 base64(nonce || ciphertext)
func (c *IPCipher) Encrypt(ip string) (string, error) {
	if c == nil {
		return "", ErrIPEncryptionDisabled
	}
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(ip)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := aead.Seal(nonce, nonce, []byte(strings.TrimSpace(ip)), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt 解密 IP
func (c *IPCipher) Decrypt(encoded string) (string, error) {
	if c == nil {
		return "", ErrIPEncryptionDisabled
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return "", err
	}
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", err
	}
	if len(raw) < aead.NonceSize() {
		return "", fmt.Errorf("ciphertext too short")
	}
	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
