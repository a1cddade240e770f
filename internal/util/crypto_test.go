package util

import (
	"bytes"
	"testing"
)

// ============ AES 加解密测试 ============

func TestEncryptDecryptAES_RoundTrip(t *testing.T) {
	key := "backup-key-12345"
	plain := []byte(`{"records":[{"id":"r1","amount":25}]}`)

	enc, err := EncryptAES(key, plain)
	if err != nil {
		t.Fatalf("加密失败: %v", err)
	}
	if bytes.Contains(enc, []byte("records")) {
		t.Error("密文不应包含明文内容")
	}

	dec, err := DecryptAES(key, enc)
	if err != nil {
		t.Fatalf("解密失败: %v", err)
	}
	if !bytes.Equal(dec, plain) {
		t.Errorf("解密结果不一致:\nwant: %s\ngot:  %s", plain, dec)
	}
}

func TestEncryptAES_NonDeterministic(t *testing.T) {
	key := "backup-key"
	plain := []byte("same plaintext")

	enc1, _ := EncryptAES(key, plain)
	enc2, _ := EncryptAES(key, plain)
	if bytes.Equal(enc1, enc2) {
		t.Error("相同明文两次加密应产生不同密文（随机 nonce）")
	}
}

func TestDecryptAES_WrongKey(t *testing.T) {
	enc, err := EncryptAES("right-key", []byte("secret"))
	if err != nil {
		t.Fatalf("加密失败: %v", err)
	}

	if _, err := DecryptAES("wrong-key", enc); err == nil {
		t.Error("错误密钥解密应失败")
	}
}

func TestDecryptAES_Truncated(t *testing.T) {
	if _, err := DecryptAES("key", []byte{0x01, 0x02}); err == nil {
		t.Error("过短的密文应返回错误")
	}

	enc, _ := EncryptAES("key", []byte("data"))
	if _, err := DecryptAES("key", enc[:len(enc)-1]); err == nil {
		t.Error("被截断的密文应解密失败")
	}
}
