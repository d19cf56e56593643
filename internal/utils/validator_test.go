// internal/utils/validator_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type addressHolder struct {
	Address string `validate:"required,chain_address"`
}

func TestChainAddressValidation(t *testing.T) {
	valid := []string{
		"0x1111111111111111111111111111111111111111",
		"0xAbCdEf0123456789aBcDeF0123456789abcdef01",
	}
	for _, addr := range valid {
		assert.NoError(t, ValidateStruct(&addressHolder{Address: addr}), addr)
	}

	invalid := []string{
		"",
		"1111111111111111111111111111111111111111",
		"0x111111111111111111111111111111111111111",
		"0x11111111111111111111111111111111111111112",
		"0xZZ11111111111111111111111111111111111111",
	}
	for _, addr := range invalid {
		assert.Error(t, ValidateStruct(&addressHolder{Address: addr}), addr)
	}
}

type passwordHolder struct {
	Password string `validate:"strong_password"`
}

func TestStrongPasswordValidation(t *testing.T) {
	assert.NoError(t, ValidateStruct(&passwordHolder{Password: "Str0ng!pass"}))

	weak := []string{"short1!", "alllowercase1!", "ALLUPPERCASE1!", "NoNumbers!!", "NoSpecial123"}
	for _, pw := range weak {
		assert.Error(t, ValidateStruct(&passwordHolder{Password: pw}), pw)
	}
}
