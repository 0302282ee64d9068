package utils

import "testing"

func TestGenerateOTP(t *testing.T) {
	for i := 0; i < 100; i++ {
		otp := GenerateOTP(4)
		if len(otp) != 4 {
			t.Fatalf("expected 4 digits, got %q", otp)
		}
		if otp[0] == '0' {
			t.Fatalf("leading zero would shorten the code: %q", otp)
		}
		for _, r := range otp {
			if r < '0' || r > '9' {
				t.Fatalf("non-digit in OTP: %q", otp)
			}
		}
	}
}

func TestGenerateOTPZeroLength(t *testing.T) {
	if otp := GenerateOTP(0); otp != "" {
		t.Fatalf("expected empty string, got %q", otp)
	}
}
