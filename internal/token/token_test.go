package token

import "testing"

func TestSign_KnownVectors(t *testing.T) {
	testCases := []struct {
		name     string
		params   map[string]any
		password string
		want     string
	}{
		{
			// sorted: Amount, OrderId, Password, TerminalKey -> "1000ORD1secretTestTerminal"
			name: "init request",
			params: map[string]any{
				"TerminalKey": "TestTerminal",
				"Amount":      float64(1000),
				"OrderId":     "ORD1",
			},
			password: "secret",
			want:     "1914490e8a9104bddb3f66ffbefaa00ecdc3227ee70e4b74433cd1982ffe549d",
		},
		{
			// boolean must render as "true", not "1"
			name: "boolean field",
			params: map[string]any{
				"TerminalKey": "T1",
				"Recurrent":   true,
				"Amount":      float64(500),
			},
			password: "pw",
			want:     "f9048068d4e0256e5a5f6fd0e90bbee0b42b0d0cf9e7a2d02dd675fb45dc6b2c",
		},
		{
			// fractional amounts keep their shortest decimal form
			name:     "fractional number",
			params:   map[string]any{"Amount": 10.5},
			password: "pw",
			want:     "2ebe46c1cdaf1f4f289d92c6dd14c2f3957c11d20b16a0543f37a709798613e5",
		},
		{
			name: "notification payload",
			params: map[string]any{
				"TerminalKey": "TBankGatewayEmulatorLocal",
				"OrderId":     "ORD1",
				"Success":     true,
				"Status":      "CONFIRMED",
				"PaymentId":   "2460000000",
				"ErrorCode":   "0",
				"Amount":      int64(1000),
				"Pan":         "430000******0777",
				"ExpDate":     "1228",
				"CardId":      "123456",
			},
			password: "emulator_secret_password",
			want:     "f180ca9da98e161c32a2f83c3e97cc10fd0f98f866b1324d00e4a3ca8d493b76",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Sign(tc.params, tc.password); got != tc.want {
				t.Errorf("Sign() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestSign_Deterministic(t *testing.T) {
	params := map[string]any{
		"TerminalKey": "T1",
		"OrderId":     "ORD-42",
		"Amount":      float64(9900),
	}

	first := Sign(params, "secret")
	for i := 0; i < 10; i++ {
		if got := Sign(params, "secret"); got != first {
			t.Fatalf("Sign() not deterministic: %s != %s", got, first)
		}
	}
}

func TestVerify_RoundTrip(t *testing.T) {
	params := map[string]any{
		"TerminalKey": "T1",
		"OrderId":     "ORD-7",
		"Amount":      float64(1500),
		"Recurrent":   false,
	}
	params[Field] = Sign(params, "secret")

	if !Verify(params, "secret") {
		t.Error("Verify() = false for freshly signed params")
	}
}

func TestVerify_TamperedField(t *testing.T) {
	params := map[string]any{
		"TerminalKey": "T1",
		"OrderId":     "ORD-7",
		"Amount":      float64(1500),
	}
	params[Field] = Sign(params, "secret")

	params["Amount"] = float64(1)
	if Verify(params, "secret") {
		t.Error("Verify() = true after mutating Amount without resigning")
	}
}

func TestVerify_WrongPassword(t *testing.T) {
	params := map[string]any{"OrderId": "ORD-7", "Amount": float64(100)}
	params[Field] = Sign(params, "secret")

	if Verify(params, "other") {
		t.Error("Verify() = true with wrong password")
	}
}

func TestVerify_MissingToken(t *testing.T) {
	params := map[string]any{"OrderId": "ORD-7", "Amount": float64(100)}

	if Verify(params, "secret") {
		t.Error("Verify() = true with no Token field")
	}
}

func TestSign_CompositeValuesExcluded(t *testing.T) {
	params := map[string]any{
		"TerminalKey": "T1",
		"OrderId":     "ORD-9",
		"Amount":      float64(2000),
	}
	base := Sign(params, "secret")

	params["Receipt"] = map[string]any{"Email": "x@example.com"}
	params["Items"] = []any{"a", "b"}
	if got := Sign(params, "secret"); got != base {
		t.Errorf("composite fields changed the digest: %s != %s", got, base)
	}
}

func TestSign_ExistingTokenIgnored(t *testing.T) {
	params := map[string]any{"OrderId": "ORD-9", "Amount": float64(2000)}
	base := Sign(params, "secret")

	params[Field] = "deadbeef"
	if got := Sign(params, "secret"); got != base {
		t.Errorf("Token field leaked into the digest: %s != %s", got, base)
	}
}
